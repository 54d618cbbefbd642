package pattern

import "fmt"

// Weight holds the per-category impact constants used by the assessor.
// Dimension values are on a 0-100 scale; DebugHours is the expected
// remediation time if the issue reaches production.
type Weight struct {
	Performance     float64 `yaml:"performance"`
	Security        float64 `yaml:"security"`
	Maintainability float64 `yaml:"maintainability"`
	DebugHours      float64 `yaml:"debug_hours"`
}

// WeightTable maps each pattern category to its impact weights
type WeightTable map[Type]Weight

// DefaultWeights returns the built-in weight table
func DefaultWeights() WeightTable {
	return WeightTable{
		TypeSilentFallback:         {Performance: 10, Security: 30, Maintainability: 50, DebugHours: 8.0},
		TypeWarningSuppression:     {Performance: 5, Security: 20, Maintainability: 40, DebugHours: 4.0},
		TypeAssumptionBypass:       {Performance: 10, Security: 40, Maintainability: 30, DebugHours: 6.0},
		TypeDuplicateCode:          {Performance: 15, Security: 10, Maintainability: 60, DebugHours: 12.0},
		TypePerformanceDegradation: {Performance: 70, Security: 5, Maintainability: 20, DebugHours: 16.0},
		TypeSecurityShortcut:       {Performance: 5, Security: 95, Maintainability: 30, DebugHours: 24.0},
		TypeErrorMasking:           {Performance: 10, Security: 15, Maintainability: 45, DebugHours: 10.0},
		TypeTestAvoidance:          {Performance: 5, Security: 10, Maintainability: 50, DebugHours: 20.0},
	}
}

// Validate checks that the table covers every known category exactly and
// that all values are in range. Called once at startup.
func (wt WeightTable) Validate() error {
	for _, t := range AllTypes {
		w, ok := wt[t]
		if !ok {
			return fmt.Errorf("weight table missing category %q", t)
		}
		for name, v := range map[string]float64{
			"performance":     w.Performance,
			"security":        w.Security,
			"maintainability": w.Maintainability,
		} {
			if v < 0 || v > 100 {
				return fmt.Errorf("weight %s for category %q out of range [0,100]: %v", name, t, v)
			}
		}
		if w.DebugHours <= 0 {
			return fmt.Errorf("debug_hours for category %q must be positive: %v", t, w.DebugHours)
		}
	}
	for t := range wt {
		if !t.Valid() {
			return fmt.Errorf("weight table contains unknown category %q", t)
		}
	}
	return nil
}
