// Package impact reduces a detection collection to one quantified risk
// score with a performance/security/maintainability breakdown.
package impact

import (
	"fmt"
	"math"

	"guard-bot/internal/pattern"
)

// RiskLevel is the overall risk tier of one analysis run
type RiskLevel string

const (
	RiskCritical RiskLevel = "CRITICAL"
	RiskHigh     RiskLevel = "HIGH"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskLow      RiskLevel = "LOW"
)

// Score is the quantified impact of all detections in one analysis run.
// Constructed once, never mutated.
type Score struct {
	TotalScore          int       `json:"total_score"`           // 0-100
	PerformanceCost     int       `json:"performance_cost"`      // 0-100
	SecurityRisk        int       `json:"security_risk"`         // 0-100
	MaintainabilityDebt int       `json:"maintainability_debt"`  // 0-100
	EstimatedDebugHours float64   `json:"estimated_debug_hours"` // uncapped
	RiskLevel           RiskLevel `json:"risk_level"`
}

// Severity multipliers applied to the per-category weights
var severityMultipliers = map[pattern.Severity]float64{
	pattern.SeverityCritical: 2.0,
	pattern.SeverityWarning:  1.0,
	pattern.SeverityInfo:     0.5,
}

const (
	dimensionCap = 100.0

	weightPerformance     = 0.3
	weightSecurity        = 0.4
	weightMaintainability = 0.3
)

// Assessor computes impact scores from a validated weight table
type Assessor struct {
	weights pattern.WeightTable
}

// NewAssessor creates an assessor. The weight table is validated once here
// so an unknown category is a startup error, not a silent runtime default.
func NewAssessor(weights pattern.WeightTable) (*Assessor, error) {
	if err := weights.Validate(); err != nil {
		return nil, fmt.Errorf("invalid weight table: %w", err)
	}
	return &Assessor{weights: weights}, nil
}

// Assess reduces the detection sequence to one Score. Deterministic: the
// same detections always produce the same Score.
func (a *Assessor) Assess(detections []pattern.Detection) Score {
	var performance, security, maintainability, debugHours float64

	for _, det := range detections {
		weight := a.weights[det.Type]
		factor := severityMultipliers[det.Severity] * det.Confidence

		// Each dimension saturates at 100: a pile of findings in one
		// dimension cannot inflate the score without bound.
		performance = math.Min(dimensionCap, performance+weight.Performance*factor)
		security = math.Min(dimensionCap, security+weight.Security*factor)
		maintainability = math.Min(dimensionCap, maintainability+weight.Maintainability*factor)

		// Remediation time is not capped: many issues really do cost
		// that many hours.
		debugHours += weight.DebugHours * det.Confidence
	}

	total := clampScore(math.Round(
		performance*weightPerformance +
			security*weightSecurity +
			maintainability*weightMaintainability))

	securityRisk := int(math.Round(security))

	return Score{
		TotalScore:          total,
		PerformanceCost:     int(math.Round(performance)),
		SecurityRisk:        securityRisk,
		MaintainabilityDebt: int(math.Round(maintainability)),
		EstimatedDebugHours: math.Round(debugHours*10) / 10,
		RiskLevel:           riskLevel(total, securityRisk),
	}
}

func riskLevel(total, securityRisk int) RiskLevel {
	switch {
	case total >= 80 || securityRisk >= 90:
		return RiskCritical
	case total >= 60:
		return RiskHigh
	case total >= 40:
		return RiskMedium
	default:
		return RiskLow
	}
}

func clampScore(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(v)
}
