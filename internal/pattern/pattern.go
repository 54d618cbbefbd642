// Package pattern defines the closed set of alarm-silencing pattern
// categories, detection severities, and the Detection record produced by the
// scanners.
package pattern

// Type identifies one alarm-silencing pattern category
type Type string

const (
	TypeSilentFallback         Type = "silent_fallback"
	TypeWarningSuppression     Type = "warning_suppression"
	TypeAssumptionBypass       Type = "assumption_bypass"
	TypeDuplicateCode          Type = "duplicate_code"
	TypePerformanceDegradation Type = "performance_degradation"
	TypeSecurityShortcut       Type = "security_shortcut"
	TypeErrorMasking           Type = "error_masking"
	TypeTestAvoidance          Type = "test_avoidance"
)

// AllTypes lists every pattern category. The weight table is validated
// against this list at startup so an unknown category fails fast instead of
// scoring with a silent default.
var AllTypes = []Type{
	TypeSilentFallback,
	TypeWarningSuppression,
	TypeAssumptionBypass,
	TypeDuplicateCode,
	TypePerformanceDegradation,
	TypeSecurityShortcut,
	TypeErrorMasking,
	TypeTestAvoidance,
}

// Valid reports whether t is one of the known pattern categories
func (t Type) Valid() bool {
	for _, known := range AllTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Severity levels for detections
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityWarning  Severity = "WARNING"
	SeverityInfo     Severity = "INFO"
)

var severityRank = map[Severity]int{
	SeverityCritical: 3,
	SeverityWarning:  2,
	SeverityInfo:     1,
}

// Rank returns the ordering weight of a severity, higher is more severe.
// Unknown severities rank below INFO.
func (s Severity) Rank() int {
	return severityRank[s]
}

// Valid reports whether s is one of the known severity tiers
func (s Severity) Valid() bool {
	_, ok := severityRank[s]
	return ok
}

// Source records which scanner produced a detection
type Source string

const (
	SourceLexical    Source = "lexical"
	SourceStructural Source = "structural"
)

// Detection is a single located occurrence of an alarm-silencing pattern
type Detection struct {
	Type           Type     `json:"pattern_type"`
	Severity       Severity `json:"severity"`
	Line           int      `json:"line_number"`
	Snippet        string   `json:"code_snippet"`
	Description    string   `json:"description"`
	Impact         string   `json:"impact"`
	Recommendation string   `json:"recommendation"`
	Confidence     float64  `json:"confidence"` // 0.0 - 1.0
	Source         Source   `json:"source"`
}
