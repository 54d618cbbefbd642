// Package report renders one analysis outcome as a human-readable text
// report for the CLI and the hook's stderr output.
package report

import (
	"fmt"
	"strings"

	"guard-bot/internal/engine"
	"guard-bot/internal/pattern"
)

const gaugeWidth = 10

// Render formats the outcome as a plain-text report
func Render(outcome *engine.Outcome) string {
	var b strings.Builder

	switch outcome.Status {
	case engine.StatusSkipped:
		fmt.Fprintf(&b, "Analysis skipped: %s\n", outcome.Reason)
		return b.String()
	case engine.StatusUnavailable:
		fmt.Fprintf(&b, "Analysis unavailable: %s\n", outcome.Reason)
		return b.String()
	}

	v := outcome.Verdict
	score := v.Score

	fmt.Fprintf(&b, "Decision: %s\n", v.Decision)
	fmt.Fprintf(&b, "Risk Level: %s\n", score.RiskLevel)
	fmt.Fprintf(&b, "Total Impact Score: %d/100\n\n", score.TotalScore)

	fmt.Fprintf(&b, "Breakdown:\n")
	fmt.Fprintf(&b, "  Performance Cost:      %3d/100  %s\n", score.PerformanceCost, gauge(score.PerformanceCost))
	fmt.Fprintf(&b, "  Security Risk:         %3d/100  %s\n", score.SecurityRisk, gauge(score.SecurityRisk))
	fmt.Fprintf(&b, "  Maintainability Debt:  %3d/100  %s\n", score.MaintainabilityDebt, gauge(score.MaintainabilityDebt))
	fmt.Fprintf(&b, "  Est. Debug Hours:      %.1fh (if issues hit production)\n", score.EstimatedDebugHours)

	if len(v.Detections) == 0 {
		fmt.Fprintf(&b, "\nNo alarm-silencing patterns detected.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "\nDetected %d alarm-silencing pattern(s):\n", len(v.Detections))
	writeSeverityGroup(&b, v.Detections, pattern.SeverityCritical, 3)
	writeSeverityGroup(&b, v.Detections, pattern.SeverityWarning, 3)
	writeSeverityGroup(&b, v.Detections, pattern.SeverityInfo, 2)

	if len(v.TopRecommendations) > 0 {
		fmt.Fprintf(&b, "\nTop recommendations:\n")
		for i, rec := range v.TopRecommendations {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, rec)
		}
	}

	return b.String()
}

// Brief is a one-line summary for low-noise output paths
func Brief(outcome *engine.Outcome) string {
	switch outcome.Status {
	case engine.StatusSkipped:
		return fmt.Sprintf("analysis skipped: %s", outcome.Reason)
	case engine.StatusUnavailable:
		return fmt.Sprintf("analysis unavailable: %s", outcome.Reason)
	}
	v := outcome.Verdict
	return fmt.Sprintf("%s: %d pattern(s), risk %s, score %d/100",
		v.Decision, len(v.Detections), v.Score.RiskLevel, v.Score.TotalScore)
}

func writeSeverityGroup(b *strings.Builder, detections []pattern.Detection, severity pattern.Severity, limit int) {
	var group []pattern.Detection
	for _, det := range detections {
		if det.Severity == severity {
			group = append(group, det)
		}
	}
	if len(group) == 0 {
		return
	}

	fmt.Fprintf(b, "\n%s (%d):\n", severity, len(group))
	for i, det := range group {
		if i == limit {
			fmt.Fprintf(b, "  ... and %d more\n", len(group)-limit)
			break
		}
		fmt.Fprintf(b, "  Line %d: %s\n", det.Line, det.Description)
		if det.Impact != "" {
			fmt.Fprintf(b, "    Impact: %s\n", det.Impact)
		}
		if det.Recommendation != "" {
			fmt.Fprintf(b, "    Fix: %s\n", det.Recommendation)
		}
	}
}

func gauge(score int) string {
	filled := score / gaugeWidth
	if filled > gaugeWidth {
		filled = gaugeWidth
	}
	return strings.Repeat("#", filled) + strings.Repeat(".", gaugeWidth-filled)
}
