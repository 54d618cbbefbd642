package verdict

import (
	"testing"

	"guard-bot/internal/impact"
	"guard-bot/internal/pattern"
)

var testThresholds = Thresholds{CriticalCount: 1, BlockScore: 80, WarnScore: 40}

func TestDecide_BlocksOnCriticalDetection(t *testing.T) {
	// Score below the block threshold, but one CRITICAL detection blocks.
	score := impact.Score{TotalScore: 30, RiskLevel: impact.RiskLow}
	detections := []pattern.Detection{
		{Type: pattern.TypeSilentFallback, Severity: pattern.SeverityCritical, Confidence: 1.0},
	}

	v := Decide(score, detections, testThresholds)
	if v.Decision != DecisionBlock {
		t.Fatalf("Expected BLOCK, got %q", v.Decision)
	}
}

func TestDecide_BlocksOnScore(t *testing.T) {
	score := impact.Score{TotalScore: 85, RiskLevel: impact.RiskCritical}
	detections := []pattern.Detection{
		{Type: pattern.TypeDuplicateCode, Severity: pattern.SeverityWarning, Confidence: 0.9},
	}

	v := Decide(score, detections, testThresholds)
	if v.Decision != DecisionBlock {
		t.Fatalf("Expected BLOCK, got %q", v.Decision)
	}
}

func TestDecide_WarnsBetweenThresholds(t *testing.T) {
	score := impact.Score{TotalScore: 45, RiskLevel: impact.RiskMedium}
	detections := []pattern.Detection{
		{Type: pattern.TypeWarningSuppression, Severity: pattern.SeverityWarning, Confidence: 0.95},
	}

	v := Decide(score, detections, testThresholds)
	if v.Decision != DecisionWarn {
		t.Fatalf("Expected WARN, got %q", v.Decision)
	}
}

func TestDecide_AllowsBelowWarn(t *testing.T) {
	score := impact.Score{TotalScore: 10, RiskLevel: impact.RiskLow}

	v := Decide(score, nil, testThresholds)
	if v.Decision != DecisionAllow {
		t.Fatalf("Expected ALLOW, got %q", v.Decision)
	}
	if len(v.TopRecommendations) != 0 {
		t.Errorf("Expected no recommendations, got %v", v.TopRecommendations)
	}
}

func TestDecide_CriticalCountThreshold(t *testing.T) {
	thresholds := Thresholds{CriticalCount: 2, BlockScore: 80, WarnScore: 40}
	score := impact.Score{TotalScore: 30}
	one := []pattern.Detection{
		{Type: pattern.TypeSecurityShortcut, Severity: pattern.SeverityCritical, Confidence: 0.95},
	}

	if v := Decide(score, one, thresholds); v.Decision == DecisionBlock {
		t.Fatal("Expected a single CRITICAL to stay below a count-2 threshold")
	}

	two := append(one, pattern.Detection{
		Type: pattern.TypeSilentFallback, Severity: pattern.SeverityCritical, Confidence: 1.0,
	})
	if v := Decide(score, two, thresholds); v.Decision != DecisionBlock {
		t.Fatalf("Expected BLOCK at two CRITICALs, got %q", v.Decision)
	}
}

func TestTopRecommendations_RankedAndDeduped(t *testing.T) {
	detections := []pattern.Detection{
		{Severity: pattern.SeverityInfo, Confidence: 0.6, Recommendation: "add context to errors"},
		{Severity: pattern.SeverityCritical, Confidence: 0.95, Recommendation: "use parameterized queries"},
		{Severity: pattern.SeverityWarning, Confidence: 0.9, Recommendation: "log the exception"},
		{Severity: pattern.SeverityWarning, Confidence: 0.95, Recommendation: "log the exception"},
		{Severity: pattern.SeverityWarning, Confidence: 0.85, Recommendation: "extract to function"},
	}

	v := Decide(impact.Score{TotalScore: 50}, detections, testThresholds)

	want := []string{
		"use parameterized queries",
		"log the exception",
		"extract to function",
	}
	if len(v.TopRecommendations) != len(want) {
		t.Fatalf("Expected %d recommendations, got %d: %v", len(want), len(v.TopRecommendations), v.TopRecommendations)
	}
	for i, rec := range want {
		if v.TopRecommendations[i] != rec {
			t.Errorf("Position %d: expected %q, got %q", i, rec, v.TopRecommendations[i])
		}
	}
}

func TestTopRecommendations_CapsAtThree(t *testing.T) {
	var detections []pattern.Detection
	recs := []string{"a", "b", "c", "d", "e"}
	for _, rec := range recs {
		detections = append(detections, pattern.Detection{
			Severity:       pattern.SeverityWarning,
			Confidence:     0.9,
			Recommendation: rec,
		})
	}

	v := Decide(impact.Score{TotalScore: 50}, detections, testThresholds)
	if len(v.TopRecommendations) != 3 {
		t.Fatalf("Expected 3 recommendations, got %d", len(v.TopRecommendations))
	}
}

func TestThresholds_Validate(t *testing.T) {
	cases := []struct {
		name    string
		in      Thresholds
		wantErr bool
	}{
		{"defaults", Thresholds{1, 80, 40}, false},
		{"zero critical count", Thresholds{0, 80, 40}, true},
		{"block over 100", Thresholds{1, 120, 40}, true},
		{"warn above block", Thresholds{1, 50, 60}, true},
		{"negative warn", Thresholds{1, 80, -1}, true},
	}

	for _, tc := range cases {
		err := tc.in.Validate()
		if tc.wantErr && err == nil {
			t.Errorf("%s: expected error, got nil", tc.name)
		}
		if !tc.wantErr && err != nil {
			t.Errorf("%s: expected no error, got %v", tc.name, err)
		}
	}
}
