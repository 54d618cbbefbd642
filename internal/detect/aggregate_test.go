package detect

import (
	"reflect"
	"testing"

	"guard-bot/internal/pattern"
)

func det(typ pattern.Type, sev pattern.Severity, line int, conf float64, src pattern.Source) pattern.Detection {
	return pattern.Detection{
		Type:       typ,
		Severity:   sev,
		Line:       line,
		Confidence: conf,
		Source:     src,
	}
}

func TestMerge_DedupesCrossSourceSameLine(t *testing.T) {
	lexical := []pattern.Detection{
		det(pattern.TypeTestAvoidance, pattern.SeverityWarning, 5, 0.9, pattern.SourceLexical),
	}
	structural := []pattern.Detection{
		det(pattern.TypeTestAvoidance, pattern.SeverityWarning, 5, 0.95, pattern.SourceStructural),
	}

	merged := Merge(lexical, structural)
	if len(merged) != 1 {
		t.Fatalf("Expected 1 detection after dedup, got %d", len(merged))
	}
	if merged[0].Source != pattern.SourceStructural {
		t.Errorf("Expected higher-confidence structural detection to win, got %q", merged[0].Source)
	}
}

func TestMerge_DedupeTolerance(t *testing.T) {
	lexical := []pattern.Detection{
		det(pattern.TypeSilentFallback, pattern.SeverityWarning, 5, 0.9, pattern.SourceLexical),
	}

	// One line apart: duplicates.
	structural := []pattern.Detection{
		det(pattern.TypeSilentFallback, pattern.SeverityWarning, 6, 0.8, pattern.SourceStructural),
	}
	if merged := Merge(lexical, structural); len(merged) != 1 {
		t.Fatalf("Expected dedup within 1-line tolerance, got %d detections", len(merged))
	}

	// Two lines apart: distinct findings.
	structural[0].Line = 7
	if merged := Merge(lexical, structural); len(merged) != 2 {
		t.Fatalf("Expected 2 detections beyond tolerance, got %d", len(merged))
	}
}

func TestMerge_DifferentCategoriesKept(t *testing.T) {
	lexical := []pattern.Detection{
		det(pattern.TypeSilentFallback, pattern.SeverityCritical, 5, 1.0, pattern.SourceLexical),
	}
	structural := []pattern.Detection{
		det(pattern.TypeAssumptionBypass, pattern.SeverityWarning, 5, 0.85, pattern.SourceStructural),
	}

	if merged := Merge(lexical, structural); len(merged) != 2 {
		t.Fatalf("Expected both categories kept, got %d detections", len(merged))
	}
}

func TestMerge_OrdersBySeverityThenLine(t *testing.T) {
	lexical := []pattern.Detection{
		det(pattern.TypeErrorMasking, pattern.SeverityInfo, 2, 0.8, pattern.SourceLexical),
		det(pattern.TypeSilentFallback, pattern.SeverityCritical, 20, 1.0, pattern.SourceLexical),
		det(pattern.TypeWarningSuppression, pattern.SeverityWarning, 9, 0.95, pattern.SourceLexical),
	}
	structural := []pattern.Detection{
		det(pattern.TypeDuplicateCode, pattern.SeverityWarning, 3, 0.9, pattern.SourceStructural),
	}

	merged := Merge(lexical, structural)
	if len(merged) != 4 {
		t.Fatalf("Expected 4 detections, got %d", len(merged))
	}

	wantOrder := []pattern.Type{
		pattern.TypeSilentFallback,     // CRITICAL
		pattern.TypeDuplicateCode,      // WARNING line 3
		pattern.TypeWarningSuppression, // WARNING line 9
		pattern.TypeErrorMasking,       // INFO
	}
	for i, want := range wantOrder {
		if merged[i].Type != want {
			t.Errorf("Position %d: expected %q, got %q", i, want, merged[i].Type)
		}
	}
}

func TestMerge_Idempotent(t *testing.T) {
	lexical := []pattern.Detection{
		det(pattern.TypeSilentFallback, pattern.SeverityCritical, 4, 1.0, pattern.SourceLexical),
		det(pattern.TypeTestAvoidance, pattern.SeverityWarning, 10, 0.9, pattern.SourceLexical),
	}
	structural := []pattern.Detection{
		det(pattern.TypeTestAvoidance, pattern.SeverityWarning, 10, 0.9, pattern.SourceStructural),
	}

	once := Merge(lexical, structural)
	twice := Merge(once, nil)

	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("Expected merge to be idempotent: %v vs %v", once, twice)
	}
}

func TestMerge_Empty(t *testing.T) {
	if merged := Merge(nil, nil); len(merged) != 0 {
		t.Fatalf("Expected empty merge, got %d detections", len(merged))
	}
}
