package detect

import (
	"testing"

	"go.uber.org/zap"

	"guard-bot/internal/pattern"
)

func allEnabled() map[pattern.Type]bool {
	enabled := make(map[pattern.Type]bool, len(pattern.AllTypes))
	for _, typ := range pattern.AllTypes {
		enabled[typ] = true
	}
	return enabled
}

func detectionsOfType(detections []pattern.Detection, typ pattern.Type) []pattern.Detection {
	var out []pattern.Detection
	for _, det := range detections {
		if det.Type == typ {
			out = append(out, det)
		}
	}
	return out
}

func TestScan_BareExceptPass(t *testing.T) {
	code := `def load(path):
    try:
        return open(path).read()
    except:
        pass
`
	scanner := NewLexicalScanner(zap.NewNop())
	detections := scanner.Scan(code, allEnabled())

	if len(detections) != 1 {
		t.Fatalf("Expected 1 detection, got %d", len(detections))
	}
	det := detections[0]
	if det.Type != pattern.TypeSilentFallback {
		t.Errorf("Expected silent_fallback, got %q", det.Type)
	}
	if det.Severity != pattern.SeverityCritical {
		t.Errorf("Expected CRITICAL, got %q", det.Severity)
	}
	if det.Confidence != 1.0 {
		t.Errorf("Expected confidence 1.0, got %v", det.Confidence)
	}
	if det.Line != 4 {
		t.Errorf("Expected line 4, got %d", det.Line)
	}
	if det.Source != pattern.SourceLexical {
		t.Errorf("Expected lexical source, got %q", det.Source)
	}
}

func TestScan_WarningSuppression(t *testing.T) {
	code := `import warnings
warnings.filterwarnings("ignore")
`
	scanner := NewLexicalScanner(zap.NewNop())
	detections := scanner.Scan(code, allEnabled())

	if len(detections) != 1 {
		t.Fatalf("Expected 1 detection, got %d", len(detections))
	}
	det := detections[0]
	if det.Type != pattern.TypeWarningSuppression {
		t.Errorf("Expected warning_suppression, got %q", det.Type)
	}
	if det.Severity != pattern.SeverityWarning {
		t.Errorf("Expected WARNING, got %q", det.Severity)
	}
	if det.Line != 2 {
		t.Errorf("Expected line 2, got %d", det.Line)
	}
}

func TestScan_SilentNoneReturn(t *testing.T) {
	code := `def fetch(key):
    try:
        return cache[key]
    except KeyError: return None
`
	scanner := NewLexicalScanner(zap.NewNop())
	detections := detectionsOfType(scanner.Scan(code, allEnabled()), pattern.TypeSilentFallback)

	if len(detections) != 1 {
		t.Fatalf("Expected 1 silent_fallback detection, got %d", len(detections))
	}
	if detections[0].Confidence != 0.85 {
		t.Errorf("Expected confidence 0.85, got %v", detections[0].Confidence)
	}
}

func TestScan_RejectSubstringDropsLoggingMatches(t *testing.T) {
	// Matched text contains "log", so the silent-return rule must not fire.
	code := `def fetch(key):
    try:
        return cache[key]
    except LogError: return None
`
	scanner := NewLexicalScanner(zap.NewNop())
	detections := detectionsOfType(scanner.Scan(code, allEnabled()), pattern.TypeSilentFallback)

	if len(detections) != 0 {
		t.Fatalf("Expected no silent_fallback detections, got %d", len(detections))
	}
}

func TestScan_EvalButNotLiteralEval(t *testing.T) {
	scanner := NewLexicalScanner(zap.NewNop())

	detections := scanner.Scan(`value = eval(user_input)`, allEnabled())
	if len(detections) != 1 {
		t.Fatalf("Expected 1 detection for eval(), got %d", len(detections))
	}
	if detections[0].Type != pattern.TypeSecurityShortcut {
		t.Errorf("Expected security_shortcut, got %q", detections[0].Type)
	}
	if detections[0].Severity != pattern.SeverityCritical {
		t.Errorf("Expected CRITICAL, got %q", detections[0].Severity)
	}

	detections = scanner.Scan(`value = ast.literal_eval(user_input)`, allEnabled())
	if len(detections) != 0 {
		t.Fatalf("Expected no detections for ast.literal_eval(), got %d", len(detections))
	}
}

func TestScan_HardcodedCredentials(t *testing.T) {
	scanner := NewLexicalScanner(zap.NewNop())
	detections := scanner.Scan(`api_key = "sk-1234567890"`, allEnabled())

	if len(detections) != 1 {
		t.Fatalf("Expected 1 detection, got %d", len(detections))
	}
	if detections[0].Type != pattern.TypeSecurityShortcut {
		t.Errorf("Expected security_shortcut, got %q", detections[0].Type)
	}
}

func TestScan_SQLInjectionViaFString(t *testing.T) {
	scanner := NewLexicalScanner(zap.NewNop())
	code := `query = f"SELECT name FROM users WHERE id = {user_id}"`

	detections := detectionsOfType(scanner.Scan(code, allEnabled()), pattern.TypeSecurityShortcut)
	if len(detections) != 1 {
		t.Fatalf("Expected 1 SQL injection detection, got %d", len(detections))
	}
	if detections[0].Severity != pattern.SeverityCritical {
		t.Errorf("Expected CRITICAL, got %q", detections[0].Severity)
	}
}

func TestScan_DedupesPerLineAndCategory(t *testing.T) {
	// Two matches of the same category on one line collapse to one.
	scanner := NewLexicalScanner(zap.NewNop())
	detections := scanner.Scan(`x = eval(a) or eval(b)`, allEnabled())

	if len(detections) != 1 {
		t.Fatalf("Expected 1 detection after dedup, got %d", len(detections))
	}
}

func TestScan_DisabledCategory(t *testing.T) {
	enabled := allEnabled()
	enabled[pattern.TypeSecurityShortcut] = false

	scanner := NewLexicalScanner(zap.NewNop())
	detections := scanner.Scan(`value = eval(user_input)`, enabled)

	if len(detections) != 0 {
		t.Fatalf("Expected no detections with category disabled, got %d", len(detections))
	}
}

func TestScan_TestSkipMarkers(t *testing.T) {
	code := `@pytest.mark.skip(reason="broken")
def test_payment():
    pass
`
	scanner := NewLexicalScanner(zap.NewNop())
	detections := detectionsOfType(scanner.Scan(code, allEnabled()), pattern.TypeTestAvoidance)

	if len(detections) != 1 {
		t.Fatalf("Expected 1 test_avoidance detection, got %d", len(detections))
	}
	if detections[0].Line != 1 {
		t.Errorf("Expected line 1, got %d", detections[0].Line)
	}
}

func TestScan_CleanCode(t *testing.T) {
	code := `def add(a, b):
    if a is None or b is None:
        raise ValueError("operands required")
    return a + b
`
	scanner := NewLexicalScanner(zap.NewNop())
	detections := scanner.Scan(code, allEnabled())

	if len(detections) != 0 {
		t.Fatalf("Expected no detections on clean code, got %d: %v", len(detections), detections)
	}
}
