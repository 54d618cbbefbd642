package hook

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap"

	"guard-bot/internal/config"
	"guard-bot/internal/engine"
)

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	cfg := config.DefaultConfig()
	eng, err := engine.New(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("engine.New failed: %v", err)
	}
	return NewRunner(eng, nil, cfg.Engine.MinBytes, zap.NewNop())
}

func payloadJSON(t *testing.T, p Payload) string {
	t.Helper()
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Failed to marshal payload: %v", err)
	}
	return string(data)
}

func TestRun_MalformedPayloadFailsOpen(t *testing.T) {
	runner := newTestRunner(t)
	var stderr bytes.Buffer

	code := runner.Run(context.Background(), strings.NewReader("not json"), &stderr)
	if code != ExitAllow {
		t.Fatalf("Expected ExitAllow on malformed payload, got %d", code)
	}
}

func TestRun_NonCodeToolAllows(t *testing.T) {
	runner := newTestRunner(t)
	input := payloadJSON(t, Payload{
		ToolName:  "Read",
		ToolInput: ToolInput{FilePath: "main.py"},
	})

	var stderr bytes.Buffer
	if code := runner.Run(context.Background(), strings.NewReader(input), &stderr); code != ExitAllow {
		t.Fatalf("Expected ExitAllow for non-code tool, got %d", code)
	}
}

func TestRun_TrivialContentAllows(t *testing.T) {
	runner := newTestRunner(t)
	input := payloadJSON(t, Payload{
		ToolName:  "Write",
		ToolInput: ToolInput{Content: "x = 1"},
	})

	var stderr bytes.Buffer
	if code := runner.Run(context.Background(), strings.NewReader(input), &stderr); code != ExitAllow {
		t.Fatalf("Expected ExitAllow for trivial content, got %d", code)
	}
}

func TestRun_CriticalDetectionBlocks(t *testing.T) {
	runner := newTestRunner(t)
	content := `def load(path):
    try:
        return open(path).read()
    except:
        pass
`
	input := payloadJSON(t, Payload{
		ToolName:  "Write",
		ToolInput: ToolInput{Content: content, FilePath: "loader.py"},
	})

	var stderr bytes.Buffer
	code := runner.Run(context.Background(), strings.NewReader(input), &stderr)
	if code != ExitBlock {
		t.Fatalf("Expected ExitBlock, got %d", code)
	}
	if !strings.Contains(stderr.String(), "CRITICAL ALARM-SILENCING DETECTED") {
		t.Errorf("Expected block banner on stderr, got:\n%s", stderr.String())
	}
	if !strings.Contains(stderr.String(), "Decision: BLOCK") {
		t.Errorf("Expected full report on stderr, got:\n%s", stderr.String())
	}
}

func TestRun_WarningStillAllows(t *testing.T) {
	runner := newTestRunner(t)
	content := `import warnings
warnings.filterwarnings("ignore")
`
	input := payloadJSON(t, Payload{
		ToolName:  "Write",
		ToolInput: ToolInput{Content: content, FilePath: "setup.py"},
	})

	var stderr bytes.Buffer
	code := runner.Run(context.Background(), strings.NewReader(input), &stderr)
	if code != ExitAllow {
		t.Fatalf("Expected ExitAllow for non-critical findings, got %d", code)
	}
	if stderr.Len() == 0 {
		t.Error("Expected a brief summary on stderr when detections exist")
	}
}

func TestExtractCode_FieldPriority(t *testing.T) {
	p := Payload{ToolInput: ToolInput{
		Content:   "from content",
		NewString: "from edit",
		Command:   "from bash",
	}}
	if got := ExtractCode(p); got != "from content" {
		t.Errorf("Expected content field first, got %q", got)
	}

	p.ToolInput.Content = ""
	if got := ExtractCode(p); got != "from edit" {
		t.Errorf("Expected new_string second, got %q", got)
	}

	p.ToolInput.NewString = ""
	if got := ExtractCode(p); got != "from bash" {
		t.Errorf("Expected command last, got %q", got)
	}
}

func TestShouldAnalyze(t *testing.T) {
	cases := []struct {
		name string
		in   Payload
		want bool
	}{
		{"write", Payload{ToolName: "Write"}, true},
		{"edit", Payload{ToolName: "Edit"}, true},
		{"read", Payload{ToolName: "Read"}, false},
		{"bash plain", Payload{ToolName: "Bash", ToolInput: ToolInput{Command: "ls -la"}}, false},
		{"bash python", Payload{ToolName: "Bash", ToolInput: ToolInput{Command: "python run.py"}}, true},
		{"bash inline def", Payload{ToolName: "Bash", ToolInput: ToolInput{Command: "echo 'def f(): pass' > f.py"}}, true},
	}

	for _, tc := range cases {
		if got := ShouldAnalyze(tc.in); got != tc.want {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}
