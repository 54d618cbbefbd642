// Package hook implements the pre-tool-use wrapper: it reads a tool-call
// payload from stdin, decides whether the payload carries code worth
// analyzing, runs the engine, and maps the verdict to an exit code.
//
// The wrapper fails open: any failure inside the wrapper or the engine
// allows the tool use. Genuine CRITICAL detections fail closed.
package hook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"guard-bot/internal/engine"
	"guard-bot/internal/history"
	"guard-bot/internal/report"

	"go.uber.org/zap"
)

// Exit codes understood by the hooks system
const (
	ExitAllow = 0
	ExitBlock = 2
)

// Payload is the tool-call description read from stdin
type Payload struct {
	ToolName  string    `json:"tool_name"`
	ToolInput ToolInput `json:"tool_input"`
}

// ToolInput holds the fields code may arrive in, depending on the tool
type ToolInput struct {
	Content   string `json:"content"`
	NewString string `json:"new_string"`
	Command   string `json:"command"`
	FilePath  string `json:"file_path"`
}

// ExtractCode returns the code content of the payload, trying each field
// the known tools use
func ExtractCode(p Payload) string {
	switch {
	case p.ToolInput.Content != "":
		return p.ToolInput.Content
	case p.ToolInput.NewString != "":
		return p.ToolInput.NewString
	case p.ToolInput.Command != "":
		return p.ToolInput.Command
	}
	return ""
}

var codeKeywords = []string{"python", "def ", "class ", "import "}

// ShouldAnalyze reports whether this tool use carries analyzable code.
// Write and Edit always do; Bash only when the command looks like code.
func ShouldAnalyze(p Payload) bool {
	switch p.ToolName {
	case "Write", "Edit":
		return true
	case "Bash":
		for _, kw := range codeKeywords {
			if strings.Contains(p.ToolInput.Command, kw) {
				return true
			}
		}
	}
	return false
}

// Runner wires the engine and history log into the hook entry point
type Runner struct {
	engine   *engine.Engine
	history  *history.Writer
	minBytes int
	logger   *zap.Logger
}

// NewRunner creates a hook runner. history may be nil to disable logging.
func NewRunner(eng *engine.Engine, hist *history.Writer, minBytes int, logger *zap.Logger) *Runner {
	return &Runner{
		engine:   eng,
		history:  hist,
		minBytes: minBytes,
		logger:   logger,
	}
}

// Run processes one hook invocation: payload from stdin, report to stderr,
// verdict as exit code. It never returns an error; everything unexpected
// resolves to ExitAllow.
func (r *Runner) Run(ctx context.Context, stdin io.Reader, stderr io.Writer) int {
	var payload Payload
	if err := json.NewDecoder(stdin).Decode(&payload); err != nil {
		r.logger.Warn("Failed to decode hook payload, allowing", zap.Error(err))
		return ExitAllow
	}

	if !ShouldAnalyze(payload) {
		return ExitAllow
	}

	code := ExtractCode(payload)
	if len(code) < r.minBytes {
		return ExitAllow
	}

	outcome := r.engine.Analyze(ctx, engine.Request{
		Code:     code,
		Action:   payload.ToolName,
		FilePath: payload.ToolInput.FilePath,
	})

	r.history.Log(outcome)

	switch outcome.Status {
	case engine.StatusSkipped, engine.StatusUnavailable:
		// Fail open: an engine that cannot analyze must never block work.
		fmt.Fprintln(stderr, report.Brief(outcome))
		return ExitAllow
	}

	if outcome.Blocked() {
		fmt.Fprintln(stderr, "CRITICAL ALARM-SILENCING DETECTED")
		fmt.Fprintln(stderr)
		fmt.Fprint(stderr, report.Render(outcome))
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "These issues will have crushing impact in production. Please fix before proceeding.")
		return ExitBlock
	}

	if len(outcome.Verdict.Detections) > 0 {
		fmt.Fprintln(stderr, report.Brief(outcome))
	}
	return ExitAllow
}
