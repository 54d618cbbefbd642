// Package engine runs the full detection-and-scoring pipeline for one code
// change: lexical scan, structural check, aggregation, impact assessment,
// and the verdict gate.
package engine

import (
	"context"
	"fmt"
	"strings"

	"guard-bot/internal/config"
	"guard-bot/internal/detect"
	"guard-bot/internal/impact"
	"guard-bot/internal/pattern"
	"guard-bot/internal/verdict"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Status classifies the outcome of one analysis call
type Status string

const (
	// StatusAnalyzed means the pipeline ran and produced a verdict
	StatusAnalyzed Status = "analyzed"
	// StatusSkipped means the input was not analyzed (oversize); this is
	// not an error and is distinct from a zero score
	StatusSkipped Status = "skipped"
	// StatusUnavailable means an internal failure prevented analysis;
	// the caller's policy is to fail open
	StatusUnavailable Status = "unavailable"
)

// Request is one analysis call input
type Request struct {
	// Code is the proposed change text
	Code string `json:"code"`
	// Action identifies the surrounding tool action; forwarded, not used
	Action string `json:"action"`
	// FilePath, when known, selects the language for token-based checks
	FilePath string `json:"file_path,omitempty"`
}

// Outcome is the result of one analysis call
type Outcome struct {
	RunID   string           `json:"run_id"`
	Action  string           `json:"action,omitempty"`
	Status  Status           `json:"status"`
	Reason  string           `json:"reason,omitempty"`
	Verdict *verdict.Verdict `json:"verdict,omitempty"`
}

// Blocked reports whether the outcome demands blocking the change
func (o *Outcome) Blocked() bool {
	return o.Status == StatusAnalyzed && o.Verdict != nil && o.Verdict.Decision == verdict.DecisionBlock
}

// Engine is the analysis pipeline. All shared state (compiled patterns,
// weight table, thresholds) is immutable after construction, so one Engine
// may serve concurrent calls.
type Engine struct {
	lexical    *detect.LexicalScanner
	structural *detect.StructuralChecker
	assessor   *impact.Assessor
	thresholds verdict.Thresholds
	enabled    map[pattern.Type]bool
	overrides  map[pattern.Type]pattern.Severity
	maxLines   int
	logger     *zap.Logger
}

// New builds an engine from validated configuration
func New(cfg *config.Config, logger *zap.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	assessor, err := impact.NewAssessor(cfg.WeightTable())
	if err != nil {
		return nil, fmt.Errorf("building assessor: %w", err)
	}

	return &Engine{
		lexical:    detect.NewLexicalScanner(logger),
		structural: detect.NewStructuralChecker(logger),
		assessor:   assessor,
		thresholds: cfg.Thresholds,
		enabled:    cfg.EnabledCategories(),
		overrides:  cfg.SeverityOverrides(),
		maxLines:   cfg.Engine.MaxLines,
		logger:     logger,
	}, nil
}

// Lexical exposes the lexical scanner for pattern listing
func (e *Engine) Lexical() *detect.LexicalScanner {
	return e.lexical
}

// Analyze runs the pipeline on one code text. It never returns an error:
// degradations produce partial-but-valid results, oversize input produces a
// skipped outcome, and any unexpected panic inside scanning or scoring is
// converted to an unavailable outcome at this boundary.
func (e *Engine) Analyze(ctx context.Context, req Request) (outcome *Outcome) {
	runID := uuid.NewString()

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Analysis failed unexpectedly",
				zap.String("run_id", runID),
				zap.Any("panic", r))
			outcome = &Outcome{
				RunID:  runID,
				Action: req.Action,
				Status: StatusUnavailable,
				Reason: fmt.Sprintf("internal failure: %v", r),
			}
		}
	}()

	lineCount := strings.Count(req.Code, "\n") + 1
	if lineCount > e.maxLines {
		e.logger.Info("Skipping oversized input",
			zap.String("run_id", runID),
			zap.Int("lines", lineCount),
			zap.Int("max_lines", e.maxLines))
		return &Outcome{
			RunID:  runID,
			Action: req.Action,
			Status: StatusSkipped,
			Reason: fmt.Sprintf("input has %d lines, ceiling is %d", lineCount, e.maxLines),
		}
	}

	lexical := e.lexical.Scan(req.Code, e.enabled)

	structural := e.structural.Check(req.Code, req.FilePath, e.enabled)
	if !structural.Available {
		e.logger.Debug("Structural checks unavailable, lexical results only",
			zap.String("run_id", runID))
	}

	detections := detect.Merge(lexical, structural.Detections)
	detections = e.applyOverrides(detections)

	score := e.assessor.Assess(detections)
	v := verdict.Decide(score, detections, e.thresholds)

	e.logger.Info("Analysis complete",
		zap.String("run_id", runID),
		zap.String("action", req.Action),
		zap.Int("detections", len(detections)),
		zap.Int("total_score", score.TotalScore),
		zap.String("risk_level", string(score.RiskLevel)),
		zap.String("decision", string(v.Decision)))

	return &Outcome{
		RunID:   runID,
		Action:  req.Action,
		Status:  StatusAnalyzed,
		Verdict: &v,
	}
}

// applyOverrides rewrites detection severities per configuration, then
// restores aggregator order since severity drives the sort.
func (e *Engine) applyOverrides(detections []pattern.Detection) []pattern.Detection {
	if len(e.overrides) == 0 {
		return detections
	}
	for i := range detections {
		if sev, ok := e.overrides[detections[i].Type]; ok {
			detections[i].Severity = sev
		}
	}
	detect.SortDetections(detections)
	return detections
}
