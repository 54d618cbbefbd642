// Package history appends analysis outcomes to a JSON-Lines detection log.
// The log is advisory: a write failure must never affect a verdict.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"guard-bot/internal/engine"
	"guard-bot/internal/impact"

	"go.uber.org/zap"
)

// Record is one line of the detection history
type Record struct {
	Timestamp     string            `json:"timestamp"`
	RunID         string            `json:"run_id"`
	Action        string            `json:"action,omitempty"`
	Status        string            `json:"status"`
	Decision      string            `json:"decision,omitempty"`
	NumDetections int               `json:"num_detections"`
	ImpactScore   *impact.Score     `json:"impact_score,omitempty"`
	Detections    []RecordDetection `json:"detections,omitempty"`
}

// RecordDetection is the compact per-detection entry in a Record
type RecordDetection struct {
	Pattern     string `json:"pattern"`
	Severity    string `json:"severity"`
	Line        int    `json:"line"`
	Description string `json:"description"`
}

// NewRecord builds a history record from an analysis outcome
func NewRecord(outcome *engine.Outcome) Record {
	rec := Record{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		RunID:     outcome.RunID,
		Action:    outcome.Action,
		Status:    string(outcome.Status),
	}

	if outcome.Verdict != nil {
		rec.Decision = string(outcome.Verdict.Decision)
		rec.NumDetections = len(outcome.Verdict.Detections)
		score := outcome.Verdict.Score
		rec.ImpactScore = &score
		for _, det := range outcome.Verdict.Detections {
			rec.Detections = append(rec.Detections, RecordDetection{
				Pattern:     string(det.Type),
				Severity:    string(det.Severity),
				Line:        det.Line,
				Description: det.Description,
			})
		}
	}

	return rec
}

// Writer appends records to the history file
type Writer struct {
	path   string
	mu     sync.Mutex
	logger *zap.Logger
}

// NewWriter creates a history writer. The file and its directory are
// created on first append.
func NewWriter(path string, logger *zap.Logger) *Writer {
	return &Writer{
		path:   path,
		logger: logger,
	}
}

// Append writes one record as a JSON line
func (w *Writer) Append(rec Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if dir := filepath.Dir(w.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating history directory: %w", err)
		}
	}

	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening history file: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding history record: %w", err)
	}

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing history record: %w", err)
	}
	return nil
}

// Log appends an outcome, logging and swallowing any failure
func (w *Writer) Log(outcome *engine.Outcome) {
	if w == nil {
		return
	}
	if err := w.Append(NewRecord(outcome)); err != nil {
		w.logger.Warn("Failed to append detection history",
			zap.String("run_id", outcome.RunID),
			zap.Error(err))
	}
}
