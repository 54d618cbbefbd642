// Package verdict turns an impact score and its detections into the final
// allow/warn/block decision.
package verdict

import (
	"fmt"
	"sort"

	"guard-bot/internal/impact"
	"guard-bot/internal/pattern"
)

// Decision is the gate outcome for one analyzed change
type Decision string

const (
	DecisionAllow Decision = "ALLOW"
	DecisionWarn  Decision = "WARN"
	DecisionBlock Decision = "BLOCK"
)

// Thresholds are the externally supplied gate limits. Owned by
// configuration, consumed here.
type Thresholds struct {
	CriticalCount int `yaml:"critical_count" json:"critical_count"`
	BlockScore    int `yaml:"block_score" json:"block_score"`
	WarnScore     int `yaml:"warn_score" json:"warn_score"`
}

// Validate checks threshold sanity at startup
func (t Thresholds) Validate() error {
	if t.CriticalCount < 1 {
		return fmt.Errorf("critical_count threshold must be >= 1, got %d", t.CriticalCount)
	}
	if t.BlockScore < 0 || t.BlockScore > 100 {
		return fmt.Errorf("block_score threshold out of range [0,100]: %d", t.BlockScore)
	}
	if t.WarnScore < 0 || t.WarnScore > t.BlockScore {
		return fmt.Errorf("warn_score threshold must be in [0, block_score]: %d", t.WarnScore)
	}
	return nil
}

const maxRecommendations = 3

// Verdict is the final decision plus its supporting detail
type Verdict struct {
	Decision           Decision            `json:"decision"`
	Score              impact.Score        `json:"score"`
	Detections         []pattern.Detection `json:"detections"`
	TopRecommendations []string            `json:"top_recommendations"`
}

// Decide is a pure decision function: the same score, detections, and
// thresholds always yield the same verdict. Detections are expected in
// aggregator order (severity descending, line ascending) and are passed
// through unchanged.
func Decide(score impact.Score, detections []pattern.Detection, thresholds Thresholds) Verdict {
	criticalCount := 0
	for _, det := range detections {
		if det.Severity == pattern.SeverityCritical {
			criticalCount++
		}
	}

	decision := DecisionAllow
	switch {
	case criticalCount >= thresholds.CriticalCount || score.TotalScore >= thresholds.BlockScore:
		decision = DecisionBlock
	case score.TotalScore >= thresholds.WarnScore:
		decision = DecisionWarn
	}

	return Verdict{
		Decision:           decision,
		Score:              score,
		Detections:         detections,
		TopRecommendations: topRecommendations(detections),
	}
}

// topRecommendations ranks recommendations by their originating detection
// (severity descending, then confidence descending), de-duplicates by text,
// and returns at most three.
func topRecommendations(detections []pattern.Detection) []string {
	ranked := make([]pattern.Detection, len(detections))
	copy(ranked, detections)
	sort.SliceStable(ranked, func(i, j int) bool {
		ri, rj := ranked[i].Severity.Rank(), ranked[j].Severity.Rank()
		if ri != rj {
			return ri > rj
		}
		return ranked[i].Confidence > ranked[j].Confidence
	})

	seen := make(map[string]bool)
	var recommendations []string
	for _, det := range ranked {
		if det.Recommendation == "" || seen[det.Recommendation] {
			continue
		}
		seen[det.Recommendation] = true
		recommendations = append(recommendations, det.Recommendation)
		if len(recommendations) == maxRecommendations {
			break
		}
	}
	return recommendations
}
