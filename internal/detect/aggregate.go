package detect

import (
	"sort"

	"guard-bot/internal/pattern"
)

// dedupeLineTolerance is how close (in lines) a lexical and a structural
// detection of the same category must be to count as the same finding
const dedupeLineTolerance = 1

// Merge combines lexical and structural detections into the final ordered
// collection. When a lexical and a structural detection report the same
// category within one line of each other, only the higher-confidence one
// survives; everything else is retained. The result is sorted by severity
// descending, then line ascending. Merging is idempotent.
func Merge(lexical, structural []pattern.Detection) []pattern.Detection {
	combined := make([]pattern.Detection, 0, len(lexical)+len(structural))
	combined = append(combined, lexical...)
	combined = append(combined, structural...)

	// Consider higher-confidence detections first so the winner of each
	// overlapping pair is kept regardless of input order.
	byConfidence := make([]pattern.Detection, len(combined))
	copy(byConfidence, combined)
	sort.SliceStable(byConfidence, func(i, j int) bool {
		return byConfidence[i].Confidence > byConfidence[j].Confidence
	})

	kept := make([]pattern.Detection, 0, len(byConfidence))
	for _, det := range byConfidence {
		if overlapsKept(kept, det) {
			continue
		}
		kept = append(kept, det)
	}

	SortDetections(kept)
	return kept
}

func overlapsKept(kept []pattern.Detection, det pattern.Detection) bool {
	for _, k := range kept {
		if k.Type == det.Type && k.Source != det.Source && absInt(k.Line-det.Line) <= dedupeLineTolerance {
			return true
		}
	}
	return false
}

// SortDetections orders detections by severity descending, then line
// ascending. Stable, so equal detections keep their relative order.
func SortDetections(detections []pattern.Detection) {
	sort.SliceStable(detections, func(i, j int) bool {
		ri, rj := detections[i].Severity.Rank(), detections[j].Severity.Rank()
		if ri != rj {
			return ri > rj
		}
		return detections[i].Line < detections[j].Line
	})
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
