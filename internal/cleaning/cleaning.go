package cleaning

import (
	"strconv"
	"strings"

	"github.com/septivank/mill-analytics-worker/internal/model"
)

// Clean applies the contract-boundary rules the analysis engine assumes:
// readings without a mill throughput value are invalid and dropped, and
// duplicates are collapsed. Two readings with identical numeric field tuples
// are duplicates regardless of timestamp; the one with the earliest
// timestamp survives. The result is ordered by timestamp ascending.
func Clean(readings []model.Reading) []model.Reading {
	out := make([]model.Reading, 0, len(readings))
	seen := make(map[string]int, len(readings))

	for i := range readings {
		r := readings[i]
		if r.MillTPH == nil {
			continue
		}
		k := fieldKey(&r)
		if j, ok := seen[k]; ok {
			if r.Timestamp.Before(out[j].Timestamp) {
				out[j] = r
			}
			continue
		}
		seen[k] = len(out)
		out = append(out, r)
	}

	model.SortByTimestampAsc(out)
	return out
}

// fieldKey renders every numeric field bit-exactly, so duplicate detection
// is float identity rather than epsilon comparison.
func fieldKey(r *model.Reading) string {
	var b strings.Builder
	for _, f := range model.NumericFields {
		if v, ok := f.Value(r); ok {
			b.WriteString(strconv.FormatFloat(v, 'b', -1, 64))
		} else {
			b.WriteByte('_')
		}
		b.WriteByte('|')
	}
	return b.String()
}
