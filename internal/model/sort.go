package model

import "slices"

// SortByTimestampDesc orders readings in place, most recent first. The sort
// is stable so equal timestamps keep their input order and repeated analyses
// stay deterministic.
func SortByTimestampDesc(readings []Reading) {
	slices.SortStableFunc(readings, func(a, b Reading) int {
		switch {
		case a.Timestamp.After(b.Timestamp):
			return -1
		case b.Timestamp.After(a.Timestamp):
			return 1
		default:
			return 0
		}
	})
}

// SortByTimestampAsc orders readings in place, oldest first.
func SortByTimestampAsc(readings []Reading) {
	slices.SortStableFunc(readings, func(a, b Reading) int {
		switch {
		case a.Timestamp.Before(b.Timestamp):
			return -1
		case b.Timestamp.Before(a.Timestamp):
			return 1
		default:
			return 0
		}
	})
}
