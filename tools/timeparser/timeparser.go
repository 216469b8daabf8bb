package timeparser

import (
	"fmt"
	"time"
)

// ParseMillTimestamp parses a mill historian timestamp. Exports use
// MM/DD/YYYY HH:mm; older extracts occasionally carry seconds or RFC3339.
func ParseMillTimestamp(dateStr string) (time.Time, error) {
	formats := []string{
		"01/02/2006 15:04",    // MM/DD/YYYY HH:mm
		"01/02/2006 15:04:05", // MM/DD/YYYY HH:mm:ss
		time.RFC3339,
	}

	var lastErr error
	for _, format := range formats {
		t, err := time.Parse(format, dateStr)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}

	return time.Time{}, fmt.Errorf("failed to parse timestamp '%s': %w", dateStr, lastErr)
}
