package alert

import (
	"strings"
	"time"
)

// withinAlertWindow reports whether the clock-time "HH:MM" falls inside
// any of the comma-separated "HH:MM-HH:MM" ranges. An empty spec means
// always allowed. A malformed entry is skipped; its well-formed siblings
// still bound the window. Only when no entry parses at all does the
// window fail open: a user typo must never silently mute their alerts.
func withinAlertWindow(ranges string, clock string) bool {
	ranges = strings.TrimSpace(ranges)
	if ranges == "" {
		return true
	}

	parsed := 0
	for _, r := range strings.Split(ranges, ",") {
		from, to, ok := strings.Cut(strings.TrimSpace(r), "-")
		if !ok {
			continue
		}
		from = strings.TrimSpace(from)
		to = strings.TrimSpace(to)
		if len(from) != 5 || len(to) != 5 {
			continue
		}
		parsed++

		// Zero-padded HH:MM compares correctly as a string.
		if from <= clock && clock <= to {
			return true
		}
	}

	return parsed == 0
}

// localClock renders now as "HH:MM" in the user's fixed-offset timezone.
func localClock(now time.Time, offsetHours int) string {
	return now.UTC().Add(time.Duration(offsetHours) * time.Hour).Format("15:04")
}
