package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatDuration formats d the way YouTube displays lengths: M:SS or H:MM:SS
func FormatDuration(d time.Duration) string {
	total := int(d.Round(time.Second).Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

// DurationToSeconds parses a colon separated duration such as "3:45" or
// "1:02:03". Unparseable input yields 0.
func DurationToSeconds(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	seconds := 0
	for _, part := range strings.Split(s, ":") {
		n, err := strconv.Atoi(part)
		if err != nil {
			return 0
		}
		seconds = seconds*60 + n
	}
	return seconds
}
