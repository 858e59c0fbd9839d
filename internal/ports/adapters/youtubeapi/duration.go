package youtubeapi

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// parseISODuration converts the ISO-8601 durations the Data API uses
// for video lengths (PT1H2M3S, P1DT2H and the like) into time.Duration.
// Fractional components never appear in video durations and are
// rejected.
func parseISODuration(s string) (time.Duration, error) {
	orig := s
	if !strings.HasPrefix(s, "P") {
		return 0, fmt.Errorf("invalid iso duration %q", orig)
	}
	s = s[1:]

	datePart := s
	timePart := ""
	if i := strings.IndexByte(s, 'T'); i >= 0 {
		datePart, timePart = s[:i], s[i+1:]
	}
	if datePart == "" && timePart == "" {
		return 0, fmt.Errorf("invalid iso duration %q", orig)
	}

	var total time.Duration
	add := func(part string, units map[byte]time.Duration) error {
		num := ""
		for i := 0; i < len(part); i++ {
			c := part[i]
			if c >= '0' && c <= '9' {
				num += string(c)
				continue
			}
			unit, ok := units[c]
			if !ok || num == "" {
				return fmt.Errorf("invalid iso duration %q", orig)
			}
			n, err := strconv.Atoi(num)
			if err != nil {
				return fmt.Errorf("invalid iso duration %q: %w", orig, err)
			}
			total += time.Duration(n) * unit
			num = ""
		}
		if num != "" {
			return fmt.Errorf("invalid iso duration %q", orig)
		}
		return nil
	}

	if err := add(datePart, map[byte]time.Duration{
		'D': 24 * time.Hour,
		'W': 7 * 24 * time.Hour,
	}); err != nil {
		return 0, err
	}
	if err := add(timePart, map[byte]time.Duration{
		'H': time.Hour,
		'M': time.Minute,
		'S': time.Second,
	}); err != nil {
		return 0, err
	}
	return total, nil
}
