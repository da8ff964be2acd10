package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseRate parses a "<limit>/<duration>" rate string such as "100/10s" into
// a count and a window in seconds.
func ParseRate(s string) (int64, int64, error) {
	limitStr, timeStr, ok := strings.Cut(s, "/")
	if !ok {
		return 0, 0, fmt.Errorf("unexpected rate format: %s", s)
	}
	limit, err := strconv.ParseInt(limitStr, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("unexpected rate format: %s", s)
	}

	if len(timeStr) < 2 {
		return 0, 0, fmt.Errorf("unexpected time format: %s", timeStr)
	}
	unit := timeStr[len(timeStr)-1]
	value, err := strconv.ParseInt(timeStr[:len(timeStr)-1], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("unexpected time format: %s", timeStr)
	}

	var seconds int64
	switch unit {
	case 's':
		seconds = value
	case 'm':
		seconds = value * 60
	case 'h':
		seconds = value * 3600
	default:
		return 0, 0, fmt.Errorf("unexpected time unit: %s", string(unit))
	}
	return limit, seconds, nil
}
