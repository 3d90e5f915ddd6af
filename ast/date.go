package ast

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseDate parses a date as written in a ledger. Month and day may be one or
// two digits ("2024-1-5"); the year must be four.
func ParseDate(s string) (time.Time, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 || len(parts[0]) != 4 ||
		len(parts[1]) < 1 || len(parts[1]) > 2 ||
		len(parts[2]) < 1 || len(parts[2]) > 2 {
		return time.Time{}, fmt.Errorf("invalid date: %s", s)
	}

	var fields [3]int
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return time.Time{}, fmt.Errorf("invalid date: %s", s)
		}
		fields[i] = n
	}

	year, month, day := fields[0], fields[1], fields[2]
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)

	// time.Date normalises out-of-range values; reject instead.
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, fmt.Errorf("invalid date: %s", s)
	}
	return t, nil
}
