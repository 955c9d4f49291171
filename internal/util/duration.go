package util

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var durationPattern = regexp.MustCompile(`^(\d+)\s*(years?|months?|weeks?|days?)$`)

// EndDateFromDuration derives a project end date from its start date and a
// human duration like "6 months" or "2 weeks". Returns false when the
// duration does not parse.
func EndDateFromDuration(start time.Time, duration string) (time.Time, bool) {
	m := durationPattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(duration)))
	if m == nil {
		return time.Time{}, false
	}

	amount, err := strconv.Atoi(m[1])
	if err != nil {
		return time.Time{}, false
	}

	switch strings.TrimSuffix(m[2], "s") {
	case "year":
		return start.AddDate(amount, 0, 0), true
	case "month":
		return start.AddDate(0, amount, 0), true
	case "week":
		return start.AddDate(0, 0, amount*7), true
	case "day":
		return start.AddDate(0, 0, amount), true
	}
	return time.Time{}, false
}
