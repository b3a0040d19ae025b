package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Absolute patterns are tried in order; relative phrases only when none match.
var datePatterns = []struct {
	regex   *regexp.Regexp
	layouts []string
}{
	{regexp.MustCompile(`\d{4}-\d{2}-\d{2}`), []string{"2006-01-02"}},
	{regexp.MustCompile(`\d{2}/\d{2}/\d{4}`), []string{"01/02/2006"}},
	{regexp.MustCompile(`\d{2}-\d{2}-\d{4}`), []string{"01-02-2006"}},
	{regexp.MustCompile(`[A-Za-z]{3,9}\s+\d{1,2},?\s+\d{4}`), []string{"January 2, 2006", "January 2 2006", "Jan 2, 2006", "Jan 2 2006"}},
	{regexp.MustCompile(`\d{1,2}\s+[A-Za-z]{3,9}\s+\d{4}`), []string{"2 January 2006", "2 Jan 2006"}},
}

var (
	daysAgoRegex  = regexp.MustCompile(`(\d+)\s*days?\s*ago`)
	weeksAgoRegex = regexp.MustCompile(`(\d+)\s*weeks?\s*ago`)
)

// ParseDate extracts a posting date from free text. Returns nil when no
// supported pattern matches.
func ParseDate(dateStr string) *time.Time {
	return parseDateAt(dateStr, time.Now())
}

func parseDateAt(dateStr string, now time.Time) *time.Time {
	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		return nil
	}

	for _, p := range datePatterns {
		match := p.regex.FindString(dateStr)
		if match == "" {
			continue
		}
		for _, layout := range p.layouts {
			if t, err := time.Parse(layout, match); err == nil {
				return dateOnly(t)
			}
		}
	}

	//relative phrases, e.g. "posted 3 days ago"
	lower := strings.ToLower(dateStr)
	switch {
	case strings.Contains(lower, "today"):
		return dateOnly(now)
	case strings.Contains(lower, "yesterday"):
		return dateOnly(now.AddDate(0, 0, -1))
	}
	if m := daysAgoRegex.FindStringSubmatch(lower); m != nil {
		days, _ := strconv.Atoi(m[1])
		return dateOnly(now.AddDate(0, 0, -days))
	}
	if m := weeksAgoRegex.FindStringSubmatch(lower); m != nil {
		weeks, _ := strconv.Atoi(m[1])
		return dateOnly(now.AddDate(0, 0, -7*weeks))
	}

	return nil
}

func dateOnly(t time.Time) *time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}
