package directory

import (
	"strings"
	"time"
)

// Layouts accepted for provider timestamps. The directory emits RFC3339
// date-times for most fields but bare dates for employeeHireDate.
var providerTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseProviderTime parses a provider timestamp, returning false for empty
// or unparsable values. Results are normalized to UTC.
func ParseProviderTime(value string) (time.Time, bool) {
	text := strings.TrimSpace(value)
	if text == "" {
		return time.Time{}, false
	}
	for _, layout := range providerTimeLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// DaysSince returns the whole days elapsed between then and now, floored at
// zero so clock skew never yields a negative age.
func DaysSince(then, now time.Time) int {
	days := int(now.Sub(then).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// IsNewEmployee reports whether a hire date falls within the configured
// month window. Months are approximated as 30 days.
func IsNewEmployee(hireDate *time.Time, months int, now time.Time) bool {
	if hireDate == nil || months <= 0 {
		return false
	}
	cutoff := now.AddDate(0, 0, -months*30)
	return hireDate.After(cutoff)
}
