package directory

import (
	"encoding/json"
	"regexp"
	"strings"

	"orgchart/internal/platform/settings"
)

var (
	listSplitRe  = regexp.MustCompile(`\s*[;,]+\s*`)
	edgePunctRe  = regexp.MustCompile(`^[\s\-–—|]+|[\s\-–—|]+$`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// NormalizeFilterValue lower-cases a value, trims edge punctuation and
// collapses internal whitespace so user-entered ignore lists compare reliably.
func NormalizeFilterValue(value string) string {
	if value == "" {
		return ""
	}
	cleaned := edgePunctRe.ReplaceAllString(value, "")
	cleaned = whitespaceRe.ReplaceAllString(cleaned, " ")
	return strings.ToLower(strings.TrimSpace(cleaned))
}

// ParseFilterValues accepts either a JSON array or a legacy comma/semicolon
// separated string and returns the normalized set of values.
func ParseFilterValues(raw string) map[string]struct{} {
	out := make(map[string]struct{})

	text := strings.TrimSpace(raw)
	if text == "" {
		return out
	}

	var parts []string
	if strings.HasPrefix(text, "[") {
		var decoded []string
		if err := json.Unmarshal([]byte(text), &decoded); err == nil {
			parts = decoded
		}
	}
	if parts == nil {
		parts = listSplitRe.Split(text, -1)
	}

	for _, part := range parts {
		if normalized := NormalizeFilterValue(part); normalized != "" {
			out[normalized] = struct{}{}
		}
	}
	return out
}

// Rules is the immutable classification rule set materialized once per
// refresh cycle from persisted settings.
type Rules struct {
	HideDisabledUsers  bool
	HideGuestUsers     bool
	HideNoTitle        bool
	IgnoredTitles      map[string]struct{}
	IgnoredDepartments map[string]struct{}
	IgnoredEmployees   map[string]struct{}
	NewEmployeeMonths  int
}

func NewRules(st settings.Settings) Rules {
	return Rules{
		HideDisabledUsers:  st.HideDisabledUsers,
		HideGuestUsers:     st.HideGuestUsers,
		HideNoTitle:        st.HideNoTitle,
		IgnoredTitles:      ParseFilterValues(st.IgnoredTitles),
		IgnoredDepartments: ParseFilterValues(st.IgnoredDepartments),
		IgnoredEmployees:   ParseFilterValues(st.IgnoredEmployees),
		NewEmployeeMonths:  st.NewEmployeeMonths,
	}
}

// DepartmentIsIgnored reports whether the department matches the normalized
// ignore set exactly.
func DepartmentIsIgnored(department string, ignored map[string]struct{}) bool {
	if len(ignored) == 0 {
		return false
	}
	_, ok := ignored[NormalizeFilterValue(department)]
	return ok
}

// EmployeeIsIgnored matches an employee against the ignore set by name,
// email, principal name and the composite "Name <email>" style forms that
// directory exports commonly produce.
func EmployeeIsIgnored(name, email, userPrincipalName string, ignored map[string]struct{}) bool {
	if len(ignored) == 0 {
		return false
	}

	candidates := make(map[string]struct{})
	for _, value := range []string{name, email, userPrincipalName} {
		if normalized := NormalizeFilterValue(value); normalized != "" {
			candidates[normalized] = struct{}{}
		}
	}

	for _, contact := range []string{email, userPrincipalName} {
		if contact == "" || name == "" {
			continue
		}
		combos := []string{
			name + " <" + contact + ">",
			name + " (" + contact + ")",
			name + " - " + contact,
			contact + " (" + name + ")",
			contact + " - " + name,
		}
		for _, combo := range combos {
			if normalized := NormalizeFilterValue(combo); normalized != "" {
				candidates[normalized] = struct{}{}
			}
		}
	}

	for candidate := range candidates {
		if _, ok := ignored[candidate]; ok {
			return true
		}
	}
	return false
}
