package directory

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"orgchart/internal/platform/graph"
	"orgchart/internal/platform/models"
)

// Classify turns raw provider records into Employees and ExcludedRecords.
// Every exclusion reason that applies is recorded, not just the first match.
// The function is pure given its inputs; parse failures degrade per field.
func Classify(users []graph.User, skuMap map[string]string, rules Rules, now time.Time) ([]*models.Employee, []models.ExcludedRecord) {
	var employees []*models.Employee
	var excluded []models.ExcludedRecord

	for _, user := range users {
		userType := strings.ToLower(user.UserType)
		businessPhone := firstNonEmpty(user.BusinessPhones)
		skuIDs, labels := ResolveLicenses(user.AssignedLicenses, skuMap)

		reasons := classifyReasons(user, userType, rules)

		if len(reasons) > 0 {
			excluded = append(excluded, models.ExcludedRecord{
				ID:                user.ID,
				Name:              orDefault(user.DisplayName, "Unknown"),
				Title:             orDefault(user.JobTitle, "No Title"),
				Department:        orDefault(user.Department, "No Department"),
				Email:             firstOf(user.Mail, user.UserPrincipalName),
				UserPrincipalName: user.UserPrincipalName,
				Phone:             user.MobilePhone,
				BusinessPhone:     businessPhone,
				Location:          user.OfficeLocation,
				City:              user.City,
				State:             user.State,
				Country:           user.Country,
				UsageLocation:     user.UsageLocation,
				AccountEnabled:    user.Enabled(),
				UserType:          userType,
				FilterReasons:     reasons,
				LicenseCount:      len(skuIDs),
				LicenseSkus:       labels,
				LicenseSkuIDs:     skuIDs,
			})
			continue
		}

		if user.DisplayName == "" {
			log.Debug().Str("id", user.ID).Msg("skipping directory record without a display name")
			continue
		}

		var hireDate *time.Time
		if user.EmployeeHireDate != "" {
			if parsed, ok := ParseProviderTime(user.EmployeeHireDate); ok {
				hireDate = &parsed
			} else {
				log.Warn().Str("user", user.DisplayName).Str("value", user.EmployeeHireDate).
					Msg("unparsable hire date; treating as absent")
			}
		}

		var managerID string
		if user.Manager != nil {
			managerID = user.Manager.ID
		}

		employees = append(employees, &models.Employee{
			ID:                user.ID,
			Name:              user.DisplayName,
			Title:             orDefault(user.JobTitle, "No Title"),
			Department:        orDefault(user.Department, "No Department"),
			Email:             firstOf(user.Mail, user.UserPrincipalName),
			UserPrincipalName: user.UserPrincipalName,
			Phone:             user.MobilePhone,
			BusinessPhone:     businessPhone,
			Location:          user.OfficeLocation,
			City:              user.City,
			State:             user.State,
			Country:           user.Country,
			FullAddress:       buildFullAddress(user),
			ManagerID:         managerID,
			HireDate:          hireDate,
			IsNewEmployee:     IsNewEmployee(hireDate, rules.NewEmployeeMonths, now),
			AccountEnabled:    user.Enabled(),
			UserType:          userType,
			UsageLocation:     user.UsageLocation,
			LicenseCount:      len(skuIDs),
			LicenseSkus:       labels,
			LicenseSkuIDs:     skuIDs,
		})
	}

	return employees, excluded
}

func classifyReasons(user graph.User, userType string, rules Rules) []string {
	var reasons []string

	if rules.HideDisabledUsers && !user.Enabled() {
		reasons = append(reasons, models.FilterDisabled)
	}
	if rules.HideGuestUsers && userType == "guest" {
		reasons = append(reasons, models.FilterGuest)
	}
	if rules.HideNoTitle && strings.TrimSpace(user.JobTitle) == "" {
		reasons = append(reasons, models.FilterNoTitle)
	}
	if len(rules.IgnoredTitles) > 0 {
		if _, ok := rules.IgnoredTitles[NormalizeFilterValue(user.JobTitle)]; ok {
			reasons = append(reasons, models.FilterIgnoredTitle)
		}
	}
	if DepartmentIsIgnored(user.Department, rules.IgnoredDepartments) {
		reasons = append(reasons, models.FilterIgnoredDepartment)
	}
	if EmployeeIsIgnored(user.DisplayName, user.Mail, user.UserPrincipalName, rules.IgnoredEmployees) {
		reasons = append(reasons, models.FilterIgnoredEmployee)
	}

	return reasons
}

// NormalizeDisabled converts raw disabled-account records into ledger-ready
// report rows. DisabledDate carries the provider's explicit leave timestamp
// when present; the lifecycle merge fills in first-seen values afterwards.
func NormalizeDisabled(users []graph.User, skuMap map[string]string, now time.Time) []models.DisabledUserRecord {
	records := make([]models.DisabledUserRecord, 0, len(users))

	for _, user := range users {
		skuIDs, labels := ResolveLicenses(user.AssignedLicenses, skuMap)

		var disabledAt *time.Time
		if parsed, ok := ParseProviderTime(user.EmployeeLeaveDateTime); ok {
			disabledAt = &parsed
		}
		var hireDate *time.Time
		if parsed, ok := ParseProviderTime(user.EmployeeHireDate); ok {
			hireDate = &parsed
		}

		record := models.DisabledUserRecord{
			ID:                user.ID,
			Name:              orDefault(user.DisplayName, "Unknown"),
			Title:             orDefault(user.JobTitle, "No Title"),
			Department:        orDefault(user.Department, "No Department"),
			Email:             firstOf(user.Mail, user.UserPrincipalName),
			UserPrincipalName: user.UserPrincipalName,
			Phone:             user.MobilePhone,
			BusinessPhone:     firstNonEmpty(user.BusinessPhones),
			Location:          user.OfficeLocation,
			City:              user.City,
			State:             user.State,
			Country:           user.Country,
			UsageLocation:     user.UsageLocation,
			AccountEnabled:    user.Enabled(),
			UserType:          strings.ToLower(user.UserType),
			LicenseCount:      len(skuIDs),
			LicenseSkus:       labels,
			LicenseSkuIDs:     skuIDs,
			HireDate:          hireDate,
			DisabledDate:      disabledAt,
		}
		if disabledAt != nil {
			record.DisabledDays = DaysSince(*disabledAt, now)
		}
		records = append(records, record)
	}

	return records
}

// NormalizeSignIns converts raw sign-in activity records into report rows.
// A record with no observed sign-in dates is flagged neverSignedIn rather
// than carrying a numeric sentinel.
func NormalizeSignIns(users []graph.User, skuMap map[string]string, now time.Time) []models.SignInRecord {
	records := make([]models.SignInRecord, 0, len(users))

	for _, user := range users {
		skuIDs, labels := ResolveLicenses(user.AssignedLicenses, skuMap)

		var combined, interactive, nonInteractive *time.Time
		if user.SignInActivity != nil {
			combined = parseOptional(user.SignInActivity.LastSignInDateTime)
			interactive = parseOptional(user.SignInActivity.LastInteractiveSignInDateTime)
			nonInteractive = parseOptional(user.SignInActivity.LastNonInteractiveSignInDateTime)
		}

		mostRecent := latestOf(combined, interactive, nonInteractive)

		record := models.SignInRecord{
			ID:             user.ID,
			Name:           orDefault(user.DisplayName, "Unknown"),
			Title:          orDefault(user.JobTitle, "No Title"),
			Department:     orDefault(user.Department, "No Department"),
			Email:          firstOf(user.Mail, user.UserPrincipalName),
			AccountEnabled: user.Enabled(),
			UserType:       strings.ToLower(user.UserType),
			LicenseCount:   len(skuIDs),
			LicenseSkus:    labels,
			LicenseSkuIDs:  skuIDs,
			NeverSignedIn:  mostRecent == nil,
		}
		if mostRecent != nil {
			record.LastActivityDate = mostRecent
			days := DaysSince(*mostRecent, now)
			record.DaysSinceLastActivity = &days
		}
		if interactive != nil {
			record.LastInteractiveSignIn = interactive
			days := DaysSince(*interactive, now)
			record.DaysSinceInteractiveSignIn = &days
		}
		records = append(records, record)
	}

	return records
}

func buildFullAddress(user graph.User) string {
	var components []string
	for _, part := range []string{user.StreetAddress, user.City, user.State, user.PostalCode, user.Country} {
		if part != "" {
			components = append(components, part)
		}
	}
	return strings.Join(components, ", ")
}

func firstNonEmpty(values []string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}

func firstOf(values ...string) string {
	return firstNonEmpty(values)
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func parseOptional(value string) *time.Time {
	if parsed, ok := ParseProviderTime(value); ok {
		return &parsed
	}
	return nil
}

func latestOf(candidates ...*time.Time) *time.Time {
	var latest *time.Time
	for _, candidate := range candidates {
		if candidate == nil {
			continue
		}
		if latest == nil || candidate.After(*latest) {
			latest = candidate
		}
	}
	return latest
}
