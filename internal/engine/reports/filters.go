package reports

import (
	"time"

	"orgchart/internal/platform/models"
)

// Stateless filter pipeline over already-materialized report collections.
// Every predicate is AND-combined; leaving a toggle at its default (or a
// threshold nil) means no restriction. Nothing here reads or writes the
// snapshot cache.

// DisabledFilters narrows a disabled-users report.
type DisabledFilters struct {
	LicensedOnly   bool
	RecentDays     int // 0 disables the recency window
	IncludeGuests  bool
	IncludeMembers bool
}

func DefaultDisabledFilters() DisabledFilters {
	return DisabledFilters{IncludeGuests: false, IncludeMembers: true}
}

func ApplyDisabledFilters(records []models.DisabledUserRecord, f DisabledFilters, now time.Time) []models.DisabledUserRecord {
	var cutoff time.Time
	if f.RecentDays > 0 {
		cutoff = now.AddDate(0, 0, -f.RecentDays)
	}

	var filtered []models.DisabledUserRecord
	for _, record := range records {
		if record.UserType == "guest" && !f.IncludeGuests {
			continue
		}
		if record.UserType == "member" && !f.IncludeMembers {
			continue
		}
		if f.LicensedOnly && record.LicenseCount == 0 {
			continue
		}
		if f.RecentDays > 0 {
			observed := record.FirstSeenDisabledAt
			if observed == nil {
				observed = record.DisabledDate
			}
			if observed == nil || observed.Before(cutoff) {
				continue
			}
		}
		filtered = append(filtered, record)
	}
	return filtered
}

// SignInFilters narrows a sign-in activity report. InactiveDays and
// InactiveDaysMax are lower/upper bounds on daysSinceLastActivity; nil means
// unbounded. NeverOnly keeps only accounts with no observed sign-in, a
// boolean predicate rather than a numeric sentinel.
type SignInFilters struct {
	IncludeEnabled       bool
	IncludeDisabled      bool
	IncludeLicensed      bool
	IncludeUnlicensed    bool
	IncludeMembers       bool
	IncludeGuests        bool
	IncludeNeverSignedIn bool
	NeverOnly            bool
	InactiveDays         *int
	InactiveDaysMax      *int
}

func DefaultSignInFilters() SignInFilters {
	return SignInFilters{
		IncludeEnabled:       true,
		IncludeDisabled:      true,
		IncludeLicensed:      true,
		IncludeUnlicensed:    true,
		IncludeMembers:       true,
		IncludeGuests:        true,
		IncludeNeverSignedIn: true,
	}
}

func ApplySignInFilters(records []models.SignInRecord, f SignInFilters) []models.SignInRecord {
	var filtered []models.SignInRecord
	for _, record := range records {
		if record.AccountEnabled && !f.IncludeEnabled {
			continue
		}
		if !record.AccountEnabled && !f.IncludeDisabled {
			continue
		}
		if record.LicenseCount > 0 && !f.IncludeLicensed {
			continue
		}
		if record.LicenseCount == 0 && !f.IncludeUnlicensed {
			continue
		}
		if record.UserType == "member" && !f.IncludeMembers {
			continue
		}
		if record.UserType == "guest" && !f.IncludeGuests {
			continue
		}
		if record.NeverSignedIn && !f.IncludeNeverSignedIn {
			continue
		}
		if f.NeverOnly && !record.NeverSignedIn {
			continue
		}
		if f.InactiveDays != nil {
			if record.DaysSinceLastActivity == nil || *record.DaysSinceLastActivity < *f.InactiveDays {
				continue
			}
		}
		if f.InactiveDaysMax != nil {
			if record.DaysSinceLastActivity == nil || *record.DaysSinceLastActivity > *f.InactiveDaysMax {
				continue
			}
		}
		filtered = append(filtered, record)
	}
	return filtered
}

// ExcludedFilters narrows an excluded-users report.
type ExcludedFilters struct {
	IncludeEnabled    bool
	IncludeDisabled   bool
	IncludeLicensed   bool
	IncludeUnlicensed bool
	IncludeMembers    bool
	IncludeGuests     bool
}

func DefaultExcludedFilters() ExcludedFilters {
	return ExcludedFilters{
		IncludeEnabled:    true,
		IncludeDisabled:   true,
		IncludeLicensed:   true,
		IncludeUnlicensed: true,
		IncludeMembers:    true,
		IncludeGuests:     true,
	}
}

func ApplyExcludedFilters(records []models.ExcludedRecord, f ExcludedFilters) []models.ExcludedRecord {
	var filtered []models.ExcludedRecord
	for _, record := range records {
		if record.AccountEnabled && !f.IncludeEnabled {
			continue
		}
		if !record.AccountEnabled && !f.IncludeDisabled {
			continue
		}
		if record.LicenseCount > 0 && !f.IncludeLicensed {
			continue
		}
		if record.LicenseCount == 0 && !f.IncludeUnlicensed {
			continue
		}
		if record.UserType == "guest" && !f.IncludeGuests {
			continue
		}
		if record.UserType == "member" && !f.IncludeMembers {
			continue
		}
		filtered = append(filtered, record)
	}
	return filtered
}
