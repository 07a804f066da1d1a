package lifecycle

import (
	"time"

	"orgchart/internal/engine/directory"
	"orgchart/internal/platform/models"
)

// Merge reconciles the current cycle's disabled records with the persisted
// first-seen ledger. Per record: an explicit provider leave timestamp wins
// and overwrites any remembered value; otherwise a prior first-seen entry is
// reused unchanged; otherwise the record is stamped with the current
// refresh time. DisabledDate is backfilled from the first-seen value and
// DisabledDays recomputed against now.
//
// The returned map is the next ledger state: exactly the ids still disabled
// this cycle. Ids that dropped out (re-enabled accounts) are simply absent,
// so their ledger entries are discarded with no tombstone.
func Merge(records []models.DisabledUserRecord, previous map[string]time.Time, now time.Time) map[string]time.Time {
	next := make(map[string]time.Time, len(records))

	for i := range records {
		record := &records[i]

		var firstSeen time.Time
		switch {
		case record.DisabledDate != nil:
			firstSeen = *record.DisabledDate
		default:
			if prior, ok := previous[record.ID]; ok {
				firstSeen = prior
			} else {
				firstSeen = now
			}
		}

		record.FirstSeenDisabledAt = &firstSeen
		if record.DisabledDate == nil {
			record.DisabledDate = &firstSeen
		}
		record.DisabledDays = directory.DaysSince(firstSeen, now)

		if record.ID != "" {
			next[record.ID] = firstSeen
		}
	}

	return next
}

// LedgerFromRecords rebuilds ledger state from a previously cached snapshot,
// honoring the legacy disabledDate field when firstSeenDisabledAt is absent.
// Used to seed an empty ledger store from an older cache.
func LedgerFromRecords(records []models.DisabledUserRecord) map[string]time.Time {
	entries := make(map[string]time.Time, len(records))
	for _, record := range records {
		if record.ID == "" {
			continue
		}
		switch {
		case record.FirstSeenDisabledAt != nil:
			entries[record.ID] = *record.FirstSeenDisabledAt
		case record.DisabledDate != nil:
			entries[record.ID] = *record.DisabledDate
		}
	}
	return entries
}

// LicensedOnly returns the subset of records holding at least one license.
func LicensedOnly(records []models.DisabledUserRecord) []models.DisabledUserRecord {
	var licensed []models.DisabledUserRecord
	for _, record := range records {
		if record.LicenseCount > 0 {
			licensed = append(licensed, record)
		}
	}
	return licensed
}
