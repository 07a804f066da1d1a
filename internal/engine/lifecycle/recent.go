package lifecycle

import (
	"sort"
	"time"

	"orgchart/internal/engine/directory"
	"orgchart/internal/platform/models"
)

// RecentlyDisabled returns disabled records first observed within the last
// `days` days, ascending by disabled date. The window is inclusive: a record
// observed exactly `days` days ago is still included. Records with no
// resolvable first-seen timestamp are dropped from the view.
func RecentlyDisabled(records []models.DisabledUserRecord, days int, now time.Time) []models.DisabledUserRecord {
	cutoff := now.AddDate(0, 0, -days)

	var recent []models.DisabledUserRecord
	for _, record := range records {
		observed := record.FirstSeenDisabledAt
		if observed == nil {
			observed = record.DisabledDate
		}
		if observed == nil || observed.Before(cutoff) {
			continue
		}

		updated := record
		updated.DisabledDate = observed
		updated.DisabledDays = directory.DaysSince(*observed, now)
		if updated.FirstSeenDisabledAt == nil {
			updated.FirstSeenDisabledAt = observed
		}
		recent = append(recent, updated)
	}

	sort.Slice(recent, func(i, j int) bool {
		return recent[i].DisabledDate.Before(*recent[j].DisabledDate)
	})
	return recent
}

// RecentlyHired returns employees hired within the last `days` days,
// annotated with the resolved manager display name, ascending by hire date.
func RecentlyHired(employees []*models.Employee, days int, now time.Time) []models.RecentHireRecord {
	cutoff := now.AddDate(0, 0, -days)

	managers := make(map[string]*models.Employee, len(employees))
	for _, emp := range employees {
		if emp.ID != "" {
			managers[emp.ID] = emp
		}
	}

	var recent []models.RecentHireRecord
	for _, emp := range employees {
		if emp.HireDate == nil || emp.HireDate.Before(cutoff) {
			continue
		}

		record := models.RecentHireRecord{
			ID:                emp.ID,
			Name:              emp.Name,
			Title:             emp.Title,
			Department:        emp.Department,
			Email:             emp.Email,
			UserPrincipalName: emp.UserPrincipalName,
			Phone:             emp.Phone,
			BusinessPhone:     emp.BusinessPhone,
			Location:          emp.Location,
			HireDate:          emp.HireDate,
			DaysSinceHire:     directory.DaysSince(*emp.HireDate, now),
		}
		if manager := managers[emp.ManagerID]; manager != nil {
			record.ManagerName = manager.Name
		}
		recent = append(recent, record)
	}

	sort.Slice(recent, func(i, j int) bool {
		return recent[i].HireDate.Before(*recent[j].HireDate)
	})
	return recent
}
