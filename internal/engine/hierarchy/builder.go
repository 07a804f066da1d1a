package hierarchy

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"orgchart/internal/engine/directory"
	"orgchart/internal/platform/models"
)

// Title keywords used for root auto-detection, in no particular priority;
// the first matching candidate in input order wins.
var seniorityKeywords = []string{"chief executive", "ceo", "president", "chair", "director", "head"}

// Options control root selection. RequestTopEmail is a per-request override;
// a non-nil empty value forces auto-detection regardless of any configured
// email. EnvTopEmail is the process-level override, SettingsTopEmail the
// persisted one.
type Options struct {
	RequestTopEmail  *string
	EnvTopEmail      string
	SettingsTopEmail string
}

// EffectiveTopEmail resolves the top-user email under strict priority:
// request override, process override, persisted settings.
func (o Options) EffectiveTopEmail() string {
	if o.RequestTopEmail != nil {
		return strings.TrimSpace(*o.RequestTopEmail)
	}
	if env := strings.TrimSpace(o.EnvTopEmail); env != "" {
		return env
	}
	return strings.TrimSpace(o.SettingsTopEmail)
}

// Build assembles the rooted hierarchy in place: employees are indexed by id
// and attached to their manager's Children without copying record payloads.
// The chosen root's manager reference is cleared so it can never appear as a
// subordinate. An employee whose manager id does not resolve is left
// unattached; the integrity auditor reports it, this is not an error.
func Build(employees []*models.Employee, opts Options) *models.Employee {
	if len(employees) == 0 {
		return nil
	}

	index := make(map[string]*models.Employee, len(employees))
	for _, emp := range employees {
		emp.Children = nil
		index[emp.ID] = emp
	}

	root := findRootByEmail(employees, opts.EffectiveTopEmail())
	if root == nil {
		root = autoDetectRoot(employees, index)
	}
	if root == nil {
		root = mostReportsRoot(employees, index)
	}
	if root == nil {
		root = employees[0]
		log.Info().Str("name", root.Name).Msg("using first employee as hierarchy root")
	}

	root.ManagerID = ""

	for _, emp := range employees {
		if emp == root || emp.ManagerID == "" || emp.ManagerID == emp.ID {
			continue
		}
		if manager, ok := index[emp.ManagerID]; ok {
			manager.Children = append(manager.Children, emp)
		}
	}

	return root
}

func findRootByEmail(employees []*models.Employee, email string) *models.Employee {
	if email == "" {
		return nil
	}
	for _, emp := range employees {
		if strings.EqualFold(emp.Email, email) {
			log.Info().Str("name", emp.Name).Str("email", emp.Email).
				Msg("using configured top-level user as hierarchy root")
			return emp
		}
	}
	log.Warn().Str("email", email).Msg("configured top-level user not found; falling back to auto-detection")
	return nil
}

func autoDetectRoot(employees []*models.Employee, index map[string]*models.Employee) *models.Employee {
	var candidates []*models.Employee
	for _, emp := range employees {
		if emp.ManagerID == "" {
			candidates = append(candidates, emp)
			continue
		}
		if _, ok := index[emp.ManagerID]; !ok {
			candidates = append(candidates, emp)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	for _, candidate := range candidates {
		title := strings.ToLower(candidate.Title)
		for _, keyword := range seniorityKeywords {
			if strings.Contains(title, keyword) {
				log.Info().Str("name", candidate.Name).Str("title", candidate.Title).
					Msg("auto-detected hierarchy root by title")
				return candidate
			}
		}
	}

	log.Info().Str("name", candidates[0].Name).Msg("using first root candidate as hierarchy root")
	return candidates[0]
}

// mostReportsRoot picks the employee with the strictly greatest number of
// direct reports, first in input order on ties. Only used when every
// employee asserts a manager.
func mostReportsRoot(employees []*models.Employee, index map[string]*models.Employee) *models.Employee {
	counts := make(map[string]int, len(employees))
	for _, emp := range employees {
		if emp.ManagerID == "" || emp.ManagerID == emp.ID {
			continue
		}
		if _, ok := index[emp.ManagerID]; ok {
			counts[emp.ManagerID]++
		}
	}

	var root *models.Employee
	maxReports := 0
	for _, emp := range employees {
		if counts[emp.ID] > maxReports {
			maxReports = counts[emp.ID]
			root = emp
		}
	}
	if root != nil {
		log.Info().Str("name", root.Name).Int("reports", maxReports).
			Msg("using employee with most direct reports as hierarchy root")
	}
	return root
}

// UpdateNewEmployeeFlags recomputes isNewEmployee across the tree. Called on
// every refresh and again by read paths so the flag tracks the threshold
// rather than the ingestion moment.
func UpdateNewEmployeeFlags(root *models.Employee, months int, now time.Time) {
	if root == nil {
		return
	}
	root.IsNewEmployee = directory.IsNewEmployee(root.HireDate, months, now)
	for _, child := range root.Children {
		UpdateNewEmployeeFlags(child, months, now)
	}
}
