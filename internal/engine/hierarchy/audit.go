package hierarchy

import (
	"sort"
	"strings"

	"orgchart/internal/platform/models"
)

// CollectMissingManagers flags every employee that is unreachable from the
// hierarchy root, assigning exactly one reason per record: no manager
// asserted, a manager id that resolves to nobody, or a valid manager
// reference that is nonetheless unreachable (a cycle elsewhere in the
// manager graph). The effective top-user email is exempt. Output is sorted
// by department then name so successive reports diff cleanly. The tree is
// never mutated.
func CollectMissingManagers(employees []*models.Employee, root *models.Employee, topUserEmail string) []models.MissingManagerRecord {
	if len(employees) == 0 {
		return nil
	}

	index := make(map[string]*models.Employee, len(employees))
	for _, emp := range employees {
		if emp.ID != "" {
			index[emp.ID] = emp
		}
	}

	visited := make(map[string]struct{})
	var traverse func(node *models.Employee)
	traverse = func(node *models.Employee) {
		if node.ID == "" {
			return
		}
		// The visited guard doubles as loop protection for residual cycles.
		if _, seen := visited[node.ID]; seen {
			return
		}
		visited[node.ID] = struct{}{}
		for _, child := range node.Children {
			traverse(child)
		}
	}
	if root != nil {
		traverse(root)
	}

	topEmail := strings.TrimSpace(topUserEmail)

	var records []models.MissingManagerRecord
	for _, emp := range employees {
		if root != nil && emp.ID == root.ID {
			continue
		}
		if topEmail != "" && strings.EqualFold(strings.TrimSpace(emp.Email), topEmail) {
			continue
		}

		var reason string
		switch {
		case emp.ManagerID == "":
			reason = models.ReasonNoManager
		case index[emp.ManagerID] == nil:
			reason = models.ReasonManagerNotFound
		default:
			if _, reachable := visited[emp.ID]; !reachable {
				reason = models.ReasonDetached
			}
		}
		if reason == "" {
			continue
		}

		var managerName string
		if manager := index[emp.ManagerID]; manager != nil {
			managerName = manager.Name
		}

		records = append(records, models.MissingManagerRecord{
			ID:             emp.ID,
			Name:           emp.Name,
			Title:          emp.Title,
			Department:     emp.Department,
			Email:          emp.Email,
			Phone:          emp.Phone,
			BusinessPhone:  emp.BusinessPhone,
			Location:       emp.Location,
			ManagerName:    managerName,
			Reason:         reason,
			AccountEnabled: emp.AccountEnabled,
			UserType:       strings.ToLower(emp.UserType),
			LicenseCount:   emp.LicenseCount,
			LicenseSkus:    emp.LicenseSkus,
			LicenseSkuIDs:  emp.LicenseSkuIDs,
		})
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].Department != records[j].Department {
			return records[i].Department < records[j].Department
		}
		return records[i].Name < records[j].Name
	})
	return records
}

// Flatten returns every node reachable from the root, depth first. Used for
// the flat employee list snapshot derived from a rebuilt tree.
func Flatten(root *models.Employee) []*models.Employee {
	if root == nil {
		return nil
	}
	visited := make(map[string]struct{})
	var out []*models.Employee
	var walk func(node *models.Employee)
	walk = func(node *models.Employee) {
		if _, seen := visited[node.ID]; seen {
			return
		}
		visited[node.ID] = struct{}{}
		out = append(out, node)
		for _, child := range node.Children {
			walk(child)
		}
	}
	walk(root)
	return out
}
