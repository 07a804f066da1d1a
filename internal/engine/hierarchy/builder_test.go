package hierarchy

import (
	"testing"
	"time"

	"orgchart/internal/platform/models"
)

func emp(id, name, title, email, managerID string) *models.Employee {
	return &models.Employee{ID: id, Name: name, Title: title, Email: email, ManagerID: managerID}
}

func strPtr(v string) *string { return &v }

func TestBuild_RootSelection(t *testing.T) {
	tests := []struct {
		name         string
		employees    func() []*models.Employee
		opts         Options
		expectedRoot string
	}{
		{
			name: "CEO Title Wins Among No-Manager Candidates",
			employees: func() []*models.Employee {
				return []*models.Employee{
					emp("1", "Alice", "Office Manager", "alice@corp.com", ""),
					emp("2", "Bob", "Chief Executive Officer", "bob@corp.com", ""),
					emp("3", "Carol", "Engineer", "carol@corp.com", "2"),
				}
			},
			expectedRoot: "2",
		},
		{
			name: "Configured Email Beats Auto-Detection",
			employees: func() []*models.Employee {
				return []*models.Employee{
					emp("1", "Alice", "CEO", "alice@corp.com", ""),
					emp("2", "Bob", "Engineer", "bob@corp.com", "1"),
				}
			},
			opts:         Options{SettingsTopEmail: "BOB@corp.com"},
			expectedRoot: "2",
		},
		{
			name: "Request Override Beats Settings",
			employees: func() []*models.Employee {
				return []*models.Employee{
					emp("1", "Alice", "CEO", "alice@corp.com", ""),
					emp("2", "Bob", "Engineer", "bob@corp.com", "1"),
				}
			},
			opts:         Options{RequestTopEmail: strPtr("bob@corp.com"), SettingsTopEmail: "alice@corp.com"},
			expectedRoot: "2",
		},
		{
			name: "Empty Request Override Forces Auto-Detect",
			employees: func() []*models.Employee {
				return []*models.Employee{
					emp("1", "Alice", "CEO", "alice@corp.com", ""),
					emp("2", "Bob", "Engineer", "bob@corp.com", "1"),
				}
			},
			opts:         Options{RequestTopEmail: strPtr(""), SettingsTopEmail: "bob@corp.com"},
			expectedRoot: "1",
		},
		{
			name: "Unresolvable Manager Id Is A Root Candidate",
			employees: func() []*models.Employee {
				return []*models.Employee{
					emp("1", "Alice", "President", "alice@corp.com", "999"),
					emp("2", "Bob", "Engineer", "bob@corp.com", "1"),
				}
			},
			expectedRoot: "1",
		},
		{
			name: "Most Reports Fallback When Everyone Has A Manager",
			employees: func() []*models.Employee {
				return []*models.Employee{
					emp("1", "Alice", "Engineer", "alice@corp.com", "2"),
					emp("2", "Bob", "Engineer", "bob@corp.com", "1"),
					emp("3", "Carol", "Engineer", "carol@corp.com", "2"),
					emp("4", "Dave", "Engineer", "dave@corp.com", "2"),
				}
			},
			expectedRoot: "2",
		},
		{
			name: "First Candidate When No Keyword Matches",
			employees: func() []*models.Employee {
				return []*models.Employee{
					emp("1", "Alice", "Accountant", "alice@corp.com", ""),
					emp("2", "Bob", "Engineer", "bob@corp.com", ""),
				}
			},
			expectedRoot: "1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := Build(tt.employees(), tt.opts)
			if root == nil {
				t.Fatal("Expected a root, got nil")
			}
			if root.ID != tt.expectedRoot {
				t.Errorf("Expected root %s, got %s (%s)", tt.expectedRoot, root.ID, root.Name)
			}
			if root.ManagerID != "" {
				t.Errorf("Expected root managerId to be cleared, got %q", root.ManagerID)
			}
		})
	}
}

func TestBuild_AttachesChildren(t *testing.T) {
	employees := []*models.Employee{
		emp("1", "Alice", "CEO", "alice@corp.com", ""),
		emp("2", "Bob", "VP", "bob@corp.com", "1"),
		emp("3", "Carol", "Engineer", "carol@corp.com", "2"),
		emp("4", "Dave", "Engineer", "dave@corp.com", "999"),
	}

	root := Build(employees, Options{})
	if root.ID != "1" {
		t.Fatalf("Expected root 1, got %s", root.ID)
	}
	if len(root.Children) != 1 || root.Children[0].ID != "2" {
		t.Fatalf("Expected Bob under Alice, got %v", root.Children)
	}
	if len(root.Children[0].Children) != 1 || root.Children[0].Children[0].ID != "3" {
		t.Fatal("Expected Carol under Bob")
	}

	// Dave's manager does not resolve; he stays unattached for the auditor.
	flat := Flatten(root)
	if len(flat) != 3 {
		t.Errorf("Expected 3 reachable nodes, got %d", len(flat))
	}
}

func TestBuild_SelfManagedEmployeeNotAttached(t *testing.T) {
	employees := []*models.Employee{
		emp("1", "Alice", "CEO", "alice@corp.com", ""),
		emp("2", "Bob", "Engineer", "bob@corp.com", "2"),
	}

	root := Build(employees, Options{})
	for _, child := range root.Children {
		if child.ID == "2" {
			t.Fatal("Self-managed employee must not attach to the root")
		}
	}
	bob := employees[1]
	for _, child := range bob.Children {
		if child.ID == "2" {
			t.Fatal("Self-managed employee must not become its own child")
		}
	}
}

func TestBuild_Idempotent(t *testing.T) {
	employees := []*models.Employee{
		emp("1", "Alice", "CEO", "alice@corp.com", ""),
		emp("2", "Bob", "VP", "bob@corp.com", "1"),
		emp("3", "Carol", "Engineer", "carol@corp.com", "1"),
	}

	first := Build(employees, Options{})
	firstChildren := len(first.Children)

	second := Build(employees, Options{})
	if second.ID != first.ID {
		t.Errorf("Expected stable root, got %s then %s", first.ID, second.ID)
	}
	if len(second.Children) != firstChildren {
		t.Errorf("Expected %d children after rebuild, got %d", firstChildren, len(second.Children))
	}
}

func TestBuild_Empty(t *testing.T) {
	if root := Build(nil, Options{}); root != nil {
		t.Errorf("Expected nil root for empty input, got %v", root)
	}
}

func TestUpdateNewEmployeeFlags(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	recent := now.AddDate(0, 0, -10)
	old := now.AddDate(0, 0, -200)

	root := emp("1", "Alice", "CEO", "alice@corp.com", "")
	child := emp("2", "Bob", "Engineer", "bob@corp.com", "1")
	root.HireDate = &old
	child.HireDate = &recent
	root.Children = []*models.Employee{child}

	UpdateNewEmployeeFlags(root, 3, now)

	if root.IsNewEmployee {
		t.Error("Expected old hire not to be flagged")
	}
	if !child.IsNewEmployee {
		t.Error("Expected recent hire to be flagged")
	}
}
