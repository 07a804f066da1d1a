package directory

import (
	"testing"
	"time"

	"orgchart/internal/platform/graph"
	"orgchart/internal/platform/models"
	"orgchart/internal/platform/settings"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func boolPtr(v bool) *bool { return &v }

func TestClassify_Reasons(t *testing.T) {
	st := settings.Defaults()
	st.IgnoredTitles = "Service Account"
	st.IgnoredDepartments = "External Vendors"
	st.IgnoredEmployees = "mailbox@corp.com"
	rules := NewRules(st)

	tests := []struct {
		name            string
		user            graph.User
		expectedReasons []string
	}{
		{
			name:            "Disabled Account",
			user:            graph.User{ID: "1", DisplayName: "A", JobTitle: "Engineer", AccountEnabled: boolPtr(false), UserType: "Member"},
			expectedReasons: []string{models.FilterDisabled},
		},
		{
			name:            "Guest Account",
			user:            graph.User{ID: "2", DisplayName: "B", JobTitle: "Consultant", AccountEnabled: boolPtr(true), UserType: "Guest"},
			expectedReasons: []string{models.FilterGuest},
		},
		{
			name:            "Missing Title",
			user:            graph.User{ID: "3", DisplayName: "C", JobTitle: "  ", AccountEnabled: boolPtr(true), UserType: "Member"},
			expectedReasons: []string{models.FilterNoTitle},
		},
		{
			name:            "Ignored Title Exact Match",
			user:            graph.User{ID: "4", DisplayName: "D", JobTitle: "service account", AccountEnabled: boolPtr(true), UserType: "Member"},
			expectedReasons: []string{models.FilterIgnoredTitle},
		},
		{
			name:            "Ignored Department",
			user:            graph.User{ID: "5", DisplayName: "E", JobTitle: "Engineer", Department: "External Vendors", AccountEnabled: boolPtr(true), UserType: "Member"},
			expectedReasons: []string{models.FilterIgnoredDepartment},
		},
		{
			name:            "Ignored Employee By Email",
			user:            graph.User{ID: "6", DisplayName: "F", JobTitle: "Engineer", Mail: "mailbox@corp.com", AccountEnabled: boolPtr(true), UserType: "Member"},
			expectedReasons: []string{models.FilterIgnoredEmployee},
		},
		{
			name:            "Multiple Reasons Recorded",
			user:            graph.User{ID: "7", DisplayName: "G", AccountEnabled: boolPtr(false), UserType: "Guest"},
			expectedReasons: []string{models.FilterDisabled, models.FilterGuest, models.FilterNoTitle},
		},
		{
			name:            "Clean Employee",
			user:            graph.User{ID: "8", DisplayName: "H", JobTitle: "Engineer", AccountEnabled: boolPtr(true), UserType: "Member"},
			expectedReasons: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			employees, excluded := Classify([]graph.User{tt.user}, nil, rules, testNow)

			if tt.expectedReasons == nil {
				if len(employees) != 1 || len(excluded) != 0 {
					t.Fatalf("Expected 1 employee and 0 excluded, got %d/%d", len(employees), len(excluded))
				}
				return
			}

			if len(employees) != 0 || len(excluded) != 1 {
				t.Fatalf("Expected 0 employees and 1 excluded, got %d/%d", len(employees), len(excluded))
			}
			got := excluded[0].FilterReasons
			if len(got) != len(tt.expectedReasons) {
				t.Fatalf("Expected reasons %v, got %v", tt.expectedReasons, got)
			}
			for i, reason := range tt.expectedReasons {
				if got[i] != reason {
					t.Errorf("Expected reason %q at %d, got %q", reason, i, got[i])
				}
			}
		})
	}
}

func TestClassify_EmployeeDefaults(t *testing.T) {
	rules := NewRules(settings.Defaults())
	users := []graph.User{
		{
			ID:                "u1",
			DisplayName:       "Jane Doe",
			JobTitle:          "CTO",
			AccountEnabled:    boolPtr(true),
			UserType:          "Member",
			UserPrincipalName: "jane@corp.com",
			BusinessPhones:    []string{"", "+1 555 0100"},
			Manager:           &graph.ManagerRef{ID: "u0", DisplayName: "Boss"},
			EmployeeHireDate:  "2026-02-15",
		},
	}

	employees, excluded := Classify(users, nil, rules, testNow)
	if len(excluded) != 0 {
		t.Fatalf("Expected no exclusions, got %v", excluded)
	}
	if len(employees) != 1 {
		t.Fatalf("Expected 1 employee, got %d", len(employees))
	}

	emp := employees[0]
	if emp.Department != "No Department" {
		t.Errorf("Expected department default, got %q", emp.Department)
	}
	if emp.Email != "jane@corp.com" {
		t.Errorf("Expected UPN fallback email, got %q", emp.Email)
	}
	if emp.BusinessPhone != "+1 555 0100" {
		t.Errorf("Expected first non-empty business phone, got %q", emp.BusinessPhone)
	}
	if emp.ManagerID != "u0" {
		t.Errorf("Expected manager id u0, got %q", emp.ManagerID)
	}
	if emp.HireDate == nil {
		t.Fatal("Expected parsed hire date")
	}
	if !emp.IsNewEmployee {
		t.Error("Expected hire within window to flag isNewEmployee")
	}
	if emp.UserType != "member" {
		t.Errorf("Expected lower-cased user type, got %q", emp.UserType)
	}
}

func TestClassify_UnparsableHireDate(t *testing.T) {
	rules := NewRules(settings.Defaults())
	users := []graph.User{
		{ID: "u1", DisplayName: "A", JobTitle: "Engineer", AccountEnabled: boolPtr(true), UserType: "Member", EmployeeHireDate: "not-a-date"},
	}

	employees, _ := Classify(users, nil, rules, testNow)
	if len(employees) != 1 {
		t.Fatalf("Expected 1 employee, got %d", len(employees))
	}
	if employees[0].HireDate != nil {
		t.Error("Expected unparsable hire date to be treated as absent")
	}
	if employees[0].IsNewEmployee {
		t.Error("Expected no new-employee flag without a hire date")
	}
}

func TestClassify_SkipsNamelessRecords(t *testing.T) {
	rules := NewRules(settings.Defaults())
	users := []graph.User{
		{ID: "u1", DisplayName: "", JobTitle: "Engineer", AccountEnabled: boolPtr(true), UserType: "Member"},
	}

	employees, excluded := Classify(users, nil, rules, testNow)
	if len(employees) != 0 || len(excluded) != 0 {
		t.Errorf("Expected nameless record to be dropped, got %d/%d", len(employees), len(excluded))
	}
}

func TestNormalizeDisabled(t *testing.T) {
	leave := "2026-01-10T08:00:00Z"
	users := []graph.User{
		{ID: "d1", DisplayName: "Gone", AccountEnabled: boolPtr(false), UserType: "Member", EmployeeLeaveDateTime: leave},
		{ID: "d2", DisplayName: "NoDate", AccountEnabled: boolPtr(false), UserType: "Member"},
	}

	records := NormalizeDisabled(users, nil, testNow)
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}

	if records[0].DisabledDate == nil {
		t.Fatal("Expected explicit leave timestamp to populate disabledDate")
	}
	if records[0].DisabledDays != 50 {
		t.Errorf("Expected 50 disabled days, got %d", records[0].DisabledDays)
	}
	if records[1].DisabledDate != nil {
		t.Error("Expected absent leave timestamp to leave disabledDate nil")
	}
}

func TestNormalizeSignIns(t *testing.T) {
	users := []graph.User{
		{
			ID: "s1", DisplayName: "Active", AccountEnabled: boolPtr(true), UserType: "Member",
			SignInActivity: &graph.SignInActivity{
				LastInteractiveSignInDateTime:    "2026-02-20T10:00:00Z",
				LastNonInteractiveSignInDateTime: "2026-02-25T10:00:00Z",
			},
		},
		{ID: "s2", DisplayName: "Never", AccountEnabled: boolPtr(true), UserType: "Member"},
	}

	records := NormalizeSignIns(users, nil, testNow)
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}

	active := records[0]
	if active.NeverSignedIn {
		t.Error("Expected active account not to be flagged neverSignedIn")
	}
	if active.LastActivityDate == nil || !active.LastActivityDate.Equal(time.Date(2026, 2, 25, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected most recent of all sign-in dates, got %v", active.LastActivityDate)
	}
	if active.DaysSinceLastActivity == nil || *active.DaysSinceLastActivity != 4 {
		t.Errorf("Expected 4 days since activity, got %v", active.DaysSinceLastActivity)
	}

	never := records[1]
	if !never.NeverSignedIn {
		t.Error("Expected account without sign-in dates to be flagged neverSignedIn")
	}
	if never.LastActivityDate != nil || never.DaysSinceLastActivity != nil {
		t.Error("Expected no activity fields for never-signed-in account")
	}
}

func TestDaysSince(t *testing.T) {
	then := testNow.Add(-49 * time.Hour)
	if got := DaysSince(then, testNow); got != 2 {
		t.Errorf("Expected 2, got %d", got)
	}
	future := testNow.Add(24 * time.Hour)
	if got := DaysSince(future, testNow); got != 0 {
		t.Errorf("Expected clock skew to floor at 0, got %d", got)
	}
}

func TestParseProviderTime(t *testing.T) {
	tests := []struct {
		name  string
		input string
		ok    bool
	}{
		{name: "RFC3339", input: "2026-01-10T08:00:00Z", ok: true},
		{name: "Date Only", input: "2026-01-10", ok: true},
		{name: "Space Separated", input: "2026-01-10 08:00:00", ok: true},
		{name: "Empty", input: "", ok: false},
		{name: "Garbage", input: "last tuesday", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := ParseProviderTime(tt.input)
			if ok != tt.ok {
				t.Errorf("Expected ok=%v for %q", tt.ok, tt.input)
			}
		})
	}
}

func TestResolveLicenses(t *testing.T) {
	skuMap := map[string]string{
		"aaa-111": "ENTERPRISE_E5",
		"bbb-222": "EXCHANGE_PLAN",
	}
	entries := []graph.AssignedLicense{
		{SkuID: "AAA-111"},
		{SkuID: "bbb-222"},
		{SkuID: "ccc-333"},
		{SkuID: "aaa-111"},
	}

	skuIDs, labels := ResolveLicenses(entries, skuMap)
	if len(skuIDs) != 4 {
		t.Fatalf("Expected 4 sku ids, got %v", skuIDs)
	}
	if len(labels) != 3 {
		t.Fatalf("Expected 3 deduped labels, got %v", labels)
	}
	if labels[0] != "ccc-333" {
		t.Errorf("Expected case-insensitive sort to put ccc-333 first, got %q", labels[0])
	}
	if labels[1] != "ENTERPRISE_E5" || labels[2] != "EXCHANGE_PLAN" {
		t.Errorf("Unexpected label order: %v", labels)
	}
}
