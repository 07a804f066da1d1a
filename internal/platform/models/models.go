package models

import "time"

// Exclusion reasons recorded by the directory classifier. A record can carry
// several at once; every matched reason is kept.
const (
	FilterDisabled          = "filter_disabled"
	FilterGuest             = "filter_guest"
	FilterNoTitle           = "filter_no_title"
	FilterIgnoredTitle      = "filter_ignored_title"
	FilterIgnoredDepartment = "filter_ignored_department"
	FilterIgnoredEmployee   = "filter_ignored_employee"
)

// Missing-manager audit reasons. Exactly one applies per record.
const (
	ReasonNoManager       = "no_manager"
	ReasonManagerNotFound = "manager_not_found"
	ReasonDetached        = "detached"
)

// Employee is a directory member included in the hierarchy. Instances are
// rebuilt from provider data on every refresh cycle; Children is populated
// only by the hierarchy builder.
type Employee struct {
	ID                string      `json:"id"`
	Name              string      `json:"name"`
	Title             string      `json:"title"`
	Department        string      `json:"department"`
	Email             string      `json:"email"`
	UserPrincipalName string      `json:"userPrincipalName"`
	Phone             string      `json:"phone"`
	BusinessPhone     string      `json:"businessPhone"`
	Location          string      `json:"location"`
	City              string      `json:"city"`
	State             string      `json:"state"`
	Country           string      `json:"country"`
	FullAddress       string      `json:"fullAddress"`
	ManagerID         string      `json:"managerId,omitempty"`
	HireDate          *time.Time  `json:"hireDate,omitempty"`
	IsNewEmployee     bool        `json:"isNewEmployee"`
	AccountEnabled    bool        `json:"accountEnabled"`
	UserType          string      `json:"userType"`
	UsageLocation     string      `json:"usageLocation"`
	LicenseCount      int         `json:"licenseCount"`
	LicenseSkus       []string    `json:"licenseSkus"`
	LicenseSkuIDs     []string    `json:"licenseSkuIds"`
	Children          []*Employee `json:"children"`
}

// ExcludedRecord is a directory member the classifier kept out of the
// hierarchy, with the full set of reasons that applied.
type ExcludedRecord struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Title             string   `json:"title"`
	Department        string   `json:"department"`
	Email             string   `json:"email"`
	UserPrincipalName string   `json:"userPrincipalName"`
	Phone             string   `json:"phone"`
	BusinessPhone     string   `json:"businessPhone"`
	Location          string   `json:"location"`
	City              string   `json:"city"`
	State             string   `json:"state"`
	Country           string   `json:"country"`
	UsageLocation     string   `json:"usageLocation"`
	AccountEnabled    bool     `json:"accountEnabled"`
	UserType          string   `json:"userType"`
	FilterReasons     []string `json:"filterReasons"`
	LicenseCount      int      `json:"licenseCount"`
	LicenseSkus       []string `json:"licenseSkus"`
	LicenseSkuIDs     []string `json:"licenseSkuIds"`
}

// MissingManagerRecord is a read-only audit row describing an employee that
// is unreachable from the hierarchy root. Regenerated wholesale every cycle.
type MissingManagerRecord struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Title          string   `json:"title"`
	Department     string   `json:"department"`
	Email          string   `json:"email"`
	Phone          string   `json:"phone"`
	BusinessPhone  string   `json:"businessPhone"`
	Location       string   `json:"location"`
	ManagerName    string   `json:"managerName"`
	Reason         string   `json:"reason"`
	AccountEnabled bool     `json:"accountEnabled"`
	UserType       string   `json:"userType"`
	LicenseCount   int      `json:"licenseCount"`
	LicenseSkus    []string `json:"licenseSkus"`
	LicenseSkuIDs  []string `json:"licenseSkuIds"`
}

// DisabledUserRecord carries the first-seen-disabled ledger fields. The
// provider does not retain when an account was disabled, so
// FirstSeenDisabledAt survives across refresh cycles for the same ID.
type DisabledUserRecord struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	Title               string     `json:"title"`
	Department          string     `json:"department"`
	Email               string     `json:"email"`
	UserPrincipalName   string     `json:"userPrincipalName"`
	Phone               string     `json:"phone"`
	BusinessPhone       string     `json:"businessPhone"`
	Location            string     `json:"location"`
	City                string     `json:"city"`
	State               string     `json:"state"`
	Country             string     `json:"country"`
	UsageLocation       string     `json:"usageLocation"`
	AccountEnabled      bool       `json:"accountEnabled"`
	UserType            string     `json:"userType"`
	LicenseCount        int        `json:"licenseCount"`
	LicenseSkus         []string   `json:"licenseSkus"`
	LicenseSkuIDs       []string   `json:"licenseSkuIds"`
	HireDate            *time.Time `json:"hireDate,omitempty"`
	DisabledDate        *time.Time `json:"disabledDate,omitempty"`
	FirstSeenDisabledAt *time.Time `json:"firstSeenDisabledAt,omitempty"`
	DisabledDays        int        `json:"disabledDays"`
}

// SignInRecord summarizes a user's last observed sign-in activity.
type SignInRecord struct {
	ID                         string     `json:"id"`
	Name                       string     `json:"name"`
	Title                      string     `json:"title"`
	Department                 string     `json:"department"`
	Email                      string     `json:"email"`
	AccountEnabled             bool       `json:"accountEnabled"`
	UserType                   string     `json:"userType"`
	LicenseCount               int        `json:"licenseCount"`
	LicenseSkus                []string   `json:"licenseSkus"`
	LicenseSkuIDs              []string   `json:"licenseSkuIds"`
	LastActivityDate           *time.Time `json:"lastActivityDate,omitempty"`
	DaysSinceLastActivity      *int       `json:"daysSinceLastActivity,omitempty"`
	LastInteractiveSignIn      *time.Time `json:"lastInteractiveSignIn,omitempty"`
	DaysSinceInteractiveSignIn *int       `json:"daysSinceInteractiveSignIn,omitempty"`
	NeverSignedIn              bool       `json:"neverSignedIn"`
}

// RecentHireRecord annotates a recently hired employee with the resolved
// manager display name.
type RecentHireRecord struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Title             string     `json:"title"`
	Department        string     `json:"department"`
	Email             string     `json:"email"`
	UserPrincipalName string     `json:"userPrincipalName"`
	Phone             string     `json:"phone"`
	BusinessPhone     string     `json:"businessPhone"`
	Location          string     `json:"location"`
	HireDate          *time.Time `json:"hireDate"`
	DaysSinceHire     int        `json:"daysSinceHire"`
	ManagerName       string     `json:"managerName"`
}
