package graph

// Raw record shapes returned by the directory provider. Field names mirror
// the provider's wire format; normalization into domain models happens in
// the directory engine.

type User struct {
	ID                    string            `json:"id"`
	DisplayName           string            `json:"displayName"`
	JobTitle              string            `json:"jobTitle"`
	Department            string            `json:"department"`
	Mail                  string            `json:"mail"`
	UserPrincipalName     string            `json:"userPrincipalName"`
	MobilePhone           string            `json:"mobilePhone"`
	BusinessPhones        []string          `json:"businessPhones"`
	OfficeLocation        string            `json:"officeLocation"`
	City                  string            `json:"city"`
	State                 string            `json:"state"`
	Country               string            `json:"country"`
	UsageLocation         string            `json:"usageLocation"`
	StreetAddress         string            `json:"streetAddress"`
	PostalCode            string            `json:"postalCode"`
	EmployeeHireDate      string            `json:"employeeHireDate"`
	EmployeeLeaveDateTime string            `json:"employeeLeaveDateTime"`
	AccountEnabled        *bool             `json:"accountEnabled"`
	UserType              string            `json:"userType"`
	AssignedLicenses      []AssignedLicense `json:"assignedLicenses"`
	Manager               *ManagerRef       `json:"manager"`
	SignInActivity        *SignInActivity   `json:"signInActivity"`
}

// Enabled treats a missing accountEnabled field as enabled, matching the
// provider's default.
func (u User) Enabled() bool {
	return u.AccountEnabled == nil || *u.AccountEnabled
}

type AssignedLicense struct {
	SkuID string `json:"skuId"`
}

type ManagerRef struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

type SignInActivity struct {
	LastSignInDateTime               string `json:"lastSignInDateTime"`
	LastInteractiveSignInDateTime    string `json:"lastInteractiveSignInDateTime"`
	LastNonInteractiveSignInDateTime string `json:"lastNonInteractiveSignInDateTime"`
}

type SubscribedSKU struct {
	SkuID         string `json:"skuId"`
	SkuPartNumber string `json:"skuPartNumber"`
}

type userPage struct {
	Value    []User `json:"value"`
	NextLink string `json:"@odata.nextLink"`
}

type skuPage struct {
	Value    []SubscribedSKU `json:"value"`
	NextLink string          `json:"@odata.nextLink"`
}
