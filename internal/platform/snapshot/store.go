package snapshot

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Snapshot names. One JSON document per report, refreshed by the pipeline
// and read by the report layer.
const (
	HierarchyTree       = "hierarchy_tree"
	EmployeeList        = "employee_list"
	ExcludedUsers       = "excluded_users"
	ExcludedWithLicense = "excluded_with_license"
	MissingManager      = "missing_manager"
	DisabledUsers       = "disabled_users"
	DisabledWithLicense = "disabled_with_license"
	RecentlyDisabled    = "recently_disabled"
	RecentlyHired       = "recently_hired"
	SignInActivity      = "sign_in_activity"
)

// Store persists named JSON snapshots under a single directory. Writes go
// through a temp file and atomic rename so a reader never observes a
// partially written document.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

func (s *Store) Write(name string, v interface{}) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	path := s.Path(name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Read unmarshals a snapshot into v. A missing snapshot surfaces as
// os.ErrNotExist so callers can distinguish "not yet refreshed" from a
// corrupt document.
func (s *Store) Read(name string, v interface{}) error {
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func (s *Store) Exists(name string) bool {
	_, err := os.Stat(s.Path(name))
	return err == nil
}
