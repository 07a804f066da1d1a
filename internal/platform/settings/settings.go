package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Settings is the persisted, operator-editable configuration consumed by the
// refresh pipeline. Unknown keys in the stored file are ignored on load and
// missing keys keep their defaults.
type Settings struct {
	HideDisabledUsers  bool   `json:"hideDisabledUsers"`
	HideGuestUsers     bool   `json:"hideGuestUsers"`
	HideNoTitle        bool   `json:"hideNoTitle"`
	IgnoredDepartments string `json:"ignoredDepartments"`
	IgnoredTitles      string `json:"ignoredTitles"`
	IgnoredEmployees   string `json:"ignoredEmployees"`
	TopUserEmail       string `json:"topUserEmail"`
	NewEmployeeMonths  int    `json:"newEmployeeMonths"`
	AutoUpdateEnabled  bool   `json:"autoUpdateEnabled"`
	UpdateTime         string `json:"updateTime"`
}

func Defaults() Settings {
	return Settings{
		HideDisabledUsers: true,
		HideGuestUsers:    true,
		HideNoTitle:       true,
		NewEmployeeMonths: 3,
		AutoUpdateEnabled: true,
		UpdateTime:        "20:00",
	}
}

// ValidUpdateTime reports whether the value parses as a 24-hour "HH:MM"
// wall-clock time.
func ValidUpdateTime(value string) bool {
	_, err := time.Parse("15:04", strings.TrimSpace(value))
	return err == nil
}

type Store struct {
	path string
	mu   sync.Mutex
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load returns the persisted settings merged over defaults. A missing or
// unreadable file falls back to defaults with a logged warning, never an error.
func (s *Store) Load() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := Defaults()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", s.path).Msg("failed to read settings file; using defaults")
		}
		return merged
	}

	if err := json.Unmarshal(data, &merged); err != nil {
		log.Warn().Err(err).Str("path", s.path).Msg("failed to parse settings file; using defaults")
		return Defaults()
	}

	if merged.NewEmployeeMonths <= 0 {
		merged.NewEmployeeMonths = Defaults().NewEmployeeMonths
	}
	if merged.UpdateTime == "" {
		merged.UpdateTime = Defaults().UpdateTime
	}

	return merged
}

// Save persists settings via a temp file and atomic rename so concurrent
// readers never observe a partial write.
func (s *Store) Save(st Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
