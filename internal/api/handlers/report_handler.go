package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"orgchart/internal/engine/hierarchy"
	"orgchart/internal/engine/reports"
	"orgchart/internal/pkg/errors"
	"orgchart/internal/platform/config"
	"orgchart/internal/platform/models"
	"orgchart/internal/platform/settings"
	"orgchart/internal/platform/snapshot"
)

// ReportHandler serves the cached report snapshots. Read paths never trigger
// a refresh: a missing snapshot answers 503 and the caller retries after the
// pipeline has run.
type ReportHandler struct {
	snapshots *snapshot.Store
	settings  *settings.Store
	refresh   config.RefreshConfig
}

func NewReportHandler(snapshots *snapshot.Store, settingsStore *settings.Store, refreshCfg config.RefreshConfig) *ReportHandler {
	return &ReportHandler{
		snapshots: snapshots,
		settings:  settingsStore,
		refresh:   refreshCfg,
	}
}

// Hierarchy serves the cached tree with isNewEmployee recomputed against the
// current threshold, so the flag tracks the settings value rather than the
// last refresh. A "top" query parameter rebuilds the tree from the cached
// flat employee list with that email as root; an empty value forces
// auto-detection.
func (h *ReportHandler) Hierarchy(w http.ResponseWriter, r *http.Request) {
	st := h.settings.Load()
	now := time.Now().UTC()

	if !r.URL.Query().Has("top") {
		var root *models.Employee
		if !h.readSnapshot(w, snapshot.HierarchyTree, &root) {
			return
		}
		hierarchy.UpdateNewEmployeeFlags(root, st.NewEmployeeMonths, now)
		writeJSON(w, root)
		return
	}

	var employees []*models.Employee
	if !h.readSnapshot(w, snapshot.EmployeeList, &employees) {
		return
	}
	if len(employees) == 0 {
		errors.WriteError(w, http.StatusServiceUnavailable, errors.ErrCodeDataUnavailable, "Report data is not yet available", nil)
		return
	}

	top := r.URL.Query().Get("top")
	root := hierarchy.Build(employees, hierarchy.Options{
		RequestTopEmail:  &top,
		EnvTopEmail:      h.refresh.TopUserEmail,
		SettingsTopEmail: st.TopUserEmail,
	})
	hierarchy.UpdateNewEmployeeFlags(root, st.NewEmployeeMonths, now)

	writeJSON(w, root)
}

func (h *ReportHandler) Employees(w http.ResponseWriter, r *http.Request) {
	var employees []*models.Employee
	if !h.readSnapshot(w, snapshot.EmployeeList, &employees) {
		return
	}

	months := h.settings.Load().NewEmployeeMonths
	now := time.Now().UTC()
	for _, emp := range employees {
		hierarchy.UpdateNewEmployeeFlags(emp, months, now)
	}

	writeJSON(w, emptyIfNil(employees))
}

func (h *ReportHandler) MissingManagers(w http.ResponseWriter, r *http.Request) {
	h.serveSnapshot(w, snapshot.MissingManager)
}

func (h *ReportHandler) DisabledUsers(w http.ResponseWriter, r *http.Request) {
	var records []models.DisabledUserRecord
	if !h.readSnapshot(w, snapshot.DisabledUsers, &records) {
		return
	}

	q := r.URL.Query()
	filters := reports.DefaultDisabledFilters()
	filters.LicensedOnly = queryBool(q, "licensedOnly", filters.LicensedOnly)
	filters.RecentDays = queryInt(q, "days", filters.RecentDays)
	filters.IncludeGuests = queryBool(q, "includeGuests", filters.IncludeGuests)
	filters.IncludeMembers = queryBool(q, "includeMembers", filters.IncludeMembers)

	writeJSON(w, emptyIfNil(reports.ApplyDisabledFilters(records, filters, time.Now().UTC())))
}

func (h *ReportHandler) DisabledLicensed(w http.ResponseWriter, r *http.Request) {
	h.serveSnapshot(w, snapshot.DisabledWithLicense)
}

func (h *ReportHandler) RecentlyDisabled(w http.ResponseWriter, r *http.Request) {
	h.serveSnapshot(w, snapshot.RecentlyDisabled)
}

func (h *ReportHandler) RecentlyHired(w http.ResponseWriter, r *http.Request) {
	h.serveSnapshot(w, snapshot.RecentlyHired)
}

func (h *ReportHandler) ExcludedUsers(w http.ResponseWriter, r *http.Request) {
	var records []models.ExcludedRecord
	if !h.readSnapshot(w, snapshot.ExcludedUsers, &records) {
		return
	}

	q := r.URL.Query()
	filters := reports.DefaultExcludedFilters()
	filters.IncludeEnabled = queryBool(q, "includeEnabled", filters.IncludeEnabled)
	filters.IncludeDisabled = queryBool(q, "includeDisabled", filters.IncludeDisabled)
	filters.IncludeLicensed = queryBool(q, "includeLicensed", filters.IncludeLicensed)
	filters.IncludeUnlicensed = queryBool(q, "includeUnlicensed", filters.IncludeUnlicensed)
	filters.IncludeMembers = queryBool(q, "includeMembers", filters.IncludeMembers)
	filters.IncludeGuests = queryBool(q, "includeGuests", filters.IncludeGuests)

	writeJSON(w, emptyIfNil(reports.ApplyExcludedFilters(records, filters)))
}

func (h *ReportHandler) ExcludedLicensed(w http.ResponseWriter, r *http.Request) {
	h.serveSnapshot(w, snapshot.ExcludedWithLicense)
}

func (h *ReportHandler) SignIns(w http.ResponseWriter, r *http.Request) {
	var records []models.SignInRecord
	if !h.readSnapshot(w, snapshot.SignInActivity, &records) {
		return
	}

	q := r.URL.Query()
	filters := reports.DefaultSignInFilters()
	filters.IncludeEnabled = queryBool(q, "includeEnabled", filters.IncludeEnabled)
	filters.IncludeDisabled = queryBool(q, "includeDisabled", filters.IncludeDisabled)
	filters.IncludeLicensed = queryBool(q, "includeLicensed", filters.IncludeLicensed)
	filters.IncludeUnlicensed = queryBool(q, "includeUnlicensed", filters.IncludeUnlicensed)
	filters.IncludeMembers = queryBool(q, "includeMembers", filters.IncludeMembers)
	filters.IncludeGuests = queryBool(q, "includeGuests", filters.IncludeGuests)
	filters.IncludeNeverSignedIn = queryBool(q, "includeNeverSignedIn", filters.IncludeNeverSignedIn)
	filters.NeverOnly = queryBool(q, "neverOnly", filters.NeverOnly)
	filters.InactiveDays = queryIntPtr(q, "inactiveDays")
	filters.InactiveDaysMax = queryIntPtr(q, "inactiveDaysMax")

	writeJSON(w, emptyIfNil(reports.ApplySignInFilters(records, filters)))
}

// serveSnapshot streams a cached document verbatim.
func (h *ReportHandler) serveSnapshot(w http.ResponseWriter, name string) {
	var raw json.RawMessage
	if !h.readSnapshot(w, name, &raw) {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(raw)
}

func (h *ReportHandler) readSnapshot(w http.ResponseWriter, name string, v interface{}) bool {
	if err := h.snapshots.Read(name, v); err != nil {
		if os.IsNotExist(err) {
			errors.WriteError(w, http.StatusServiceUnavailable, errors.ErrCodeDataUnavailable, "Report data is not yet available", nil)
		} else {
			errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to read report data", nil)
		}
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func queryBool(q url.Values, name string, fallback bool) bool {
	values, ok := q[name]
	if !ok || len(values) == 0 {
		return fallback
	}
	parsed, err := strconv.ParseBool(values[0])
	if err != nil {
		return fallback
	}
	return parsed
}

func queryInt(q url.Values, name string, fallback int) int {
	values, ok := q[name]
	if !ok || len(values) == 0 {
		return fallback
	}
	parsed, err := strconv.Atoi(values[0])
	if err != nil {
		return fallback
	}
	return parsed
}

func queryIntPtr(q url.Values, name string) *int {
	values, ok := q[name]
	if !ok || len(values) == 0 {
		return nil
	}
	parsed, err := strconv.Atoi(values[0])
	if err != nil {
		return nil
	}
	return &parsed
}

// emptyIfNil keeps filtered-to-nothing responses as [] rather than null.
func emptyIfNil[T any](records []T) []T {
	if records == nil {
		return []T{}
	}
	return records
}
