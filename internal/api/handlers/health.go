package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"orgchart/internal/platform/snapshot"
)

type HealthHandler struct {
	ledgerDB  *sql.DB
	snapshots *snapshot.Store
}

func NewHealthHandler(ledgerDB *sql.DB, snapshots *snapshot.Store) *HealthHandler {
	return &HealthHandler{ledgerDB: ledgerDB, snapshots: snapshots}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)

	if err := h.ledgerDB.Ping(); err != nil {
		checks["ledger_db"] = "unhealthy: " + err.Error()
	} else {
		checks["ledger_db"] = "healthy"
	}

	// Snapshots are absent until the first refresh completes; that degrades
	// the reports but is not a failure of the process itself.
	if h.snapshots.Exists(snapshot.HierarchyTree) {
		checks["snapshots"] = "healthy"
	} else {
		checks["snapshots"] = "cold: no refresh has completed yet"
	}

	status := "healthy"
	for _, check := range checks {
		if len(check) >= 9 && check[:9] == "unhealthy" {
			status = "degraded"
			break
		}
	}

	response := struct {
		Status    string            `json:"status"`
		Timestamp int64             `json:"timestamp"`
		Checks    map[string]string `json:"checks"`
	}{
		Status:    status,
		Timestamp: time.Now().Unix(),
		Checks:    checks,
	}

	statusCode := http.StatusOK
	if status == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}
