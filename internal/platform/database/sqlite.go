package database

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const ledgerSchema = `
CREATE TABLE IF NOT EXISTS disabled_ledger (
	user_id       TEXT PRIMARY KEY,
	first_seen_at TEXT NOT NULL,
	updated_at    INTEGER NOT NULL
);
`

// OpenLedgerDB opens (creating if needed) the sqlite database holding the
// first-seen-disabled ledger.
func OpenLedgerDB(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", path+"?cache=shared&mode=rwc")
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	if _, err := db.Exec(ledgerSchema); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
