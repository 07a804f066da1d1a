package ledger

import (
	"database/sql"
	"time"
)

// Repository persists the first-seen-disabled ledger. Entries survive
// refresh cycles: a user keeps its first-seen timestamp until it drops out
// of the disabled set, at which point the row is deleted outright.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// All returns every ledger entry keyed by user id. Timestamps are stored as
// RFC3339 text; rows that fail to parse are skipped rather than failing the
// whole load.
func (r *Repository) All() (map[string]time.Time, error) {
	rows, err := r.db.Query("SELECT user_id, first_seen_at FROM disabled_ledger")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make(map[string]time.Time)
	for rows.Next() {
		var userID, firstSeen string
		if err := rows.Scan(&userID, &firstSeen); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339, firstSeen)
		if err != nil {
			continue
		}
		entries[userID] = parsed.UTC()
	}
	return entries, rows.Err()
}

// Count reports the number of ledger rows; used to decide whether a legacy
// snapshot seed is needed.
func (r *Repository) Count() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM disabled_ledger").Scan(&count)
	return count, err
}

// Replace swaps the ledger to exactly the given entries in one transaction:
// current ids are upserted and ids no longer present are deleted, so
// re-enabled users leave no tombstone behind.
func (r *Repository) Replace(entries map[string]time.Time, now time.Time) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM disabled_ledger"); err != nil {
		return err
	}

	stmt, err := tx.Prepare("INSERT INTO disabled_ledger (user_id, first_seen_at, updated_at) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for userID, firstSeen := range entries {
		if _, err := stmt.Exec(userID, firstSeen.UTC().Format(time.RFC3339), now.Unix()); err != nil {
			return err
		}
	}

	return tx.Commit()
}
