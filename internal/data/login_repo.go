package data

import (
	"database/sql"
	"fmt"
	"time"

	"spellaudit/internal/core"
)

type LoginRepo struct {
	db *DB
}

func NewLoginRepo(db *DB) *LoginRepo {
	return &LoginRepo{db: db}
}

// Open inserts a login record with a null logout timestamp.
func (r *LoginRepo) Open(username string, at time.Time) (*core.LoginRecord, error) {
	id, err := r.db.InsertReturningID(
		`INSERT INTO login_records (username, logged_in_at) VALUES (?, ?)`,
		username, at.UTC())
	if err != nil {
		return nil, err
	}
	return &core.LoginRecord{ID: id, Username: username, LoggedInAt: at.UTC()}, nil
}

// CloseEarliestOpen closes the earliest-opened record for username that has
// no logout timestamp. The select and update run in one transaction so two
// concurrent logouts cannot close the same record twice.
func (r *LoginRepo) CloseEarliestOpen(username string, at time.Time) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRow(r.db.Rebind(
		`SELECT id FROM login_records WHERE username = ? AND logged_out_at IS NULL ORDER BY logged_in_at, id`),
		username).Scan(&id)
	if err == sql.ErrNoRows {
		return core.ErrNoOpenSession
	}
	if err != nil {
		return err
	}

	if _, err := tx.Exec(r.db.Rebind(
		`UPDATE login_records SET logged_out_at = ? WHERE id = ? AND logged_out_at IS NULL`),
		at.UTC(), id); err != nil {
		return fmt.Errorf("close login record %d: %w", id, err)
	}
	return tx.Commit()
}

func (r *LoginRepo) ListByUsername(username string) ([]core.LoginRecord, error) {
	rows, err := r.db.Query(
		`SELECT id, username, logged_in_at, logged_out_at FROM login_records WHERE username = ? ORDER BY id`,
		username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []core.LoginRecord
	for rows.Next() {
		var rec core.LoginRecord
		var out sql.NullTime
		if err := rows.Scan(&rec.ID, &rec.Username, &rec.LoggedInAt, &out); err != nil {
			return nil, err
		}
		if out.Valid {
			t := out.Time
			rec.LoggedOutAt = &t
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
