package data

import (
	"database/sql"

	"spellaudit/internal/core"
)

type QueryRepo struct {
	db *DB
}

func NewQueryRepo(db *DB) *QueryRepo {
	return &QueryRepo{db: db}
}

// Create inserts one query record. A single INSERT, so a store failure
// leaves no partial record behind.
func (r *QueryRepo) Create(rec *core.QueryRecord) error {
	id, err := r.db.InsertReturningID(
		`INSERT INTO query_records (username, query_text, result_text, created_at) VALUES (?, ?, ?, ?)`,
		rec.Username, rec.QueryText, rec.ResultText, rec.CreatedAt.UTC())
	if err != nil {
		return err
	}
	rec.ID = id
	return nil
}

// GetByID retrieves a query record. Returns (nil, nil) when absent.
func (r *QueryRepo) GetByID(id int64) (*core.QueryRecord, error) {
	var rec core.QueryRecord
	err := r.db.QueryRow(
		`SELECT id, username, query_text, result_text, created_at FROM query_records WHERE id = ?`, id).
		Scan(&rec.ID, &rec.Username, &rec.QueryText, &rec.ResultText, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *QueryRepo) ListByUsername(username string) ([]core.QueryRecord, error) {
	rows, err := r.db.Query(
		`SELECT id, username, query_text, result_text, created_at FROM query_records WHERE username = ? ORDER BY id`,
		username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []core.QueryRecord
	for rows.Next() {
		var rec core.QueryRecord
		if err := rows.Scan(&rec.ID, &rec.Username, &rec.QueryText, &rec.ResultText, &rec.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
