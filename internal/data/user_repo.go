package data

import (
	"database/sql"
	"time"

	"spellaudit/internal/core"
)

type UserRepo struct {
	db *DB
}

func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{db: db}
}

// Create inserts a new user. PasswordHash and TwoFADigest must already be
// hashed by the caller.
func (r *UserRepo) Create(u *core.User) error {
	isAdmin := 0
	if u.IsAdmin {
		isAdmin = 1
	}
	now := time.Now().UTC()
	id, err := r.db.InsertReturningID(
		`INSERT INTO users (username, password_hash, twofa_digest, is_admin, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.Username, u.PasswordHash, u.TwoFADigest, isAdmin, now)
	if err != nil {
		return err
	}
	u.ID = id
	u.CreatedAt = now
	return nil
}

// GetByUsername retrieves a user by username. Returns (nil, nil) when absent.
func (r *UserRepo) GetByUsername(username string) (*core.User, error) {
	var u core.User
	var isAdmin int
	err := r.db.QueryRow(`SELECT id, username, password_hash, twofa_digest, is_admin, created_at FROM users WHERE username = ?`, username).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.TwoFADigest, &isAdmin, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u.IsAdmin = isAdmin == 1
	return &u, nil
}

func (r *UserRepo) Update(u *core.User) error {
	isAdmin := 0
	if u.IsAdmin {
		isAdmin = 1
	}
	// Only update the password hash when the caller set one
	if u.PasswordHash != "" {
		_, err := r.db.Exec(`UPDATE users SET password_hash=?, twofa_digest=?, is_admin=? WHERE id=?`,
			u.PasswordHash, u.TwoFADigest, isAdmin, u.ID)
		return err
	}
	_, err := r.db.Exec(`UPDATE users SET twofa_digest=?, is_admin=? WHERE id=?`,
		u.TwoFADigest, isAdmin, u.ID)
	return err
}

// Count returns the total number of users (bootstrap check).
func (r *UserRepo) Count() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}
