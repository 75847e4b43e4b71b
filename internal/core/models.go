package core

import (
	"time"
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	TwoFADigest  string    `json:"-"` // sha256 hex of the secondary token
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}

// LoginRecord is one session in the audit trail. LoggedOutAt stays nil while
// the session is open.
type LoginRecord struct {
	ID          int64      `json:"id"`
	Username    string     `json:"username"`
	LoggedInAt  time.Time  `json:"logged_in_at"`
	LoggedOutAt *time.Time `json:"logged_out_at"`
}

// QueryRecord is one spell-check submission. Immutable once created.
type QueryRecord struct {
	ID         int64     `json:"id"`
	Username   string    `json:"username"`
	QueryText  string    `json:"query_text"`
	ResultText string    `json:"result_text"`
	CreatedAt  time.Time `json:"created_at"`
}
