package core

import "time"

// UserRepository defines storage operations for user identities.
// GetByUsername returns (nil, nil) when the user does not exist.
type UserRepository interface {
	Create(u *User) error
	GetByUsername(username string) (*User, error)
	Update(u *User) error
	Count() (int, error)
}

// LoginRepository defines storage operations for login records.
type LoginRepository interface {
	Open(username string, at time.Time) (*LoginRecord, error)
	// CloseEarliestOpen sets the logout timestamp on the earliest-opened
	// record for username that has none. Returns ErrNoOpenSession if every
	// record is already closed.
	CloseEarliestOpen(username string, at time.Time) error
	ListByUsername(username string) ([]LoginRecord, error)
}

// QueryRepository defines storage operations for query records.
// GetByID returns (nil, nil) when the record does not exist.
type QueryRepository interface {
	Create(rec *QueryRecord) error
	GetByID(id int64) (*QueryRecord, error)
	ListByUsername(username string) ([]QueryRecord, error)
}
