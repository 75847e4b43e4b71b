package data

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spellaudit/internal/core"
)

func seedUser(t *testing.T, db *DB, username string) {
	t.Helper()
	require.NoError(t, NewUserRepo(db).Create(&core.User{Username: username, PasswordHash: "h", TwoFADigest: "d"}))
}

func TestLoginRepoOpenAndList(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "alice")
	repo := NewLoginRepo(db)

	rec, err := repo.Open("alice", time.Now())
	require.NoError(t, err)
	assert.NotZero(t, rec.ID)

	records, err := repo.ListByUsername("alice")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Nil(t, records[0].LoggedOutAt)
}

func TestLoginRepoCloseEarliestOpen(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "alice")
	repo := NewLoginRepo(db)

	base := time.Now().Add(-time.Hour)
	first, err := repo.Open("alice", base)
	require.NoError(t, err)
	second, err := repo.Open("alice", base.Add(time.Minute))
	require.NoError(t, err)

	// Closes the earliest-opened record, not the latest
	require.NoError(t, repo.CloseEarliestOpen("alice", time.Now()))

	records, err := repo.ListByUsername("alice")
	require.NoError(t, err)
	require.Len(t, records, 2)
	byID := map[int64]core.LoginRecord{records[0].ID: records[0], records[1].ID: records[1]}
	assert.NotNil(t, byID[first.ID].LoggedOutAt)
	assert.Nil(t, byID[second.ID].LoggedOutAt)

	// Second close takes the remaining open record
	require.NoError(t, repo.CloseEarliestOpen("alice", time.Now()))
	records, err = repo.ListByUsername("alice")
	require.NoError(t, err)
	for _, rec := range records {
		assert.NotNil(t, rec.LoggedOutAt)
	}
}

func TestLoginRepoCloseWithoutOpenSession(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "alice")
	repo := NewLoginRepo(db)

	err := repo.CloseEarliestOpen("alice", time.Now())
	assert.ErrorIs(t, err, core.ErrNoOpenSession)

	_, err = repo.Open("alice", time.Now())
	require.NoError(t, err)
	require.NoError(t, repo.CloseEarliestOpen("alice", time.Now()))

	err = repo.CloseEarliestOpen("alice", time.Now())
	assert.ErrorIs(t, err, core.ErrNoOpenSession)
}

func TestLoginRepoListScopedToUser(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "alice")
	seedUser(t, db, "bob")
	repo := NewLoginRepo(db)

	_, err := repo.Open("alice", time.Now())
	require.NoError(t, err)
	_, err = repo.Open("bob", time.Now())
	require.NoError(t, err)

	records, err := repo.ListByUsername("alice")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "alice", records[0].Username)
}
