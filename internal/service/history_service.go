package service

import (
	"spellaudit/internal/core"
)

// HistoryService gates access to historical records. The acting user is
// passed in explicitly on every call; the admin flag comes from the User row
// loaded for this request, never from a cached session value.
type HistoryService struct {
	logins  core.LoginRepository
	queries core.QueryRepository
}

func NewHistoryService(logins core.LoginRepository, queries core.QueryRepository) *HistoryService {
	return &HistoryService{logins: logins, queries: queries}
}

// GetQueryRecord returns the record when the actor is admin or owns it.
func (s *HistoryService) GetQueryRecord(actor *core.User, id int64) (*core.QueryRecord, error) {
	rec, err := s.queries.GetByID(id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, core.ErrNotFound
	}
	if actor.IsAdmin || rec.Username == actor.Username {
		return rec, nil
	}
	return nil, core.ErrForbidden
}

// ListQueryHistory lists query records. Non-admins always get their own
// records, whatever target they supply. An admin must name a target; there
// is no list-all default.
func (s *HistoryService) ListQueryHistory(actor *core.User, target string) ([]core.QueryRecord, error) {
	target, err := resolveTarget(actor, target)
	if err != nil {
		return nil, err
	}
	return s.queries.ListByUsername(target)
}

// ListLoginHistory lists login records under the same rules as query history.
func (s *HistoryService) ListLoginHistory(actor *core.User, target string) ([]core.LoginRecord, error) {
	target, err := resolveTarget(actor, target)
	if err != nil {
		return nil, err
	}
	return s.logins.ListByUsername(target)
}

func resolveTarget(actor *core.User, target string) (string, error) {
	if !actor.IsAdmin {
		return actor.Username, nil
	}
	if target == "" {
		return "", core.ErrTargetRequired
	}
	return target, nil
}
