package service

import (
	"context"
	"fmt"
	"time"

	"spellaudit/internal/core"
)

// Checker is the gateway contract SpellService depends on.
type Checker interface {
	Check(ctx context.Context, text string) ([]string, error)
}

// SpellService runs a submission through the checker and records the result.
// A gateway failure never produces a query record.
type SpellService struct {
	checker Checker
	queries core.QueryRepository
}

func NewSpellService(checker Checker, queries core.QueryRepository) *SpellService {
	return &SpellService{checker: checker, queries: queries}
}

// Submit checks text for username and writes exactly one query record with
// the verbatim input and the normalized result.
func (s *SpellService) Submit(ctx context.Context, username, text string) (*core.QueryRecord, error) {
	tokens, err := s.checker.Check(ctx, text)
	if err != nil {
		return nil, err
	}

	rec := &core.QueryRecord{
		Username:   username,
		QueryText:  text,
		ResultText: NormalizeResult(tokens),
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.queries.Create(rec); err != nil {
		return nil, fmt.Errorf("record query: %w", err)
	}
	return rec, nil
}
