package store

import (
	"context"

	"github.com/ablomov/remindd/internal/domain"
)

// Repo defines durable storage for preferences and the committed schedule.
//
// LoadPreferences returns domain.ErrNotFound for a first-ever run; every
// other failure wraps domain.ErrStorageUnavailable so callers can fall
// back to in-memory state.
type Repo interface {
	LoadPreferences(ctx context.Context, userID string) (domain.Preferences, error)
	SavePreferences(ctx context.Context, prefs domain.Preferences) error

	LoadCommitted(ctx context.Context, userID string) ([]domain.Trigger, error)
	ReplaceCommitted(ctx context.Context, userID string, triggers []domain.Trigger) error
	ClearCommitted(ctx context.Context, userID string) error

	Close() error
}
