package clinical

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrEntryNotFound = errors.New("clinical entry not found")
)

// Repository is the entry store plus the engagement event log.
// Each mutation is atomic: an entry is either fully written or not at all.
type Repository interface {
	Append(ctx context.Context, entry ClinicalEntry) error
	Replace(ctx context.Context, id uuid.UUID, entry ClinicalEntry) error
	Remove(ctx context.Context, userID, id uuid.UUID) error

	Get(ctx context.Context, userID, id uuid.UUID) (*ClinicalEntry, error)

	// List returns a user's entries, most recent shift first.
	List(ctx context.Context, userID uuid.UUID) ([]ClinicalEntry, error)
	Count(ctx context.Context, userID uuid.UUID) (int, error)

	// ListUsers returns every user that has at least one entry.
	ListUsers(ctx context.Context) ([]uuid.UUID, error)

	InsertEvent(ctx context.Context, ev EventLog) error
}
