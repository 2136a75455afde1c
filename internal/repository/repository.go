package repository

import (
	"context"

	"github.com/clipqa/annotation-service/internal/domain"
)

// AssignmentRepository defines all persistence operations on the annotation queue.
// The pgx implementation is in pg_assignment_repo.go.
// Tests use a hand-written mock (mock_repo.go).
type AssignmentRepository interface {
	Get(ctx context.Context, userID, narrationID string) (*domain.Assignment, error)
	Progress(ctx context.Context, userID string) (domain.Progress, error)
	CountPending(ctx context.Context, userID string) (int, error)
	// PendingAt returns the pending assignment at offset, ordered by narration id.
	PendingAt(ctx context.Context, userID string, offset int) (*domain.Assignment, error)
	// Complete is update-only: it returns domain.ErrStaleAssignment when no
	// row matches (userID, narrationID).
	Complete(ctx context.Context, userID, narrationID string, answer domain.Answer) error
	ListByUser(ctx context.Context, userID string) ([]domain.AssignmentSummary, error)
	CountByStatus(ctx context.Context) ([]domain.StatusCount, error)
	ListCompleted(ctx context.Context) ([]*domain.Assignment, error)
	// Reseed replaces every assignment with the given set.
	Reseed(ctx context.Context, assignments []domain.Assignment) error
}

// UserRepository stores annotator accounts keyed by email.
type UserRepository interface {
	// Upsert creates or updates the user and reports whether it was created.
	Upsert(ctx context.Context, email, passwordHash string) (bool, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
}
