package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"github.com/clipqa/annotation-service/internal/catalog"
	"github.com/clipqa/annotation-service/internal/domain"
	"github.com/clipqa/annotation-service/internal/form"
	"github.com/clipqa/annotation-service/internal/ratelimiter"
	"github.com/clipqa/annotation-service/internal/repository"
)

// Hooks carries the metric callbacks injected by main.
// Any nil hook is replaced with a no-op.
type Hooks struct {
	OnSubmitted   func(schemaVersion string)
	OnRejected    func(reason string)
	OnRandomFetch func(found bool)
}

// AnnotationService is the only runtime reader and writer of the annotation queue.
// Every operation takes the caller's identity explicitly and fails with
// ErrUnauthenticated when it is empty.
type AnnotationService struct {
	repo    repository.AssignmentRepository
	catalog *catalog.Catalog
	schema  *form.Schema
	limiter *ratelimiter.UserLimiters
	logger  *zap.Logger
	hooks   Hooks

	// intn draws the random pending offset; replaced in tests.
	intn func(n int) int
}

func NewAnnotationService(
	repo repository.AssignmentRepository,
	cat *catalog.Catalog,
	schema *form.Schema,
	limiter *ratelimiter.UserLimiters,
	logger *zap.Logger,
	hooks Hooks,
) *AnnotationService {
	if hooks.OnSubmitted == nil {
		hooks.OnSubmitted = func(string) {}
	}
	if hooks.OnRejected == nil {
		hooks.OnRejected = func(string) {}
	}
	if hooks.OnRandomFetch == nil {
		hooks.OnRandomFetch = func(bool) {}
	}
	return &AnnotationService{
		repo:    repo,
		catalog: cat,
		schema:  schema,
		limiter: limiter,
		logger:  logger,
		hooks:   hooks,
		intn:    rand.Intn,
	}
}

// Schema returns the questionnaire answers are validated against.
func (s *AnnotationService) Schema() *form.Schema { return s.schema }

// GetAssignment returns one assignment of the user with its catalog entry and
// freshly computed progress counts.
func (s *AnnotationService) GetAssignment(
	ctx context.Context,
	userID string,
	variant catalog.Variant,
	narrationID string,
) (*domain.AssignmentDetail, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}

	a, err := s.repo.Get(ctx, userID, narrationID)
	if err != nil {
		return nil, err
	}

	item, ok := s.catalog.Get(variant, narrationID)
	if !ok {
		return nil, fmt.Errorf("narration %s not in %s dataset: %w", narrationID, variant, domain.ErrNotFound)
	}

	progress, err := s.repo.Progress(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &domain.AssignmentDetail{Assignment: a, Item: item, Progress: progress}, nil
}

// RandomPending picks one of the user's pending assignments uniformly at random.
//
// The count and the fetch are separate round trips with no lock between them.
// If the row at the drawn offset disappears in between (the user completed it
// in another tab) the caller gets ErrNotFound and can simply ask again.
func (s *AnnotationService) RandomPending(ctx context.Context, userID string) (*domain.Assignment, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}

	n, err := s.repo.CountPending(ctx, userID)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		s.hooks.OnRandomFetch(false)
		return nil, domain.ErrNotFound
	}

	a, err := s.repo.PendingAt(ctx, userID, s.intn(n))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.hooks.OnRandomFetch(false)
		}
		return nil, err
	}
	s.hooks.OnRandomFetch(true)
	return a, nil
}

// SubmitAnswer validates the payload, marks the assignment complete and returns
// the user's updated progress. Submitting for an assignment the user does not
// hold is ErrStaleAssignment, never a silent success. Resubmitting overwrites
// the previous answer.
func (s *AnnotationService) SubmitAnswer(
	ctx context.Context,
	userID, narrationID string,
	payload map[string]any,
) (domain.Progress, error) {
	if userID == "" {
		return domain.Progress{}, domain.ErrUnauthenticated
	}

	answer, err := s.schema.Validate(payload)
	if err != nil {
		s.hooks.OnRejected("invalid")
		return domain.Progress{}, err
	}

	if !s.limiter.Allow(userID) {
		s.hooks.OnRejected("rate_limited")
		return domain.Progress{}, domain.ErrRateLimited
	}

	if err := s.repo.Complete(ctx, userID, narrationID, answer); err != nil {
		if errors.Is(err, domain.ErrStaleAssignment) {
			s.hooks.OnRejected("stale")
			s.logger.Warn("submit for missing assignment",
				zap.String("user_id", userID), zap.String("narration_id", narrationID))
		}
		return domain.Progress{}, err
	}
	s.hooks.OnSubmitted(s.schema.Version)

	progress, err := s.repo.Progress(ctx, userID)
	if err != nil {
		return domain.Progress{}, err
	}
	return progress, nil
}

// ListAssignments returns the user's assignments without payloads, decorated
// with the narration label where the catalog variant knows the item.
func (s *AnnotationService) ListAssignments(
	ctx context.Context,
	userID string,
	variant catalog.Variant,
) ([]domain.AssignmentSummary, domain.Progress, error) {
	if userID == "" {
		return nil, domain.Progress{}, domain.ErrUnauthenticated
	}

	list, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, domain.Progress{}, err
	}

	ids := make([]string, len(list))
	for i, a := range list {
		ids[i] = a.NarrationID
	}
	items := s.catalog.GetMany(variant, ids)

	var progress domain.Progress
	for i := range list {
		list[i].Narration = items[list[i].NarrationID].Narration
		progress.AllCount++
		if list[i].Status == domain.StatusComplete {
			progress.CompleteCount++
		}
	}
	return list, progress, nil
}

// AggregateByStatus returns complete/pending counts for every user holding at
// least one assignment. Statuses a user has no rows for count as zero.
func (s *AnnotationService) AggregateByStatus(ctx context.Context) (map[string]domain.StatusCounts, error) {
	rows, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[string]domain.StatusCounts)
	for _, r := range rows {
		c := out[r.UserID]
		switch r.Status {
		case domain.StatusComplete:
			c.Complete += r.Count
		case domain.StatusPending:
			c.Pending += r.Count
		default:
			s.logger.Warn("unexpected assignment status in aggregate",
				zap.String("user_id", r.UserID), zap.String("status", string(r.Status)))
		}
		out[r.UserID] = c
	}
	return out, nil
}

// ExportCompleted returns one row per completed assignment.
func (s *AnnotationService) ExportCompleted(ctx context.Context) ([]domain.ExportRow, error) {
	completed, err := s.repo.ListCompleted(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]domain.ExportRow, 0, len(completed))
	for _, a := range completed {
		rows = append(rows, domain.ExportRow{
			UserID:      a.UserID,
			NarrationID: a.NarrationID,
			Annotation:  a.Annotation,
		})
	}
	return rows, nil
}
