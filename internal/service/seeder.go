package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/clipqa/annotation-service/internal/auth"
	"github.com/clipqa/annotation-service/internal/distributor"
	"github.com/clipqa/annotation-service/internal/domain"
	"github.com/clipqa/annotation-service/internal/repository"
)

// SeedReport summarises one reseed.
type SeedReport struct {
	UsersCreated int
	UsersUpdated int
	Items        int
	Assignments  int
	Load         map[string]int
	Skipped      []string
}

// Seeder is the offline bulk-seed path: it upserts the annotators and then
// replaces the whole annotation queue with a fresh redundancy-2 distribution.
// It is a maintenance operation and must not run alongside live traffic.
type Seeder struct {
	users       repository.UserRepository
	assignments repository.AssignmentRepository
	bcryptCost  int
	logger      *zap.Logger
	now         func() time.Time
}

func NewSeeder(
	users repository.UserRepository,
	assignments repository.AssignmentRepository,
	bcryptCost int,
	logger *zap.Logger,
) *Seeder {
	return &Seeder{
		users:       users,
		assignments: assignments,
		bcryptCost:  bcryptCost,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Plan validates the inputs and computes the distribution without writing.
func (s *Seeder) Plan(users []domain.SeedUser, items []domain.WorkItem) (*distributor.Plan, error) {
	emails := make([]string, len(users))
	for i, u := range users {
		if strings.TrimSpace(u.Email) == "" || u.Password == "" {
			return nil, fmt.Errorf("user %d: %w", i, domain.ErrInvalidUser)
		}
		emails[i] = strings.TrimSpace(u.Email)
	}
	return distributor.Distribute(items, emails, s.now())
}

// Seed upserts every user (idempotent by email) and reseeds the queue.
// Inputs are fully validated before anything is written.
func (s *Seeder) Seed(ctx context.Context, users []domain.SeedUser, items []domain.WorkItem) (*SeedReport, error) {
	plan, err := s.Plan(users, items)
	if err != nil {
		return nil, err
	}

	report := &SeedReport{
		Items:       len(items) - len(plan.Skipped),
		Assignments: len(plan.Assignments),
		Load:        plan.Load,
		Skipped:     plan.Skipped,
	}

	for _, u := range users {
		email := strings.TrimSpace(u.Email)
		hash, err := auth.HashPassword(u.Password, s.bcryptCost)
		if err != nil {
			return nil, err
		}
		created, err := s.users.Upsert(ctx, email, hash)
		if err != nil {
			return nil, fmt.Errorf("upsert user %s: %w", email, err)
		}
		if created {
			report.UsersCreated++
			s.logger.Info("inserted user", zap.String("email", email))
		} else {
			report.UsersUpdated++
			s.logger.Info("updated user", zap.String("email", email))
		}
	}

	if len(plan.Skipped) > 0 {
		s.logger.Warn("duplicate narration ids skipped", zap.Strings("narration_ids", plan.Skipped))
	}

	if err := s.assignments.Reseed(ctx, plan.Assignments); err != nil {
		return nil, fmt.Errorf("reseed queue: %w", err)
	}

	s.logger.Info("annotation queue reseeded",
		zap.Int("items", report.Items),
		zap.Int("assignments", report.Assignments),
		zap.Int("users", len(users)),
	)
	return report, nil
}
