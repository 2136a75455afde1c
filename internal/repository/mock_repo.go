package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/clipqa/annotation-service/internal/domain"
)

type assignmentKey struct {
	userID      string
	narrationID string
}

// MockAssignmentRepository is a hand-written, in-memory implementation of
// AssignmentRepository used in unit tests. No mock-generation library needed.
type MockAssignmentRepository struct {
	mu          sync.RWMutex
	assignments map[assignmentKey]*domain.Assignment

	// Optional error overrides: set in tests to simulate failure paths.
	GetErr       error
	CompleteErr  error
	CountErr     error
	PendingAtErr error
	ReseedErr    error
}

func NewMockAssignmentRepository() *MockAssignmentRepository {
	return &MockAssignmentRepository{
		assignments: make(map[assignmentKey]*domain.Assignment),
	}
}

func cloneAssignment(a *domain.Assignment) *domain.Assignment {
	c := *a
	if a.Annotation != nil {
		c.Annotation = make(domain.Answer, len(a.Annotation))
		for k, v := range a.Annotation {
			c.Annotation[k] = v
		}
	}
	return &c
}

func (m *MockAssignmentRepository) Get(_ context.Context, userID, narrationID string) (*domain.Assignment, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.assignments[assignmentKey{userID, narrationID}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneAssignment(a), nil
}

func (m *MockAssignmentRepository) Progress(_ context.Context, userID string) (domain.Progress, error) {
	if m.CountErr != nil {
		return domain.Progress{}, m.CountErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var p domain.Progress
	for k, a := range m.assignments {
		if k.userID != userID {
			continue
		}
		p.AllCount++
		if a.Status == domain.StatusComplete {
			p.CompleteCount++
		}
	}
	return p, nil
}

func (m *MockAssignmentRepository) CountPending(_ context.Context, userID string) (int, error) {
	if m.CountErr != nil {
		return 0, m.CountErr
	}
	return len(m.pending(userID)), nil
}

func (m *MockAssignmentRepository) PendingAt(_ context.Context, userID string, offset int) (*domain.Assignment, error) {
	if m.PendingAtErr != nil {
		return nil, m.PendingAtErr
	}
	p := m.pending(userID)
	if offset < 0 || offset >= len(p) {
		return nil, domain.ErrNotFound
	}
	return p[offset], nil
}

// pending returns clones of the user's pending rows ordered by narration id.
func (m *MockAssignmentRepository) pending(userID string) []*domain.Assignment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Assignment
	for k, a := range m.assignments {
		if k.userID == userID && a.Status == domain.StatusPending {
			out = append(out, cloneAssignment(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NarrationID < out[j].NarrationID })
	return out
}

func (m *MockAssignmentRepository) Complete(_ context.Context, userID, narrationID string, answer domain.Answer) error {
	if m.CompleteErr != nil {
		return m.CompleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.assignments[assignmentKey{userID, narrationID}]
	if !ok {
		return domain.ErrStaleAssignment
	}
	a.Status = domain.StatusComplete
	a.Annotation = cloneAssignment(&domain.Assignment{Annotation: answer}).Annotation
	a.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MockAssignmentRepository) ListByUser(_ context.Context, userID string) ([]domain.AssignmentSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.AssignmentSummary
	for k, a := range m.assignments {
		if k.userID == userID {
			out = append(out, domain.AssignmentSummary{NarrationID: a.NarrationID, Status: a.Status})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Status != out[j].Status {
			return out[i].Status > out[j].Status
		}
		return out[i].NarrationID < out[j].NarrationID
	})
	return out, nil
}

func (m *MockAssignmentRepository) CountByStatus(_ context.Context) ([]domain.StatusCount, error) {
	if m.CountErr != nil {
		return nil, m.CountErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	type statusKey struct {
		userID string
		status domain.Status
	}
	counts := map[statusKey]int{}
	for k, a := range m.assignments {
		counts[statusKey{k.userID, a.Status}]++
	}
	out := make([]domain.StatusCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, domain.StatusCount{UserID: k.userID, Status: k.status, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UserID != out[j].UserID {
			return out[i].UserID < out[j].UserID
		}
		return out[i].Status < out[j].Status
	})
	return out, nil
}

func (m *MockAssignmentRepository) ListCompleted(_ context.Context) ([]*domain.Assignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Assignment
	for _, a := range m.assignments {
		if a.Status == domain.StatusComplete {
			out = append(out, cloneAssignment(a))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UserID != out[j].UserID {
			return out[i].UserID < out[j].UserID
		}
		return out[i].NarrationID < out[j].NarrationID
	})
	return out, nil
}

func (m *MockAssignmentRepository) Reseed(_ context.Context, assignments []domain.Assignment) error {
	if m.ReseedErr != nil {
		return m.ReseedErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assignments = make(map[assignmentKey]*domain.Assignment, len(assignments))
	for i := range assignments {
		a := assignments[i]
		m.assignments[assignmentKey{a.UserID, a.NarrationID}] = cloneAssignment(&a)
	}
	return nil
}

// Len reports how many assignments the mock holds.
func (m *MockAssignmentRepository) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.assignments)
}

// MockUserRepository is the in-memory UserRepository used in tests.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User

	UpsertErr error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[string]*domain.User)}
}

func (m *MockUserRepository) Upsert(_ context.Context, email, passwordHash string) (bool, error) {
	if m.UpsertErr != nil {
		return false, m.UpsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	if u, ok := m.users[email]; ok {
		u.PasswordHash = passwordHash
		u.UpdatedAt = now
		return false, nil
	}
	m.users[email] = &domain.User{Email: email, PasswordHash: passwordHash, CreatedAt: now, UpdatedAt: now}
	return true, nil
}

func (m *MockUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (m *MockUserRepository) List(_ context.Context) ([]*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.User, 0, len(m.users))
	for _, u := range m.users {
		clone := *u
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return strings.Compare(out[i].Email, out[j].Email) < 0 })
	return out, nil
}
