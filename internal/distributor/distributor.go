// Package distributor partitions catalog items across annotators so that every
// item is rated by two distinct users.
package distributor

import (
	"strings"
	"time"

	"github.com/clipqa/annotation-service/internal/domain"
)

// Redundancy is the number of distinct users each item is assigned to.
const Redundancy = 2

// Plan is the full assignment set produced by Distribute.
type Plan struct {
	Assignments []domain.Assignment
	// Load is the number of items given to each user.
	Load map[string]int
	// Skipped lists narration ids dropped because they appeared more than once.
	Skipped []string
}

// Distribute assigns item i to users[i%N] and users[(i+1)%N].
//
// With N >= 2 the two users are always distinct. A user's load is the number
// of items at two adjacent residues mod N, between 2*floor(M/N) and
// 2*ceil(M/N); when M mod N is 0, 1 or N-1 that is floor(2M/N) or ceil(2M/N).
// Fewer than two users is rejected rather than producing a self-paired item.
func Distribute(items []domain.WorkItem, users []string, now time.Time) (*Plan, error) {
	if len(users) < Redundancy {
		return nil, domain.ErrTooFewUsers
	}

	seenUser := make(map[string]struct{}, len(users))
	for _, u := range users {
		key := strings.ToLower(strings.TrimSpace(u))
		if key == "" {
			return nil, domain.ErrInvalidUser
		}
		if _, dup := seenUser[key]; dup {
			return nil, domain.ErrDuplicateUser
		}
		seenUser[key] = struct{}{}
	}

	n := len(users)
	plan := &Plan{
		Assignments: make([]domain.Assignment, 0, len(items)*Redundancy),
		Load:        make(map[string]int, n),
	}
	for _, u := range users {
		plan.Load[u] = 0
	}

	seenItem := make(map[string]struct{}, len(items))
	i := 0
	for _, item := range items {
		if _, dup := seenItem[item.NarrationID]; dup {
			plan.Skipped = append(plan.Skipped, item.NarrationID)
			continue
		}
		seenItem[item.NarrationID] = struct{}{}

		for k := 0; k < Redundancy; k++ {
			u := users[(i+k)%n]
			plan.Assignments = append(plan.Assignments, domain.Assignment{
				UserID:      u,
				NarrationID: item.NarrationID,
				Status:      domain.StatusPending,
				CreatedAt:   now,
				UpdatedAt:   now,
			})
			plan.Load[u]++
		}
		i++
	}

	return plan, nil
}

// ByUser groups the plan's narration ids per user, in assignment order.
func (p *Plan) ByUser() map[string][]string {
	out := make(map[string][]string, len(p.Load))
	for _, a := range p.Assignments {
		out[a.UserID] = append(out[a.UserID], a.NarrationID)
	}
	return out
}
