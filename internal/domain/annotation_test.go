package domain_test

import (
	"testing"

	"github.com/clipqa/annotation-service/internal/domain"
)

func TestStatus_IsValid(t *testing.T) {
	tests := []struct {
		status domain.Status
		want   bool
	}{
		{domain.StatusPending, true},
		{domain.StatusComplete, true},
		{"in_progress", false},
		{"", false},
	}

	for _, tc := range tests {
		if got := tc.status.IsValid(); got != tc.want {
			t.Fatalf("status %q: expected %v, got %v", tc.status, tc.want, got)
		}
	}
}

func TestAssignment_IsComplete(t *testing.T) {
	t.Run("pending without answer", func(t *testing.T) {
		a := domain.Assignment{Status: domain.StatusPending}
		if a.IsComplete() {
			t.Fatal("expected pending assignment to be incomplete")
		}
	})

	t.Run("complete with answer", func(t *testing.T) {
		a := domain.Assignment{Status: domain.StatusComplete, Annotation: domain.Answer{"focus": 3}}
		if !a.IsComplete() {
			t.Fatal("expected complete assignment with answer to be complete")
		}
	})

	t.Run("complete status without answer is not complete", func(t *testing.T) {
		a := domain.Assignment{Status: domain.StatusComplete}
		if a.IsComplete() {
			t.Fatal("expected nil annotation to break completeness")
		}
	})
}

func TestStatusCounts_Total(t *testing.T) {
	c := domain.StatusCounts{Complete: 3, Pending: 5}
	if c.Total() != 8 {
		t.Fatalf("expected total=8, got %d", c.Total())
	}
}
