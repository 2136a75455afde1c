package service_test

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/clipqa/annotation-service/internal/catalog"
	"github.com/clipqa/annotation-service/internal/distributor"
	"github.com/clipqa/annotation-service/internal/domain"
	"github.com/clipqa/annotation-service/internal/form"
	"github.com/clipqa/annotation-service/internal/ratelimiter"
	"github.com/clipqa/annotation-service/internal/repository"
	"github.com/clipqa/annotation-service/internal/service"
)

var catalogItems = []domain.WorkItem{
	{NarrationID: "A", Narration: "open fridge"},
	{NarrationID: "B", Narration: "take milk"},
	{NarrationID: "C", Narration: "close fridge"},
	{NarrationID: "D", Narration: "pour milk"},
}

func newService(t *testing.T) (*service.AnnotationService, *repository.MockAssignmentRepository) {
	t.Helper()
	repo := repository.NewMockAssignmentRepository()
	cat := catalog.NewStatic("https://media.test", map[catalog.Variant][]domain.WorkItem{
		catalog.VariantValidation: catalogItems,
	})
	svc := service.NewAnnotationService(repo, cat, form.GatedLikertV2, ratelimiter.New(0, 1), zap.NewNop(), service.Hooks{})

	plan, err := distributor.Distribute(catalogItems, []string{"u1", "u2"}, time.Now().UTC())
	if err != nil {
		t.Fatal(err)
	}
	if err := repo.Reseed(context.Background(), plan.Assignments); err != nil {
		t.Fatal(err)
	}
	return svc, repo
}

var validAnswer = map[string]any{
	"action_presence":     "1",
	"object_presence":     "5",
	"action_completeness": "4",
	"focus":               "3",
	"lighting":            "2",
	"camera_motion":       "1",
}

func TestAnnotationService_Unauthenticated(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	if _, err := svc.GetAssignment(ctx, "", catalog.VariantValidation, "A"); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("GetAssignment: expected ErrUnauthenticated, got %v", err)
	}
	if _, err := svc.RandomPending(ctx, ""); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("RandomPending: expected ErrUnauthenticated, got %v", err)
	}
	if _, err := svc.SubmitAnswer(ctx, "", "A", validAnswer); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("SubmitAnswer: expected ErrUnauthenticated, got %v", err)
	}
	if _, _, err := svc.ListAssignments(ctx, "", catalog.VariantValidation); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("ListAssignments: expected ErrUnauthenticated, got %v", err)
	}
}

func TestAnnotationService_GetAssignment(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	d, err := svc.GetAssignment(ctx, "u1", catalog.VariantValidation, "B")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Assignment.Status != domain.StatusPending {
		t.Fatalf("expected pending, got %s", d.Assignment.Status)
	}
	if d.Item.Narration != "take milk" || d.Item.URL != "https://media.test/B.mp4" {
		t.Fatalf("unexpected item %+v", d.Item)
	}
	if d.CompleteCount != 0 || d.AllCount != 4 {
		t.Fatalf("unexpected progress %+v", d.Progress)
	}
}

func TestAnnotationService_GetAssignment_NotFound(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	if _, err := svc.GetAssignment(ctx, "u1", catalog.VariantValidation, "Z"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown item, got %v", err)
	}
	if _, err := svc.GetAssignment(ctx, "u3", catalog.VariantValidation, "A"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unassigned user, got %v", err)
	}
	// assigned, but the selected dataset does not list it
	if _, err := svc.GetAssignment(ctx, "u1", catalog.VariantComplete, "A"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for item missing from variant, got %v", err)
	}
}

func TestAnnotationService_SubmitThenGet_RoundTrip(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	progress, err := svc.SubmitAnswer(ctx, "u1", "A", validAnswer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if progress.CompleteCount != 1 || progress.AllCount != 4 {
		t.Fatalf("unexpected progress %+v", progress)
	}

	d, err := svc.GetAssignment(ctx, "u1", catalog.VariantValidation, "A")
	if err != nil {
		t.Fatal(err)
	}
	if d.Assignment.Status != domain.StatusComplete {
		t.Fatalf("expected complete, got %s", d.Assignment.Status)
	}
	want := domain.Answer{
		"action_presence":     1,
		"object_presence":     5,
		"action_completeness": 4,
		"focus":               3,
		"lighting":            2,
		"camera_motion":       1,
	}
	if !reflect.DeepEqual(d.Assignment.Annotation, want) {
		t.Fatalf("expected %#v, got %#v", want, d.Assignment.Annotation)
	}

	// the other annotator of A is untouched
	other, _ := svc.GetAssignment(ctx, "u2", catalog.VariantValidation, "A")
	if other.Assignment.Status != domain.StatusPending {
		t.Fatal("submission must be scoped to the submitting user")
	}
}

func TestAnnotationService_Resubmit_Overwrites(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	if _, err := svc.SubmitAnswer(ctx, "u1", "A", validAnswer); err != nil {
		t.Fatal(err)
	}
	progress, err := svc.SubmitAnswer(ctx, "u1", "A", map[string]any{"action_presence": 0})
	if err != nil {
		t.Fatal(err)
	}
	if progress.CompleteCount != 1 {
		t.Fatalf("resubmission must not double count, got %+v", progress)
	}
	d, _ := svc.GetAssignment(ctx, "u1", catalog.VariantValidation, "A")
	if d.Assignment.Annotation["action_presence"] != 0 || d.Assignment.Annotation["focus"] != nil {
		t.Fatalf("expected overwritten answer, got %#v", d.Assignment.Annotation)
	}
}

func TestAnnotationService_Submit_Stale(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.SubmitAnswer(context.Background(), "u1", "not-assigned", validAnswer)
	if !errors.Is(err, domain.ErrStaleAssignment) {
		t.Fatalf("expected ErrStaleAssignment, got %v", err)
	}
}

func TestAnnotationService_Submit_Invalid(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	_, err := svc.SubmitAnswer(ctx, "u1", "A", map[string]any{"action_presence": "1"})
	var verr *form.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	a, _ := repo.Get(ctx, "u1", "A")
	if a.Status != domain.StatusPending || a.Annotation != nil {
		t.Fatal("invalid answer must not be stored")
	}
}

func TestAnnotationService_Submit_RateLimited(t *testing.T) {
	repo := repository.NewMockAssignmentRepository()
	cat := catalog.NewStatic("http://m", map[catalog.Variant][]domain.WorkItem{catalog.VariantValidation: catalogItems})
	var rejected []string
	svc := service.NewAnnotationService(repo, cat, form.GatedLikertV2, ratelimiter.New(0.001, 1), zap.NewNop(), service.Hooks{
		OnRejected: func(reason string) { rejected = append(rejected, reason) },
	})
	plan, _ := distributor.Distribute(catalogItems, []string{"u1", "u2"}, time.Now())
	_ = repo.Reseed(context.Background(), plan.Assignments)

	ctx := context.Background()
	if _, err := svc.SubmitAnswer(ctx, "u1", "A", validAnswer); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SubmitAnswer(ctx, "u1", "B", validAnswer); !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if !reflect.DeepEqual(rejected, []string{"rate_limited"}) {
		t.Fatalf("expected rate_limited hook, got %v", rejected)
	}
}

func TestAnnotationService_Submit_StoreUnavailable(t *testing.T) {
	svc, repo := newService(t)
	repo.CompleteErr = domain.ErrStoreUnavailable
	if _, err := svc.SubmitAnswer(context.Background(), "u1", "A", validAnswer); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestAnnotationService_RandomPending(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	var draws []int
	svc.SetIntn(func(n int) int {
		draws = append(draws, n)
		return n - 1
	})

	a, err := svc.RandomPending(ctx, "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.NarrationID != "D" {
		t.Fatalf("expected last pending item by narration order, got %s", a.NarrationID)
	}
	if !reflect.DeepEqual(draws, []int{4}) {
		t.Fatalf("expected one draw over 4 pending items, got %v", draws)
	}
}

func TestAnnotationService_RandomPending_SingleAndEmpty(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	for _, id := range []string{"A", "B", "C"} {
		if _, err := svc.SubmitAnswer(ctx, "u1", id, validAnswer); err != nil {
			t.Fatal(err)
		}
	}

	for i := 0; i < 20; i++ {
		a, err := svc.RandomPending(ctx, "u1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if a.NarrationID != "D" {
			t.Fatalf("expected the only pending item D, got %s", a.NarrationID)
		}
	}

	if _, err := svc.SubmitAnswer(ctx, "u1", "D", validAnswer); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.RandomPending(ctx, "u1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty queue, got %v", err)
	}
}

func TestAnnotationService_RandomPending_VanishedOffset(t *testing.T) {
	svc, repo := newService(t)
	var found []bool
	svc = service.NewAnnotationService(repo, catalog.NewStatic("http://m", nil), form.GatedLikertV2,
		ratelimiter.New(0, 1), zap.NewNop(), service.Hooks{OnRandomFetch: func(ok bool) { found = append(found, ok) }})
	// simulate the count seeing more rows than the fetch
	svc.SetIntn(func(n int) int { return n + 10 })

	if _, err := svc.RandomPending(context.Background(), "u1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if !reflect.DeepEqual(found, []bool{false}) {
		t.Fatalf("expected miss to be reported, got %v", found)
	}
}

func TestAnnotationService_ListAssignments(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	_, _ = svc.SubmitAnswer(ctx, "u2", "C", validAnswer)

	list, progress, err := svc.ListAssignments(ctx, "u2", catalog.VariantValidation)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 4 || progress.AllCount != 4 || progress.CompleteCount != 1 {
		t.Fatalf("unexpected list %v / progress %+v", list, progress)
	}
	byID := map[string]domain.AssignmentSummary{}
	for _, s := range list {
		byID[s.NarrationID] = s
	}
	if byID["C"].Status != domain.StatusComplete || byID["C"].Narration != "close fridge" {
		t.Fatalf("unexpected summary for C: %+v", byID["C"])
	}
}

func TestAnnotationService_AggregateByStatus(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	stats, err := svc.AggregateByStatus(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]domain.StatusCounts{
		"u1": {Complete: 0, Pending: 4},
		"u2": {Complete: 0, Pending: 4},
	}
	if !reflect.DeepEqual(stats, want) {
		t.Fatalf("expected %v, got %v", want, stats)
	}

	if _, err := svc.SubmitAnswer(ctx, "u1", "A", validAnswer); err != nil {
		t.Fatal(err)
	}
	stats, _ = svc.AggregateByStatus(ctx)
	if stats["u1"] != (domain.StatusCounts{Complete: 1, Pending: 3}) {
		t.Fatalf("unexpected u1 counts %+v", stats["u1"])
	}

	// complete + pending always equals all_count
	for user, c := range stats {
		p, _, _ := svc.ListAssignments(ctx, user, catalog.VariantValidation)
		if c.Total() != len(p) {
			t.Fatalf("user %s: %d+%d != %d", user, c.Complete, c.Pending, len(p))
		}
	}
}

func TestAnnotationService_AggregateByStatus_ZeroDefaults(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	for _, id := range []string{"A", "B", "C", "D"} {
		if _, err := svc.SubmitAnswer(ctx, "u1", id, validAnswer); err != nil {
			t.Fatal(err)
		}
	}
	stats, _ := svc.AggregateByStatus(ctx)
	if stats["u1"] != (domain.StatusCounts{Complete: 4, Pending: 0}) {
		t.Fatalf("expected pending default 0, got %+v", stats["u1"])
	}
}

func TestAnnotationService_ExportCompleted(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	rows, err := svc.ExportCompleted(ctx)
	if err != nil || len(rows) != 0 {
		t.Fatalf("expected no rows before submissions, got %v, %v", rows, err)
	}

	_, _ = svc.SubmitAnswer(ctx, "u2", "B", validAnswer)
	_, _ = svc.SubmitAnswer(ctx, "u1", "A", map[string]any{"action_presence": 0})

	rows, err = svc.ExportCompleted(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].UserID != "u1" || rows[0].NarrationID != "A" || rows[0].Annotation["action_presence"] != 0 {
		t.Fatalf("unexpected first row %+v", rows[0])
	}
}
