package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clipqa/annotation-service/internal/domain"
)

type pgAssignmentRepository struct {
	pool *pgxpool.Pool
}

// NewPgAssignmentRepository returns an AssignmentRepository backed by PostgreSQL.
func NewPgAssignmentRepository(pool *pgxpool.Pool) AssignmentRepository {
	return &pgAssignmentRepository{pool: pool}
}

const assignmentColumns = `user_id, narration_id, status, annotation, created_at, updated_at`

func (r *pgAssignmentRepository) Get(ctx context.Context, userID, narrationID string) (*domain.Assignment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+assignmentColumns+`
		FROM annotation_queue WHERE user_id = $1 AND narration_id = $2`, userID, narrationID)

	a, err := scanAssignment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, storeErr("get assignment", err)
	}
	return a, nil
}

func (r *pgAssignmentRepository) Progress(ctx context.Context, userID string) (domain.Progress, error) {
	var p domain.Progress
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FILTER (WHERE status = 'complete'), COUNT(*)
		FROM annotation_queue WHERE user_id = $1`, userID).Scan(&p.CompleteCount, &p.AllCount)
	if err != nil {
		return domain.Progress{}, storeErr("count progress", err)
	}
	return p, nil
}

func (r *pgAssignmentRepository) CountPending(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM annotation_queue
		WHERE user_id = $1 AND status = 'pending'`, userID).Scan(&n)
	if err != nil {
		return 0, storeErr("count pending", err)
	}
	return n, nil
}

func (r *pgAssignmentRepository) PendingAt(ctx context.Context, userID string, offset int) (*domain.Assignment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+assignmentColumns+`
		FROM annotation_queue
		WHERE user_id = $1 AND status = 'pending'
		ORDER BY narration_id
		OFFSET $2 LIMIT 1`, userID, offset)

	a, err := scanAssignment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, storeErr("pending at offset", err)
	}
	return a, nil
}

func (r *pgAssignmentRepository) Complete(ctx context.Context, userID, narrationID string, answer domain.Answer) error {
	payload, err := json.Marshal(answer)
	if err != nil {
		return fmt.Errorf("marshal annotation: %w", err)
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE annotation_queue
		SET status = 'complete', annotation = $3, updated_at = NOW()
		WHERE user_id = $1 AND narration_id = $2`, userID, narrationID, payload)
	if err != nil {
		return storeErr("complete assignment", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrStaleAssignment
	}
	return nil
}

func (r *pgAssignmentRepository) ListByUser(ctx context.Context, userID string) ([]domain.AssignmentSummary, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT narration_id, status
		FROM annotation_queue WHERE user_id = $1
		ORDER BY status DESC, narration_id`, userID)
	if err != nil {
		return nil, storeErr("list assignments", err)
	}
	defer rows.Close()

	var out []domain.AssignmentSummary
	for rows.Next() {
		var s domain.AssignmentSummary
		if err := rows.Scan(&s.NarrationID, &s.Status); err != nil {
			return nil, storeErr("scan assignment summary", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list assignments", err)
	}
	return out, nil
}

func (r *pgAssignmentRepository) CountByStatus(ctx context.Context) ([]domain.StatusCount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT user_id, status, COUNT(*)
		FROM annotation_queue
		GROUP BY user_id, status
		ORDER BY user_id, status`)
	if err != nil {
		return nil, storeErr("count by status", err)
	}
	defer rows.Close()

	var out []domain.StatusCount
	for rows.Next() {
		var c domain.StatusCount
		if err := rows.Scan(&c.UserID, &c.Status, &c.Count); err != nil {
			return nil, storeErr("scan status count", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("count by status", err)
	}
	return out, nil
}

func (r *pgAssignmentRepository) ListCompleted(ctx context.Context) ([]*domain.Assignment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+assignmentColumns+`
		FROM annotation_queue WHERE status = 'complete'
		ORDER BY user_id, narration_id`)
	if err != nil {
		return nil, storeErr("list completed", err)
	}
	defer rows.Close()

	var out []*domain.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, storeErr("scan completed", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list completed", err)
	}
	return out, nil
}

// Reseed deletes the whole queue and bulk-loads the new set in one transaction,
// so readers never observe a half-seeded store.
func (r *pgAssignmentRepository) Reseed(ctx context.Context, assignments []domain.Assignment) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return storeErr("begin reseed", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM annotation_queue`); err != nil {
		return storeErr("clear queue", err)
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"annotation_queue"},
		[]string{"user_id", "narration_id", "status", "annotation", "created_at", "updated_at"},
		pgx.CopyFromSlice(len(assignments), func(i int) ([]any, error) {
			a := assignments[i]
			return []any{a.UserID, a.NarrationID, string(a.Status), nil, a.CreatedAt, a.UpdatedAt}, nil
		}),
	)
	if err != nil {
		return storeErr("copy assignments", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return storeErr("commit reseed", err)
	}
	return nil
}

// ---- helpers ----

// scanAssignment reads a single assignment row from any pgx row type.
func scanAssignment(row pgx.Row) (*domain.Assignment, error) {
	var (
		a       domain.Assignment
		payload []byte
	)
	err := row.Scan(&a.UserID, &a.NarrationID, &a.Status, &payload, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.Annotation, err = decodeAnswer(payload)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// decodeAnswer turns a jsonb payload back into an Answer with int values
// where the stored number is integral.
func decodeAnswer(payload []byte) (domain.Answer, error) {
	if len(payload) == 0 || bytes.Equal(payload, []byte("null")) {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode annotation: %w", err)
	}
	answer := make(domain.Answer, len(raw))
	for k, v := range raw {
		if n, ok := v.(json.Number); ok {
			if i, err := n.Int64(); err == nil {
				answer[k] = int(i)
				continue
			}
		}
		answer[k] = v
	}
	return answer, nil
}

// storeErr marks driver failures so handlers can report them as unavailable.
func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
}
