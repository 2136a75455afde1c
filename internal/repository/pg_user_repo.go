package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clipqa/annotation-service/internal/domain"
)

type pgUserRepository struct {
	pool *pgxpool.Pool
}

// NewPgUserRepository returns a UserRepository backed by PostgreSQL.
func NewPgUserRepository(pool *pgxpool.Pool) UserRepository {
	return &pgUserRepository{pool: pool}
}

func (r *pgUserRepository) Upsert(ctx context.Context, email, passwordHash string) (bool, error) {
	// xmax is 0 only for a freshly inserted tuple.
	var inserted bool
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (email) DO UPDATE
			SET password_hash = EXCLUDED.password_hash, updated_at = NOW()
		RETURNING (xmax = 0)`, email, passwordHash).Scan(&inserted)
	if err != nil {
		return false, storeErr("upsert user", err)
	}
	return inserted, nil
}

func (r *pgUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.pool.QueryRow(ctx, `
		SELECT email, password_hash, created_at, updated_at
		FROM users WHERE email = $1`, email).
		Scan(&u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, storeErr("get user", err)
	}
	return &u, nil
}

func (r *pgUserRepository) List(ctx context.Context) ([]*domain.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT email, password_hash, created_at, updated_at
		FROM users ORDER BY email`)
	if err != nil {
		return nil, storeErr("list users", err)
	}
	defer rows.Close()

	var out []*domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, storeErr("scan user", err)
		}
		out = append(out, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list users", err)
	}
	return out, nil
}
