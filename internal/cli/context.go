package cli

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/clipqa/annotation-service/internal/catalog"
	"github.com/clipqa/annotation-service/internal/config"
	"github.com/clipqa/annotation-service/internal/db"
	"github.com/clipqa/annotation-service/internal/form"
	"github.com/clipqa/annotation-service/internal/ratelimiter"
	"github.com/clipqa/annotation-service/internal/repository"
	"github.com/clipqa/annotation-service/internal/service"
)

// commandContext carries the flags shared by every subcommand and builds the
// store-backed dependencies on demand, so commands that never touch the
// database (seed --dry-run) do not need DATABASE_URL.
type commandContext struct {
	verbose bool
	logger  *zap.Logger
}

func (c *commandContext) log() *zap.Logger {
	if c.logger != nil {
		return c.logger
	}
	if c.verbose {
		l, err := zap.NewDevelopment()
		if err == nil {
			c.logger = l
			return l
		}
	}
	c.logger = zap.NewNop()
	return c.logger
}

// withStore loads configuration, connects, applies migrations and hands the
// pool to fn. The pool is closed when fn returns.
func (c *commandContext) withStore(ctx context.Context, fn func(cfg *config.Config, pool *pgxpool.Pool) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer pool.Close()

	if err := db.Migrate(cfg.MigrationsPath, cfg.DatabaseURL); err != nil {
		return err
	}
	return fn(cfg, pool)
}

// withService is withStore plus a read-side AnnotationService. The catalog is
// left unloaded: aggregate and export never consult it.
func (c *commandContext) withService(ctx context.Context, fn func(svc *service.AnnotationService) error) error {
	return c.withStore(ctx, func(cfg *config.Config, pool *pgxpool.Pool) error {
		schema, err := form.Lookup(cfg.SchemaVersion)
		if err != nil {
			return err
		}
		svc := service.NewAnnotationService(
			repository.NewPgAssignmentRepository(pool),
			catalog.New(cfg.MediaBaseURL),
			schema,
			ratelimiter.New(0, 0),
			c.log(),
			service.Hooks{},
		)
		return fn(svc)
	})
}
