package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/gofrs/flock"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/clipqa/annotation-service/internal/catalog"
	"github.com/clipqa/annotation-service/internal/config"
	"github.com/clipqa/annotation-service/internal/distributor"
	"github.com/clipqa/annotation-service/internal/repository"
	"github.com/clipqa/annotation-service/internal/service"
)

func defaultLockPath() string {
	return filepath.Join(os.TempDir(), "annotatectl-seed.lock")
}

func newSeedCommand(ctx *commandContext) *cobra.Command {
	var (
		usersPath string
		itemsPath string
		lockPath  string
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Upsert annotators and replace the annotation queue",
		Long: "Reads the users file and the items CSV, upserts every user, then deletes all\n" +
			"assignments and inserts a fresh distribution where each item goes to two users.\n" +
			"Run it while the server is idle: in-flight work is discarded.",
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := LoadUsers(usersPath)
			if err != nil {
				return err
			}
			items, err := catalog.ReadCSVFile(itemsPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if dryRun {
				plan, err := service.NewSeeder(nil, nil, 0, ctx.log()).Plan(users, items)
				if err != nil {
					return err
				}
				printNote(out, "dry run: nothing written")
				printPlan(out, plan, len(items))
				return nil
			}

			lock := flock.New(lockPath)
			ok, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire seed lock: %w", err)
			}
			if !ok {
				return errors.New("another seed is already running (lock " + lockPath + ")")
			}
			defer lock.Unlock() //nolint:errcheck

			return ctx.withStore(cmd.Context(), func(cfg *config.Config, pool *pgxpool.Pool) error {
				seeder := service.NewSeeder(
					repository.NewPgUserRepository(pool),
					repository.NewPgAssignmentRepository(pool),
					cfg.BcryptCost,
					ctx.log(),
				)
				report, err := seeder.Seed(cmd.Context(), users, items)
				if err != nil {
					return err
				}
				printReport(out, report)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&usersPath, "users", "users.toml", "Seed users file (TOML)")
	cmd.Flags().StringVar(&itemsPath, "items", "", "Items CSV with narration_id and narration columns")
	cmd.Flags().StringVar(&lockPath, "lock", defaultLockPath(), "Lock file preventing concurrent seeds")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the distribution without writing")
	_ = cmd.MarkFlagRequired("items")

	return cmd
}

func loadRows(load map[string]int) [][]string {
	users := make([]string, 0, len(load))
	for u := range load {
		users = append(users, u)
	}
	sort.Strings(users)
	rows := make([][]string, len(users))
	for i, u := range users {
		rows[i] = []string{u, strconv.Itoa(load[u])}
	}
	return rows
}

func printPlan(w io.Writer, plan *distributor.Plan, items int) {
	fmt.Fprintln(w, renderTable([]string{"User", "Assignments"}, loadRows(plan.Load), []columnAlignment{alignLeft, alignRight}))
	printOK(w, "%d items, %d assignments, %d users", items-len(plan.Skipped), len(plan.Assignments), len(plan.Load))
	if len(plan.Skipped) > 0 {
		printWarn(w, "%d duplicate narration ids skipped: %v", len(plan.Skipped), plan.Skipped)
	}
}

func printReport(w io.Writer, r *service.SeedReport) {
	fmt.Fprintln(w, renderTable([]string{"User", "Assignments"}, loadRows(r.Load), []columnAlignment{alignLeft, alignRight}))
	printOK(w, "users: %d inserted, %d updated", r.UsersCreated, r.UsersUpdated)
	printOK(w, "queue reseeded: %d items, %d assignments", r.Items, r.Assignments)
	if len(r.Skipped) > 0 {
		printWarn(w, "%d duplicate narration ids skipped: %v", len(r.Skipped), r.Skipped)
	}
}
