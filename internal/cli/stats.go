package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/clipqa/annotation-service/internal/domain"
	"github.com/clipqa/annotation-service/internal/service"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show complete/pending counts per annotator",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(cmd.Context(), func(svc *service.AnnotationService) error {
				agg, err := svc.AggregateByStatus(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(agg)
				}
				printStats(cmd.OutOrStdout(), agg)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func percent(part, whole int) string {
	if whole == 0 {
		return "-"
	}
	return strconv.FormatFloat(100*float64(part)/float64(whole), 'f', 1, 64) + "%"
}

func printStats(w io.Writer, agg map[string]domain.StatusCounts) {
	if len(agg) == 0 {
		printWarn(w, "annotation queue is empty; run seed first")
		return
	}

	users := make([]string, 0, len(agg))
	for u := range agg {
		users = append(users, u)
	}
	sort.Strings(users)

	var total domain.StatusCounts
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		c := agg[u]
		total.Complete += c.Complete
		total.Pending += c.Pending
		rows = append(rows, []string{
			u,
			strconv.Itoa(c.Complete),
			strconv.Itoa(c.Pending),
			strconv.Itoa(c.Total()),
			percent(c.Complete, c.Total()),
		})
	}

	fmt.Fprintln(w, renderTable(
		[]string{"User", "Complete", "Pending", "Total", "Done"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight},
	))
	if total.Pending == 0 {
		printOK(w, "all %d assignments complete", total.Total())
		return
	}
	printNote(w, "%d of %d assignments complete (%s)", total.Complete, total.Total(), percent(total.Complete, total.Total()))
}
