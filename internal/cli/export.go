package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/clipqa/annotation-service/internal/export"
	"github.com/clipqa/annotation-service/internal/service"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var (
		formatFlag string
		outPath    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Dump every completed annotation as CSV or XLSX",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := export.ParseFormat(formatFlag)
			if err != nil {
				return err
			}
			if format == export.FormatXLSX && outPath == "" {
				return fmt.Errorf("--out is required for xlsx")
			}

			return ctx.withService(cmd.Context(), func(svc *service.AnnotationService) error {
				rows, err := svc.ExportCompleted(cmd.Context())
				if err != nil {
					return err
				}
				table := export.Flatten(rows, svc.Schema().FieldIDs())

				var w io.Writer = cmd.OutOrStdout()
				if outPath != "" {
					f, err := os.Create(outPath)
					if err != nil {
						return fmt.Errorf("create %s: %w", outPath, err)
					}
					defer f.Close()
					w = f
				}
				if err := export.Write(w, format, table); err != nil {
					return err
				}
				if outPath != "" {
					printOK(cmd.ErrOrStderr(), "wrote %d rows to %s", len(table.Rows), outPath)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&formatFlag, "format", "f", "csv", "Output format: csv or xlsx")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default stdout)")
	return cmd
}
