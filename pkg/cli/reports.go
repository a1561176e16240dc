package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Preyash-NEU/InsightIQ/pkg/cli/ui"
	"github.com/Preyash-NEU/InsightIQ/pkg/models"
	"github.com/Preyash-NEU/InsightIQ/pkg/quality"
	"github.com/Preyash-NEU/InsightIQ/pkg/report"
)

func newQualityCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "quality <id>",
		Short: "Show the quality report of a data source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.requireAuth(); err != nil {
				return err
			}
			rep, err := a.api.QualityReport(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to load quality report: %w", err)
			}

			if a.structured() {
				return a.encode(rep)
			}
			a.printQuality(rep)
			return nil
		},
	}
}

func (a *app) printQuality(rep *models.QualityReport) {
	overall := quality.BandOf(&rep.OverallScore)
	stats := rep.DatasetStats

	pairs := [][2]string{
		{"Overall", fmt.Sprintf("%s %s", report.QualityScore(&rep.OverallScore), ui.BandLabel(overall))},
		{"Rows", strconv.FormatInt(stats.TotalRows, 10)},
		{"Columns", strconv.FormatInt(stats.TotalColumns, 10)},
		{"Missing cells", fmt.Sprintf("%d of %d", stats.MissingCells, stats.TotalCells)},
	}
	if stats.CompletenessPercent != nil {
		pairs = append(pairs, [2]string{"Completeness", fmt.Sprintf("%.1f%%", *stats.CompletenessPercent)})
	}
	a.ui.Println(ui.KeyValues(pairs))

	if rep.Columns.Len() == 0 {
		return
	}
	rows := make([][]string, 0, rep.Columns.Len())
	for name, c := range rep.Columns.All() {
		level := c.QualityLevel
		rows = append(rows, []string{
			name,
			fmt.Sprintf("%.1f", c.QualityScore),
			ui.BandLabel(quality.BandForLevel(&level)),
			percent(c.Completeness),
			percent(c.Uniqueness),
			percent(c.Consistency),
			percent(c.Validity),
			strings.Join(c.Issues, "; "),
		})
	}
	a.ui.Println()
	a.ui.Println(ui.Table(
		[]string{"COLUMN", "SCORE", "LEVEL", "COMPLETE", "UNIQUE", "CONSISTENT", "VALID", "ISSUES"},
		rows))
}

func percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

func newReportCmd(a *app) *cobra.Command {
	var (
		download bool
		dir      string
	)
	cmd := &cobra.Command{
		Use:     "report <id>",
		Short:   "Show or save the cleaning report of a data source",
		Example: `  $ insightiq report 7d1e4c52-...
  $ insightiq report 7d1e4c52-... --download --dir reports/`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.requireAuth(); err != nil {
				return err
			}
			ctx := cmd.Context()

			rep, err := a.api.CleaningReport(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to load cleaning report: %w", err)
			}
			if a.structured() && !download {
				return a.encode(rep)
			}

			source, err := a.api.GetDataSource(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to load data source: %w", err)
			}

			if !download {
				a.ui.Println(report.Render(rep, source, a.now()))
				return nil
			}
			if dir == "" {
				dir = a.cfg.Report.DownloadDir
			}
			path, err := report.Save(dir, rep, source, a.now())
			if err != nil {
				return err
			}
			a.ui.Success("Report saved to %s", path)
			if a.structured() {
				return a.encode(map[string]string{"path": path})
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&download, "download", "d", false, "Save the report as a text file")
	cmd.Flags().StringVar(&dir, "dir", "", "Directory for --download (default: report.download_dir)")
	return cmd
}
