package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/Preyash-NEU/InsightIQ/pkg/cli/ui"
	"github.com/Preyash-NEU/InsightIQ/pkg/jsonutil"
	"github.com/Preyash-NEU/InsightIQ/pkg/models"
	"github.com/Preyash-NEU/InsightIQ/pkg/quality"
	"github.com/Preyash-NEU/InsightIQ/pkg/report"
)

func newSourcesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sources",
		Aliases: []string{"ds"},
		Short:   "Manage data sources",
	}
	cmd.AddCommand(
		newSourcesListCmd(a),
		newSourcesShowCmd(a),
		newSourcesDeleteCmd(a),
		newSourcesPreviewCmd(a),
		newSourcesRenameCmd(a),
		newSourcesTablesCmd(a),
	)
	return cmd
}

func newSourcesListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List data sources with their status and quality",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			store := a.newStore()
			if err := store.Refresh(cmd.Context()); err != nil {
				return fmt.Errorf("failed to list data sources: %w", err)
			}
			sources := store.List()

			if a.structured() {
				return a.encode(sources)
			}
			if len(sources) == 0 {
				a.ui.Info("No data sources yet. Upload a file or connect a database to get started.")
				return nil
			}

			rows := make([][]string, 0, len(sources))
			for _, ds := range sources {
				rows = append(rows, []string{
					ds.ID.String(),
					ds.Name,
					string(ds.Type),
					string(ds.Status),
					formatRows(ds.RowCount),
					formatSize(ds.FileSize),
					ui.QualityBadge(ds.QualityScore),
				})
			}
			a.ui.Println(ui.Table([]string{"ID", "NAME", "TYPE", "STATUS", "ROWS", "SIZE", "QUALITY"}, rows))
			a.ui.Println(ui.Count(len(sources), "data source"))
			return nil
		},
	}
}

func newSourcesShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one data source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.requireAuth(); err != nil {
				return err
			}
			ds, err := a.api.GetDataSource(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to load data source: %w", err)
			}

			if a.structured() {
				return a.encode(ds)
			}
			a.printSource(ds)
			return nil
		},
	}
}

func (a *app) printSource(ds *models.DataSource) {
	band := quality.BandOf(ds.QualityScore)
	score := report.QualityScore(ds.QualityScore)
	if !band.IsUnknown() {
		score += " (" + ui.BandLabel(band) + ")"
	}

	a.ui.Bold("%s", ds.Name)
	a.ui.Println(ui.KeyValues([][2]string{
		{"ID", ds.ID.String()},
		{"Type", string(ds.Type)},
		{"Status", string(ds.Status)},
		{"Rows", formatRows(ds.RowCount)},
		{"Size", formatSize(ds.FileSize)},
		{"Quality", score},
		{"Processing time", report.FormatDuration(ds.ProcessingDurationSeconds)},
		{"Last processed", formatTime(ds.LastProcessedAt)},
		{"Created", ds.CreatedAt.Local().Format(time.DateTime)},
	}))

	if len(ds.ColumnsInfo) == 0 {
		return
	}
	rows := make([][]string, 0, len(ds.ColumnsInfo))
	for _, c := range ds.ColumnsInfo {
		rows = append(rows, []string{c.Name, c.Type, strconv.FormatBool(c.Nullable), c.OriginalName})
	}
	a.ui.Println()
	a.ui.Println(ui.Table([]string{"COLUMN", "TYPE", "NULLABLE", "ORIGINAL NAME"}, rows))
}

func newSourcesDeleteCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a data source",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.requireAuth(); err != nil {
				return err
			}

			if !yes {
				confirm := false
				prompt := &survey.Confirm{Message: fmt.Sprintf("Delete data source %s?", id)}
				if err := survey.AskOne(prompt, &confirm); err != nil {
					return err
				}
				if !confirm {
					a.ui.Info("Cancelled")
					return nil
				}
			}

			if err := a.newStore().Delete(cmd.Context(), id); err != nil {
				return err
			}
			a.ui.Success("Data source %s deleted", id)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func newSourcesPreviewCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "preview <id>",
		Short: "Show the first rows of a data source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.requireAuth(); err != nil {
				return err
			}
			if limit <= 0 {
				limit = a.cfg.API.PreviewLimit
			}
			preview, err := a.api.Preview(cmd.Context(), id, limit)
			if err != nil {
				return fmt.Errorf("failed to load preview: %w", err)
			}
			return a.printPreview(preview)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Number of rows (default: api.preview_limit)")
	return cmd
}

func (a *app) printPreview(p *models.DataPreview) error {
	if a.structured() {
		return a.encode(p)
	}
	rows := make([][]string, 0, len(p.Rows))
	for _, row := range p.Rows {
		cells := make([]string, len(p.Columns))
		for i, col := range p.Columns {
			cells[i] = jsonutil.CellText(row[col])
		}
		rows = append(rows, cells)
	}
	a.ui.Println(ui.Table(p.Columns, rows))
	a.ui.Printf("Showing %d of %s\n", len(p.Rows), ui.Count(int(p.TotalRows), "row"))
	return nil
}

func newSourcesRenameCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Change the display name of a data source",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.requireAuth(); err != nil {
				return err
			}

			store := a.newStore()
			if err := store.Refresh(cmd.Context()); err != nil {
				return fmt.Errorf("failed to list data sources: %w", err)
			}
			name := args[1]
			updated, err := store.Update(cmd.Context(), id, models.DataSourceUpdate{Name: &name})
			if err != nil {
				return err
			}

			if a.structured() {
				return a.encode(updated)
			}
			a.ui.Success("Renamed to %q", updated.Name)
			return nil
		},
	}
}

func newSourcesTablesCmd(a *app) *cobra.Command {
	var (
		preview bool
		limit   int
	)
	cmd := &cobra.Command{
		Use:   "tables <id> [table]",
		Short: "Browse the tables of a database source",
		Long:  `Without a table name, list the tables visible through a database source.
With one, show its columns and row count, or its first rows with --preview.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.requireAuth(); err != nil {
				return err
			}
			ctx := cmd.Context()

			if len(args) == 1 {
				list, err := a.api.ListTables(ctx, id)
				if err != nil {
					return fmt.Errorf("failed to list tables: %w", err)
				}
				if a.structured() {
					return a.encode(list)
				}
				for _, t := range list.Tables {
					a.ui.Println(t)
				}
				a.ui.Println(ui.Styles.Muted.Render(ui.Count(list.TableCount, "table")))
				return nil
			}

			table := args[1]
			if preview {
				if limit <= 0 {
					limit = a.cfg.API.PreviewLimit
				}
				p, err := a.api.PreviewTable(ctx, id, table, limit)
				if err != nil {
					return fmt.Errorf("failed to preview table: %w", err)
				}
				return a.printPreview(p)
			}

			info, err := a.api.TableInfo(ctx, id, table)
			if err != nil {
				return fmt.Errorf("failed to describe table: %w", err)
			}
			if a.structured() {
				return a.encode(info)
			}
			rows := make([][]string, 0, len(info.Columns))
			for _, c := range info.Columns {
				rows = append(rows, []string{c.Name, c.Type})
			}
			a.ui.Bold("%s", info.TableName)
			a.ui.Println(ui.Table([]string{"COLUMN", "TYPE"}, rows))
			a.ui.Println(ui.Count(int(info.RowCount), "row"))
			return nil
		},
	}
	cmd.Flags().BoolVar(&preview, "preview", false, "Show the table's first rows")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Number of preview rows (default: api.preview_limit)")
	return cmd
}

func formatRows(n *int64) string {
	if n == nil {
		return "-"
	}
	return strconv.FormatInt(*n, 10)
}

func formatSize(n *int64) string {
	if n == nil {
		return "-"
	}
	return report.FormatFileSize(*n)
}

func formatTime(t *jsonutil.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format(time.DateTime)
}
