package cli

import (
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/Preyash-NEU/InsightIQ/pkg/apperrors"
	"github.com/Preyash-NEU/InsightIQ/pkg/cli/ui"
	"github.com/Preyash-NEU/InsightIQ/pkg/client"
	"github.com/Preyash-NEU/InsightIQ/pkg/config"
	"github.com/Preyash-NEU/InsightIQ/pkg/ingest"
	"github.com/Preyash-NEU/InsightIQ/pkg/report"
)

func (a *app) sheetLister(local bool) (ingest.SheetLister, error) {
	mode := a.cfg.Ingest.SheetDiscovery
	if local {
		mode = config.SheetDiscoveryLocal
	}
	return ingest.NewSheetLister(mode, a.api, a.logger)
}

func newUploadCmd(a *app) *cobra.Command {
	var (
		name        string
		sheet       string
		localSheets bool
		interactive bool
	)
	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a file as a new data source",
		Long:  `Upload a CSV, TSV, JSON, Parquet or Excel file. The backend cleans and scores
the file before the command returns.

Excel workbooks upload one sheet: the first one unless --sheet names another,
or pick it from a list with --interactive.`,
		Example: `  $ insightiq upload orders.csv
  $ insightiq upload budget.xlsx --sheet "FY 2025" --name "Budget 2025"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			lister, err := a.sheetLister(localSheets)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			wf := ingest.NewWorkflow(a.api, lister, a.logger,
				ingest.WithMaxFileSize(a.cfg.Ingest.MaxFileSizeBytes()))
			if err := wf.Browse(ctx, args[0]); err != nil {
				if msg := wf.State().Error; msg != "" && !apperrors.IsValidation(err) {
					return fmt.Errorf("%s: %w", msg, err)
				}
				return err
			}

			if msg := wf.State().Error; msg != "" {
				return errors.New(msg)
			}
			if st := wf.State(); st.IsWorkbook {
				switch {
				case sheet != "":
					if err := wf.ChooseSheet(sheet); err != nil {
						return err
					}
				case interactive && len(st.Sheets) > 1:
					choice := st.SelectedSheet
					prompt := &survey.Select{Message: "Sheet to upload:", Options: st.Sheets, Default: choice}
					if err := survey.AskOne(prompt, &choice); err != nil {
						return err
					}
					if err := wf.ChooseSheet(choice); err != nil {
						return err
					}
				}
				a.ui.Info("Uploading sheet %q of %s", wf.State().SelectedSheet, ui.Count(len(st.Sheets), "sheet"))
			}

			st := wf.State()
			a.ui.Info("Uploading %s (%s)...", st.File.Name, report.FormatFileSize(st.File.Size))
			created, err := wf.Upload(ctx, name)
			if err != nil {
				if _, ok := client.DetailOf(err); ok {
					return errors.New(wf.State().Error)
				}
				return err
			}

			if a.structured() {
				return a.encode(created)
			}
			a.ui.Println(ui.SuccessBox("Upload complete", ui.KeyValues([][2]string{
				{"ID", created.ID.String()},
				{"Name", created.Name},
				{"Rows", formatRows(created.RowCount)},
				{"Quality", ui.QualityBadge(created.QualityScore)},
			})))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Display name (default: the file name without extension)")
	cmd.Flags().StringVar(&sheet, "sheet", "", "Workbook sheet to upload")
	cmd.Flags().BoolVar(&localSheets, "local-sheets", false, "Read workbook sheet names locally instead of asking the backend")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Pick the sheet from a list")
	return cmd
}

func newSheetsCmd(a *app) *cobra.Command {
	var local bool
	cmd := &cobra.Command{
		Use:   "sheets <file>",
		Short: "List the sheets of an Excel workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := ingest.Classify(args[0])
			if err != nil {
				return err
			}
			if !kind.Workbook {
				return apperrors.NewValidationError("file", "%s is not an Excel workbook", args[0])
			}
			if !local && a.cfg.Ingest.SheetDiscovery != config.SheetDiscoveryLocal {
				if err := a.requireAuth(); err != nil {
					return err
				}
			}

			lister, err := a.sheetLister(local)
			if err != nil {
				return err
			}
			f, err := ingest.LocalFile(args[0])
			if err != nil {
				return err
			}
			sheets, err := lister.ListSheets(cmd.Context(), f)
			if err != nil {
				return fmt.Errorf("%s: %w", ingest.SheetErrorMessage, err)
			}

			if a.structured() {
				return a.encode(sheets)
			}
			if len(sheets) == 0 {
				a.ui.Warning(ingest.NoSheetsMessage)
				return nil
			}
			for _, s := range sheets {
				a.ui.Println(s)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&local, "local", false, "Read the workbook locally instead of asking the backend")
	return cmd
}
