package cli

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Preyash-NEU/InsightIQ/pkg/apperrors"
	"github.com/Preyash-NEU/InsightIQ/pkg/cli/ui"
	"github.com/Preyash-NEU/InsightIQ/pkg/report"
)

// reprocessOutcome is one line of reprocess output.
type reprocessOutcome struct {
	ID           string   `json:"id"`
	Name         string   `json:"name,omitempty"`
	Success      bool     `json:"success"`
	QualityScore *float64 `json:"quality_score,omitempty"`
	Duration     *float64 `json:"duration_seconds,omitempty"`
	Error        string   `json:"error,omitempty"`
	ErrorType    string   `json:"error_type,omitempty"`
}

func newReprocessCmd(a *app) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "reprocess [id...]",
		Short: "Rerun cleaning and quality scoring",
		Long:  `Rerun the backend pipeline for one or more data sources. Runs in parallel up
to reprocess.max_concurrent. A failed run keeps the previous quality score.`,
		Example: `  $ insightiq reprocess 7d1e4c52-...
  $ insightiq reprocess --all`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) > 0) {
				return apperrors.NewValidationError("id", "give data source IDs or --all, not both")
			}
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			if err := a.requireAuth(); err != nil {
				return err
			}
			ctx := cmd.Context()

			store := a.newStore()
			if err := store.Refresh(ctx); err != nil {
				return fmt.Errorf("failed to list data sources: %w", err)
			}
			if all {
				for _, ds := range store.List() {
					ids = append(ids, ds.ID)
				}
				if len(ids) == 0 {
					a.ui.Info("No data sources to reprocess")
					return nil
				}
			}

			a.ui.Info("Reprocessing %s...", ui.Count(len(ids), "data source"))
			results := store.ReprocessAll(ctx, ids, func(done, total int) {
				if total > 1 {
					a.ui.Info("%d/%d done", done, total)
				}
			})

			outcomes := make([]reprocessOutcome, len(results))
			failed := 0
			for i, r := range results {
				o := reprocessOutcome{ID: r.ID}
				if ds, ok := store.Get(ids[i]); ok {
					o.Name = ds.Name
				}
				if r.Value != nil {
					o.QualityScore = r.Value.QualityScore
					o.Duration = r.Value.DurationSeconds
				}
				if r.Err != nil {
					failed++
					o.Error = r.Err.Error()
					var procErr *apperrors.ProcessingError
					if errors.As(r.Err, &procErr) {
						o.Error = procErr.Message
						o.ErrorType = procErr.ErrorType
					}
				} else {
					o.Success = true
				}
				outcomes[i] = o
			}

			if a.structured() {
				if err := a.encode(outcomes); err != nil {
					return err
				}
			} else {
				a.printOutcomes(outcomes, ids)
			}

			if failed > 0 {
				return fmt.Errorf("%d of %s failed", failed, ui.Count(len(ids), "reprocess run"))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Reprocess every data source")
	return cmd
}

func (a *app) printOutcomes(outcomes []reprocessOutcome, ids []uuid.UUID) {
	for i, o := range outcomes {
		label := o.Name
		if label == "" {
			label = ids[i].String()
		}
		if !o.Success {
			msg := o.Error
			if o.ErrorType != "" {
				msg = fmt.Sprintf("%s (%s)", msg, o.ErrorType)
			}
			a.ui.Error("%s: %s", label, msg)
			continue
		}
		a.ui.Success("%s: quality %s in %s", label,
			report.QualityScore(o.QualityScore), report.FormatDuration(o.Duration))
	}
}
