// Package cli implements the insightiq command.
package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	// dialects available to "db probe"
	_ "github.com/Preyash-NEU/InsightIQ/pkg/adapters/datasource/mysql"
	_ "github.com/Preyash-NEU/InsightIQ/pkg/adapters/datasource/postgres"
	_ "github.com/Preyash-NEU/InsightIQ/pkg/adapters/datasource/sqlite"

	"github.com/Preyash-NEU/InsightIQ/pkg/apperrors"
	"github.com/Preyash-NEU/InsightIQ/pkg/auth"
	"github.com/Preyash-NEU/InsightIQ/pkg/cli/ui"
	"github.com/Preyash-NEU/InsightIQ/pkg/client"
	"github.com/Preyash-NEU/InsightIQ/pkg/config"
	"github.com/Preyash-NEU/InsightIQ/pkg/datasources"
	"github.com/Preyash-NEU/InsightIQ/pkg/logging"
	"github.com/Preyash-NEU/InsightIQ/pkg/workers"
)

// app carries what every command needs. It is populated by the root
// command's pre-run hook.
type app struct {
	version    string
	configPath string
	output     string
	verbose    bool

	cfg     *config.Config
	logger  *zap.Logger
	session *auth.Session
	api     *client.Client
	ui      *ui.Printer
	now     func() time.Time
}

// NewRootCmd builds the command tree.
func NewRootCmd(version string) *cobra.Command {
	a := &app{version: version, now: time.Now}

	root := &cobra.Command{
		Use:     "insightiq",
		Short:   "InsightIQ data source client",
		Version: version,
		Long:    `Connect, upload and monitor data sources on an InsightIQ backend.

The backend URL and access token come from config.yaml or the environment
(INSIGHTIQ_API_URL, INSIGHTIQ_TOKEN).`,
		Example: `  # List data sources with their quality
  $ insightiq sources list

  # Upload a workbook sheet
  $ insightiq upload sales.xlsx --sheet Q3

  # Test a database before connecting it
  $ insightiq db test --type mysql --host db.local --database sales --username app

  # Save a cleaning report
  $ insightiq report 7d1e... --download`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetVersionTemplate("insightiq version {{.Version}}\n")

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Config file (default: ./config.yaml when present)")
	flags.StringVarP(&a.output, "output", "o", ui.FormatTable, "Output format: table, json, yaml")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Log debug output to stderr")

	root.AddCommand(
		newSourcesCmd(a),
		newUploadCmd(a),
		newSheetsCmd(a),
		newDBCmd(a),
		newQualityCmd(a),
		newReportCmd(a),
		newReprocessCmd(a),
		newWhoamiCmd(a),
	)
	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute(version string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := NewRootCmd(version)
	err := root.ExecuteContext(ctx)
	if err != nil {
		ui.NewPrinter(os.Stdout, os.Stderr).Error("%s", err)
		return 1
	}
	return 0
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if !ui.ValidFormat(a.output) {
		return apperrors.NewValidationError("output", "unsupported output format %q", a.output)
	}
	a.ui = ui.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr())

	var err error
	if a.configPath != "" {
		a.cfg, err = config.LoadFrom(a.configPath, a.version, true)
	} else {
		a.cfg, err = config.Load(a.version)
	}
	if err != nil {
		return err
	}

	level := a.cfg.Log.Level
	if a.verbose {
		level = "debug"
	}
	a.logger, err = logging.NewLogger(level, a.cfg.IsDevelopment())
	if err != nil {
		return err
	}

	a.session, err = auth.NewSession(a.cfg.API.BaseURL, a.cfg.Token)
	if err != nil {
		return err
	}
	a.api = client.New(a.session, a.cfg.API.RequestTimeout, a.logger)

	cmd.SetContext(auth.WithSession(cmd.Context(), a.session))
	return nil
}

// requireAuth refuses to call the backend without a usable token.
func (a *app) requireAuth() error {
	if !a.session.Authenticated() {
		return errors.New("not authenticated: set INSIGHTIQ_TOKEN to an access token from the InsightIQ login endpoint")
	}
	return a.session.Check(a.now())
}

func (a *app) newStore() *datasources.Store {
	pool := workers.NewPool(workers.Config{MaxConcurrent: a.cfg.Reprocess.MaxConcurrent}, a.logger)
	return datasources.NewStore(a.api, a.logger,
		datasources.WithPageSize(a.cfg.API.PageSize),
		datasources.WithPool(pool))
}

// structured reports whether output should be encoded rather than drawn.
func (a *app) structured() bool {
	return a.output != ui.FormatTable
}

func (a *app) encode(v any) error {
	return ui.Encode(a.ui.Out, a.output, v)
}

func parseID(arg string) (uuid.UUID, error) {
	id, err := uuid.Parse(arg)
	if err != nil {
		return uuid.Nil, apperrors.NewValidationError("id", "%q is not a valid data source ID", arg)
	}
	return id, nil
}

func parseIDs(args []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(args))
	for _, arg := range args {
		id, err := parseID(arg)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the session used to call the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, ok := auth.SessionFromContext(cmd.Context())
			if !ok {
				return errors.New("no session")
			}

			expires := "never"
			if s.Claims != nil && s.Claims.ExpiresAt != nil {
				expires = s.Claims.ExpiresAt.Time.Format(time.RFC3339)
				if s.Expired(a.now()) {
					expires += " (expired)"
				}
			}

			if a.structured() {
				return a.encode(map[string]any{
					"api_url":       s.BaseURL,
					"subject":       s.Subject(),
					"authenticated": s.Authenticated(),
					"expires":       expires,
				})
			}
			a.ui.Println(ui.KeyValues([][2]string{
				{"API", s.BaseURL},
				{"User", s.Subject()},
				{"Expires", expires},
			}))
			return nil
		},
	}
}
