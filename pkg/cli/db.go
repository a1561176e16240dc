package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Preyash-NEU/InsightIQ/pkg/adapters/datasource"
	"github.com/Preyash-NEU/InsightIQ/pkg/apperrors"
	"github.com/Preyash-NEU/InsightIQ/pkg/cli/ui"
	"github.com/Preyash-NEU/InsightIQ/pkg/connection"
	"github.com/Preyash-NEU/InsightIQ/pkg/models"
	"github.com/Preyash-NEU/InsightIQ/pkg/retry"
)

// passwordEnv supplies the database password when --password is not given.
const passwordEnv = "INSIGHTIQ_DB_PASSWORD"

// formFlags maps command line flags onto connection form fields. db_type
// comes first because changing it resets the port.
var formFlags = []struct {
	flag  string
	field string
	usage string
}{
	{"type", connection.FieldDBType, "Database type: postgresql, mysql, sqlite"},
	{"host", connection.FieldHost, "Database host"},
	{"port", connection.FieldPort, "Database port (default: the type's standard port)"},
	{"database", connection.FieldDatabase, "Database name, or file path for sqlite"},
	{"username", connection.FieldUsername, "Database user"},
	{"password", connection.FieldPassword, "Database password (or set " + passwordEnv + ")"},
	{"name", connection.FieldName, "Display name of the new data source"},
	{"table", connection.FieldTableName, "Table to ingest (default: the backend picks)"},
}

type formOptions struct {
	values      map[string]*string
	interactive bool
}

func addFormFlags(cmd *cobra.Command) *formOptions {
	opts := &formOptions{values: make(map[string]*string, len(formFlags))}
	for _, f := range formFlags {
		opts.values[f.flag] = cmd.Flags().String(f.flag, "", f.usage)
	}
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "Fill in the connection form interactively")
	return opts
}

// form builds a connection form from the flags that were set, or by
// prompting when --interactive is given.
func (o *formOptions) form(flags *pflag.FlagSet) (connection.Form, error) {
	f := connection.NewForm()
	if o.interactive {
		return f, promptForm(&f)
	}

	for _, ff := range formFlags {
		if !flags.Changed(ff.flag) {
			continue
		}
		if err := f.SetField(ff.field, *o.values[ff.flag]); err != nil {
			return f, err
		}
	}
	if !flags.Changed("password") {
		f.Password = os.Getenv(passwordEnv)
	}
	return f, nil
}

func promptForm(f *connection.Form) error {
	options := make([]string, len(models.DBTypes))
	for i, t := range models.DBTypes {
		options[i] = string(t)
	}
	dbType := string(f.DBType)
	if err := survey.AskOne(&survey.Select{Message: "Database type:", Options: options, Default: dbType}, &dbType); err != nil {
		return err
	}
	f.SetDBType(models.DBType(dbType))

	ask := func(field string, prompt survey.Prompt, required bool) error {
		var value string
		var opts []survey.AskOpt
		if required {
			opts = append(opts, survey.WithValidator(survey.Required))
		}
		if err := survey.AskOne(prompt, &value, opts...); err != nil {
			return err
		}
		return f.SetField(field, value)
	}

	if f.DBType.RequiresServer() {
		if err := ask(connection.FieldHost, &survey.Input{Message: "Host:", Default: f.Host}, true); err != nil {
			return err
		}
		if err := ask(connection.FieldPort, &survey.Input{Message: "Port:", Default: strconv.Itoa(f.Port)}, false); err != nil {
			return err
		}
		if err := ask(connection.FieldDatabase, &survey.Input{Message: "Database:"}, true); err != nil {
			return err
		}
		if err := ask(connection.FieldUsername, &survey.Input{Message: "Username:"}, true); err != nil {
			return err
		}
		if err := ask(connection.FieldPassword, &survey.Password{Message: "Password:"}, true); err != nil {
			return err
		}
	} else {
		if err := ask(connection.FieldDatabase, &survey.Input{Message: "Database file path:"}, true); err != nil {
			return err
		}
	}

	if err := ask(connection.FieldName, &survey.Input{Message: "Data source name:"}, true); err != nil {
		return err
	}
	return ask(connection.FieldTableName, &survey.Input{
		Message: "Table (optional):",
		Help:    "leave empty to let the backend pick a table",
	}, false)
}

func newDBCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Test and connect relational databases",
	}
	cmd.AddCommand(
		newDBTestCmd(a),
		newDBConnectCmd(a),
		newDBProbeCmd(a),
		newDBTypesCmd(a),
	)
	return cmd
}

func (a *app) newTester(opts ...connection.Option) *connection.Tester {
	opts = append([]connection.Option{
		connection.WithDelays(a.cfg.UI.TestConfirmDelay, a.cfg.UI.ConnectSuccessDelay),
	}, opts...)
	return connection.NewTester(a.api, a.logger, opts...)
}

func newDBTestCmd(a *app) *cobra.Command {
	var opts *formOptions
	cmd := &cobra.Command{
		Use:     "test",
		Short:   "Ask the backend to test a database connection",
		Example: `  $ insightiq db test --type postgresql --host db.internal --database sales --username app --name Sales
  $ insightiq db test --interactive`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			form, err := opts.form(cmd.Flags())
			if err != nil {
				return err
			}
			if err := a.requireAuth(); err != nil {
				return err
			}

			tester := a.newTester()
			defer tester.Close()
			tester.Edit(func(f *connection.Form) { *f = form })

			a.ui.Info("Testing %s connection to %s...", form.DBType, target(form))
			res, err := tester.Test(cmd.Context())
			if err != nil {
				return connectionFailure(a, "Connection test failed", err)
			}

			if a.structured() {
				return a.encode(res)
			}
			content := res.Message
			if res.Version != "" {
				content += "\nServer version: " + res.Version
			}
			a.ui.Println(ui.SuccessBox("Connection successful", content))
			return nil
		},
	}
	opts = addFormFlags(cmd)
	return cmd
}

func newDBConnectCmd(a *app) *cobra.Command {
	var opts *formOptions
	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Register a database as a new data source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			form, err := opts.form(cmd.Flags())
			if err != nil {
				return err
			}
			if err := a.requireAuth(); err != nil {
				return err
			}

			done := make(chan *models.DataSource, 1)
			tester := a.newTester(connection.OnSuccess(func(ds *models.DataSource) { done <- ds }))
			defer tester.Close()
			tester.Edit(func(f *connection.Form) { *f = form })

			a.ui.Info("Connecting %s...", target(form))
			created, err := tester.Connect(cmd.Context())
			if err != nil {
				return connectionFailure(a, "Connection failed", err)
			}

			// completion fires once the success step has been shown
			select {
			case created = <-done:
			case <-cmd.Context().Done():
			}

			if a.structured() {
				return a.encode(created)
			}
			a.ui.Println(ui.SuccessBox("Database connected", ui.KeyValues([][2]string{
				{"ID", created.ID.String()},
				{"Name", created.Name},
				{"Type", string(created.Type)},
				{"Rows", formatRows(created.RowCount)},
			})))
			return nil
		},
	}
	opts = addFormFlags(cmd)
	return cmd
}

// connectionFailure shows a failed test or connect. Form problems are
// returned as they are; backend failures get a box with the reason.
func connectionFailure(a *app, title string, err error) error {
	var connErr *apperrors.ConnectionError
	if !errors.As(err, &connErr) {
		return err
	}
	if !a.structured() {
		a.ui.Println(ui.ErrorBox(title, connErr.Message))
	}
	return errors.New(title)
}

func newDBProbeCmd(a *app) *cobra.Command {
	var (
		opts    *formOptions
		retries int
	)
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Check a database from this machine",
		Long:  `Connect to the database directly from this machine instead of through the
backend. Useful to tell a local network or credential problem apart from one on
the backend side. With --table, also check that the table exists.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			form, err := opts.form(cmd.Flags())
			if err != nil {
				return err
			}
			if !form.DBType.Valid() {
				return apperrors.NewValidationError(connection.FieldDBType, "unsupported database type %q", form.DBType)
			}

			backoff := retry.DefaultConfig()
			backoff.MaxRetries = retries
			prober := datasource.NewProber(a.logger, datasource.WithRetry(backoff))
			res, err := prober.Probe(cmd.Context(), form.DatabaseConnection, form.TableName)
			if err != nil {
				if !a.structured() {
					a.ui.Println(ui.ErrorBox("Probe failed", err.Error()))
				}
				return fmt.Errorf("probe of %s failed", target(form))
			}

			if a.structured() {
				return a.encode(res)
			}
			a.ui.Println(ui.SuccessBox("Database reachable", ui.KeyValues([][2]string{
				{"Database", res.Database},
				{"Version", res.Version},
				{"Tables", strconv.Itoa(res.TableCount)},
				{"Latency", res.Latency.String()},
			})))
			return nil
		},
	}
	opts = addFormFlags(cmd)
	cmd.Flags().IntVar(&retries, "retries", retry.DefaultConfig().MaxRetries, "Extra attempts when the server refuses or drops the connection")
	return cmd
}

func newDBTypesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the database types that can be probed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dialects := datasource.Registered()
			if a.structured() {
				return a.encode(dialects)
			}
			rows := make([][]string, 0, len(dialects))
			for _, d := range dialects {
				port := "-"
				if d.DefaultPort > 0 {
					port = strconv.Itoa(d.DefaultPort)
				}
				rows = append(rows, []string{string(d.Type), d.DisplayName, port, d.Description})
			}
			a.ui.Println(ui.Table([]string{"TYPE", "NAME", "PORT", "DESCRIPTION"}, rows))
			return nil
		},
	}
}

func target(f connection.Form) string {
	if !f.DBType.RequiresServer() {
		return f.Database
	}
	return fmt.Sprintf("%s:%d/%s", f.Host, f.Port, f.Database)
}
