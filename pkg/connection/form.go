// Package connection implements the database connection form, its
// validation rules and the test/connect workflow against the backend.
package connection

import (
	"fmt"
	"strconv"

	"github.com/Preyash-NEU/InsightIQ/pkg/apperrors"
	"github.com/Preyash-NEU/InsightIQ/pkg/models"
	"github.com/Preyash-NEU/InsightIQ/pkg/sql"
)

// Field names accepted by Form.SetField.
const (
	FieldDBType    = "db_type"
	FieldHost      = "host"
	FieldPort      = "port"
	FieldDatabase  = "database"
	FieldUsername  = "username"
	FieldPassword  = "password"
	FieldName      = "name"
	FieldTableName = "table_name"
)

// Form is the state of the connect-database form.
type Form struct {
	models.DatabaseConnection
	Name      string
	TableName string
}

// NewForm returns the form with its initial values: PostgreSQL on localhost.
func NewForm() Form {
	return Form{
		DatabaseConnection: models.DatabaseConnection{
			DBType: models.DBPostgreSQL,
			Host:   "localhost",
			Port:   models.DefaultPort(models.DBPostgreSQL),
		},
	}
}

// SetDBType switches the dialect and resets the port to the dialect default.
// The reset happens on every switch, discarding a port the user typed.
func (f *Form) SetDBType(t models.DBType) {
	f.DBType = t
	f.Port = models.DefaultPort(t)
}

// SetField assigns a single field by name from its text representation.
func (f *Form) SetField(field, value string) error {
	switch field {
	case FieldDBType:
		t := models.DBType(value)
		if !t.Valid() {
			return apperrors.NewValidationError(field, "unsupported database type %q", value)
		}
		f.SetDBType(t)
	case FieldPort:
		if value == "" {
			f.Port = 0
			return nil
		}
		port, err := strconv.Atoi(value)
		if err != nil || port < 0 || port > 65535 {
			return apperrors.NewValidationError(field, "must be a number between 0 and 65535")
		}
		f.Port = port
	case FieldHost:
		f.Host = value
	case FieldDatabase:
		f.Database = value
	case FieldUsername:
		f.Username = value
	case FieldPassword:
		f.Password = value
	case FieldName:
		f.Name = value
	case FieldTableName:
		f.TableName = value
	default:
		return fmt.Errorf("unknown form field %q", field)
	}
	return nil
}

// IsSubmittable reports whether test and connect may be triggered.
// database and name are always required; host, username and password are
// required for every dialect except SQLite, whose database field is a file path.
func IsSubmittable(conn models.DatabaseConnection, name string) bool {
	if conn.Database == "" || name == "" {
		return false
	}
	if conn.DBType == models.DBSQLite {
		return true
	}
	return conn.Host != "" && conn.Username != "" && conn.Password != ""
}

// Submittable applies IsSubmittable to the form.
func (f Form) Submittable() bool {
	return IsSubmittable(f.DatabaseConnection, f.Name)
}

// Validate explains why the form is not submittable. It returns nil exactly
// when Submittable is true and the dialect is known.
func (f Form) Validate() error {
	if !f.DBType.Valid() {
		return apperrors.NewValidationError(FieldDBType, "unsupported database type %q", f.DBType)
	}
	if f.Name == "" {
		return apperrors.NewValidationError(FieldName, "is required")
	}
	if f.Database == "" {
		if f.DBType == models.DBSQLite {
			return apperrors.NewValidationError(FieldDatabase, "file path is required")
		}
		return apperrors.NewValidationError(FieldDatabase, "is required")
	}
	if f.DBType.RequiresServer() {
		switch {
		case f.Host == "":
			return apperrors.NewValidationError(FieldHost, "is required for %s", f.DBType)
		case f.Username == "":
			return apperrors.NewValidationError(FieldUsername, "is required for %s", f.DBType)
		case f.Password == "":
			return apperrors.NewValidationError(FieldPassword, "is required for %s", f.DBType)
		}
	}
	return nil
}

// CheckTableName rejects an optional table name that looks like a SQL
// injection attempt. An empty name is allowed.
func CheckTableName(name string) error {
	if r := sql.CheckValue(FieldTableName, name); r != nil {
		return apperrors.NewValidationError(FieldTableName, "contains a disallowed SQL pattern (%s)", r.Fingerprint)
	}
	return nil
}

// ConnectRequest builds the connect body. Without a name the request is
// labelled "{db_type} - {database}".
func (f Form) ConnectRequest() models.DatabaseConnectRequest {
	name := f.Name
	if name == "" {
		name = fmt.Sprintf("%s - %s", f.DBType, f.Database)
	}
	return models.DatabaseConnectRequest{
		DatabaseConnection: f.DatabaseConnection,
		Name:               name,
		TableName:          f.TableName,
	}
}
