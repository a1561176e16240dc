// Package sqlite probes SQLite database files on the local disk.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Preyash-NEU/InsightIQ/pkg/adapters/datasource"
	"github.com/Preyash-NEU/InsightIQ/pkg/models"
)

// Adapter opens a database file read-only.
type Adapter struct {
	path string
	db   *sql.DB
}

// NewAdapter checks that path names a regular file before opening it, since
// the driver would otherwise create an empty database.
func NewAdapter(path string) (*Adapter, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open sqlite database: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("cannot open sqlite database: %s is a directory", path)
	}

	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)
	return &Adapter{path: path, db: db}, nil
}

func (a *Adapter) TestConnection(ctx context.Context) (*datasource.ProbeResult, error) {
	var version string
	if err := a.db.QueryRowContext(ctx, "SELECT sqlite_version()").Scan(&version); err != nil {
		return nil, fmt.Errorf("failed to read sqlite version: %w", err)
	}

	// reading the schema fails on files that are not databases
	var tables int
	err := a.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'").Scan(&tables)
	if err != nil {
		return nil, fmt.Errorf("failed to read sqlite schema: %w", err)
	}

	return &datasource.ProbeResult{
		DBType:     models.DBSQLite,
		Version:    version,
		Database:   filepath.Base(a.path),
		TableCount: tables,
	}, nil
}

func (a *Adapter) HasTable(ctx context.Context, name string) (bool, error) {
	var count int
	err := a.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (a *Adapter) Close() error {
	return a.db.Close()
}

var _ datasource.ConnectionTester = (*Adapter)(nil)
