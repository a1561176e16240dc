package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Preyash-NEU/InsightIQ/pkg/adapters/datasource"
	"github.com/Preyash-NEU/InsightIQ/pkg/models"
)

// Adapter probes a PostgreSQL server.
type Adapter struct {
	config *Config
	pool   *pgxpool.Pool
}

// NewAdapter opens a single-connection pool for cfg.
func NewAdapter(ctx context.Context, cfg *Config) (*Adapter, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("invalid postgres connection settings: %w", err)
	}
	poolCfg.MaxConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	return &Adapter{config: cfg, pool: pool}, nil
}

// TestConnection verifies the server answers, that the session landed in the
// configured database, and counts the user tables it can see.
func (a *Adapter) TestConnection(ctx context.Context) (*datasource.ProbeResult, error) {
	if err := a.pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping failed: %w", err)
	}

	var version string
	if err := a.pool.QueryRow(ctx, "SELECT version()").Scan(&version); err != nil {
		return nil, fmt.Errorf("failed to read server version: %w", err)
	}

	var currentDB string
	if err := a.pool.QueryRow(ctx, "SELECT current_database()").Scan(&currentDB); err != nil {
		return nil, fmt.Errorf("failed to get current database name: %w", err)
	}
	if !strings.EqualFold(currentDB, a.config.Database) {
		return nil, fmt.Errorf("connected to wrong database: expected %q but connected to %q", a.config.Database, currentDB)
	}

	var tables int
	err := a.pool.QueryRow(ctx, `
		SELECT count(*)
		FROM information_schema.tables
		WHERE table_schema NOT IN ('pg_catalog', 'information_schema')
		  AND table_type = 'BASE TABLE'`).Scan(&tables)
	if err != nil {
		return nil, fmt.Errorf("failed to count tables: %w", err)
	}

	return &datasource.ProbeResult{
		DBType:     models.DBPostgreSQL,
		Version:    version,
		Database:   currentDB,
		TableCount: tables,
	}, nil
}

// HasTable looks name up in any non-system schema.
func (a *Adapter) HasTable(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := a.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM information_schema.tables
			WHERE table_schema NOT IN ('pg_catalog', 'information_schema')
			  AND table_name = $1
		)`, name).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// Close releases the pool.
func (a *Adapter) Close() error {
	if a.pool != nil {
		a.pool.Close()
	}
	return nil
}

var _ datasource.ConnectionTester = (*Adapter)(nil)
