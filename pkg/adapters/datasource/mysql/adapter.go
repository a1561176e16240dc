// Package mysql probes MySQL and MariaDB servers.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/Preyash-NEU/InsightIQ/pkg/adapters/datasource"
	"github.com/Preyash-NEU/InsightIQ/pkg/config"
	"github.com/Preyash-NEU/InsightIQ/pkg/models"
)

const dialTimeout = 5 * time.Second

// NewDriverConfig maps the connection form onto the driver's config.
func NewDriverConfig(conn models.DatabaseConnection) (*mysql.Config, error) {
	if conn.Host == "" {
		return nil, fmt.Errorf("host is required")
	}
	if conn.Username == "" {
		return nil, fmt.Errorf("user is required")
	}
	if conn.Database == "" {
		return nil, fmt.Errorf("database is required")
	}

	port := conn.Port
	if port == 0 {
		port = models.DefaultPort(models.DBMySQL)
	}

	cfg := mysql.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(config.ProbeHost(conn.Host), strconv.Itoa(port))
	cfg.User = conn.Username
	cfg.Passwd = conn.Password
	cfg.DBName = conn.Database
	cfg.Timeout = dialTimeout
	return cfg, nil
}

// Adapter probes a MySQL server.
type Adapter struct {
	database string
	db       *sql.DB
}

// NewAdapter prepares a connection; nothing is dialled until the first query.
func NewAdapter(cfg *mysql.Config) (*Adapter, error) {
	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("invalid mysql connection settings: %w", err)
	}
	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(1)
	return &Adapter{database: cfg.DBName, db: db}, nil
}

func (a *Adapter) TestConnection(ctx context.Context) (*datasource.ProbeResult, error) {
	if err := a.db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping failed: %w", err)
	}

	var version string
	if err := a.db.QueryRowContext(ctx, "SELECT VERSION()").Scan(&version); err != nil {
		return nil, fmt.Errorf("failed to read server version: %w", err)
	}

	var currentDB sql.NullString
	if err := a.db.QueryRowContext(ctx, "SELECT DATABASE()").Scan(&currentDB); err != nil {
		return nil, fmt.Errorf("failed to get current database name: %w", err)
	}
	if !strings.EqualFold(currentDB.String, a.database) {
		return nil, fmt.Errorf("connected to wrong database: expected %q but connected to %q", a.database, currentDB.String)
	}

	var tables int
	err := a.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM information_schema.tables
		WHERE table_schema = DATABASE() AND table_type = 'BASE TABLE'`).Scan(&tables)
	if err != nil {
		return nil, fmt.Errorf("failed to count tables: %w", err)
	}

	return &datasource.ProbeResult{
		DBType:     models.DBMySQL,
		Version:    version,
		Database:   currentDB.String,
		TableCount: tables,
	}, nil
}

func (a *Adapter) HasTable(ctx context.Context, name string) (bool, error) {
	var count int
	err := a.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM information_schema.tables
		WHERE table_schema = DATABASE() AND table_name = ?`, name).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (a *Adapter) Close() error {
	return a.db.Close()
}

var _ datasource.ConnectionTester = (*Adapter)(nil)
