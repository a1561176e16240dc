// Package datasource probes databases directly from the client machine, so a
// user can tell a local network problem from a backend one before connecting.
package datasource

import (
	"context"
	"time"

	"github.com/Preyash-NEU/InsightIQ/pkg/models"
)

// ConnectionTester checks database connectivity.
// Each implementation owns its connection and must be closed when done.
type ConnectionTester interface {
	// TestConnection verifies the database is reachable with valid credentials
	// and that the session is attached to the requested database.
	TestConnection(ctx context.Context) (*ProbeResult, error)

	// HasTable reports whether the database exposes a user table of that name.
	HasTable(ctx context.Context, name string) (bool, error)

	// Close releases the database connection.
	Close() error
}

// ProbeResult describes a successful probe.
type ProbeResult struct {
	DBType     models.DBType `json:"db_type" yaml:"db_type"`
	Version    string        `json:"version" yaml:"version"`
	Database   string        `json:"database" yaml:"database"`
	TableCount int           `json:"table_count" yaml:"table_count"`
	Latency    time.Duration `json:"latency" yaml:"latency"`
}
