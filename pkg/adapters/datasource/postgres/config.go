package postgres

import (
	"fmt"
	"net/url"

	"github.com/Preyash-NEU/InsightIQ/pkg/config"
	"github.com/Preyash-NEU/InsightIQ/pkg/models"
)

// Config contains PostgreSQL-specific connection options.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string // "disable", "prefer", "require", "verify-ca", "verify-full"
}

// DefaultSSLMode lets local servers without TLS through while still
// upgrading when the server offers it.
const DefaultSSLMode = "prefer"

// FromConnection creates a Config from the connection form.
func FromConnection(conn models.DatabaseConnection) (*Config, error) {
	if conn.Host == "" {
		return nil, fmt.Errorf("host is required")
	}
	if conn.Username == "" {
		return nil, fmt.Errorf("user is required")
	}
	if conn.Database == "" {
		return nil, fmt.Errorf("database is required")
	}

	cfg := &Config{
		Host:     conn.Host,
		Port:     conn.Port,
		User:     conn.Username,
		Password: conn.Password,
		Database: conn.Database,
		SSLMode:  DefaultSSLMode,
	}
	if cfg.Port == 0 {
		cfg.Port = models.DefaultPort(models.DBPostgreSQL)
	}
	return cfg, nil
}

// ConnectionString builds a PostgreSQL URL. User-provided fields are escaped
// so passwords containing @, /, # or ? survive URL parsing.
func (c *Config) ConnectionString() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = DefaultSSLMode
	}

	return fmt.Sprintf(
		"postgresql://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(c.User),
		url.QueryEscape(c.Password),
		config.ProbeHost(c.Host),
		c.Port,
		url.QueryEscape(c.Database),
		sslMode,
	)
}
