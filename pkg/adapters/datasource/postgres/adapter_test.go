package postgres

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Preyash-NEU/InsightIQ/pkg/adapters/datasource"
	"github.com/Preyash-NEU/InsightIQ/pkg/models"
	"github.com/Preyash-NEU/InsightIQ/pkg/testhelpers"
)

func TestFromConnection(t *testing.T) {
	cfg, err := FromConnection(models.DatabaseConnection{
		DBType:   models.DBPostgreSQL,
		Host:     "db.internal",
		Port:     5433,
		Database: "analytics",
		Username: "reader",
		Password: "secret",
	})
	require.NoError(t, err)
	assert.Equal(t, "db.internal", cfg.Host)
	assert.Equal(t, 5433, cfg.Port)
	assert.Equal(t, "reader", cfg.User)
	assert.Equal(t, "analytics", cfg.Database)
	assert.Equal(t, DefaultSSLMode, cfg.SSLMode)
}

func TestFromConnection_DefaultPort(t *testing.T) {
	cfg, err := FromConnection(models.DatabaseConnection{Host: "h", Database: "d", Username: "u"})
	require.NoError(t, err)
	assert.Equal(t, 5432, cfg.Port)
}

func TestFromConnection_MissingFields(t *testing.T) {
	tests := []struct {
		name string
		conn models.DatabaseConnection
		want string
	}{
		{"host", models.DatabaseConnection{Database: "d", Username: "u"}, "host is required"},
		{"user", models.DatabaseConnection{Host: "h", Database: "d"}, "user is required"},
		{"database", models.DatabaseConnection{Host: "h", Username: "u"}, "database is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromConnection(tt.conn)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestConnectionString_EscapesSpecialCharacters(t *testing.T) {
	cfg := &Config{
		Host:     "db.internal",
		Port:     5432,
		User:     "user@corp",
		Password: "p@ss/w#rd?",
		Database: "sales db",
	}

	connStr := cfg.ConnectionString()
	assert.True(t, strings.HasPrefix(connStr, "postgresql://"))
	assert.Contains(t, connStr, "sslmode=prefer")

	u, err := url.Parse(connStr)
	require.NoError(t, err)
	assert.Equal(t, "db.internal:5432", u.Host)
	assert.Equal(t, "user@corp", u.User.Username())
	password, _ := u.User.Password()
	assert.Equal(t, "p@ss/w#rd?", password)
}

func TestConnectionString_SSLMode(t *testing.T) {
	cfg := &Config{Host: "h", Port: 5432, User: "u", Database: "d", SSLMode: "disable"}
	assert.Contains(t, cfg.ConnectionString(), "sslmode=disable")
}

func TestAdapter_Registered(t *testing.T) {
	assert.True(t, datasource.IsRegistered(models.DBPostgreSQL))
}

func TestAdapter_TestConnection_InvalidServer(t *testing.T) {
	cfg := &Config{
		Host:     "localhost",
		Port:     59999, // unlikely to be listening
		User:     "nonexistent",
		Password: "wrong",
		Database: "nodb",
		SSLMode:  "disable",
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	adapter, err := NewAdapter(ctx, cfg)
	if err != nil {
		return
	}
	defer adapter.Close()

	_, err = adapter.TestConnection(ctx)
	assert.Error(t, err)
}

func TestAdapter_TestConnection_Container(t *testing.T) {
	testDB := testhelpers.GetPostgres(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg, err := FromConnection(testDB.Connection)
	require.NoError(t, err)
	cfg.SSLMode = "disable"

	adapter, err := NewAdapter(ctx, cfg)
	require.NoError(t, err)
	defer adapter.Close()

	_, err = adapter.pool.Exec(ctx, "CREATE TABLE IF NOT EXISTS probe_orders (id int)")
	require.NoError(t, err)

	res, err := adapter.TestConnection(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DBPostgreSQL, res.DBType)
	assert.Contains(t, res.Version, "PostgreSQL")
	assert.Equal(t, testDB.Connection.Database, res.Database)
	assert.GreaterOrEqual(t, res.TableCount, 1)

	ok, err := adapter.HasTable(ctx, "probe_orders")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = adapter.HasTable(ctx, "missing_table")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAdapter_TestConnection_WrongDatabase(t *testing.T) {
	testDB := testhelpers.GetPostgres(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn := testDB.Connection
	conn.Database = "nonexistent_database_12345"
	cfg, err := FromConnection(conn)
	require.NoError(t, err)
	cfg.SSLMode = "disable"

	adapter, err := NewAdapter(ctx, cfg)
	if err != nil {
		return
	}
	defer adapter.Close()

	_, err = adapter.TestConnection(ctx)
	require.Error(t, err)
	errLower := strings.ToLower(err.Error())
	// either our own check or PostgreSQL's "does not exist"
	assert.True(t, strings.Contains(errLower, "wrong database") || strings.Contains(errLower, "does not exist"), err.Error())
}
