// Package testhelpers provides utilities for testing insightiq components.
package testhelpers

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Preyash-NEU/InsightIQ/pkg/models"
)

const (
	PostgresImage = "postgres:16-alpine"
	MySQLImage    = "mysql:8.4"

	testDatabase = "insightiq_test"
	testUser     = "insightiq"
	testPassword = "test_password"
)

// TestDatabase is a disposable database server reachable from the test process.
type TestDatabase struct {
	Container  testcontainers.Container
	Connection models.DatabaseConnection
}

type sharedContainer struct {
	once sync.Once
	db   *TestDatabase
	err  error
}

var (
	sharedPostgres sharedContainer
	sharedMySQL    sharedContainer
)

// GetPostgres returns a PostgreSQL container shared by every test in the run.
func GetPostgres(t *testing.T) *TestDatabase {
	t.Helper()
	return sharedPostgres.get(t, func(ctx context.Context) (*TestDatabase, error) {
		container, host, err := startContainer(ctx, testcontainers.ContainerRequest{
			Image:        PostgresImage,
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_DB":       testDatabase,
				"POSTGRES_USER":     testUser,
				"POSTGRES_PASSWORD": testPassword,
			},
			// the entrypoint restarts the server once after init
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		})
		if err != nil {
			return nil, err
		}
		port, err := container.MappedPort(ctx, "5432")
		if err != nil {
			return nil, fmt.Errorf("failed to get postgres port: %w", err)
		}
		return newTestDatabase(models.DBPostgreSQL, container, host, port.Int()), nil
	})
}

// GetMySQL returns a MySQL container shared by every test in the run.
func GetMySQL(t *testing.T) *TestDatabase {
	t.Helper()
	return sharedMySQL.get(t, func(ctx context.Context) (*TestDatabase, error) {
		container, host, err := startContainer(ctx, testcontainers.ContainerRequest{
			Image:        MySQLImage,
			ExposedPorts: []string{"3306/tcp"},
			Env: map[string]string{
				"MYSQL_DATABASE":      testDatabase,
				"MYSQL_USER":          testUser,
				"MYSQL_PASSWORD":      testPassword,
				"MYSQL_ROOT_PASSWORD": testPassword,
			},
			WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").
				WithStartupTimeout(120 * time.Second),
		})
		if err != nil {
			return nil, err
		}
		port, err := container.MappedPort(ctx, "3306")
		if err != nil {
			return nil, fmt.Errorf("failed to get mysql port: %w", err)
		}
		return newTestDatabase(models.DBMySQL, container, host, port.Int()), nil
	})
}

func (s *sharedContainer) get(t *testing.T, start func(ctx context.Context) (*TestDatabase, error)) *TestDatabase {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}

	s.once.Do(func() {
		s.db, s.err = start(context.Background())
	})
	if s.err != nil {
		t.Fatalf("Failed to start test database: %v", s.err)
	}
	return s.db
}

func startContainer(ctx context.Context, req testcontainers.ContainerRequest) (testcontainers.Container, string, error) {
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to start %s container: %w", req.Image, err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get container host: %w", err)
	}
	return container, host, nil
}

func newTestDatabase(dbType models.DBType, container testcontainers.Container, host string, port int) *TestDatabase {
	return &TestDatabase{
		Container: container,
		Connection: models.DatabaseConnection{
			DBType:   dbType,
			Host:     host,
			Port:     port,
			Database: testDatabase,
			Username: testUser,
			Password: testPassword,
		},
	}
}
