// Package common provides shared helpers for integration tests: throwaway
// database containers with known credentials.
package common

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/datapivot/schemabridge/internal/schema"
)

const (
	testDatabase = "schemabridge_test"
	testUser     = "bridge"
	testPassword = "bridge-secret"
)

// StartMySQL starts a disposable MySQL container and returns connect
// parameters for it. The test is skipped when Docker is unavailable.
func StartMySQL(t *testing.T) schema.ConnectParams {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 180*time.Second)
	t.Cleanup(cancel)

	container, err := testcontainers.Run(ctx, "mysql:8.4",
		testcontainers.WithExposedPorts("3306/tcp"),
		testcontainers.WithEnv(map[string]string{
			"MYSQL_ROOT_PASSWORD": testPassword,
			"MYSQL_DATABASE":      testDatabase,
			"MYSQL_USER":          testUser,
			"MYSQL_PASSWORD":      testPassword,
		}),
		testcontainers.WithWaitStrategy(
			wait.ForLog("port: 3306  MySQL Community Server").
				WithStartupTimeout(120*time.Second),
		),
	)
	if err != nil {
		t.Skipf("skipping: could not start mysql container (docker unavailable?): %v", err)
	}
	t.Cleanup(func() {
		termCtx, termCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer termCancel()
		container.Terminate(termCtx)
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("failed to resolve container host: %v", err)
	}
	mappedPort, err := container.MappedPort(ctx, "3306/tcp")
	if err != nil {
		t.Fatalf("failed to resolve mapped port: %v", err)
	}

	return schema.ConnectParams{
		Engine:   schema.EngineMySQL,
		Host:     host,
		Port:     mappedPort.Int(),
		Username: testUser,
		Password: testPassword,
		Database: testDatabase,
	}
}

// StartPostgres starts a disposable PostgreSQL container and returns connect
// parameters for it. The test is skipped when Docker is unavailable.
func StartPostgres(t *testing.T) schema.ConnectParams {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 180*time.Second)
	t.Cleanup(cancel)

	container, err := testcontainers.Run(ctx, "postgres:16-alpine",
		testcontainers.WithExposedPorts("5432/tcp"),
		testcontainers.WithEnv(map[string]string{
			"POSTGRES_DB":       testDatabase,
			"POSTGRES_USER":     testUser,
			"POSTGRES_PASSWORD": testPassword,
		}),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(120*time.Second),
		),
	)
	if err != nil {
		t.Skipf("skipping: could not start postgres container (docker unavailable?): %v", err)
	}
	t.Cleanup(func() {
		termCtx, termCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer termCancel()
		container.Terminate(termCtx)
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("failed to resolve container host: %v", err)
	}
	mappedPort, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("failed to resolve mapped port: %v", err)
	}

	return schema.ConnectParams{
		Engine:   schema.EnginePostgreSQL,
		Host:     host,
		Port:     mappedPort.Int(),
		Username: testUser,
		Password: testPassword,
		Database: testDatabase,
	}
}
