// Package testutil holds helpers shared by integration tests.
package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

// EnvTestDB names the environment variable holding a DSN of an existing test
// database. When unset, PostgresDSN starts a container.
const EnvTestDB = "JUMPPATH_TEST_DB"

// PostgresDSN returns a DSN of an empty PostgreSQL database. It starts a
// PostgreSQL 16 testcontainer unless EnvTestDB is set. The container is
// terminated when the test ends.
func PostgresDSN(tb testing.TB) string {
	tb.Helper()

	if dsn := os.Getenv(EnvTestDB); dsn != "" {
		return dsn
	}

	ctx := context.Background()
	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		tb.Fatalf("starting postgres container: %v", err)
	}

	tb.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			tb.Logf("terminating postgres container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		tb.Fatalf("getting connection string: %v", err)
	}
	return dsn
}
