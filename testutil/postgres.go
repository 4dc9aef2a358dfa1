package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	_ "github.com/lib/pq" // PostgreSQL driver registration
)

// SetupTestPostgresDB starts a throwaway postgres container and returns a
// connection to it. The container and connection are torn down with the
// test. Skipped under -short since it needs docker.
func SetupTestPostgresDB(t *testing.T) *sqlx.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping docker test in short mode")
	}

	ctx := context.Background()
	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("gateway_test"),
		postgres.WithUsername("gateway"),
		postgres.WithPassword("gateway"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if termErr := container.Terminate(context.Background()); termErr != nil {
			t.Logf("failed to terminate postgres container: %v", termErr)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("postgres", connStr)
	require.NoError(t, err)

	ds := sqlx.NewDb(db, "postgres")
	t.Cleanup(func() { _ = ds.Close() })
	return ds
}
