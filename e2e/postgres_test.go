package e2e_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
)

var (
	testPool     *pgxpool.Pool
	testPoolOnce sync.Once
	testCleanup  func()
	testDSN      string
)

// getSharedPostgresDatabase returns a shared PostgreSQL database for E2E tests.
// The container is reused across all tests and terminated in TestMain.
func getSharedPostgresDatabase(t *testing.T) (dsn string) {
	t.Helper()

	testPoolOnce.Do(func() {
		ctx := context.Background()

		pgContainer, err := pgcontainer.Run(ctx,
			"postgres:18-alpine",
			pgcontainer.WithDatabase("testdb"),
			pgcontainer.WithUsername("testuser"),
			pgcontainer.WithPassword("testpass"),
			pgcontainer.BasicWaitStrategies(),
		)
		if err != nil {
			t.Fatalf("failed to start postgres container: %v", err)
		}

		testCleanup = func() {
			if testPool != nil {
				testPool.Close()
			}
			if err := testcontainers.TerminateContainer(pgContainer); err != nil {
				fmt.Fprintf(os.Stderr, "failed to terminate container: %s\n", err)
			}
		}

		connectionStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			t.Fatalf("failed to get connection string: %v", err)
		}

		pool, err := pgxpool.New(ctx, connectionStr)
		if err != nil {
			t.Fatalf("could not connect to database: %v", err)
		}

		if err := pool.Ping(ctx); err != nil {
			t.Fatalf("could not ping database: %v", err)
		}

		testPool = pool
		testDSN = connectionStr
	})

	if testDSN == "" {
		t.Fatal("postgres database unavailable")
	}

	return testDSN
}

// TestE2E_ServeAndUpload_Postgres runs the browse, upload and history flow
// against a journal stored in PostgreSQL.
func TestE2E_ServeAndUpload_Postgres(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres test in short mode")
	}

	dsn := getSharedPostgresDatabase(t)
	root := t.TempDir()
	writeFile(t, root, "readme.txt", "read me\n")
	writeFile(t, root, "docs/guide.go", "package guide\n")

	baseURL, configPath, cleanup := startServer(t, ServerConfig{
		Port:         getOpenPort(t),
		Root:         root,
		JournalType:  "postgres",
		JournalDSN:   dsn,
		JournalTable: "e2e_uploads",
	})
	defer cleanup()

	runServeAndUploadTests(t, baseURL, configPath, root)
}
