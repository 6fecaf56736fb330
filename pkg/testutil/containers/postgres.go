//go:build integration

package containers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"

	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// schema mirrors the production tables: bigserial keys stay internal to the
// database, every row is addressed by uuid from the application, and soft
// deletes are expressed through deleted_at with partial unique indexes.
const schema = `
CREATE TABLE IF NOT EXISTS tenants (
	id         BIGSERIAL PRIMARY KEY,
	uuid       UUID NOT NULL UNIQUE,
	name       TEXT NOT NULL,
	domain     TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	deleted_at TIMESTAMPTZ
);

CREATE UNIQUE INDEX IF NOT EXISTS tenants_domain_unique
	ON tenants (lower(domain)) WHERE deleted_at IS NULL AND domain IS NOT NULL;

CREATE TABLE IF NOT EXISTS users (
	id             BIGSERIAL PRIMARY KEY,
	uuid           UUID NOT NULL UNIQUE,
	name           TEXT NOT NULL,
	email          TEXT NOT NULL,
	password_hash  TEXT NOT NULL,
	is_super_admin BOOLEAN NOT NULL DEFAULT FALSE,
	created_at     TIMESTAMPTZ NOT NULL,
	updated_at     TIMESTAMPTZ NOT NULL,
	deleted_at     TIMESTAMPTZ
);

CREATE UNIQUE INDEX IF NOT EXISTS users_email_unique
	ON users (lower(email)) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS tenant_user (
	tenant_id  BIGINT NOT NULL REFERENCES tenants (id) ON DELETE CASCADE,
	user_id    BIGINT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	role       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (tenant_id, user_id)
);

CREATE TABLE IF NOT EXISTS news (
	id         BIGSERIAL PRIMARY KEY,
	uuid       UUID NOT NULL UNIQUE,
	title      TEXT NOT NULL,
	content    TEXT NOT NULL,
	status     TEXT NOT NULL,
	tenant_id  BIGINT NOT NULL REFERENCES tenants (id),
	author_id  BIGINT NOT NULL REFERENCES users (id),
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	deleted_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS news_tenant_idx ON news (tenant_id) WHERE deleted_at IS NULL;
CREATE INDEX IF NOT EXISTS news_author_idx ON news (author_id) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS activity_logs (
	id         BIGSERIAL PRIMARY KEY,
	uuid       UUID NOT NULL UNIQUE,
	log_type   TEXT NOT NULL,
	model_type TEXT NOT NULL,
	model_uuid UUID NOT NULL,
	user_id    BIGINT REFERENCES users (id),
	tenant_id  BIGINT REFERENCES tenants (id),
	old_values JSONB,
	new_values JSONB,
	description TEXT NOT NULL,
	ip_address TEXT,
	user_agent TEXT,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS activity_logs_tenant_idx ON activity_logs (tenant_id);
CREATE INDEX IF NOT EXISTS activity_logs_user_idx ON activity_logs (user_id);
`

// PostgresContainer wraps a testcontainers Postgres instance with the schema
// already applied.
type PostgresContainer struct {
	Container testcontainers.Container
	DSN       string
	DB        *sql.DB
}

// NewPostgresContainer starts a Postgres container and applies the schema.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("newsdesk_test"),
		tcpostgres.WithUsername("newsdesk"),
		tcpostgres.WithPassword("newsdesk"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to open postgres pool: %v", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to ping postgres: %v", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to apply schema: %v", err)
	}

	// Note: We don't register t.Cleanup here because the container is managed
	// by the singleton Manager and shared across test suites. Ryuk handles cleanup.

	return &PostgresContainer{
		Container: container,
		DSN:       dsn,
		DB:        db,
	}
}

// TruncateTables truncates the given tables in order. Use between tests to
// ensure isolation; pass tables in dependency order.
func (p *PostgresContainer) TruncateTables(ctx context.Context, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}
	query := fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", strings.Join(tables, ", "))
	if _, err := p.DB.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("truncate tables: %w", err)
	}
	return nil
}
