package membership

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"newsdesk/internal/tenant/models"
	id "newsdesk/pkg/domain"
	"newsdesk/pkg/platform/sentinel"
	txcontext "newsdesk/pkg/platform/tx"
)

// Postgres stores memberships in the tenant_user pivot table. The pivot
// references the internal bigserial keys; the application addresses rows by
// uuid, so every statement resolves uuids through a join.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Postgres) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *Postgres) Attach(ctx context.Context, m *models.Membership) error {
	query := `
		INSERT INTO tenant_user (tenant_id, user_id, role, created_at, updated_at)
		SELECT t.id, u.id, $3, $4, $5
		FROM tenants t, users u
		WHERE t.uuid = $1 AND u.uuid = $2
		ON CONFLICT (tenant_id, user_id)
		DO UPDATE SET role = EXCLUDED.role, updated_at = EXCLUDED.updated_at
	`
	res, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(m.TenantID),
		uuid.UUID(m.UserID),
		m.Role.String(),
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("attach membership: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("attach membership: rows affected: %w", err)
	}
	if affected == 0 {
		// tenant or user uuid did not resolve to a row
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) Detach(ctx context.Context, tenantID id.TenantID, userID id.UserID) error {
	query := `
		DELETE FROM tenant_user tu
		USING tenants t, users u
		WHERE tu.tenant_id = t.id AND tu.user_id = u.id
		  AND t.uuid = $1 AND u.uuid = $2
	`
	res, err := s.execer(ctx).ExecContext(ctx, query, uuid.UUID(tenantID), uuid.UUID(userID))
	if err != nil {
		return fmt.Errorf("detach membership: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("detach membership: rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) Find(ctx context.Context, tenantID id.TenantID, userID id.UserID) (*models.Membership, error) {
	query := `
		SELECT t.uuid, u.uuid, tu.role, tu.created_at, tu.updated_at
		FROM tenant_user tu
		JOIN tenants t ON t.id = tu.tenant_id
		JOIN users u ON u.id = tu.user_id
		WHERE t.uuid = $1 AND u.uuid = $2
	`
	row := s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(tenantID), uuid.UUID(userID))
	m, err := scanMembership(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find membership: %w", err)
	}
	return m, nil
}

func (s *Postgres) ListByUser(ctx context.Context, userID id.UserID) ([]*models.Membership, error) {
	query := `
		SELECT t.uuid, u.uuid, tu.role, tu.created_at, tu.updated_at
		FROM tenant_user tu
		JOIN tenants t ON t.id = tu.tenant_id
		JOIN users u ON u.id = tu.user_id
		WHERE u.uuid = $1 AND t.deleted_at IS NULL
		ORDER BY tu.created_at, tu.id
	`
	return s.queryMemberships(ctx, query, uuid.UUID(userID))
}

func (s *Postgres) ListByTenant(ctx context.Context, tenantID id.TenantID) ([]*models.Membership, error) {
	query := `
		SELECT t.uuid, u.uuid, tu.role, tu.created_at, tu.updated_at
		FROM tenant_user tu
		JOIN tenants t ON t.id = tu.tenant_id
		JOIN users u ON u.id = tu.user_id
		WHERE t.uuid = $1 AND u.deleted_at IS NULL
		ORDER BY tu.created_at, tu.id
	`
	return s.queryMemberships(ctx, query, uuid.UUID(tenantID))
}

func (s *Postgres) CountByTenant(ctx context.Context, tenantID id.TenantID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM tenant_user tu
		JOIN tenants t ON t.id = tu.tenant_id
		JOIN users u ON u.id = tu.user_id
		WHERE t.uuid = $1 AND u.deleted_at IS NULL
	`
	var count int
	if err := s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(tenantID)).Scan(&count); err != nil {
		return 0, fmt.Errorf("count memberships: %w", err)
	}
	return count, nil
}

func (s *Postgres) queryMemberships(ctx context.Context, query string, args ...any) ([]*models.Membership, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query memberships: %w", err)
	}
	defer rows.Close()

	var out []*models.Membership
	for rows.Next() {
		m, err := scanMembership(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate memberships: %w", err)
	}
	return out, nil
}

func scanMembership(scan func(dest ...any) error) (*models.Membership, error) {
	var m models.Membership
	var tenantUUID, userUUID uuid.UUID
	var role string
	if err := scan(&tenantUUID, &userUUID, &role, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	m.TenantID = id.TenantID(tenantUUID)
	m.UserID = id.UserID(userUUID)
	parsed, err := id.ParseRole(role)
	if err != nil {
		return nil, err
	}
	m.Role = parsed
	return &m, nil
}
