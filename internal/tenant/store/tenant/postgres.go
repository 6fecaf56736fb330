package tenant

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"newsdesk/internal/tenant/models"
	id "newsdesk/pkg/domain"
	"newsdesk/pkg/platform/sentinel"
	txcontext "newsdesk/pkg/platform/tx"
)

// Postgres stores tenants in the tenants table. The bigserial primary key
// stays inside the database; the application addresses rows by uuid only.
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

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func (s *Postgres) Create(ctx context.Context, tenant *models.Tenant) error {
	query := `
		INSERT INTO tenants (uuid, name, domain, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(tenant.ID),
		tenant.Name,
		tenant.Domain,
		tenant.CreatedAt,
		tenant.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert tenant: %w", err)
	}
	return nil
}

func (s *Postgres) Update(ctx context.Context, tenant *models.Tenant) error {
	query := `
		UPDATE tenants
		SET name = $2, domain = NULLIF($3, ''), updated_at = $4
		WHERE uuid = $1 AND deleted_at IS NULL
	`
	res, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(tenant.ID),
		tenant.Name,
		tenant.Domain,
		tenant.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("update tenant: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update tenant: rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, tenantID id.TenantID) (*models.Tenant, error) {
	query := `
		SELECT uuid, name, COALESCE(domain, ''), created_at, updated_at
		FROM tenants
		WHERE uuid = $1 AND deleted_at IS NULL
	`
	return s.scanTenant(s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(tenantID)))
}

func (s *Postgres) List(ctx context.Context, filter models.TenantFilter) ([]*models.Tenant, int, error) {
	where := `deleted_at IS NULL`
	args := []any{}
	if filter.Search != "" {
		where += ` AND (name ILIKE $1 OR domain ILIKE $1)`
		args = append(args, "%"+filter.Search+"%")
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM tenants WHERE ` + where
	if err := s.execer(ctx).QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tenants: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT uuid, name, COALESCE(domain, ''), created_at, updated_at
		FROM tenants
		WHERE %s
		ORDER BY created_at
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, filter.PerPage, (filter.Page-1)*filter.PerPage)

	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query tenants: %w", err)
	}
	defer rows.Close()

	var tenants []*models.Tenant
	for rows.Next() {
		var t models.Tenant
		var tenantUUID uuid.UUID
		if err := rows.Scan(&tenantUUID, &t.Name, &t.Domain, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan tenant: %w", err)
		}
		t.ID = id.TenantID(tenantUUID)
		tenants = append(tenants, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate tenants: %w", err)
	}
	return tenants, total, nil
}

func (s *Postgres) Delete(ctx context.Context, tenantID id.TenantID, now time.Time) error {
	query := `
		UPDATE tenants SET deleted_at = $2, updated_at = $2
		WHERE uuid = $1 AND deleted_at IS NULL
	`
	res, err := s.execer(ctx).ExecContext(ctx, query, uuid.UUID(tenantID), now)
	if err != nil {
		return fmt.Errorf("delete tenant: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete tenant: rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) scanTenant(row *sql.Row) (*models.Tenant, error) {
	var t models.Tenant
	var tenantUUID uuid.UUID
	err := row.Scan(&tenantUUID, &t.Name, &t.Domain, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan tenant: %w", err)
	}
	t.ID = id.TenantID(tenantUUID)
	return &t, nil
}
