package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"newsdesk/internal/user/models"
	id "newsdesk/pkg/domain"
	"newsdesk/pkg/platform/sentinel"
	txcontext "newsdesk/pkg/platform/tx"
)

// Postgres stores users in the users table. The bigserial primary key stays
// inside the database; the application addresses rows by uuid only.
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

const userColumns = `uuid, name, email, password_hash, is_super_admin, created_at, updated_at`

func (s *Postgres) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (uuid, name, email, password_hash, is_super_admin, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(user.ID),
		user.Name,
		user.Email,
		user.PasswordHash,
		user.IsSuperAdmin,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *Postgres) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET name = $2, email = $3, password_hash = $4, is_super_admin = $5, updated_at = $6
		WHERE uuid = $1 AND deleted_at IS NULL
	`
	res, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(user.ID),
		user.Name,
		user.Email,
		user.PasswordHash,
		user.IsSuperAdmin,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("update user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user: rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE uuid = $1 AND deleted_at IS NULL`
	return s.scanUser(s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(userID)))
}

func (s *Postgres) FindByEmail(ctx context.Context, emailAddr string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1) AND deleted_at IS NULL`
	return s.scanUser(s.execer(ctx).QueryRowContext(ctx, query, emailAddr))
}

func (s *Postgres) List(ctx context.Context, filter models.UserFilter) ([]*models.User, int, error) {
	where := `deleted_at IS NULL`
	args := []any{}
	if filter.UserIDs != nil {
		ids := make([]uuid.UUID, len(filter.UserIDs))
		for i, userID := range filter.UserIDs {
			ids[i] = uuid.UUID(userID)
		}
		args = append(args, pq.Array(ids))
		where += fmt.Sprintf(` AND uuid = ANY($%d)`, len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where += fmt.Sprintf(` AND (name ILIKE $%d OR email ILIKE $%d)`, len(args), len(args))
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM users WHERE ` + where
	if err := s.execer(ctx).QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM users
		WHERE %s
		ORDER BY created_at
		LIMIT $%d OFFSET $%d
	`, userColumns, where, len(args)+1, len(args)+2)
	args = append(args, filter.PerPage, (filter.Page-1)*filter.PerPage)

	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u, err := scanUserRow(rows.Scan)
		if err != nil {
			return nil, 0, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate users: %w", err)
	}
	return users, total, nil
}

func (s *Postgres) Delete(ctx context.Context, userID id.UserID, now time.Time) error {
	query := `
		UPDATE users SET deleted_at = $2, updated_at = $2
		WHERE uuid = $1 AND deleted_at IS NULL
	`
	res, err := s.execer(ctx).ExecContext(ctx, query, uuid.UUID(userID), now)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user: rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) scanUser(row *sql.Row) (*models.User, error) {
	u, err := scanUserRow(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

func scanUserRow(scan func(dest ...any) error) (*models.User, error) {
	var u models.User
	var userUUID uuid.UUID
	if err := scan(&userUUID, &u.Name, &u.Email, &u.PasswordHash, &u.IsSuperAdmin, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.ID = id.UserID(userUUID)
	return &u, nil
}
