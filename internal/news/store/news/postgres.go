package news

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"newsdesk/internal/news/models"
	id "newsdesk/pkg/domain"
	"newsdesk/pkg/platform/sentinel"
	txcontext "newsdesk/pkg/platform/tx"
)

// Postgres stores articles in the news table. Tenant and author references
// live as internal foreign keys; the application addresses everything by
// uuid, so reads join back to the owning rows.
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

const newsColumns = `n.uuid, n.title, n.content, n.status, t.uuid, u.uuid, n.created_at, n.updated_at`

const newsJoins = `
	FROM news n
	JOIN tenants t ON t.id = n.tenant_id
	JOIN users u ON u.id = n.author_id
`

func (s *Postgres) Create(ctx context.Context, article *models.News) error {
	query := `
		INSERT INTO news (uuid, title, content, status, tenant_id, author_id, created_at, updated_at)
		SELECT $1, $2, $3, $4, t.id, u.id, $7, $8
		FROM tenants t, users u
		WHERE t.uuid = $5 AND u.uuid = $6
	`
	res, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(article.ID),
		article.Title,
		article.Content,
		article.Status.String(),
		uuid.UUID(article.TenantID),
		uuid.UUID(article.AuthorID),
		article.CreatedAt,
		article.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert news: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert news: rows affected: %w", err)
	}
	if affected == 0 {
		// tenant or author uuid did not resolve to a row
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) Update(ctx context.Context, article *models.News) error {
	query := `
		UPDATE news
		SET title = $2, content = $3, status = $4, updated_at = $5
		WHERE uuid = $1 AND deleted_at IS NULL
	`
	res, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(article.ID),
		article.Title,
		article.Content,
		article.Status.String(),
		article.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update news: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update news: rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, newsID id.NewsID) (*models.News, error) {
	query := `SELECT ` + newsColumns + newsJoins + ` WHERE n.uuid = $1 AND n.deleted_at IS NULL`
	row := s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(newsID))
	article, err := scanNewsRow(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan news: %w", err)
	}
	return article, nil
}

func (s *Postgres) List(ctx context.Context, filter models.NewsFilter) ([]*models.News, int, error) {
	where := `n.deleted_at IS NULL`
	args := []any{}

	if filter.TenantIDs != nil {
		ids := make([]uuid.UUID, len(filter.TenantIDs))
		for i, tenantID := range filter.TenantIDs {
			ids[i] = uuid.UUID(tenantID)
		}
		args = append(args, pq.Array(ids))
		where += fmt.Sprintf(` AND t.uuid = ANY($%d)`, len(args))
	}
	if !filter.AuthorID.IsNil() {
		args = append(args, uuid.UUID(filter.AuthorID))
		where += fmt.Sprintf(` AND u.uuid = $%d`, len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status.String())
		where += fmt.Sprintf(` AND n.status = $%d`, len(args))
	} else {
		args = append(args, models.StatusTrash.String())
		where += fmt.Sprintf(` AND n.status <> $%d`, len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where += fmt.Sprintf(` AND (n.title ILIKE $%d OR n.content ILIKE $%d)`, len(args), len(args))
	}

	var total int
	countQuery := `SELECT COUNT(*)` + newsJoins + ` WHERE ` + where
	if err := s.execer(ctx).QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count news: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s %s
		WHERE %s
		ORDER BY n.created_at DESC
		LIMIT $%d OFFSET $%d
	`, newsColumns, newsJoins, where, len(args)+1, len(args)+2)
	args = append(args, filter.PerPage, (filter.Page-1)*filter.PerPage)

	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query news: %w", err)
	}
	defer rows.Close()

	var articles []*models.News
	for rows.Next() {
		article, err := scanNewsRow(rows.Scan)
		if err != nil {
			return nil, 0, fmt.Errorf("scan news: %w", err)
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate news: %w", err)
	}
	return articles, total, nil
}

func (s *Postgres) Delete(ctx context.Context, newsID id.NewsID, now time.Time) error {
	query := `
		UPDATE news SET deleted_at = $2, updated_at = $2
		WHERE uuid = $1 AND deleted_at IS NULL
	`
	res, err := s.execer(ctx).ExecContext(ctx, query, uuid.UUID(newsID), now)
	if err != nil {
		return fmt.Errorf("delete news: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete news: rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) CountByTenant(ctx context.Context, tenantID id.TenantID) (int, error) {
	query := `
		SELECT COUNT(*) FROM news n
		JOIN tenants t ON t.id = n.tenant_id
		WHERE t.uuid = $1 AND n.deleted_at IS NULL
	`
	return s.count(ctx, query, uuid.UUID(tenantID))
}

func (s *Postgres) CountByAuthor(ctx context.Context, authorID id.UserID) (int, error) {
	query := `
		SELECT COUNT(*) FROM news n
		JOIN users u ON u.id = n.author_id
		WHERE u.uuid = $1 AND n.deleted_at IS NULL
	`
	return s.count(ctx, query, uuid.UUID(authorID))
}

func (s *Postgres) count(ctx context.Context, query string, args ...any) (int, error) {
	var count int
	if err := s.execer(ctx).QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count news: %w", err)
	}
	return count, nil
}

func scanNewsRow(scan func(dest ...any) error) (*models.News, error) {
	var n models.News
	var newsUUID, tenantUUID, authorUUID uuid.UUID
	var status string
	if err := scan(&newsUUID, &n.Title, &n.Content, &status, &tenantUUID, &authorUUID, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return nil, err
	}
	parsed, err := models.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	n.ID = id.NewsID(newsUUID)
	n.Status = parsed
	n.TenantID = id.TenantID(tenantUUID)
	n.AuthorID = id.UserID(authorUUID)
	return &n, nil
}
