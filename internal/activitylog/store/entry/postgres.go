package entry

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"newsdesk/internal/activitylog/models"
	id "newsdesk/pkg/domain"
	"newsdesk/pkg/platform/sentinel"
	txcontext "newsdesk/pkg/platform/tx"
)

// Postgres stores entries in the activity_logs table. Snapshots go into
// jsonb columns; actor and tenant references resolve through their uuids and
// null out when the referenced row is gone.
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

const entryColumns = `
	al.uuid, al.log_type, al.model_type, al.model_uuid,
	u.uuid, t.uuid,
	al.old_values, al.new_values, al.description,
	al.ip_address, al.user_agent, al.created_at
`

const entryJoins = `
	FROM activity_logs al
	LEFT JOIN users u ON u.id = al.user_id
	LEFT JOIN tenants t ON t.id = al.tenant_id
`

func (s *Postgres) Append(ctx context.Context, e *models.Entry) error {
	oldValues, err := marshalSnapshot(e.OldValues)
	if err != nil {
		return fmt.Errorf("marshal old values: %w", err)
	}
	newValues, err := marshalSnapshot(e.NewValues)
	if err != nil {
		return fmt.Errorf("marshal new values: %w", err)
	}

	var actorUUID, tenantUUID any
	if e.ActorID != nil {
		actorUUID = uuid.UUID(*e.ActorID)
	}
	if e.TenantID != nil {
		tenantUUID = uuid.UUID(*e.TenantID)
	}

	query := `
		INSERT INTO activity_logs
			(uuid, log_type, model_type, model_uuid, user_id, tenant_id,
			 old_values, new_values, description, ip_address, user_agent, created_at)
		VALUES
			($1, $2, $3, $4,
			 (SELECT id FROM users WHERE uuid = $5),
			 (SELECT id FROM tenants WHERE uuid = $6),
			 $7, $8, $9, $10, $11, $12)
	`
	_, err = s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(e.ID),
		e.LogType.String(),
		e.EntityKind.String(),
		e.EntityID,
		actorUUID,
		tenantUUID,
		oldValues,
		newValues,
		e.Description,
		nullIfEmpty(e.IPAddress),
		nullIfEmpty(e.UserAgent),
		e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert activity log: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, logID id.LogID) (*models.Entry, error) {
	query := `SELECT ` + entryColumns + entryJoins + ` WHERE al.uuid = $1`
	row := s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(logID))
	e, err := scanEntryRow(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan activity log: %w", err)
	}
	return e, nil
}

func (s *Postgres) List(ctx context.Context, filter models.EntryFilter) ([]*models.Entry, int, error) {
	where := `TRUE`
	args := []any{}

	if !filter.TenantID.IsNil() {
		args = append(args, uuid.UUID(filter.TenantID))
		where += fmt.Sprintf(` AND t.uuid = $%d`, len(args))
	}
	if !filter.ActorID.IsNil() {
		args = append(args, uuid.UUID(filter.ActorID))
		where += fmt.Sprintf(` AND u.uuid = $%d`, len(args))
	}
	if filter.LogType != "" {
		args = append(args, filter.LogType.String())
		where += fmt.Sprintf(` AND al.log_type = $%d`, len(args))
	}
	if filter.EntityKind != "" {
		args = append(args, filter.EntityKind.String())
		where += fmt.Sprintf(` AND al.model_type = $%d`, len(args))
	}

	var total int
	countQuery := `SELECT COUNT(*)` + entryJoins + ` WHERE ` + where
	if err := s.execer(ctx).QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count activity logs: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s %s
		WHERE %s
		ORDER BY al.created_at DESC
		LIMIT $%d OFFSET $%d
	`, entryColumns, entryJoins, where, len(args)+1, len(args)+2)
	args = append(args, filter.PerPage, (filter.Page-1)*filter.PerPage)

	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query activity logs: %w", err)
	}
	defer rows.Close()

	var entries []*models.Entry
	for rows.Next() {
		e, err := scanEntryRow(rows.Scan)
		if err != nil {
			return nil, 0, fmt.Errorf("scan activity log: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate activity logs: %w", err)
	}
	return entries, total, nil
}

func scanEntryRow(scan func(dest ...any) error) (*models.Entry, error) {
	var e models.Entry
	var entryUUID uuid.UUID
	var logType, kind string
	var actorUUID, tenantUUID uuid.NullUUID
	var oldValues, newValues []byte
	var ipAddress, userAgent sql.NullString

	if err := scan(
		&entryUUID, &logType, &kind, &e.EntityID,
		&actorUUID, &tenantUUID,
		&oldValues, &newValues, &e.Description,
		&ipAddress, &userAgent, &e.CreatedAt,
	); err != nil {
		return nil, err
	}

	parsedType, err := models.ParseLogType(logType)
	if err != nil {
		return nil, err
	}
	parsedKind, err := models.ParseEntityKind(kind)
	if err != nil {
		return nil, err
	}

	e.ID = id.LogID(entryUUID)
	e.LogType = parsedType
	e.EntityKind = parsedKind
	if actorUUID.Valid {
		actor := id.UserID(actorUUID.UUID)
		e.ActorID = &actor
	}
	if tenantUUID.Valid {
		tenant := id.TenantID(tenantUUID.UUID)
		e.TenantID = &tenant
	}
	if oldValues != nil {
		if err := json.Unmarshal(oldValues, &e.OldValues); err != nil {
			return nil, fmt.Errorf("unmarshal old values: %w", err)
		}
	}
	if newValues != nil {
		if err := json.Unmarshal(newValues, &e.NewValues); err != nil {
			return nil, fmt.Errorf("unmarshal new values: %w", err)
		}
	}
	e.IPAddress = ipAddress.String
	e.UserAgent = userAgent.String
	return &e, nil
}

func marshalSnapshot(values map[string]any) (any, error) {
	if values == nil {
		return nil, nil
	}
	return json.Marshal(values)
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
