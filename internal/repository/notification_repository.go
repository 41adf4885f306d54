package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	appErrors "github.com/unclebandit/agency-portal-backend/internal/errors"
	"github.com/unclebandit/agency-portal-backend/internal/model"
)

type NotificationRepositoryInterface interface {
	Create(ctx context.Context, n *model.Notification) error
	ListForTenant(ctx context.Context, tenantID uuid.UUID, unreadOnly bool, limit int) ([]model.Notification, error)
	MarkRead(ctx context.Context, tenantID, id uuid.UUID) (*model.Notification, error)
	MarkAllRead(ctx context.Context, tenantID uuid.UUID) (int, error)

	// Settings
	IsEnabled(ctx context.Context, tenantID uuid.UUID, action string) (bool, error)
	Settings(ctx context.Context, tenantID uuid.UUID) (map[string]bool, error)
	UpsertSetting(ctx context.Context, tenantID uuid.UUID, action string, enabled bool) error
}

type NotificationRepository struct {
	DB *sql.DB
}

// ====================== Notifications ======================

func (r *NotificationRepository) Create(ctx context.Context, n *model.Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	query := `
        INSERT INTO notifications (id, tenant_id, kind, content_id, action, message, is_read, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, FALSE, NOW())
        RETURNING created_at
    `
	err := r.DB.QueryRowContext(ctx, query, n.ID, n.TenantID, n.Kind, n.ContentID, n.Action, n.Message).Scan(&n.CreatedAt)
	if err != nil {
		return appErrors.NewStoreError("insert notifications", err)
	}
	n.IsRead = false
	n.ReadAt = nil
	return nil
}

func (r *NotificationRepository) ListForTenant(ctx context.Context, tenantID uuid.UUID, unreadOnly bool, limit int) ([]model.Notification, error) {
	query := `
        SELECT id, tenant_id, kind, content_id, action, message, is_read, read_at, created_at
        FROM notifications WHERE tenant_id=$1`
	if unreadOnly {
		query += ` AND is_read=FALSE`
	}
	query += ` ORDER BY created_at DESC LIMIT $2`

	rows, err := r.DB.QueryContext(ctx, query, tenantID, limit)
	if err != nil {
		return nil, appErrors.NewStoreError("list notifications", err)
	}
	defer rows.Close()

	notifications := []model.Notification{}
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.TenantID, &n.Kind, &n.ContentID, &n.Action, &n.Message, &n.IsRead, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, appErrors.NewStoreError("scan notifications", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, appErrors.NewStoreError("iterate notifications", err)
	}
	return notifications, nil
}

// MarkRead sets the read receipt once; reading an already read notification keeps the first read_at.
func (r *NotificationRepository) MarkRead(ctx context.Context, tenantID, id uuid.UUID) (*model.Notification, error) {
	query := `
        UPDATE notifications
        SET is_read=TRUE, read_at=COALESCE(read_at, NOW())
        WHERE id=$1 AND tenant_id=$2
        RETURNING id, tenant_id, kind, content_id, action, message, is_read, read_at, created_at
    `
	var n model.Notification
	err := r.DB.QueryRowContext(ctx, query, id, tenantID).Scan(
		&n.ID, &n.TenantID, &n.Kind, &n.ContentID, &n.Action, &n.Message, &n.IsRead, &n.ReadAt, &n.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.NewNotFound("notification", id.String())
	}
	if err != nil {
		return nil, appErrors.NewStoreError("update notifications", err)
	}
	return &n, nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, tenantID uuid.UUID) (int, error) {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE notifications SET is_read=TRUE, read_at=NOW() WHERE tenant_id=$1 AND is_read=FALSE`, tenantID)
	if err != nil {
		return 0, appErrors.NewStoreError("update notifications", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, appErrors.NewStoreError("rows affected", err)
	}
	return int(n), nil
}

// ====================== Settings ======================

// IsEnabled defaults to true when the tenant never stored a setting for action.
func (r *NotificationRepository) IsEnabled(ctx context.Context, tenantID uuid.UUID, action string) (bool, error) {
	var enabled bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT enabled FROM notification_settings WHERE tenant_id=$1 AND action=$2`, tenantID, action,
	).Scan(&enabled)
	if errors.Is(err, sql.ErrNoRows) {
		return true, nil
	}
	if err != nil {
		return false, appErrors.NewStoreError("select notification_settings", err)
	}
	return enabled, nil
}

func (r *NotificationRepository) Settings(ctx context.Context, tenantID uuid.UUID) (map[string]bool, error) {
	settings := make(map[string]bool, len(model.NotificationActions))
	for _, action := range model.NotificationActions {
		settings[action] = true
	}

	rows, err := r.DB.QueryContext(ctx, `SELECT action, enabled FROM notification_settings WHERE tenant_id=$1`, tenantID)
	if err != nil {
		return nil, appErrors.NewStoreError("list notification_settings", err)
	}
	defer rows.Close()

	for rows.Next() {
		var action string
		var enabled bool
		if err := rows.Scan(&action, &enabled); err != nil {
			return nil, appErrors.NewStoreError("scan notification_settings", err)
		}
		settings[action] = enabled
	}
	if err := rows.Err(); err != nil {
		return nil, appErrors.NewStoreError("iterate notification_settings", err)
	}
	return settings, nil
}

func (r *NotificationRepository) UpsertSetting(ctx context.Context, tenantID uuid.UUID, action string, enabled bool) error {
	query := `
        INSERT INTO notification_settings (tenant_id, action, enabled, updated_at)
        VALUES ($1, $2, $3, NOW())
        ON CONFLICT (tenant_id, action) DO UPDATE SET enabled=EXCLUDED.enabled, updated_at=NOW()
    `
	if _, err := r.DB.ExecContext(ctx, query, tenantID, action, enabled); err != nil {
		return appErrors.NewStoreError("upsert notification_settings", err)
	}
	return nil
}

var _ NotificationRepositoryInterface = (*NotificationRepository)(nil)
