package repository_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/unclebandit/agency-portal-backend/internal/errors"
	"github.com/unclebandit/agency-portal-backend/internal/model"
	"github.com/unclebandit/agency-portal-backend/internal/repository"
)

func TestNotificationRepository_IsEnabledDefaultsToTrue(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &repository.NotificationRepository{DB: db}
	tenant := uuid.New()

	mock.ExpectQuery(`SELECT enabled FROM notification_settings`).
		WithArgs(tenant, model.ActionApproved).
		WillReturnError(sql.ErrNoRows)

	enabled, err := repo.IsEnabled(context.Background(), tenant, model.ActionApproved)
	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestNotificationRepository_SettingsMergesStoredValues(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &repository.NotificationRepository{DB: db}
	tenant := uuid.New()

	mock.ExpectQuery(`SELECT action, enabled FROM notification_settings`).
		WithArgs(tenant).
		WillReturnRows(sqlmock.NewRows([]string{"action", "enabled"}).AddRow("rejected", false))

	settings, err := repo.Settings(context.Background(), tenant)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{
		model.ActionSubmitted: true,
		model.ActionApproved:  true,
		model.ActionRejected:  false,
		model.ActionPublished: true,
	}, settings)
}

func TestNotificationRepository_MarkReadScopedToTenant(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &repository.NotificationRepository{DB: db}
	tenant, id := uuid.New(), uuid.New()

	mock.ExpectQuery(`UPDATE notifications SET is_read=TRUE`).
		WithArgs(id, tenant).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.MarkRead(context.Background(), tenant, id)
	var notFound *appErrors.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestNotificationRepository_UpsertSetting(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &repository.NotificationRepository{DB: db}
	tenant := uuid.New()

	mock.ExpectExec(`INSERT INTO notification_settings .* ON CONFLICT \(tenant_id, action\) DO UPDATE`).
		WithArgs(tenant, model.ActionPublished, false).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.UpsertSetting(context.Background(), tenant, model.ActionPublished, false))
}
