package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appErrors "github.com/unclebandit/agency-portal-backend/internal/errors"
	"github.com/unclebandit/agency-portal-backend/internal/metrics"
	"github.com/unclebandit/agency-portal-backend/internal/model"
	"github.com/unclebandit/agency-portal-backend/internal/policy"
	"github.com/unclebandit/agency-portal-backend/internal/repository"
)

const (
	defaultNotificationLimit = 50
	maxNotificationLimit     = 200
	handleEventTimeout       = 10 * time.Second
)

type NotificationService struct {
	Repo    repository.NotificationRepositoryInterface
	Logger  *zap.Logger
	Metrics *metrics.Recorder
}

func (s *NotificationService) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

// HandleReviewEvent is the queue subscriber for review events. It accepts the event
// itself (in-process queue) or its JSON encoding (AMQP). Returning an error asks the
// queue to retry; malformed events are dropped.
func (s *NotificationService) HandleReviewEvent(payload any) error {
	var event model.ReviewEvent
	switch p := payload.(type) {
	case model.ReviewEvent:
		event = p
	case *model.ReviewEvent:
		event = *p
	case []byte:
		if err := json.Unmarshal(p, &event); err != nil {
			s.logger().Error("dropping undecodable review event", zap.Error(err))
			return nil
		}
	default:
		s.logger().Error("dropping review event of unexpected type", zap.String("type", fmt.Sprintf("%T", payload)))
		return nil
	}

	if !model.IsNotificationAction(event.Action) || event.TenantID == uuid.Nil {
		s.logger().Warn("dropping invalid review event",
			zap.String("action", event.Action),
			zap.String("content_id", event.ContentID.String()),
		)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), handleEventTimeout)
	defer cancel()

	enabled, err := s.Repo.IsEnabled(ctx, event.TenantID, event.Action)
	if err != nil {
		return err
	}
	if !enabled {
		s.Metrics.Notification(event.Action, "disabled")
		s.logger().Debug("notification disabled for client",
			zap.String("client_id", event.TenantID.String()),
			zap.String("action", event.Action),
		)
		return nil
	}

	n := &model.Notification{
		TenantID:  event.TenantID,
		Kind:      event.Kind,
		ContentID: event.ContentID,
		Action:    event.Action,
		Message:   NotificationMessage(event),
	}
	if err := s.Repo.Create(ctx, n); err != nil {
		return err
	}
	s.Metrics.Notification(event.Action, "recorded")
	s.logger().Info("notification recorded",
		zap.String("id", n.ID.String()),
		zap.String("client_id", n.TenantID.String()),
		zap.String("action", n.Action),
	)
	return nil
}

// resolveTenant pins client actors to their own tenant; agency actors must name one.
func resolveTenant(actor model.Actor, requested *uuid.UUID) (uuid.UUID, error) {
	tenant, err := policy.ScopeTenant(actor, requested)
	if err != nil {
		return uuid.Nil, err
	}
	if tenant == nil || *tenant == uuid.Nil {
		return uuid.Nil, appErrors.NewValidation("client_id is required")
	}
	return *tenant, nil
}

func (s *NotificationService) List(ctx context.Context, actor model.Actor, requested *uuid.UUID, unreadOnly bool, limit int) ([]model.Notification, error) {
	tenant, err := resolveTenant(actor, requested)
	if err != nil {
		return nil, err
	}
	if err := policy.Evaluate(actor, policy.ActionReadNotifications, tenant); err != nil {
		return nil, err
	}
	if limit < 1 {
		limit = defaultNotificationLimit
	}
	if limit > maxNotificationLimit {
		limit = maxNotificationLimit
	}
	list, err := s.Repo.ListForTenant(ctx, tenant, unreadOnly, limit)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []model.Notification{}
	}
	return list, nil
}

// MarkRead sets is_read and read_at on one of the actor's own notifications.
func (s *NotificationService) MarkRead(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Notification, error) {
	if err := policy.Evaluate(actor, policy.ActionAckNotifications, actor.TenantID); err != nil {
		return nil, err
	}
	return s.Repo.MarkRead(ctx, actor.TenantID, id)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, actor model.Actor) (int, error) {
	if err := policy.Evaluate(actor, policy.ActionAckNotifications, actor.TenantID); err != nil {
		return 0, err
	}
	return s.Repo.MarkAllRead(ctx, actor.TenantID)
}

// Settings returns every notification action with its enabled flag.
func (s *NotificationService) Settings(ctx context.Context, actor model.Actor, requested *uuid.UUID) (map[string]bool, error) {
	tenant, err := resolveTenant(actor, requested)
	if err != nil {
		return nil, err
	}
	if err := policy.Evaluate(actor, policy.ActionManageNotifications, tenant); err != nil {
		return nil, err
	}
	return s.Repo.Settings(ctx, tenant)
}

// UpdateSettings stores the given toggles and returns the full settings afterwards.
func (s *NotificationService) UpdateSettings(ctx context.Context, actor model.Actor, requested *uuid.UUID, changes map[string]bool) (map[string]bool, error) {
	tenant, err := resolveTenant(actor, requested)
	if err != nil {
		return nil, err
	}
	if err := policy.Evaluate(actor, policy.ActionManageNotifications, tenant); err != nil {
		return nil, err
	}
	for action := range changes {
		if !model.IsNotificationAction(action) {
			return nil, appErrors.NewValidation("unknown notification action %q", action)
		}
	}
	for _, action := range model.NotificationActions {
		enabled, ok := changes[action]
		if !ok {
			continue
		}
		if err := s.Repo.UpsertSetting(ctx, tenant, action, enabled); err != nil {
			return nil, err
		}
	}
	s.logger().Info("notification settings updated", zap.String("client_id", tenant.String()))
	return s.Repo.Settings(ctx, tenant)
}
