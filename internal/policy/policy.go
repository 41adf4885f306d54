// Package policy decides whether an actor may perform an action on a tenant's data.
// Handlers and services call Evaluate instead of checking roles themselves.
package policy

import (
	"github.com/google/uuid"

	appErrors "github.com/unclebandit/agency-portal-backend/internal/errors"
	"github.com/unclebandit/agency-portal-backend/internal/model"
)

type Action string

const (
	ActionView     Action = "view"
	ActionCreate   Action = "create"
	ActionEdit     Action = "edit"
	ActionSubmit   Action = "submit"
	ActionWithdraw Action = "withdraw"
	ActionReview   Action = "review"
	ActionPublish  Action = "publish"
	ActionDelete   Action = "delete"

	ActionReadNotifications   Action = "notifications.read"
	ActionAckNotifications    Action = "notifications.ack"
	ActionManageNotifications Action = "notifications.manage"
)

var clientActions = map[Action]bool{
	ActionView:              true,
	ActionReview:            true,
	ActionReadNotifications: true,
	ActionAckNotifications:  true,
}

// Evaluate returns nil when actor may perform action on data owned by tenantID,
// and a ForbiddenError otherwise.
func Evaluate(actor model.Actor, action Action, tenantID uuid.UUID) error {
	switch {
	case actor.Role.IsAgency():
		if action == ActionReview {
			return appErrors.NewForbidden("only client reviewers may approve or reject content")
		}
		if action == ActionAckNotifications {
			return appErrors.NewForbidden("notifications are acknowledged by the client")
		}
		return nil

	case actor.Role.IsClient():
		if actor.TenantID == uuid.Nil || actor.TenantID != tenantID {
			return appErrors.NewForbidden("resource belongs to another client")
		}
		if action == ActionManageNotifications && actor.Role == model.RoleClientAdmin {
			return nil
		}
		if !clientActions[action] {
			return appErrors.NewForbidden("client users may not " + string(action) + " content")
		}
		return nil
	}
	return appErrors.NewForbidden("unknown role " + string(actor.Role))
}

// ScopeTenant resolves which tenant a list query may cover.
// Client actors are pinned to their own tenant; requesting another one is forbidden.
// Agency actors may pass nil to cover every tenant.
func ScopeTenant(actor model.Actor, requested *uuid.UUID) (*uuid.UUID, error) {
	if actor.Role.IsAgency() {
		return requested, nil
	}
	if !actor.Role.IsClient() {
		return nil, appErrors.NewForbidden("unknown role " + string(actor.Role))
	}
	if requested != nil && *requested != actor.TenantID {
		return nil, appErrors.NewForbidden("resource belongs to another client")
	}
	own := actor.TenantID
	return &own, nil
}
