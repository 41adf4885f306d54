package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/unclebandit/agency-portal-backend/internal/model"
	"github.com/unclebandit/agency-portal-backend/internal/policy"
	"github.com/unclebandit/agency-portal-backend/internal/repository"
)

// StatusCounter is the slice of a content repository the dashboard needs.
type StatusCounter interface {
	CountByStatus(ctx context.Context, tenantID *uuid.UUID) (map[model.Status]int, error)
}

type DashboardStats struct {
	ClientID *uuid.UUID                          `json:"client_id,omitempty"`
	Content  map[model.Kind]map[model.Status]int `json:"content"`
	Totals   map[model.Status]int                `json:"totals"`
	// AwaitingReview counts pending_review items across every kind.
	AwaitingReview int `json:"awaiting_review"`
}

var allStatuses = []model.Status{
	model.StatusDraft, model.StatusPendingReview, model.StatusApproved, model.StatusRejected, model.StatusPublished,
}

type StatsService struct {
	Counters map[model.Kind]StatusCounter
}

// Dashboard aggregates status counts per kind. Every status is present, zero when empty.
func (s *StatsService) Dashboard(ctx context.Context, actor model.Actor, requested *uuid.UUID) (*DashboardStats, error) {
	tenant, err := policy.ScopeTenant(actor, requested)
	if err != nil {
		return nil, err
	}
	if tenant != nil {
		if err := policy.Evaluate(actor, policy.ActionView, *tenant); err != nil {
			return nil, err
		}
	}

	stats := &DashboardStats{
		ClientID: tenant,
		Content:  make(map[model.Kind]map[model.Status]int, len(s.Counters)),
		Totals:   zeroCounts(),
	}
	for kind, counter := range s.Counters {
		counts, err := counter.CountByStatus(ctx, tenant)
		if err != nil {
			return nil, err
		}
		perKind := zeroCounts()
		for status, n := range counts {
			perKind[status] += n
			stats.Totals[status] += n
		}
		stats.Content[kind] = perKind
	}
	stats.AwaitingReview = stats.Totals[model.StatusPendingReview]
	return stats, nil
}

func zeroCounts() map[model.Status]int {
	counts := make(map[model.Status]int, len(allStatuses))
	for _, s := range allStatuses {
		counts[s] = 0
	}
	return counts
}

// ClientService lists tenants visible to an actor.
type ClientService struct {
	Repo repository.ClientRepositoryInterface
}

// List returns every client for agency actors and only the actor's own client otherwise.
func (s *ClientService) List(ctx context.Context, actor model.Actor) ([]model.Client, error) {
	if actor.Role.IsAgency() {
		clients, err := s.Repo.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		if clients == nil {
			clients = []model.Client{}
		}
		return clients, nil
	}
	if err := policy.Evaluate(actor, policy.ActionView, actor.TenantID); err != nil {
		return nil, err
	}
	client, err := s.Repo.GetByID(ctx, actor.TenantID)
	if err != nil {
		return nil, err
	}
	return []model.Client{*client}, nil
}
