package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appErrors "github.com/unclebandit/agency-portal-backend/internal/errors"
	"github.com/unclebandit/agency-portal-backend/internal/metrics"
	"github.com/unclebandit/agency-portal-backend/internal/model"
	"github.com/unclebandit/agency-portal-backend/internal/policy"
	"github.com/unclebandit/agency-portal-backend/internal/queue"
	"github.com/unclebandit/agency-portal-backend/internal/repository"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ReviewService runs the review lifecycle for one content kind.
// Slugs is only set for kinds that implement model.Slugged.
type ReviewService[T model.Reviewable] struct {
	Repo    repository.ContentRepositoryInterface[T]
	Clients repository.ClientRepositoryInterface
	Slugs   repository.SlugLookup
	Queue   queue.Queue
	Logger  *zap.Logger
	Metrics *metrics.Recorder
}

func (s *ReviewService[T]) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

// Create stores item as a draft owned by its client.
func (s *ReviewService[T]) Create(ctx context.Context, actor model.Actor, item T) (T, error) {
	var zero T
	meta := item.Meta()
	if meta.TenantID == uuid.Nil {
		return zero, appErrors.NewValidation("client_id is required")
	}
	if err := policy.Evaluate(actor, policy.ActionCreate, meta.TenantID); err != nil {
		return zero, err
	}

	client, err := s.Clients.GetByID(ctx, meta.TenantID)
	if err != nil {
		var nf *appErrors.NotFoundError
		if errors.As(err, &nf) {
			return zero, appErrors.NewValidation("client %s does not exist", meta.TenantID)
		}
		return zero, err
	}
	if !client.Active {
		return zero, appErrors.NewValidation("client %s is not active", client.Name)
	}

	meta.ID = uuid.New()
	meta.Status = model.StatusDraft
	meta.RejectionReason = nil
	meta.PublishedAt = nil
	meta.CreatedBy = actor.UserID

	if sl, ok := any(item).(model.Slugged); ok {
		generated, err := UniqueSlug(ctx, s.Slugs, sl.SlugSource(), meta.ID)
		if err != nil {
			return zero, err
		}
		sl.SetSlug(generated)
	}

	if err := s.Repo.Create(ctx, item); err != nil {
		return zero, err
	}
	s.logger().Info("content created",
		zap.String("kind", string(item.Kind())),
		zap.String("id", meta.ID.String()),
		zap.String("client_id", meta.TenantID.String()),
	)
	return item, nil
}

func (s *ReviewService[T]) Get(ctx context.Context, actor model.Actor, id uuid.UUID) (T, error) {
	var zero T
	item, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return zero, err
	}
	if err := policy.Evaluate(actor, policy.ActionView, item.Meta().TenantID); err != nil {
		return zero, err
	}
	return item, nil
}

// List returns one page and the pagination map (page, page_size, total_count, total_pages).
// Client actors only ever see their own tenant.
func (s *ReviewService[T]) List(ctx context.Context, actor model.Actor, filter model.ContentFilter, page, pageSize int) ([]T, map[string]int, error) {
	tenant, err := policy.ScopeTenant(actor, filter.TenantID)
	if err != nil {
		return nil, nil, err
	}
	filter.TenantID = tenant

	if filter.Status != "" {
		if _, ok := model.ParseStatus(string(filter.Status)); !ok {
			return nil, nil, appErrors.NewValidation("unknown status %q", filter.Status)
		}
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	if page > math.MaxInt32/pageSize {
		return nil, nil, appErrors.NewValidation("page %d is out of range", page)
	}
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize

	items, total, err := s.Repo.List(ctx, filter)
	if err != nil {
		return nil, nil, err
	}
	if items == nil {
		items = []T{}
	}

	totalPages := (total + pageSize - 1) / pageSize
	pagination := map[string]int{
		"page":        page,
		"page_size":   pageSize,
		"total_count": total,
		"total_pages": totalPages,
	}
	return items, pagination, nil
}

func (s *ReviewService[T]) SubmitForReview(ctx context.Context, actor model.Actor, id uuid.UUID) (T, error) {
	return s.apply(ctx, actor, id, submitTransition, "")
}

func (s *ReviewService[T]) Approve(ctx context.Context, actor model.Actor, id uuid.UUID) (T, error) {
	return s.apply(ctx, actor, id, approveTransition, "")
}

// Reject requires a reason; it is stored with surrounding whitespace trimmed.
func (s *ReviewService[T]) Reject(ctx context.Context, actor model.Actor, id uuid.UUID, reason string) (T, error) {
	return s.apply(ctx, actor, id, rejectTransition, reason)
}

// Review dispatches a reviewer decision ("approve" or "reject").
func (s *ReviewService[T]) Review(ctx context.Context, actor model.Actor, id uuid.UUID, action, reason string) (T, error) {
	switch action {
	case "approve":
		return s.Approve(ctx, actor, id)
	case "reject":
		return s.Reject(ctx, actor, id, reason)
	}
	var zero T
	return zero, appErrors.NewValidation("action must be approve or reject, got %q", action)
}

// Withdraw pulls a pending item back to draft so it can be edited again.
func (s *ReviewService[T]) Withdraw(ctx context.Context, actor model.Actor, id uuid.UUID) (T, error) {
	return s.apply(ctx, actor, id, withdrawTransition, "")
}

func (s *ReviewService[T]) Publish(ctx context.Context, actor model.Actor, id uuid.UUID) (T, error) {
	return s.apply(ctx, actor, id, publishTransition, "")
}

func (s *ReviewService[T]) apply(ctx context.Context, actor model.Actor, id uuid.UUID, t transition, reason string) (T, error) {
	var zero T
	item, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return zero, err
	}
	meta := item.Meta()
	if err := policy.Evaluate(actor, t.action, meta.TenantID); err != nil {
		return zero, err
	}

	if !t.allows(meta.Status) {
		return zero, appErrors.NewValidation("cannot %s %s while it is %s", t.name, item.Kind().Human(), meta.Status)
	}

	var storedReason *string
	if t.needsReason {
		reason = strings.TrimSpace(reason)
		if reason == "" {
			return zero, appErrors.NewValidation("rejection reason is required")
		}
		storedReason = &reason
	}

	from := meta.Status
	if err := s.Repo.TransitionStatus(ctx, id, from, t.to, storedReason); err != nil {
		s.countConflict(item.Kind(), err)
		return zero, err
	}

	now := time.Now().UTC()
	meta.Status = t.to
	meta.RejectionReason = storedReason
	meta.UpdatedAt = now
	if t.to == model.StatusPublished {
		meta.PublishedAt = &now
	}

	s.Metrics.Transition(string(item.Kind()), string(from), string(t.to))
	s.logger().Info("content status changed",
		zap.String("kind", string(item.Kind())),
		zap.String("id", id.String()),
		zap.String("from", string(from)),
		zap.String("to", string(t.to)),
		zap.String("actor_id", actor.UserID.String()),
	)

	if t.event != "" {
		s.notify(item, t.event, actor, reason)
	}
	return item, nil
}

// Edit applies change to the stored item. ID, tenant and review fields are restored
// after change runs; only the payload is written. A changed title regenerates the slug.
func (s *ReviewService[T]) Edit(ctx context.Context, actor model.Actor, id uuid.UUID, change func(T)) (T, error) {
	var zero T
	item, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return zero, err
	}
	meta := item.Meta()
	if err := policy.Evaluate(actor, policy.ActionEdit, meta.TenantID); err != nil {
		return zero, err
	}
	if !meta.Editable() {
		return zero, appErrors.NewValidation("cannot edit %s while it is %s", item.Kind().Human(), meta.Status)
	}

	saved := *meta
	sl, slugged := any(item).(model.Slugged)
	var oldSource string
	if slugged {
		oldSource = sl.SlugSource()
	}

	change(item)
	*item.Meta() = saved

	if slugged && (sl.SlugSource() != oldSource || sl.CurrentSlug() == "") {
		generated, err := UniqueSlug(ctx, s.Slugs, sl.SlugSource(), saved.ID)
		if err != nil {
			return zero, err
		}
		sl.SetSlug(generated)
	}

	if err := s.Repo.UpdatePayload(ctx, item, saved.Status); err != nil {
		s.countConflict(item.Kind(), err)
		return zero, err
	}
	item.Meta().UpdatedAt = time.Now().UTC()
	return item, nil
}

// Update applies an optional payload change and an optional status change as one request.
// Both preconditions are checked against the stored item before anything is written.
func (s *ReviewService[T]) Update(ctx context.Context, actor model.Actor, id uuid.UUID, change func(T), status model.Status) (T, error) {
	var zero T
	var next *transition
	if status != "" {
		t, ok := editTransitions[status]
		if !ok {
			return zero, appErrors.NewValidation("status %s is set through the review endpoint", status)
		}
		next = &t
	}

	switch {
	case change == nil && next == nil:
		return zero, appErrors.NewValidation("nothing to update")
	case next == nil:
		return s.Edit(ctx, actor, id, change)
	case change == nil:
		return s.apply(ctx, actor, id, *next, "")
	}

	current, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return zero, err
	}
	meta := current.Meta()
	if err := policy.Evaluate(actor, policy.ActionEdit, meta.TenantID); err != nil {
		return zero, err
	}
	if err := policy.Evaluate(actor, next.action, meta.TenantID); err != nil {
		return zero, err
	}
	if !meta.Editable() {
		return zero, appErrors.NewValidation("cannot edit %s while it is %s", current.Kind().Human(), meta.Status)
	}
	// Editing keeps the status, so the transition has to start from the current one.
	if !next.allows(meta.Status) {
		return zero, appErrors.NewValidation("cannot %s %s while it is %s", next.name, current.Kind().Human(), meta.Status)
	}

	if _, err := s.Edit(ctx, actor, id, change); err != nil {
		return zero, err
	}
	return s.apply(ctx, actor, id, *next, "")
}

// Delete removes a draft or rejected item.
func (s *ReviewService[T]) Delete(ctx context.Context, actor model.Actor, id uuid.UUID) error {
	item, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	meta := item.Meta()
	if err := policy.Evaluate(actor, policy.ActionDelete, meta.TenantID); err != nil {
		return err
	}
	if !meta.Editable() {
		return appErrors.NewValidation("cannot delete %s while it is %s", item.Kind().Human(), meta.Status)
	}
	if err := s.Repo.Delete(ctx, id, meta.Status); err != nil {
		s.countConflict(item.Kind(), err)
		return err
	}
	s.logger().Info("content deleted", zap.String("kind", string(item.Kind())), zap.String("id", id.String()))
	return nil
}

func (s *ReviewService[T]) countConflict(kind model.Kind, err error) {
	var conflict *appErrors.ConflictError
	if errors.As(err, &conflict) {
		s.Metrics.Conflict(string(kind))
		s.logger().Warn("concurrent status change", zap.String("kind", string(kind)), zap.Error(err))
	}
}

// notify publishes a ReviewEvent. Failures are logged and never reach the caller.
func (s *ReviewService[T]) notify(item T, action string, actor model.Actor, reason string) {
	if s.Queue == nil {
		return
	}
	meta := item.Meta()
	event := model.ReviewEvent{
		Kind:       item.Kind(),
		ContentID:  meta.ID,
		TenantID:   meta.TenantID,
		Action:     action,
		ActorID:    actor.UserID,
		Label:      item.Label(),
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.Queue.Publish(queue.TopicReviewEvents, event); err != nil {
		s.logger().Warn("failed to publish review event",
			zap.String("kind", string(event.Kind)),
			zap.String("id", meta.ID.String()),
			zap.String("action", action),
			zap.Error(err),
		)
	}
}
