package service_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	appErrors "github.com/unclebandit/agency-portal-backend/internal/errors"
	"github.com/unclebandit/agency-portal-backend/internal/model"
)

// MockContentRepo keeps copies of items in memory and enforces the same
// conditional-write rules as the SQL repositories.
type MockContentRepo[T model.Reviewable] struct {
	mu    sync.Mutex
	items map[uuid.UUID]T
	clone func(T) T

	// BeforeWrite runs before a conditional write, e.g. to simulate another request.
	BeforeWrite func(id uuid.UUID)
}

func NewMockContentRepo[T model.Reviewable](clone func(T) T) *MockContentRepo[T] {
	return &MockContentRepo[T]{items: make(map[uuid.UUID]T), clone: clone}
}

func (m *MockContentRepo[T]) Create(ctx context.Context, item T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	item.Meta().CreatedAt = now
	item.Meta().UpdatedAt = now
	m.items[item.Meta().ID] = m.clone(item)
	return nil
}

func (m *MockContentRepo[T]) GetByID(ctx context.Context, id uuid.UUID) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		var zero T
		return zero, appErrors.NewNotFound("content", id.String())
	}
	return m.clone(item), nil
}

func (m *MockContentRepo[T]) List(ctx context.Context, filter model.ContentFilter) ([]T, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []T
	for _, item := range m.items {
		meta := item.Meta()
		if filter.TenantID != nil && meta.TenantID != *filter.TenantID {
			continue
		}
		if filter.Status != "" && meta.Status != filter.Status {
			continue
		}
		matched = append(matched, m.clone(item))
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Meta().CreatedAt.After(matched[j].Meta().CreatedAt)
	})

	total := len(matched)
	start := filter.Offset
	if start > total {
		start = total
	}
	end := start + filter.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

// check must be called with mu held.
func (m *MockContentRepo[T]) check(id uuid.UUID, expected model.Status) (T, error) {
	item, ok := m.items[id]
	if !ok {
		var zero T
		return zero, appErrors.NewNotFound("content", id.String())
	}
	if item.Meta().Status != expected {
		return item, appErrors.NewConflict("content", id.String(),
			"status changed from "+string(expected)+" to "+string(item.Meta().Status)+" by another request")
	}
	return item, nil
}

func (m *MockContentRepo[T]) beforeWrite(id uuid.UUID) {
	if m.BeforeWrite != nil {
		m.BeforeWrite(id)
	}
}

func (m *MockContentRepo[T]) UpdatePayload(ctx context.Context, item T, expected model.Status) error {
	m.beforeWrite(item.Meta().ID)
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, err := m.check(item.Meta().ID, expected)
	if err != nil {
		return err
	}
	updated := m.clone(item)
	*updated.Meta() = *stored.Meta()
	updated.Meta().UpdatedAt = time.Now()
	m.items[item.Meta().ID] = updated
	return nil
}

func (m *MockContentRepo[T]) TransitionStatus(ctx context.Context, id uuid.UUID, expected, to model.Status, reason *string) error {
	m.beforeWrite(id)
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, err := m.check(id, expected)
	if err != nil {
		return err
	}
	meta := stored.Meta()
	meta.Status = to
	meta.RejectionReason = reason
	meta.UpdatedAt = time.Now()
	if to == model.StatusPublished {
		now := time.Now()
		meta.PublishedAt = &now
	}
	return nil
}

func (m *MockContentRepo[T]) Delete(ctx context.Context, id uuid.UUID, expected model.Status) error {
	m.beforeWrite(id)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.check(id, expected); err != nil {
		return err
	}
	delete(m.items, id)
	return nil
}

func (m *MockContentRepo[T]) CountByStatus(ctx context.Context, tenantID *uuid.UUID) (map[model.Status]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := map[model.Status]int{}
	for _, item := range m.items {
		if tenantID != nil && item.Meta().TenantID != *tenantID {
			continue
		}
		counts[item.Meta().Status]++
	}
	return counts, nil
}

// SetStatus changes a stored item behind the service's back.
func (m *MockContentRepo[T]) SetStatus(id uuid.UUID, status model.Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[id].Meta().Status = status
}

// Stored returns the stored copy.
func (m *MockContentRepo[T]) Stored(id uuid.UUID) (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return item, false
	}
	return m.clone(item), true
}

// SlugExists scans blog posts held by the repo.
func (m *MockContentRepo[T]) SlugExists(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, item := range m.items {
		if s, ok := any(item).(model.Slugged); ok && id != excludeID && s.CurrentSlug() == slug {
			return true, nil
		}
	}
	return false, nil
}

func cloneBlogPost(p *model.BlogPost) *model.BlogPost {
	c := *p
	c.Tags = append([]string(nil), p.Tags...)
	return &c
}

func cloneCampaign(c *model.Campaign) *model.Campaign {
	cp := *c
	return &cp
}

func cloneSocialPost(p *model.SocialPost) *model.SocialPost {
	c := *p
	c.MediaURLs = append([]string(nil), p.MediaURLs...)
	c.Hashtags = append([]string(nil), p.Hashtags...)
	return &c
}

// MockClientRepo
type MockClientRepo struct {
	Clients map[uuid.UUID]model.Client
}

func (m *MockClientRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	c, ok := m.Clients[id]
	if !ok {
		return nil, appErrors.NewNotFound("client", id.String())
	}
	return &c, nil
}

func (m *MockClientRepo) ListAll(ctx context.Context) ([]model.Client, error) {
	var out []model.Client
	for _, c := range m.Clients {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// MockSlugs reports the listed slugs as taken.
type MockSlugs map[string]bool

func (m MockSlugs) SlugExists(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error) {
	return m[slug], nil
}

// MockQueue records publishes instead of delivering them.
type MockQueue struct {
	mu        sync.Mutex
	Published []model.ReviewEvent
	Err       error
}

func (q *MockQueue) Publish(topic string, payload any) error {
	if q.Err != nil {
		return q.Err
	}
	event, ok := payload.(model.ReviewEvent)
	if !ok {
		return errors.New("unexpected payload")
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.Published = append(q.Published, event)
	return nil
}

func (q *MockQueue) Subscribe(topic string, handler func(payload any) error) error {
	return nil
}

func (q *MockQueue) Actions() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	actions := make([]string, len(q.Published))
	for i, e := range q.Published {
		actions[i] = e.Action
	}
	return actions
}

// MockNotificationRepo
type MockNotificationRepo struct {
	mu            sync.Mutex
	Notifications []model.Notification
	Disabled      map[string]bool
	Err           error
}

func (m *MockNotificationRepo) Create(ctx context.Context, n *model.Notification) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	n.CreatedAt = time.Now()
	m.Notifications = append(m.Notifications, *n)
	return nil
}

func (m *MockNotificationRepo) ListForTenant(ctx context.Context, tenantID uuid.UUID, unreadOnly bool, limit int) ([]model.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Notification
	for _, n := range m.Notifications {
		if n.TenantID != tenantID || (unreadOnly && n.IsRead) {
			continue
		}
		out = append(out, n)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *MockNotificationRepo) MarkRead(ctx context.Context, tenantID, id uuid.UUID) (*model.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.Notifications {
		n := &m.Notifications[i]
		if n.ID == id && n.TenantID == tenantID {
			if !n.IsRead {
				now := time.Now()
				n.IsRead = true
				n.ReadAt = &now
			}
			cp := *n
			return &cp, nil
		}
	}
	return nil, appErrors.NewNotFound("notification", id.String())
}

func (m *MockNotificationRepo) MarkAllRead(ctx context.Context, tenantID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	now := time.Now()
	for i := range m.Notifications {
		n := &m.Notifications[i]
		if n.TenantID == tenantID && !n.IsRead {
			n.IsRead = true
			n.ReadAt = &now
			count++
		}
	}
	return count, nil
}

func (m *MockNotificationRepo) IsEnabled(ctx context.Context, tenantID uuid.UUID, action string) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.Disabled[action], nil
}

func (m *MockNotificationRepo) Settings(ctx context.Context, tenantID uuid.UUID) (map[string]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]bool, len(model.NotificationActions))
	for _, a := range model.NotificationActions {
		out[a] = !m.Disabled[a]
	}
	return out, nil
}

func (m *MockNotificationRepo) UpsertSetting(ctx context.Context, tenantID uuid.UUID, action string, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Disabled == nil {
		m.Disabled = map[string]bool{}
	}
	m.Disabled[action] = !enabled
	return nil
}
