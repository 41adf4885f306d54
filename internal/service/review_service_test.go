package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	appErrors "github.com/unclebandit/agency-portal-backend/internal/errors"
	"github.com/unclebandit/agency-portal-backend/internal/model"
	"github.com/unclebandit/agency-portal-backend/internal/service"
)

type fixture struct {
	tenant   uuid.UUID
	agency   model.Actor
	reviewer model.Actor
	outsider model.Actor
	clients  *MockClientRepo
	queue    *MockQueue
}

func newFixture() fixture {
	tenant := uuid.New()
	other := uuid.New()
	return fixture{
		tenant:   tenant,
		agency:   model.Actor{UserID: uuid.New(), Role: model.RoleAgencyStaff},
		reviewer: model.Actor{UserID: uuid.New(), Role: model.RoleClientUser, TenantID: tenant},
		outsider: model.Actor{UserID: uuid.New(), Role: model.RoleClientAdmin, TenantID: other},
		clients: &MockClientRepo{Clients: map[uuid.UUID]model.Client{
			tenant: {ID: tenant, Name: "Acme", Active: true},
			other:  {ID: other, Name: "Globex", Active: true},
		}},
		queue: &MockQueue{},
	}
}

func (f fixture) blogService() (*service.ReviewService[*model.BlogPost], *MockContentRepo[*model.BlogPost]) {
	repo := NewMockContentRepo(cloneBlogPost)
	return &service.ReviewService[*model.BlogPost]{
		Repo:    repo,
		Clients: f.clients,
		Slugs:   repo,
		Queue:   f.queue,
	}, repo
}

func (f fixture) newPost(title string) *model.BlogPost {
	return &model.BlogPost{
		Content: model.Content{TenantID: f.tenant},
		Title:   title,
		Body:    "body",
	}
}

func assertValidation(t *testing.T, err error) {
	t.Helper()
	var v *appErrors.ValidationError
	assert.True(t, errors.As(err, &v), "expected ValidationError, got %v", err)
}

func assertForbidden(t *testing.T, err error) {
	t.Helper()
	var f *appErrors.ForbiddenError
	assert.True(t, errors.As(err, &f), "expected ForbiddenError, got %v", err)
}

func TestRejectAndResubmitClearsReason(t *testing.T) {
	f := newFixture()
	svc, repo := f.blogService()
	ctx := context.Background()

	post, err := svc.Create(ctx, f.agency, f.newPost("My Post"))
	require.NoError(t, err)
	assert.Equal(t, model.StatusDraft, post.Status)
	assert.Nil(t, post.RejectionReason)
	assert.Equal(t, "my-post", post.Slug)
	assert.Equal(t, f.agency.UserID, post.CreatedBy)

	post, err = svc.SubmitForReview(ctx, f.agency, post.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPendingReview, post.Status)
	assert.Nil(t, post.RejectionReason)

	post, err = svc.Reject(ctx, f.reviewer, post.ID, "  needs a call-to-action \n")
	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected, post.Status)
	require.NotNil(t, post.RejectionReason)
	assert.Equal(t, "needs a call-to-action", *post.RejectionReason)

	post, err = svc.Edit(ctx, f.agency, post.ID, func(p *model.BlogPost) { p.Body = "now with a CTA" })
	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected, post.Status)

	post, err = svc.SubmitForReview(ctx, f.agency, post.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPendingReview, post.Status)
	assert.Nil(t, post.RejectionReason)

	stored, ok := repo.Stored(post.ID)
	require.True(t, ok)
	assert.Equal(t, "now with a CTA", stored.Body)
	assert.Nil(t, stored.RejectionReason)

	assert.Equal(t, []string{model.ActionSubmitted, model.ActionRejected, model.ActionSubmitted}, f.queue.Actions())
	assert.Equal(t, "needs a call-to-action", f.queue.Published[1].Reason)
	assert.Equal(t, "My Post", f.queue.Published[1].Label)
}

func TestDeleteApprovedFails(t *testing.T) {
	f := newFixture()
	svc, repo := f.blogService()
	ctx := context.Background()

	post, err := svc.Create(ctx, f.agency, f.newPost("Approved"))
	require.NoError(t, err)
	_, err = svc.SubmitForReview(ctx, f.agency, post.ID)
	require.NoError(t, err)
	_, err = svc.Approve(ctx, f.reviewer, post.ID)
	require.NoError(t, err)

	err = svc.Delete(ctx, f.agency, post.ID)
	assertValidation(t, err)

	stored, ok := repo.Stored(post.ID)
	require.True(t, ok)
	assert.Equal(t, model.StatusApproved, stored.Status)
}

func TestDeleteDraft(t *testing.T) {
	f := newFixture()
	svc, repo := f.blogService()
	ctx := context.Background()

	post, err := svc.Create(ctx, f.agency, f.newPost("Short lived"))
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, f.agency, post.ID))

	_, ok := repo.Stored(post.ID)
	assert.False(t, ok)

	_, err = svc.Get(ctx, f.agency, post.ID)
	var nf *appErrors.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestSlugCollisions(t *testing.T) {
	f := newFixture()
	svc, _ := f.blogService()
	ctx := context.Background()

	var slugs []string
	for i := 0; i < 3; i++ {
		post, err := svc.Create(ctx, f.agency, f.newPost("My Post"))
		require.NoError(t, err)
		slugs = append(slugs, post.Slug)
	}
	assert.Equal(t, []string{"my-post", "my-post-1", "my-post-2"}, slugs)
}

func TestUniqueSlug(t *testing.T) {
	ctx := context.Background()

	got, err := service.UniqueSlug(ctx, MockSlugs{"my-post": true, "my-post-1": true}, "My Post", uuid.New())
	require.NoError(t, err)
	assert.Equal(t, "my-post-2", got)

	got, err = service.UniqueSlug(ctx, MockSlugs{}, "  !!! ", uuid.New())
	require.NoError(t, err)
	assert.Equal(t, "untitled", got)

	got, err = service.UniqueSlug(ctx, nil, "Hello World", uuid.New())
	require.NoError(t, err)
	assert.Equal(t, "hello-world", got)
}

func TestEditRegeneratesSlugAndKeepsIdentity(t *testing.T) {
	f := newFixture()
	svc, _ := f.blogService()
	ctx := context.Background()

	_, err := svc.Create(ctx, f.agency, f.newPost("Launch Notes"))
	require.NoError(t, err)
	post, err := svc.Create(ctx, f.agency, f.newPost("Draft"))
	require.NoError(t, err)
	originalID := post.ID

	edited, err := svc.Edit(ctx, f.agency, post.ID, func(p *model.BlogPost) {
		p.Title = "Launch Notes"
		p.ID = uuid.New()
		p.TenantID = uuid.New()
		p.Status = model.StatusPublished
	})
	require.NoError(t, err)
	assert.Equal(t, "launch-notes-1", edited.Slug)
	assert.Equal(t, originalID, edited.ID)
	assert.Equal(t, f.tenant, edited.TenantID)
	assert.Equal(t, model.StatusDraft, edited.Status)

	again, err := svc.Edit(ctx, f.agency, post.ID, func(p *model.BlogPost) { p.Excerpt = "same title" })
	require.NoError(t, err)
	assert.Equal(t, "launch-notes-1", again.Slug)
}

func TestEditRejectedWhilePending(t *testing.T) {
	f := newFixture()
	svc, _ := f.blogService()
	ctx := context.Background()

	post, err := svc.Create(ctx, f.agency, f.newPost("Locked"))
	require.NoError(t, err)
	_, err = svc.SubmitForReview(ctx, f.agency, post.ID)
	require.NoError(t, err)

	_, err = svc.Edit(ctx, f.agency, post.ID, func(p *model.BlogPost) { p.Body = "sneaky" })
	assertValidation(t, err)
}

func TestIllegalTransitions(t *testing.T) {
	f := newFixture()
	svc, repo := f.blogService()
	ctx := context.Background()

	post, err := svc.Create(ctx, f.agency, f.newPost("Lifecycle"))
	require.NoError(t, err)

	t.Run("approve a draft", func(t *testing.T) {
		_, err := svc.Approve(ctx, f.reviewer, post.ID)
		assertValidation(t, err)
	})

	t.Run("publish before approval", func(t *testing.T) {
		_, err := svc.Publish(ctx, f.agency, post.ID)
		assertValidation(t, err)
	})

	t.Run("withdraw a draft", func(t *testing.T) {
		_, err := svc.Withdraw(ctx, f.agency, post.ID)
		assertValidation(t, err)
	})

	t.Run("resubmit a published item", func(t *testing.T) {
		repo.SetStatus(post.ID, model.StatusPublished)
		defer repo.SetStatus(post.ID, model.StatusDraft)

		_, err := svc.SubmitForReview(ctx, f.agency, post.ID)
		assertValidation(t, err)
		assert.Contains(t, err.Error(), "published")
	})

	t.Run("reject without reason", func(t *testing.T) {
		_, err := svc.SubmitForReview(ctx, f.agency, post.ID)
		require.NoError(t, err)

		_, err = svc.Reject(ctx, f.reviewer, post.ID, "   ")
		assertValidation(t, err)

		stored, _ := repo.Stored(post.ID)
		assert.Equal(t, model.StatusPendingReview, stored.Status)
	})

	t.Run("unknown review action", func(t *testing.T) {
		_, err := svc.Review(ctx, f.reviewer, post.ID, "maybe", "")
		assertValidation(t, err)
	})
}

func TestRoleAndTenantChecks(t *testing.T) {
	f := newFixture()
	svc, _ := f.blogService()
	ctx := context.Background()

	post, err := svc.Create(ctx, f.agency, f.newPost("Guarded"))
	require.NoError(t, err)

	_, err = svc.Create(ctx, f.reviewer, f.newPost("Client authored"))
	assertForbidden(t, err)

	_, err = svc.SubmitForReview(ctx, f.reviewer, post.ID)
	assertForbidden(t, err)

	_, err = svc.SubmitForReview(ctx, f.agency, post.ID)
	require.NoError(t, err)

	_, err = svc.Approve(ctx, f.agency, post.ID)
	assertForbidden(t, err)

	_, err = svc.Approve(ctx, f.outsider, post.ID)
	assertForbidden(t, err)

	_, err = svc.Get(ctx, f.outsider, post.ID)
	assertForbidden(t, err)

	got, err := svc.Get(ctx, f.reviewer, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.ID, got.ID)
}

func TestCreateRequiresActiveClient(t *testing.T) {
	f := newFixture()
	svc, _ := f.blogService()
	ctx := context.Background()

	orphan := f.newPost("Orphan")
	orphan.TenantID = uuid.New()
	_, err := svc.Create(ctx, f.agency, orphan)
	assertValidation(t, err)

	_, err = svc.Create(ctx, f.agency, &model.BlogPost{Title: "No client"})
	assertValidation(t, err)

	dormant := uuid.New()
	f.clients.Clients[dormant] = model.Client{ID: dormant, Name: "Dormant"}
	post := f.newPost("Dormant")
	post.TenantID = dormant
	_, err = svc.Create(ctx, f.agency, post)
	assertValidation(t, err)
}

func TestConcurrentReviewConflicts(t *testing.T) {
	f := newFixture()
	svc, repo := f.blogService()
	ctx := context.Background()

	post, err := svc.Create(ctx, f.agency, f.newPost("Contested"))
	require.NoError(t, err)
	_, err = svc.SubmitForReview(ctx, f.agency, post.ID)
	require.NoError(t, err)

	// another reviewer approves between our read and our write
	repo.BeforeWrite = func(id uuid.UUID) {
		repo.BeforeWrite = nil
		repo.SetStatus(id, model.StatusApproved)
	}

	_, err = svc.Reject(ctx, f.reviewer, post.ID, "too late")
	var conflict *appErrors.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, 409, appErrors.HTTPStatus(err))

	stored, _ := repo.Stored(post.ID)
	assert.Equal(t, model.StatusApproved, stored.Status)
	assert.Nil(t, stored.RejectionReason)
	assert.Equal(t, []string{model.ActionSubmitted}, f.queue.Actions())
}

func TestPublishAndWithdraw(t *testing.T) {
	f := newFixture()
	svc, _ := f.blogService()
	ctx := context.Background()

	post, err := svc.Create(ctx, f.agency, f.newPost("Ship it"))
	require.NoError(t, err)

	_, err = svc.SubmitForReview(ctx, f.agency, post.ID)
	require.NoError(t, err)
	withdrawn, err := svc.Withdraw(ctx, f.agency, post.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDraft, withdrawn.Status)

	_, err = svc.SubmitForReview(ctx, f.agency, post.ID)
	require.NoError(t, err)
	_, err = svc.Review(ctx, f.reviewer, post.ID, "approve", "")
	require.NoError(t, err)

	published, err := svc.Publish(ctx, f.agency, post.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPublished, published.Status)
	assert.NotNil(t, published.PublishedAt)

	assert.Equal(t,
		[]string{model.ActionSubmitted, model.ActionSubmitted, model.ActionApproved, model.ActionPublished},
		f.queue.Actions())
}

func TestCampaignReasonClearedLikeOtherKinds(t *testing.T) {
	f := newFixture()
	repo := NewMockContentRepo(cloneCampaign)
	svc := &service.ReviewService[*model.Campaign]{Repo: repo, Clients: f.clients, Queue: f.queue}
	ctx := context.Background()

	c, err := svc.Create(ctx, f.agency, &model.Campaign{
		Content: model.Content{TenantID: f.tenant},
		Name:    "Spring sale",
		Channel: "email",
	})
	require.NoError(t, err)

	_, err = svc.SubmitForReview(ctx, f.agency, c.ID)
	require.NoError(t, err)
	_, err = svc.Reject(ctx, f.reviewer, c.ID, "wrong dates")
	require.NoError(t, err)
	_, err = svc.SubmitForReview(ctx, f.agency, c.ID)
	require.NoError(t, err)

	approved, err := svc.Approve(ctx, f.reviewer, c.ID)
	require.NoError(t, err)
	assert.Nil(t, approved.RejectionReason)

	stored, _ := repo.Stored(c.ID)
	assert.Nil(t, stored.RejectionReason)
}

func TestQueueFailureDoesNotFailTransition(t *testing.T) {
	f := newFixture()
	core, logs := observer.New(zapcore.WarnLevel)
	f.queue.Err = errors.New("broker down")

	repo := NewMockContentRepo(cloneSocialPost)
	svc := &service.ReviewService[*model.SocialPost]{
		Repo:    repo,
		Clients: f.clients,
		Queue:   f.queue,
		Logger:  zap.New(core),
	}
	ctx := context.Background()

	post, err := svc.Create(ctx, f.agency, &model.SocialPost{
		Content:  model.Content{TenantID: f.tenant},
		Platform: model.PlatformLinkedIn,
		Body:     "We are hiring",
	})
	require.NoError(t, err)

	submitted, err := svc.SubmitForReview(ctx, f.agency, post.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPendingReview, submitted.Status)

	require.Equal(t, 1, logs.FilterMessage("failed to publish review event").Len())
}

func TestUpdateChecksTransitionBeforeEditing(t *testing.T) {
	f := newFixture()
	svc, repo := f.blogService()
	ctx := context.Background()

	post, err := svc.Create(ctx, f.agency, f.newPost("Original"))
	require.NoError(t, err)
	retitle := func(p *model.BlogPost) { p.Title = "Changed" }

	_, err = svc.Update(ctx, f.agency, post.ID, retitle, model.StatusDraft)
	assertValidation(t, err)
	_, err = svc.Update(ctx, f.agency, post.ID, retitle, model.StatusApproved)
	assertValidation(t, err)
	_, err = svc.Update(ctx, f.agency, post.ID, nil, "")
	assertValidation(t, err)

	stored, _ := repo.Stored(post.ID)
	assert.Equal(t, "Original", stored.Title)
	assert.Equal(t, "original", stored.Slug)
	assert.Empty(t, f.queue.Actions())

	updated, err := svc.Update(ctx, f.agency, post.ID, retitle, model.StatusPendingReview)
	require.NoError(t, err)
	assert.Equal(t, "Changed", updated.Title)
	assert.Equal(t, "changed", updated.Slug)
	assert.Equal(t, model.StatusPendingReview, updated.Status)
	assert.Equal(t, []string{model.ActionSubmitted}, f.queue.Actions())

	_, err = svc.Update(ctx, f.reviewer, post.ID, nil, model.StatusDraft)
	assertForbidden(t, err)
}
