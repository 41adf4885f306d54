package model

import (
	"time"

	"github.com/google/uuid"
)

// Kind names a content type that goes through review.
type Kind string

const (
	KindBlogPost   Kind = "blog_post"
	KindSocialPost Kind = "social_post"
	KindCampaign   Kind = "campaign"
)

// Human returns the kind as it reads in messages ("blog post").
func (k Kind) Human() string {
	switch k {
	case KindBlogPost:
		return "blog post"
	case KindSocialPost:
		return "social post"
	case KindCampaign:
		return "campaign"
	}
	return string(k)
}

// Status is a step of the review lifecycle.
type Status string

const (
	StatusDraft         Status = "draft"
	StatusPendingReview Status = "pending_review"
	StatusApproved      Status = "approved"
	StatusRejected      Status = "rejected"
	StatusPublished     Status = "published"
)

// ParseStatus reports whether s is a known status.
func ParseStatus(s string) (Status, bool) {
	switch st := Status(s); st {
	case StatusDraft, StatusPendingReview, StatusApproved, StatusRejected, StatusPublished:
		return st, true
	}
	return "", false
}

// Content holds the review fields every content kind shares.
type Content struct {
	ID              uuid.UUID  `json:"id"`
	TenantID        uuid.UUID  `json:"client_id"`
	Status          Status     `json:"status"`
	RejectionReason *string    `json:"rejection_reason"`
	CreatedBy       uuid.UUID  `json:"created_by"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Meta gives generic code access to the shared fields of an embedding kind.
func (c *Content) Meta() *Content { return c }

// Editable is true while the payload may still change.
func (c *Content) Editable() bool {
	return c.Status == StatusDraft || c.Status == StatusRejected
}

// IsDraft returns true if the item is a draft.
func (c *Content) IsDraft() bool {
	return c.Status == StatusDraft
}

// IsPublished returns true if the item is published.
func (c *Content) IsPublished() bool {
	return c.Status == StatusPublished
}

// Reviewable is implemented by every content kind.
type Reviewable interface {
	Meta() *Content
	Kind() Kind
	// Label is the identifying text shown in notifications.
	Label() string
}

// Slugged kinds derive a URL slug from an identifying field.
type Slugged interface {
	SlugSource() string
	CurrentSlug() string
	SetSlug(slug string)
}

// ContentFilter narrows list queries.
type ContentFilter struct {
	TenantID *uuid.UUID
	Status   Status
	Search   string
	Offset   int
	Limit    int
}
