package controller

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/unclebandit/agency-portal-backend/internal/model"
)

// Binder turns request bodies into items of one content kind.
type Binder[T model.Reviewable] interface {
	// New builds an unsaved item from a create body.
	New(body []byte) (T, error)
	// Patch returns the edit described by body. ok is false when body holds no payload fields.
	Patch(body []byte) (change func(T), ok bool, err error)
}

// ----- blog posts -----

type BlogPostBinder struct{}

type blogPostInput struct {
	ClientID      uuid.UUID `json:"client_id" validate:"required"`
	Title         string    `json:"title" validate:"required,max=200"`
	Content       string    `json:"content"`
	Excerpt       string    `json:"excerpt" validate:"max=500"`
	FeaturedImage string    `json:"featured_image" validate:"omitempty,url"`
	Tags          []string  `json:"tags" validate:"max=20,dive,required,max=50"`
}

type blogPostPatch struct {
	Title         *string   `json:"title" validate:"omitnil,min=1,max=200"`
	Content       *string   `json:"content"`
	Excerpt       *string   `json:"excerpt" validate:"omitnil,max=500"`
	FeaturedImage *string   `json:"featured_image" validate:"omitempty,url"`
	Tags          *[]string `json:"tags" validate:"omitnil,max=20,dive,required,max=50"`
}

func (BlogPostBinder) New(body []byte) (*model.BlogPost, error) {
	var in blogPostInput
	if err := decode(body, &in); err != nil {
		return nil, err
	}
	return &model.BlogPost{
		Content:       model.Content{TenantID: in.ClientID},
		Title:         in.Title,
		Body:          in.Content,
		Excerpt:       in.Excerpt,
		FeaturedImage: in.FeaturedImage,
		Tags:          nonNil(in.Tags),
	}, nil
}

func (BlogPostBinder) Patch(body []byte) (func(*model.BlogPost), bool, error) {
	var in blogPostPatch
	if err := decode(body, &in); err != nil {
		return nil, false, err
	}
	if in.Title == nil && in.Content == nil && in.Excerpt == nil && in.FeaturedImage == nil && in.Tags == nil {
		return nil, false, nil
	}
	return func(p *model.BlogPost) {
		setIf(&p.Title, in.Title)
		setIf(&p.Body, in.Content)
		setIf(&p.Excerpt, in.Excerpt)
		setIf(&p.FeaturedImage, in.FeaturedImage)
		if in.Tags != nil {
			p.Tags = nonNil(*in.Tags)
		}
	}, true, nil
}

// ----- social posts -----

type SocialPostBinder struct{}

type socialPostInput struct {
	ClientID     uuid.UUID  `json:"client_id" validate:"required"`
	Platform     string     `json:"platform" validate:"required,oneof=facebook instagram linkedin twitter tiktok"`
	Content      string     `json:"content" validate:"required,max=5000"`
	MediaURLs    []string   `json:"media_urls" validate:"max=10,dive,url"`
	Hashtags     []string   `json:"hashtags" validate:"max=30,dive,required,max=100"`
	ScheduledFor *time.Time `json:"scheduled_for"`
}

type socialPostPatch struct {
	Platform     *string      `json:"platform" validate:"omitnil,oneof=facebook instagram linkedin twitter tiktok"`
	Content      *string      `json:"content" validate:"omitnil,min=1,max=5000"`
	MediaURLs    *[]string    `json:"media_urls" validate:"omitnil,max=10,dive,url"`
	Hashtags     *[]string    `json:"hashtags" validate:"omitnil,max=30,dive,required,max=100"`
	ScheduledFor optionalTime `json:"scheduled_for"`
}

func (SocialPostBinder) New(body []byte) (*model.SocialPost, error) {
	var in socialPostInput
	if err := decode(body, &in); err != nil {
		return nil, err
	}
	return &model.SocialPost{
		Content:      model.Content{TenantID: in.ClientID},
		Platform:     in.Platform,
		Body:         in.Content,
		MediaURLs:    nonNil(in.MediaURLs),
		Hashtags:     nonNil(in.Hashtags),
		ScheduledFor: in.ScheduledFor,
	}, nil
}

func (SocialPostBinder) Patch(body []byte) (func(*model.SocialPost), bool, error) {
	var in socialPostPatch
	if err := decode(body, &in); err != nil {
		return nil, false, err
	}
	if in.Platform == nil && in.Content == nil && in.MediaURLs == nil && in.Hashtags == nil && !in.ScheduledFor.Set {
		return nil, false, nil
	}
	return func(p *model.SocialPost) {
		setIf(&p.Platform, in.Platform)
		setIf(&p.Body, in.Content)
		if in.MediaURLs != nil {
			p.MediaURLs = nonNil(*in.MediaURLs)
		}
		if in.Hashtags != nil {
			p.Hashtags = nonNil(*in.Hashtags)
		}
		if in.ScheduledFor.Set {
			p.ScheduledFor = in.ScheduledFor.Value
		}
	}, true, nil
}

// ----- campaigns -----

type CampaignBinder struct{}

type campaignInput struct {
	ClientID    uuid.UUID  `json:"client_id" validate:"required"`
	Name        string     `json:"name" validate:"required,max=200"`
	Channel     string     `json:"channel" validate:"required,oneof=email sms"`
	Subject     string     `json:"subject" validate:"max=200"`
	PreviewText string     `json:"preview_text" validate:"max=300"`
	Body        string     `json:"body"`
	ScheduledAt *time.Time `json:"scheduled_at"`
}

type campaignPatch struct {
	Name        *string      `json:"name" validate:"omitnil,min=1,max=200"`
	Channel     *string      `json:"channel" validate:"omitnil,oneof=email sms"`
	Subject     *string      `json:"subject" validate:"omitnil,max=200"`
	PreviewText *string      `json:"preview_text" validate:"omitnil,max=300"`
	Body        *string      `json:"body"`
	ScheduledAt optionalTime `json:"scheduled_at"`
}

func (CampaignBinder) New(body []byte) (*model.Campaign, error) {
	var in campaignInput
	if err := decode(body, &in); err != nil {
		return nil, err
	}
	return &model.Campaign{
		Content:     model.Content{TenantID: in.ClientID},
		Name:        in.Name,
		Channel:     in.Channel,
		Subject:     in.Subject,
		PreviewText: in.PreviewText,
		Body:        in.Body,
		ScheduledAt: in.ScheduledAt,
	}, nil
}

func (CampaignBinder) Patch(body []byte) (func(*model.Campaign), bool, error) {
	var in campaignPatch
	if err := decode(body, &in); err != nil {
		return nil, false, err
	}
	if in.Name == nil && in.Channel == nil && in.Subject == nil && in.PreviewText == nil && in.Body == nil && !in.ScheduledAt.Set {
		return nil, false, nil
	}
	return func(c *model.Campaign) {
		setIf(&c.Name, in.Name)
		setIf(&c.Channel, in.Channel)
		setIf(&c.Subject, in.Subject)
		setIf(&c.PreviewText, in.PreviewText)
		setIf(&c.Body, in.Body)
		if in.ScheduledAt.Set {
			c.ScheduledAt = in.ScheduledAt.Value
		}
	}, true, nil
}

// optionalTime tells an absent field from an explicit null, which clears the time.
type optionalTime struct {
	Set   bool
	Value *time.Time
}

func (o *optionalTime) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	var t time.Time
	if err := json.Unmarshal(b, &t); err != nil {
		return err
	}
	o.Value = &t
	return nil
}

func setIf(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

var (
	_ Binder[*model.BlogPost]   = BlogPostBinder{}
	_ Binder[*model.SocialPost] = SocialPostBinder{}
	_ Binder[*model.Campaign]   = CampaignBinder{}
)
