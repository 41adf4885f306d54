package model

import "time"

// Supported social platforms.
const (
	PlatformFacebook  = "facebook"
	PlatformInstagram = "instagram"
	PlatformLinkedIn  = "linkedin"
	PlatformTwitter   = "twitter"
	PlatformTikTok    = "tiktok"
)

type SocialPost struct {
	Content
	Platform     string     `json:"platform"`
	Body         string     `json:"content"`
	MediaURLs    []string   `json:"media_urls"`
	Hashtags     []string   `json:"hashtags"`
	ScheduledFor *time.Time `json:"scheduled_for,omitempty"`
}

func (p *SocialPost) Kind() Kind { return KindSocialPost }

// Label uses the first line of the post, cut to a readable length.
func (p *SocialPost) Label() string {
	label := p.Body
	for i, r := range label {
		if r == '\n' {
			label = label[:i]
			break
		}
	}
	if runes := []rune(label); len(runes) > 60 {
		label = string(runes[:57]) + "..."
	}
	if label == "" {
		return p.Platform + " post"
	}
	return label
}

var _ Reviewable = (*SocialPost)(nil)
