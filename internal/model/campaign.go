package model

import "time"

type Campaign struct {
	Content
	Name        string     `json:"name"`
	Channel     string     `json:"channel"`
	Subject     string     `json:"subject"`
	PreviewText string     `json:"preview_text"`
	Body        string     `json:"body"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
}

func (c *Campaign) Kind() Kind    { return KindCampaign }
func (c *Campaign) Label() string { return c.Name }

var _ Reviewable = (*Campaign)(nil)
