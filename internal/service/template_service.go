package service

import (
	"strings"

	"github.com/unclebandit/agency-portal-backend/internal/model"
)

// RenderTemplate replaces every {key} in template with data[key].
func RenderTemplate(template string, data map[string]string) string {
	result := template
	for k, v := range data {
		result = strings.ReplaceAll(result, "{"+k+"}", v)
	}
	return result
}

var notificationTemplates = map[string]string{
	model.ActionSubmitted: `{kind} "{label}" is waiting for your review`,
	model.ActionApproved:  `{kind} "{label}" was approved`,
	model.ActionRejected:  `{kind} "{label}" was rejected: {reason}`,
	model.ActionPublished: `{kind} "{label}" was published`,
}

// NotificationMessage renders the text stored with a review notification.
func NotificationMessage(event model.ReviewEvent) string {
	template, ok := notificationTemplates[event.Action]
	if !ok {
		template = `{kind} "{label}" changed`
	}
	label := event.Label
	if strings.TrimSpace(label) == "" {
		label = "untitled"
	}
	kind := event.Kind.Human()
	if kind != "" {
		kind = strings.ToUpper(kind[:1]) + kind[1:]
	}
	return RenderTemplate(template, map[string]string{
		"kind":   kind,
		"label":  label,
		"reason": event.Reason,
	})
}
