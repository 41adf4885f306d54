package service

import (
	"github.com/unclebandit/agency-portal-backend/internal/model"
	"github.com/unclebandit/agency-portal-backend/internal/policy"
)

// transition is one edge of the review lifecycle.
type transition struct {
	name   string
	action policy.Action
	from   []model.Status
	to     model.Status
	// event is the notification action published afterwards; empty publishes nothing.
	event string
	// needsReason is set for reject only; every other edge clears the reason.
	needsReason bool
}

var (
	submitTransition = transition{
		name:   "submit",
		action: policy.ActionSubmit,
		from:   []model.Status{model.StatusDraft, model.StatusRejected},
		to:     model.StatusPendingReview,
		event:  model.ActionSubmitted,
	}
	approveTransition = transition{
		name:   "approve",
		action: policy.ActionReview,
		from:   []model.Status{model.StatusPendingReview},
		to:     model.StatusApproved,
		event:  model.ActionApproved,
	}
	rejectTransition = transition{
		name:        "reject",
		action:      policy.ActionReview,
		from:        []model.Status{model.StatusPendingReview},
		to:          model.StatusRejected,
		event:       model.ActionRejected,
		needsReason: true,
	}
	withdrawTransition = transition{
		name:   "withdraw",
		action: policy.ActionWithdraw,
		from:   []model.Status{model.StatusPendingReview},
		to:     model.StatusDraft,
	}
	publishTransition = transition{
		name:   "publish",
		action: policy.ActionPublish,
		from:   []model.Status{model.StatusApproved},
		to:     model.StatusPublished,
		event:  model.ActionPublished,
	}
)

// editTransitions maps a status requested alongside an edit to the edge reaching it.
// approved and rejected are only reachable through a review.
var editTransitions = map[model.Status]transition{
	model.StatusPendingReview: submitTransition,
	model.StatusDraft:         withdrawTransition,
	model.StatusPublished:     publishTransition,
}

func (t transition) allows(s model.Status) bool {
	for _, from := range t.from {
		if from == s {
			return true
		}
	}
	return false
}
