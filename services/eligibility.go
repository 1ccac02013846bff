package services

import (
	"strings"
	"time"

	"applyflow/models"
)

// EligibilityResult is the answer to "may this student apply right now".
type EligibilityResult struct {
	CanApply bool   `json:"can_apply"`
	Reason   string `json:"reason,omitempty"`
}

// Reasons surfaced by CanApply. The notification layer renders these verbatim.
const (
	ReasonAlreadyApplied = "already applied"
	ReasonDeadlinePassed = "deadline passed"
	ReasonNotAccepting   = "not currently accepting applications"
	ReasonLimitReached   = "application limit reached"
)

// CanApply decides whether a student may apply to an opportunity at the given
// instant. Checks run in order and short-circuit on the first failure. The
// function is pure; callers run it before opening the wizard and again at
// final submission because time and capacity move underneath the client.
//
// An application deadline equal to now is still eligible; only deadlines
// strictly in the past reject.
func CanApply(opp *models.Opportunity, existing *models.Application, now time.Time) EligibilityResult {
	if existing != nil {
		return EligibilityResult{CanApply: false, Reason: ReasonAlreadyApplied}
	}
	if opp.ApplicationDeadline != nil && opp.ApplicationDeadline.Before(now) {
		return EligibilityResult{CanApply: false, Reason: ReasonDeadlinePassed}
	}
	if !strings.EqualFold(opp.Status, models.OpportunityStatusActive) {
		return EligibilityResult{CanApply: false, Reason: ReasonNotAccepting}
	}
	if opp.MaxApplications != nil && opp.CurrentApplications >= *opp.MaxApplications {
		return EligibilityResult{CanApply: false, Reason: ReasonLimitReached}
	}
	return EligibilityResult{CanApply: true}
}
