package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"applyflow/models"
)

// QuickApplyResult reports the single-action apply path. When the profile
// gate fails, Checklist lists the gaps to fix, in order.
type QuickApplyResult struct {
	Application *models.Application `json:"application,omitempty"`
	Outcome     Outcome             `json:"outcome"`
	Checklist   []string            `json:"checklist,omitempty"`
}

// QuickApplyService is the reduced-step entry point: no wizard, a boilerplate
// cover letter, no documents or answers. It reuses the eligibility evaluator
// and the submission service and never bypasses either.
type QuickApplyService struct {
	submissions   *SubmissionService
	opportunities OpportunityStore
	profiles      ProfileStore
	now           func() time.Time
}

func NewQuickApplyService(submissions *SubmissionService, opportunities OpportunityStore, profiles ProfileStore) *QuickApplyService {
	return &QuickApplyService{
		submissions:   submissions,
		opportunities: opportunities,
		profiles:      profiles,
		now:           time.Now,
	}
}

// Apply runs the full quick-apply flow for the authenticated user. A store
// duplicate conflict comes back as a benign already-applied outcome rather
// than a failure.
func (s *QuickApplyService) Apply(userID, opportunityID uuid.UUID) QuickApplyResult {
	// Eligibility is decided before the profile gate, so a closed or expired
	// opportunity never reads as a profile problem.
	opp, err := s.opportunities.GetByID(opportunityID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return QuickApplyResult{Outcome: *FailureOutcome(OutcomeNotEligible, "opportunity not found")}
		}
		return QuickApplyResult{Outcome: *FailureOutcome(OutcomeNetwork, err.Error())}
	}

	existing, err := s.submissions.ExistingApplication(userID, opportunityID)
	if err != nil {
		return QuickApplyResult{Outcome: *FailureOutcome(OutcomeNetwork, err.Error())}
	}
	if result := CanApply(opp, existing, s.now()); !result.CanApply {
		if result.Reason == ReasonAlreadyApplied {
			return QuickApplyResult{Outcome: Outcome{OK: true, Kind: OutcomeDuplicate, Message: "you have already applied to this opportunity"}}
		}
		return QuickApplyResult{Outcome: *FailureOutcome(OutcomeNotEligible, result.Reason)}
	}

	profile, err := s.profiles.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return QuickApplyResult{
				Outcome:   *FailureOutcome(OutcomeValidation, "create your student profile before applying"),
				Checklist: []string{"create your student profile"},
			}
		}
		return QuickApplyResult{Outcome: *FailureOutcome(OutcomeNetwork, err.Error())}
	}

	if checklist := QuickApplyChecklist(profile); len(checklist) > 0 {
		return QuickApplyResult{
			Outcome:   *FailureOutcome(OutcomeValidation, "complete your profile before using quick apply"),
			Checklist: checklist,
		}
	}

	app, outcome := s.submissions.Submit(SubmissionRequest{
		UserID:        userID,
		OpportunityID: opportunityID,
		CoverLetter:   BuildQuickApplyLetter(profile, opp),
	})
	if !outcome.OK && outcome.Kind == OutcomeDuplicate {
		// Two tabs or a stale cache raced us; the stored application wins
		// and the user simply sees already-applied.
		return QuickApplyResult{Outcome: Outcome{OK: true, Kind: OutcomeDuplicate, Message: "you have already applied to this opportunity"}}
	}
	return QuickApplyResult{Application: app, Outcome: *outcome}
}

// BuildQuickApplyLetter produces the fixed boilerplate cover letter with the
// opportunity title and profile details interpolated. The result always
// clears the validator's minimum length.
func BuildQuickApplyLetter(profile *models.StudentProfile, opp *models.Opportunity) string {
	title := cases.Title(language.English).String(strings.TrimSpace(opp.Title))
	if title == "" {
		title = "This Opportunity"
	}
	return fmt.Sprintf(
		"I am writing to express my strong interest in %s. As a %s student at %s, "+
			"I believe my background and skills make me a great fit for this role, and "+
			"I would welcome the chance to contribute and learn. My full profile and resume "+
			"are attached for your review, and I am available to discuss my application at your convenience.",
		title, profile.Course, profile.Institution,
	)
}
