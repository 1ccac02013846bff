package services

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"applyflow/models"
	"applyflow/utils"
)

// Store surfaces the submission path depends on. The models package provides
// the Postgres implementations; tests substitute fakes.
type ApplicationStore interface {
	Create(studentID, opportunityID uuid.UUID, coverLetter string, documents []string, answers map[string]string) (*models.Application, error)
	GetByStudentAndOpportunity(studentID, opportunityID uuid.UUID) (*models.Application, error)
}

type OpportunityStore interface {
	GetByID(id uuid.UUID) (*models.Opportunity, error)
	IncrementApplications(id uuid.UUID) error
}

type ProfileStore interface {
	GetByUserID(userID uuid.UUID) (*models.StudentProfile, error)
}

// SubmissionRequest carries everything needed for the terminal application
// write. UserID is the authenticated actor; the student profile is resolved
// from it.
type SubmissionRequest struct {
	UserID        uuid.UUID
	OpportunityID uuid.UUID
	CoverLetter   string
	DocumentURLs  []string
	Answers       map[string]string
}

// SubmissionService performs the single, idempotent application insert. The
// store's uniqueness constraint on (student_id, opportunity_id) is the
// authoritative duplicate guard; everything client-side is advisory.
type SubmissionService struct {
	applications  ApplicationStore
	opportunities OpportunityStore
	profiles      ProfileStore
	notifier      Notifier
	now           func() time.Time
}

func NewSubmissionService(applications ApplicationStore, opportunities OpportunityStore, profiles ProfileStore, notifier Notifier) *SubmissionService {
	return &SubmissionService{
		applications:  applications,
		opportunities: opportunities,
		profiles:      profiles,
		notifier:      notifier,
		now:           time.Now,
	}
}

// Submit re-validates the payload, re-checks eligibility against a fresh
// opportunity read, and issues the insert. It returns the created application
// on success; otherwise the outcome explains the failure.
func (s *SubmissionService) Submit(req SubmissionRequest) (*models.Application, *Outcome) {
	if result := ValidateCoverLetter(req.CoverLetter); !result.Valid {
		return nil, s.report(FailureOutcome(OutcomeValidation, result.Reason))
	}

	profile, err := s.profiles.GetByUserID(req.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, s.report(FailureOutcome(OutcomeValidation, "create your student profile before applying"))
		}
		return nil, s.report(FailureOutcome(OutcomeNetwork, err.Error()))
	}

	opp, err := s.opportunities.GetByID(req.OpportunityID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, s.report(FailureOutcome(OutcomeNotEligible, "opportunity not found"))
		}
		return nil, s.report(FailureOutcome(OutcomeNetwork, err.Error()))
	}

	if missing := UnansweredQuestions(opp, req.Answers); len(missing) > 0 {
		return nil, s.report(FailureOutcome(OutcomeValidation, "all required questions must be answered"))
	}

	// Time may have advanced and capacity may have filled since the wizard
	// opened, so eligibility runs once more right before the write. The
	// duplicate case is left to the uniqueness constraint below.
	if result := CanApply(opp, nil, s.now()); !result.CanApply {
		return nil, s.report(FailureOutcome(OutcomeNotEligible, result.Reason))
	}

	app, err := s.applications.Create(profile.ID, req.OpportunityID, NormalizeCoverLetter(req.CoverLetter), req.DocumentURLs, req.Answers)
	if err != nil {
		if models.IsUniqueViolation(err) {
			return nil, s.report(FailureOutcome(OutcomeDuplicate, "you have already applied to this opportunity"))
		}
		return nil, s.report(FailureOutcome(OutcomeNetwork, err.Error()))
	}

	// The counter is authoritative only at the store; a failed bump is not a
	// failed submission.
	if err := s.opportunities.IncrementApplications(req.OpportunityID); err != nil {
		utils.LogError("failed to bump application counter", err, map[string]string{"opportunity_id": req.OpportunityID.String()})
	}

	return app, s.report(SuccessOutcome())
}

// ExistingApplication resolves the caller's application for an opportunity,
// or nil when none exists. Used to feed CanApply before the wizard opens.
func (s *SubmissionService) ExistingApplication(userID, opportunityID uuid.UUID) (*models.Application, error) {
	profile, err := s.profiles.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	app, err := s.applications.GetByStudentAndOpportunity(profile.ID, opportunityID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return app, nil
}

// UnansweredQuestions returns the custom questions lacking a non-empty answer,
// in the order the opportunity defines them.
func UnansweredQuestions(opp *models.Opportunity, answers map[string]string) []string {
	missing := []string{}
	for _, question := range opp.CustomQuestions {
		if strings.TrimSpace(answers[question]) == "" {
			missing = append(missing, question)
		}
	}
	return missing
}

func (s *SubmissionService) report(outcome *Outcome) *Outcome {
	if s.notifier != nil {
		s.notifier.Notify(*outcome)
	}
	return outcome
}
