package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"applyflow/models"
)

// WizardStep names one step of the guided submission flow.
type WizardStep string

const (
	StepCover     WizardStep = "cover"
	StepDocuments WizardStep = "documents"
	StepQuestions WizardStep = "questions"
	StepReview    WizardStep = "review"
)

// NotEligibleError refuses to open a wizard for an ineligible student.
type NotEligibleError struct {
	Reason string
}

func (e *NotEligibleError) Error() string {
	return fmt.Sprintf("cannot apply: %s", e.Reason)
}

// ErrCloseNeedsConfirmation is returned when closing a dirty wizard without
// explicit confirmation.
var ErrCloseNeedsConfirmation = fmt.Errorf("unsaved application data, close needs confirmation")

// Wizard sequences the multi-step submission flow for one (student,
// opportunity) session. Form state lives only in memory and is discarded on
// close; one wizard is owned by one session, so no locking is needed.
type Wizard struct {
	opportunity *models.Opportunity
	userID      uuid.UUID
	steps       []WizardStep
	index       int

	coverLetter string
	answers     map[string]string
	uploads     *UploadManager

	submissions *SubmissionService
	submitted   bool
	closed      bool
}

// NewWizard re-runs the eligibility check and refuses to open the flow when
// it fails, returning a NotEligibleError carrying the reason. The step
// sequence includes a questions step only when the opportunity defines
// custom questions.
func NewWizard(opp *models.Opportunity, existing *models.Application, userID uuid.UUID, uploads *UploadManager, submissions *SubmissionService) (*Wizard, error) {
	if result := CanApply(opp, existing, time.Now()); !result.CanApply {
		return nil, &NotEligibleError{Reason: result.Reason}
	}

	steps := []WizardStep{StepCover, StepDocuments}
	if opp.HasCustomQuestions() {
		steps = append(steps, StepQuestions)
	}
	steps = append(steps, StepReview)

	return &Wizard{
		opportunity: opp,
		userID:      userID,
		steps:       steps,
		answers:     map[string]string{},
		uploads:     uploads,
		submissions: submissions,
	}, nil
}

func (w *Wizard) CurrentStep() WizardStep {
	return w.steps[w.index]
}

func (w *Wizard) Steps() []WizardStep {
	out := make([]WizardStep, len(w.steps))
	copy(out, w.steps)
	return out
}

// Next advances to the following step if the current step's gate passes.
// Documents is always skippable; review is terminal and never advanced past.
func (w *Wizard) Next() ValidationResult {
	switch w.CurrentStep() {
	case StepCover:
		if result := ValidateCoverLetter(w.coverLetter); !result.Valid {
			return result
		}
	case StepQuestions:
		if missing := UnansweredQuestions(w.opportunity, w.answers); len(missing) > 0 {
			return invalid(fmt.Sprintf("answer all questions before continuing (%d remaining)", len(missing)))
		}
	case StepReview:
		return invalid("already at the review step")
	}
	w.index++
	return valid()
}

// Back returns to the previous step without validation, allowing revision.
func (w *Wizard) Back() {
	if w.index > 0 {
		w.index--
	}
}

func (w *Wizard) SetCoverLetter(text string) {
	w.coverLetter = text
}

func (w *Wizard) CoverLetter() string {
	return w.coverLetter
}

// SetAnswer records the answer to one of the opportunity's custom questions.
func (w *Wizard) SetAnswer(question, answer string) {
	w.answers[question] = answer
}

func (w *Wizard) Uploads() *UploadManager {
	return w.uploads
}

// Dirty reports whether any field has been populated, which makes closing
// the wizard require confirmation.
func (w *Wizard) Dirty() bool {
	if strings.TrimSpace(w.coverLetter) != "" {
		return true
	}
	if len(w.uploads.Documents()) > 0 {
		return true
	}
	for _, answer := range w.answers {
		if strings.TrimSpace(answer) != "" {
			return true
		}
	}
	return false
}

// Close abandons the session. A dirty, unsubmitted wizard requires
// confirmation; once confirmed, documents already uploaded for the session
// are removed from storage so no orphaned objects remain.
func (w *Wizard) Close(confirmed bool) error {
	if w.closed {
		return nil
	}
	if !w.submitted && w.Dirty() && !confirmed {
		return ErrCloseNeedsConfirmation
	}
	if !w.submitted {
		w.uploads.Cleanup()
	}
	w.closed = true
	return nil
}

// Submit commits the application. It is only available from the review step;
// the submission service owns re-validation and the idempotent write.
func (w *Wizard) Submit() (*models.Application, *Outcome) {
	if w.closed {
		return nil, FailureOutcome(OutcomeValidation, "this application session is closed")
	}
	if w.CurrentStep() != StepReview {
		return nil, FailureOutcome(OutcomeValidation, "review your application before submitting")
	}
	app, outcome := w.submissions.Submit(SubmissionRequest{
		UserID:        w.userID,
		OpportunityID: w.opportunity.ID,
		CoverLetter:   w.coverLetter,
		DocumentURLs:  w.uploads.DocumentURLs(),
		Answers:       w.answers,
	})
	if outcome.OK {
		w.submitted = true
		w.closed = true
	}
	return app, outcome
}

// Submitted reports whether the session ended in a successful submission.
func (w *Wizard) Submitted() bool {
	return w.submitted
}
