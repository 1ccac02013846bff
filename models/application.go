package models

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Application statuses. The engine only ever inserts "submitted" and moves
// non-terminal applications to "withdrawn"; every other transition belongs to
// the organization side and is observed, never written, here.
const (
	ApplicationStatusSubmitted          = "submitted"
	ApplicationStatusUnderReview        = "under_review"
	ApplicationStatusShortlisted        = "shortlisted"
	ApplicationStatusInterviewScheduled = "interview_scheduled"
	ApplicationStatusInterviewed        = "interviewed"
	ApplicationStatusSelected           = "selected"
	ApplicationStatusRejected           = "rejected"
	ApplicationStatusOfferSent          = "offer_sent"
	ApplicationStatusHired              = "hired"
	ApplicationStatusWithdrawn          = "withdrawn"
)

type Application struct {
	ID                  uuid.UUID         `json:"id"`
	StudentID           uuid.UUID         `json:"student_id"`
	OpportunityID       uuid.UUID         `json:"opportunity_id"`
	Status              string            `json:"status"`
	AppliedDate         time.Time         `json:"applied_date"`
	StatusUpdatedAt     time.Time         `json:"status_updated_at"`
	CoverLetter         string            `json:"cover_letter"`
	AdditionalDocuments []string          `json:"additional_documents"`
	AnswersToQuestions  map[string]string `json:"answers_to_questions"`
	ApplicationScore    *float64          `json:"application_score,omitempty"`
}

// forwardTransitions is the observed status graph. Withdrawal is handled
// separately because it is reachable from any non-terminal status.
var forwardTransitions = map[string][]string{
	ApplicationStatusSubmitted:          {ApplicationStatusUnderReview},
	ApplicationStatusUnderReview:        {ApplicationStatusShortlisted, ApplicationStatusRejected},
	ApplicationStatusShortlisted:        {ApplicationStatusInterviewScheduled, ApplicationStatusRejected},
	ApplicationStatusInterviewScheduled: {ApplicationStatusInterviewed, ApplicationStatusRejected},
	ApplicationStatusInterviewed:        {ApplicationStatusSelected, ApplicationStatusRejected},
	ApplicationStatusSelected:           {ApplicationStatusOfferSent, ApplicationStatusRejected},
	ApplicationStatusOfferSent:          {ApplicationStatusHired},
}

// IsTerminalStatus reports whether no further transitions are possible.
func IsTerminalStatus(status string) bool {
	return status == ApplicationStatusRejected ||
		status == ApplicationStatusHired ||
		status == ApplicationStatusWithdrawn
}

// CanTransition reports whether the status graph permits from -> to.
func CanTransition(from, to string) bool {
	if to == ApplicationStatusWithdrawn {
		return !IsTerminalStatus(from)
	}
	for _, next := range forwardTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type ApplicationModel struct {
	DB *sql.DB
}

func NewApplicationModel(db *sql.DB) *ApplicationModel {
	return &ApplicationModel{DB: db}
}

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation, the authoritative duplicate-application signal.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func (m *ApplicationModel) Create(studentID, opportunityID uuid.UUID, coverLetter string, documents []string, answers map[string]string) (*Application, error) {
	app := &Application{
		ID:                  uuid.New(),
		StudentID:           studentID,
		OpportunityID:       opportunityID,
		Status:              ApplicationStatusSubmitted,
		AppliedDate:         time.Now(),
		StatusUpdatedAt:     time.Now(),
		CoverLetter:         coverLetter,
		AdditionalDocuments: documents,
		AnswersToQuestions:  answers,
	}
	if app.AdditionalDocuments == nil {
		app.AdditionalDocuments = []string{}
	}
	if app.AnswersToQuestions == nil {
		app.AnswersToQuestions = map[string]string{}
	}

	answersJSON, err := json.Marshal(app.AnswersToQuestions)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO applications (id, student_id, opportunity_id, status, applied_date, status_updated_at, cover_letter, additional_documents, answers_to_questions)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = m.DB.Exec(query,
		app.ID, app.StudentID, app.OpportunityID, app.Status,
		app.AppliedDate, app.StatusUpdatedAt, app.CoverLetter,
		pq.Array(app.AdditionalDocuments), answersJSON,
	)
	if err != nil {
		return nil, err
	}
	return app, nil
}

func (m *ApplicationModel) GetByStudentAndOpportunity(studentID, opportunityID uuid.UUID) (*Application, error) {
	query := `
		SELECT id, student_id, opportunity_id, status, applied_date, status_updated_at, cover_letter, additional_documents, answers_to_questions, application_score
		FROM applications
		WHERE student_id = $1 AND opportunity_id = $2
	`
	return m.scanOne(m.DB.QueryRow(query, studentID, opportunityID))
}

func (m *ApplicationModel) GetByID(id uuid.UUID) (*Application, error) {
	query := `
		SELECT id, student_id, opportunity_id, status, applied_date, status_updated_at, cover_letter, additional_documents, answers_to_questions, application_score
		FROM applications
		WHERE id = $1
	`
	return m.scanOne(m.DB.QueryRow(query, id))
}

func (m *ApplicationModel) GetByStudent(studentID uuid.UUID) ([]Application, error) {
	query := `
		SELECT id, student_id, opportunity_id, status, applied_date, status_updated_at, cover_letter, additional_documents, answers_to_questions, application_score
		FROM applications
		WHERE student_id = $1
		ORDER BY applied_date DESC
	`
	rows, err := m.DB.Query(query, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applications := []Application{}
	for rows.Next() {
		app, err := m.scanOne(rows)
		if err != nil {
			return nil, err
		}
		applications = append(applications, *app)
	}
	return applications, rows.Err()
}

// Withdraw moves a non-terminal application to withdrawn. It is the only
// status write the candidate side owns.
func (m *ApplicationModel) Withdraw(id uuid.UUID) (*Application, error) {
	app, err := m.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(app.Status, ApplicationStatusWithdrawn) {
		return nil, errors.New("application can no longer be withdrawn")
	}
	now := time.Now()
	_, err = m.DB.Exec(`UPDATE applications SET status = $1, status_updated_at = $2 WHERE id = $3`,
		ApplicationStatusWithdrawn, now, id)
	if err != nil {
		return nil, err
	}
	app.Status = ApplicationStatusWithdrawn
	app.StatusUpdatedAt = now
	return app, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (m *ApplicationModel) scanOne(row rowScanner) (*Application, error) {
	app := &Application{}
	var answersJSON []byte
	var score sql.NullFloat64
	err := row.Scan(
		&app.ID, &app.StudentID, &app.OpportunityID, &app.Status,
		&app.AppliedDate, &app.StatusUpdatedAt, &app.CoverLetter,
		pq.Array(&app.AdditionalDocuments), &answersJSON, &score,
	)
	if err != nil {
		return nil, err
	}
	app.AnswersToQuestions = map[string]string{}
	if len(answersJSON) > 0 {
		if err := json.Unmarshal(answersJSON, &app.AnswersToQuestions); err != nil {
			return nil, err
		}
	}
	if score.Valid {
		app.ApplicationScore = &score.Float64
	}
	return app, nil
}
