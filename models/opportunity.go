package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Opportunity statuses as stored. Only "active" accepts applications.
const (
	OpportunityStatusDraft   = "draft"
	OpportunityStatusActive  = "active"
	OpportunityStatusPaused  = "paused"
	OpportunityStatusClosed  = "closed"
	OpportunityStatusExpired = "expired"
)

type Opportunity struct {
	ID                  uuid.UUID  `json:"id"`
	Title               string     `json:"title"`
	Status              string     `json:"status"`
	ApplicationDeadline *time.Time `json:"application_deadline,omitempty"`
	MaxApplications     *int       `json:"max_applications,omitempty"`
	CurrentApplications int        `json:"current_applications"`
	CustomQuestions     []string   `json:"custom_questions"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// HasCustomQuestions reports whether the submission flow includes a questions step.
func (o *Opportunity) HasCustomQuestions() bool {
	return len(o.CustomQuestions) > 0
}

type OpportunityModel struct {
	DB *sql.DB
}

func NewOpportunityModel(db *sql.DB) *OpportunityModel {
	return &OpportunityModel{DB: db}
}

func (m *OpportunityModel) GetByID(id uuid.UUID) (*Opportunity, error) {
	query := `
		SELECT id, title, status, application_deadline, max_applications, current_applications, custom_questions, created_at, updated_at
		FROM opportunities
		WHERE id = $1
	`
	opp := &Opportunity{}
	var deadline sql.NullTime
	var maxApps sql.NullInt64
	err := m.DB.QueryRow(query, id).Scan(
		&opp.ID, &opp.Title, &opp.Status, &deadline, &maxApps,
		&opp.CurrentApplications, pq.Array(&opp.CustomQuestions),
		&opp.CreatedAt, &opp.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if deadline.Valid {
		opp.ApplicationDeadline = &deadline.Time
	}
	if maxApps.Valid {
		v := int(maxApps.Int64)
		opp.MaxApplications = &v
	}
	return opp, nil
}

// IncrementApplications bumps the stored application counter. The counter is
// authoritative only at the store; callers treat failures as non-fatal.
func (m *OpportunityModel) IncrementApplications(id uuid.UUID) error {
	_, err := m.DB.Exec(`
		UPDATE opportunities
		SET current_applications = current_applications + 1, updated_at = $2
		WHERE id = $1
	`, id, time.Now())
	return err
}
