package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type StudentProfile struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	Name         string    `json:"name"`
	Institution  string    `json:"institution"`
	Course       string    `json:"course"`
	ResumeURL    string    `json:"resume_url,omitempty"`
	Skills       []string  `json:"skills"`
	Links        []string  `json:"links"`
	Achievements []string  `json:"achievements"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type StudentProfileModel struct {
	DB *sql.DB
}

func NewStudentProfileModel(db *sql.DB) *StudentProfileModel {
	return &StudentProfileModel{DB: db}
}

func (m *StudentProfileModel) GetByUserID(userID uuid.UUID) (*StudentProfile, error) {
	query := `
		SELECT id, user_id, name, institution, course, resume_url, skills, links, achievements, created_at, updated_at
		FROM student_profiles
		WHERE user_id = $1
	`
	profile := &StudentProfile{}
	var resumeURL sql.NullString
	err := m.DB.QueryRow(query, userID).Scan(
		&profile.ID, &profile.UserID, &profile.Name, &profile.Institution, &profile.Course,
		&resumeURL, pq.Array(&profile.Skills), pq.Array(&profile.Links), pq.Array(&profile.Achievements),
		&profile.CreatedAt, &profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if resumeURL.Valid {
		profile.ResumeURL = resumeURL.String
	}
	return profile, nil
}
