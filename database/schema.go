package database

import (
	"database/sql"
	"fmt"
)

// InitSchema creates the tables the engine reads and writes. The unique
// constraint on (student_id, opportunity_id) is the authoritative duplicate
// guard for submissions; everything client-side is advisory.
func InitSchema(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS opportunities (
			id UUID PRIMARY KEY,
			title TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'draft',
			application_deadline TIMESTAMPTZ,
			max_applications INTEGER,
			current_applications INTEGER NOT NULL DEFAULT 0,
			custom_questions TEXT[] NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS student_profiles (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL UNIQUE,
			name TEXT NOT NULL DEFAULT '',
			institution TEXT NOT NULL DEFAULT '',
			course TEXT NOT NULL DEFAULT '',
			resume_url TEXT,
			skills TEXT[] NOT NULL DEFAULT '{}',
			links TEXT[] NOT NULL DEFAULT '{}',
			achievements TEXT[] NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS applications (
			id UUID PRIMARY KEY,
			student_id UUID NOT NULL REFERENCES student_profiles(id),
			opportunity_id UUID NOT NULL REFERENCES opportunities(id),
			status TEXT NOT NULL DEFAULT 'submitted',
			applied_date TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			status_updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			cover_letter TEXT NOT NULL DEFAULT '',
			additional_documents TEXT[] NOT NULL DEFAULT '{}',
			answers_to_questions JSONB NOT NULL DEFAULT '{}',
			application_score NUMERIC,
			CONSTRAINT applications_student_opportunity_key UNIQUE (student_id, opportunity_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_applications_student ON applications(student_id)`,
		`CREATE INDEX IF NOT EXISTS idx_applications_opportunity ON applications(opportunity_id)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("error creating schema: %v", err)
		}
	}
	return nil
}
