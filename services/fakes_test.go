package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"applyflow/models"
)

// fakeDocumentStore stands in for S3 in upload tests.
type fakeDocumentStore struct {
	objects map[string][]byte
	deleted []string
	putErr  error
	delErr  error
	signErr error
}

func newFakeDocumentStore() *fakeDocumentStore {
	return &fakeDocumentStore{objects: map[string][]byte{}}
}

func (f *fakeDocumentStore) Put(key string, content []byte, contentType string) (string, error) {
	if f.putErr != nil {
		return "", f.putErr
	}
	f.objects[key] = content
	return "https://documents.test/" + key, nil
}

func (f *fakeDocumentStore) GeneratePresignedURL(key string) (string, error) {
	if f.signErr != nil {
		return "", f.signErr
	}
	if _, exists := f.objects[key]; !exists {
		return "", fmt.Errorf("no such object: %s", key)
	}
	return "https://documents.test/" + key + "?signature=fake", nil
}

func (f *fakeDocumentStore) Delete(key string) error {
	if f.delErr != nil {
		return f.delErr
	}
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

// fakeApplicationStore enforces the (student, opportunity) uniqueness the real
// store guarantees, surfacing the same pq error code.
type fakeApplicationStore struct {
	apps      map[string]*models.Application
	createErr error
}

func newFakeApplicationStore() *fakeApplicationStore {
	return &fakeApplicationStore{apps: map[string]*models.Application{}}
}

func pairKey(studentID, opportunityID uuid.UUID) string {
	return fmt.Sprintf("%s:%s", studentID, opportunityID)
}

func (f *fakeApplicationStore) Create(studentID, opportunityID uuid.UUID, coverLetter string, documents []string, answers map[string]string) (*models.Application, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	key := pairKey(studentID, opportunityID)
	if _, exists := f.apps[key]; exists {
		return nil, &pq.Error{Code: "23505", Constraint: "applications_student_opportunity_key"}
	}
	app := &models.Application{
		ID:                  uuid.New(),
		StudentID:           studentID,
		OpportunityID:       opportunityID,
		Status:              models.ApplicationStatusSubmitted,
		AppliedDate:         time.Now(),
		StatusUpdatedAt:     time.Now(),
		CoverLetter:         coverLetter,
		AdditionalDocuments: documents,
		AnswersToQuestions:  answers,
	}
	f.apps[key] = app
	return app, nil
}

func (f *fakeApplicationStore) GetByStudentAndOpportunity(studentID, opportunityID uuid.UUID) (*models.Application, error) {
	app, exists := f.apps[pairKey(studentID, opportunityID)]
	if !exists {
		return nil, sql.ErrNoRows
	}
	return app, nil
}

type fakeOpportunityStore struct {
	opps       map[uuid.UUID]*models.Opportunity
	getErr     error
	increments int
}

func newFakeOpportunityStore(opps ...*models.Opportunity) *fakeOpportunityStore {
	store := &fakeOpportunityStore{opps: map[uuid.UUID]*models.Opportunity{}}
	for _, opp := range opps {
		store.opps[opp.ID] = opp
	}
	return store
}

func (f *fakeOpportunityStore) GetByID(id uuid.UUID) (*models.Opportunity, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	opp, exists := f.opps[id]
	if !exists {
		return nil, sql.ErrNoRows
	}
	return opp, nil
}

func (f *fakeOpportunityStore) IncrementApplications(id uuid.UUID) error {
	if opp, exists := f.opps[id]; exists {
		opp.CurrentApplications++
	}
	f.increments++
	return nil
}

type fakeProfileStore struct {
	profiles map[uuid.UUID]*models.StudentProfile
}

func newFakeProfileStore(profiles ...*models.StudentProfile) *fakeProfileStore {
	store := &fakeProfileStore{profiles: map[uuid.UUID]*models.StudentProfile{}}
	for _, profile := range profiles {
		store.profiles[profile.UserID] = profile
	}
	return store
}

func (f *fakeProfileStore) GetByUserID(userID uuid.UUID) (*models.StudentProfile, error) {
	profile, exists := f.profiles[userID]
	if !exists {
		return nil, sql.ErrNoRows
	}
	return profile, nil
}

// activeOpportunity builds an opportunity accepting applications.
func activeOpportunity(questions ...string) *models.Opportunity {
	return &models.Opportunity{
		ID:              uuid.New(),
		Title:           "software engineering internship",
		Status:          models.OpportunityStatusActive,
		CustomQuestions: questions,
	}
}

// completeProfile builds a profile that clears the quick-apply gate.
func completeProfile() *models.StudentProfile {
	return &models.StudentProfile{
		ID:           uuid.New(),
		UserID:       uuid.New(),
		Name:         "Priya Sharma",
		Institution:  "IIT Delhi",
		Course:       "Computer Science",
		ResumeURL:    "https://documents.test/resume.pdf",
		Skills:       []string{"go", "sql", "react"},
		Links:        []string{"https://github.com/priya"},
		Achievements: []string{"hackathon winner"},
	}
}

func validCoverLetter() string {
	return "I am very excited to apply for this internship because it matches my experience building backend services in Go and my coursework in distributed systems."
}
