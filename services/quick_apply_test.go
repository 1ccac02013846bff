package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"applyflow/models"
)

func newTestQuickApply(apps *fakeApplicationStore, opps *fakeOpportunityStore, profiles *fakeProfileStore) *QuickApplyService {
	submissions, _ := newTestSubmissionService(apps, opps, profiles)
	return NewQuickApplyService(submissions, opps, profiles)
}

func TestQuickApply_Success(t *testing.T) {
	profile := completeProfile()
	opp := activeOpportunity()
	apps := newFakeApplicationStore()
	service := newTestQuickApply(apps, newFakeOpportunityStore(opp), newFakeProfileStore(profile))

	result := service.Apply(profile.UserID, opp.ID)

	require.True(t, result.Outcome.OK)
	require.NotNil(t, result.Application)
	assert.Equal(t, models.ApplicationStatusSubmitted, result.Application.Status)
	assert.Empty(t, result.Application.AdditionalDocuments)
	assert.Empty(t, result.Application.AnswersToQuestions)
	// The boilerplate letter must clear the normal validator.
	assert.True(t, ValidateCoverLetter(result.Application.CoverLetter).Valid)
	assert.Contains(t, result.Application.CoverLetter, "Software Engineering Internship")
}

func TestQuickApply_IncompleteProfileGetsChecklist(t *testing.T) {
	profile := completeProfile()
	profile.ResumeURL = ""
	profile.Skills = nil
	opp := activeOpportunity()
	apps := newFakeApplicationStore()
	service := newTestQuickApply(apps, newFakeOpportunityStore(opp), newFakeProfileStore(profile))

	result := service.Apply(profile.UserID, opp.ID)

	assert.False(t, result.Outcome.OK)
	assert.Equal(t, OutcomeValidation, result.Outcome.Kind)
	assert.Equal(t, []string{
		"upload a resume",
		"add at least 3 skills",
		"complete more of your profile",
	}, result.Checklist)
	assert.Empty(t, apps.apps, "the gate must block the submission entirely")
}

func TestQuickApply_MissingProfile(t *testing.T) {
	opp := activeOpportunity()
	service := newTestQuickApply(newFakeApplicationStore(), newFakeOpportunityStore(opp), newFakeProfileStore())

	result := service.Apply(completeProfile().UserID, opp.ID)

	assert.False(t, result.Outcome.OK)
	assert.Equal(t, []string{"create your student profile"}, result.Checklist)
}

func TestQuickApply_NeverBypassesEligibility(t *testing.T) {
	profile := completeProfile()
	opp := activeOpportunity()
	opp.Status = models.OpportunityStatusExpired
	apps := newFakeApplicationStore()
	service := newTestQuickApply(apps, newFakeOpportunityStore(opp), newFakeProfileStore(profile))

	result := service.Apply(profile.UserID, opp.ID)

	assert.False(t, result.Outcome.OK)
	assert.Equal(t, OutcomeNotEligible, result.Outcome.Kind)
	assert.Empty(t, apps.apps)
}

func TestQuickApply_EligibilityDecidedBeforeProfileGate(t *testing.T) {
	profile := completeProfile()
	profile.ResumeURL = ""
	profile.Skills = nil
	opp := activeOpportunity()
	opp.Status = models.OpportunityStatusClosed
	service := newTestQuickApply(newFakeApplicationStore(), newFakeOpportunityStore(opp), newFakeProfileStore(profile))

	result := service.Apply(profile.UserID, opp.ID)

	// A closed opportunity must not read as a profile problem.
	assert.Equal(t, OutcomeNotEligible, result.Outcome.Kind)
	assert.Empty(t, result.Checklist)
}

func TestQuickApply_AlreadyAppliedIsBenign(t *testing.T) {
	profile := completeProfile()
	opp := activeOpportunity()
	apps := newFakeApplicationStore()
	service := newTestQuickApply(apps, newFakeOpportunityStore(opp), newFakeProfileStore(profile))

	first := service.Apply(profile.UserID, opp.ID)
	require.True(t, first.Outcome.OK)

	second := service.Apply(profile.UserID, opp.ID)

	assert.True(t, second.Outcome.OK, "already applied is a state, not a fault")
	assert.Equal(t, OutcomeDuplicate, second.Outcome.Kind)
	assert.Len(t, apps.apps, 1)
}

func TestBuildQuickApplyLetter_TitleCasesOpportunity(t *testing.T) {
	profile := completeProfile()
	opp := activeOpportunity()
	opp.Title = "data analyst - summer batch"

	letter := BuildQuickApplyLetter(profile, opp)

	assert.Contains(t, letter, "Data Analyst - Summer Batch")
	assert.Contains(t, letter, profile.Institution)
	assert.True(t, ValidateCoverLetter(letter).Valid)
}
