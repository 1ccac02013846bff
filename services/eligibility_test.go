package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"applyflow/models"
)

func TestCanApply_OpenOpportunity(t *testing.T) {
	opp := activeOpportunity()

	result := CanApply(opp, nil, time.Now())

	assert.True(t, result.CanApply)
	assert.Empty(t, result.Reason)
}

func TestCanApply_ExistingApplicationWinsRegardlessOfOpportunityState(t *testing.T) {
	yesterday := time.Now().Add(-24 * time.Hour)
	opp := activeOpportunity()
	opp.Status = models.OpportunityStatusClosed
	opp.ApplicationDeadline = &yesterday

	result := CanApply(opp, &models.Application{}, time.Now())

	assert.False(t, result.CanApply)
	assert.Equal(t, ReasonAlreadyApplied, result.Reason)
}

func TestCanApply_DeadlineBoundaries(t *testing.T) {
	now := time.Now()
	yesterday := now.Add(-24 * time.Hour)
	tomorrow := now.Add(24 * time.Hour)

	tests := []struct {
		name     string
		deadline *time.Time
		canApply bool
		reason   string
	}{
		{name: "no deadline", deadline: nil, canApply: true},
		{name: "deadline yesterday", deadline: &yesterday, canApply: false, reason: ReasonDeadlinePassed},
		{name: "deadline tomorrow", deadline: &tomorrow, canApply: true},
		{name: "deadline exactly now is still eligible", deadline: &now, canApply: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opp := activeOpportunity()
			opp.ApplicationDeadline = tt.deadline

			result := CanApply(opp, nil, now)

			assert.Equal(t, tt.canApply, result.CanApply)
			assert.Equal(t, tt.reason, result.Reason)
		})
	}
}

func TestCanApply_Status(t *testing.T) {
	tests := []struct {
		status   string
		canApply bool
	}{
		{status: models.OpportunityStatusActive, canApply: true},
		{status: "Active", canApply: true},
		{status: "ACTIVE", canApply: true},
		{status: models.OpportunityStatusDraft, canApply: false},
		{status: models.OpportunityStatusPaused, canApply: false},
		{status: models.OpportunityStatusClosed, canApply: false},
		{status: models.OpportunityStatusExpired, canApply: false},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			opp := activeOpportunity()
			opp.Status = tt.status

			result := CanApply(opp, nil, time.Now())

			assert.Equal(t, tt.canApply, result.CanApply)
			if !tt.canApply {
				assert.Equal(t, ReasonNotAccepting, result.Reason)
			}
		})
	}
}

func TestCanApply_ApplicationLimit(t *testing.T) {
	limit := 50

	tests := []struct {
		name     string
		current  int
		canApply bool
	}{
		{name: "below limit", current: 49, canApply: true},
		{name: "at limit", current: 50, canApply: false},
		{name: "over limit", current: 51, canApply: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opp := activeOpportunity()
			opp.MaxApplications = &limit
			opp.CurrentApplications = tt.current

			result := CanApply(opp, nil, time.Now())

			assert.Equal(t, tt.canApply, result.CanApply)
			if !tt.canApply {
				assert.Equal(t, ReasonLimitReached, result.Reason)
			}
		})
	}
}

func TestCanApply_CheckOrder(t *testing.T) {
	// Deadline failures take precedence over status and capacity failures.
	yesterday := time.Now().Add(-24 * time.Hour)
	limit := 1
	opp := activeOpportunity()
	opp.Status = models.OpportunityStatusClosed
	opp.ApplicationDeadline = &yesterday
	opp.MaxApplications = &limit
	opp.CurrentApplications = 5

	result := CanApply(opp, nil, time.Now())

	assert.False(t, result.CanApply)
	assert.Equal(t, ReasonDeadlinePassed, result.Reason)
}
