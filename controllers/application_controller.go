package controllers

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"applyflow/middleware"
	"applyflow/models"
	"applyflow/services"
	"applyflow/utils"
)

type ApplicationController struct {
	Applications  *models.ApplicationModel
	Opportunities *models.OpportunityModel
	Profiles      *models.StudentProfileModel
	Submissions   *services.SubmissionService
	QuickApply    *services.QuickApplyService
}

func NewApplicationController(db *sql.DB, notifier services.Notifier) *ApplicationController {
	applications := models.NewApplicationModel(db)
	opportunities := models.NewOpportunityModel(db)
	profiles := models.NewStudentProfileModel(db)
	submissions := services.NewSubmissionService(applications, opportunities, profiles, notifier)

	return &ApplicationController{
		Applications:  applications,
		Opportunities: opportunities,
		Profiles:      profiles,
		Submissions:   submissions,
		QuickApply:    services.NewQuickApplyService(submissions, opportunities, profiles),
	}
}

// CheckEligibility answers whether the authenticated candidate may apply to
// the opportunity right now. The answer is advisory for the client; the
// store's uniqueness constraint stays authoritative at submit time.
func (ctrl *ApplicationController) CheckEligibility(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.UnauthorizedError(c, "User not authenticated")
		return
	}
	opportunityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestError(c, "Invalid opportunity id", err)
		return
	}

	opp, err := ctrl.Opportunities.GetByID(opportunityID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.NotFoundError(c, "Opportunity not found")
			return
		}
		utils.InternalServerError(c, "Failed to load opportunity", err)
		return
	}

	existing, err := ctrl.Submissions.ExistingApplication(userID, opportunityID)
	if err != nil {
		utils.InternalServerError(c, "Failed to check existing application", err)
		return
	}

	result := services.CanApply(opp, existing, time.Now())
	utils.SuccessResponse(c, http.StatusOK, "Eligibility evaluated", result)
}

type submitRequest struct {
	CoverLetter  string            `json:"cover_letter"`
	DocumentURLs []string          `json:"document_urls"`
	Answers      map[string]string `json:"answers"`
}

// Submit commits an assembled application payload directly, for clients that
// manage the flow themselves. The wizard endpoints are the guided variant.
func (ctrl *ApplicationController) Submit(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.UnauthorizedError(c, "User not authenticated")
		return
	}
	opportunityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestError(c, "Invalid opportunity id", err)
		return
	}

	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestError(c, "Invalid request body", err)
		return
	}

	app, outcome := ctrl.Submissions.Submit(services.SubmissionRequest{
		UserID:        userID,
		OpportunityID: opportunityID,
		CoverLetter:   req.CoverLetter,
		DocumentURLs:  req.DocumentURLs,
		Answers:       req.Answers,
	})
	if !outcome.OK {
		respondOutcome(c, outcome)
		return
	}
	utils.SuccessResponse(c, http.StatusCreated, "Application submitted", app)
}

// QuickApplyHandler is the single-action apply path with a boilerplate cover
// letter. Profile gaps come back as an ordered checklist.
func (ctrl *ApplicationController) QuickApplyHandler(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.UnauthorizedError(c, "User not authenticated")
		return
	}
	opportunityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestError(c, "Invalid opportunity id", err)
		return
	}

	result := ctrl.QuickApply.Apply(userID, opportunityID)
	if !result.Outcome.OK {
		if result.Outcome.Kind == services.OutcomeValidation && len(result.Checklist) > 0 {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"success":   false,
				"message":   result.Outcome.Message,
				"checklist": result.Checklist,
			})
			return
		}
		respondOutcome(c, &result.Outcome)
		return
	}
	if result.Outcome.Kind == services.OutcomeDuplicate {
		utils.SuccessResponse(c, http.StatusOK, result.Outcome.Message, nil)
		return
	}
	utils.SuccessResponse(c, http.StatusCreated, "Application submitted", result.Application)
}

// List returns the authenticated candidate's applications, newest first.
func (ctrl *ApplicationController) List(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.UnauthorizedError(c, "User not authenticated")
		return
	}

	profile, err := ctrl.Profiles.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.SuccessResponse(c, http.StatusOK, "Applications fetched", []models.Application{})
			return
		}
		utils.InternalServerError(c, "Failed to load profile", err)
		return
	}

	applications, err := ctrl.Applications.GetByStudent(profile.ID)
	if err != nil {
		utils.InternalServerError(c, "Failed to load applications", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Applications fetched", applications)
}

// Withdraw moves one of the candidate's own non-terminal applications to
// withdrawn. Every other status transition belongs to the organization side.
func (ctrl *ApplicationController) Withdraw(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.UnauthorizedError(c, "User not authenticated")
		return
	}
	applicationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestError(c, "Invalid application id", err)
		return
	}

	profile, err := ctrl.Profiles.GetByUserID(userID)
	if err != nil {
		utils.NotFoundError(c, "Student profile not found")
		return
	}

	app, err := ctrl.Applications.GetByID(applicationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.NotFoundError(c, "Application not found")
			return
		}
		utils.InternalServerError(c, "Failed to load application", err)
		return
	}
	if app.StudentID != profile.ID {
		utils.ForbiddenError(c, "This application belongs to another candidate")
		return
	}

	withdrawn, err := ctrl.Applications.Withdraw(applicationID)
	if err != nil {
		utils.ConflictError(c, err.Error())
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Application withdrawn", withdrawn)
}

// respondOutcome maps a structured engine outcome onto an HTTP error reply.
func respondOutcome(c *gin.Context, outcome *services.Outcome) {
	switch outcome.Kind {
	case services.OutcomeValidation:
		utils.BadRequestError(c, outcome.Message, nil)
	case services.OutcomeDuplicate:
		utils.ConflictError(c, outcome.Message)
	case services.OutcomeNotEligible:
		utils.ConflictError(c, outcome.Message)
	case services.OutcomeUpload:
		utils.ErrorResponseWithCode(c, http.StatusBadGateway, outcome.Message, nil)
	default:
		utils.InternalServerError(c, outcome.Message, nil)
	}
}
