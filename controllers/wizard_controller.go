package controllers

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"applyflow/middleware"
	"applyflow/services"
	"applyflow/utils"
)

// WizardController exposes the guided submission flow over HTTP. Each
// (user, opportunity) pair owns at most one in-memory session; sessions are
// discarded on close or submission and are never persisted.
type WizardController struct {
	Applications *ApplicationController
	Storage      services.DocumentStore

	mu       sync.Mutex
	sessions map[string]*services.Wizard
}

func NewWizardController(applications *ApplicationController, storage services.DocumentStore) *WizardController {
	return &WizardController{
		Applications: applications,
		Storage:      storage,
		sessions:     map[string]*services.Wizard{},
	}
}

func sessionKey(userID, opportunityID uuid.UUID) string {
	return fmt.Sprintf("%s:%s", userID, opportunityID)
}

func (ctrl *WizardController) session(userID, opportunityID uuid.UUID) (*services.Wizard, bool) {
	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()
	wizard, ok := ctrl.sessions[sessionKey(userID, opportunityID)]
	return wizard, ok
}

// Open starts a wizard session. Eligibility runs here and an ineligible
// candidate gets the reason instead of a session.
func (ctrl *WizardController) Open(c *gin.Context) {
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

	opp, err := ctrl.Applications.Opportunities.GetByID(opportunityID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.NotFoundError(c, "Opportunity not found")
			return
		}
		utils.InternalServerError(c, "Failed to load opportunity", err)
		return
	}

	existing, err := ctrl.Applications.Submissions.ExistingApplication(userID, opportunityID)
	if err != nil {
		utils.InternalServerError(c, "Failed to check existing application", err)
		return
	}

	uploads := services.NewUploadManager(ctrl.Storage, userID, opportunityID)
	wizard, err := services.NewWizard(opp, existing, userID, uploads, ctrl.Applications.Submissions)
	if err != nil {
		var notEligible *services.NotEligibleError
		if errors.As(err, &notEligible) {
			utils.ConflictError(c, notEligible.Reason)
			return
		}
		utils.InternalServerError(c, "Failed to open application", err)
		return
	}

	ctrl.mu.Lock()
	ctrl.sessions[sessionKey(userID, opportunityID)] = wizard
	ctrl.mu.Unlock()

	utils.SuccessResponse(c, http.StatusCreated, "Application started", gin.H{
		"step":  wizard.CurrentStep(),
		"steps": wizard.Steps(),
	})
}

// State reports the session's current step, the full step sequence, held
// documents, and whether closing needs confirmation.
func (ctrl *WizardController) State(c *gin.Context) {
	wizard, ok := ctrl.lookup(c)
	if !ok {
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Application state", gin.H{
		"step":      wizard.CurrentStep(),
		"steps":     wizard.Steps(),
		"dirty":     wizard.Dirty(),
		"documents": wizard.Uploads().Documents(),
	})
}

type wizardUpdateRequest struct {
	CoverLetter *string           `json:"cover_letter,omitempty"`
	Answers     map[string]string `json:"answers,omitempty"`
}

// Update records cover letter text and question answers without advancing.
func (ctrl *WizardController) Update(c *gin.Context) {
	wizard, ok := ctrl.lookup(c)
	if !ok {
		return
	}

	var req wizardUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestError(c, "Invalid request body", err)
		return
	}
	if req.CoverLetter != nil {
		wizard.SetCoverLetter(*req.CoverLetter)
	}
	for question, answer := range req.Answers {
		wizard.SetAnswer(question, answer)
	}
	utils.SuccessResponse(c, http.StatusOK, "Application updated", gin.H{"step": wizard.CurrentStep()})
}

// Next advances the session one step if the current step's gate passes.
func (ctrl *WizardController) Next(c *gin.Context) {
	wizard, ok := ctrl.lookup(c)
	if !ok {
		return
	}
	if result := wizard.Next(); !result.Valid {
		utils.BadRequestError(c, result.Reason, nil)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Moved to next step", gin.H{"step": wizard.CurrentStep()})
}

// Back returns to the previous step; no validation applies.
func (ctrl *WizardController) Back(c *gin.Context) {
	wizard, ok := ctrl.lookup(c)
	if !ok {
		return
	}
	wizard.Back()
	utils.SuccessResponse(c, http.StatusOK, "Moved to previous step", gin.H{"step": wizard.CurrentStep()})
}

// UploadDocuments ingests a multipart batch through the session's upload
// manager. One bad file does not block its siblings; per-file results are
// returned in order.
func (ctrl *WizardController) UploadDocuments(c *gin.Context) {
	wizard, ok := ctrl.lookup(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		utils.BadRequestError(c, "Invalid multipart form", err)
		return
	}
	headers := form.File["documents"]
	if len(headers) == 0 {
		utils.BadRequestError(c, "No documents in request", nil)
		return
	}

	files := make([]services.FileUpload, 0, len(headers))
	for _, header := range headers {
		upload := services.FileUpload{
			FileMetadata: services.FileMetadata{
				Name:      header.Filename,
				Size:      header.Size,
				MediaType: header.Header.Get("Content-Type"),
			},
		}
		// Oversize and mistyped files are rejected on metadata alone, so the
		// bytes are only read for plausible candidates.
		if result := services.ValidateFile(upload.FileMetadata); result.Valid {
			file, err := header.Open()
			if err != nil {
				utils.InternalServerError(c, "Failed to read uploaded file", err)
				return
			}
			content, err := io.ReadAll(file)
			file.Close()
			if err != nil {
				utils.InternalServerError(c, "Failed to read uploaded file", err)
				return
			}
			upload.Content = content
		}
		files = append(files, upload)
	}

	results := wizard.Uploads().Ingest(files)
	utils.SuccessResponse(c, http.StatusOK, "Documents processed", gin.H{
		"results":   results,
		"documents": wizard.Uploads().Documents(),
	})
}

// RemoveDocument deletes one uploaded document from storage and, only after
// confirmed deletion, from the session.
func (ctrl *WizardController) RemoveDocument(c *gin.Context) {
	wizard, ok := ctrl.lookup(c)
	if !ok {
		return
	}
	// The route uses a wildcard because storage keys contain slashes; gin
	// keeps the leading one.
	key := strings.TrimPrefix(c.Param("key"), "/")
	if err := wizard.Uploads().RemoveByKey(key); err != nil {
		utils.ErrorResponseWithCode(c, http.StatusBadGateway, "Failed to remove document", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Document removed", gin.H{
		"documents": wizard.Uploads().Documents(),
	})
}

// DocumentLink replies with a presigned download URL for one of the
// session's uploaded documents.
func (ctrl *WizardController) DocumentLink(c *gin.Context) {
	wizard, ok := ctrl.lookup(c)
	if !ok {
		return
	}
	key := strings.TrimPrefix(c.Param("key"), "/")
	url, err := wizard.Uploads().DownloadLink(key)
	if err != nil {
		utils.NotFoundError(c, "No uploaded document with that key")
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Download link generated", gin.H{"url": url})
}

// Submit commits the application from the review step and ends the session.
func (ctrl *WizardController) Submit(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	opportunityID, _ := uuid.Parse(c.Param("id"))
	wizard, ok := ctrl.lookup(c)
	if !ok {
		return
	}

	app, outcome := wizard.Submit()
	if !outcome.OK {
		respondOutcome(c, outcome)
		return
	}

	ctrl.mu.Lock()
	delete(ctrl.sessions, sessionKey(userID, opportunityID))
	ctrl.mu.Unlock()

	utils.SuccessResponse(c, http.StatusCreated, "Application submitted", app)
}

// Close abandons the session. Dirty sessions require ?confirm=true; on
// confirmed close the session's uploaded documents are deleted from storage.
func (ctrl *WizardController) Close(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	opportunityID, _ := uuid.Parse(c.Param("id"))
	wizard, ok := ctrl.lookup(c)
	if !ok {
		return
	}

	confirmed := c.Query("confirm") == "true"
	if err := wizard.Close(confirmed); err != nil {
		utils.ConflictError(c, "You have unsaved changes; confirm to discard them")
		return
	}

	ctrl.mu.Lock()
	delete(ctrl.sessions, sessionKey(userID, opportunityID))
	ctrl.mu.Unlock()

	utils.SuccessResponse(c, http.StatusOK, "Application closed", nil)
}

// lookup resolves the session for the request, replying 404 when none exists.
func (ctrl *WizardController) lookup(c *gin.Context) (*services.Wizard, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.UnauthorizedError(c, "User not authenticated")
		return nil, false
	}
	opportunityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestError(c, "Invalid opportunity id", err)
		return nil, false
	}
	wizard, found := ctrl.session(userID, opportunityID)
	if !found {
		utils.NotFoundError(c, "No open application for this opportunity")
		return nil, false
	}
	return wizard, true
}
