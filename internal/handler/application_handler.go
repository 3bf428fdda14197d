package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/myadmit/admit-backend/internal/model"
	"github.com/myadmit/admit-backend/internal/response"
	"github.com/myadmit/admit-backend/internal/service"
	"github.com/myadmit/admit-backend/internal/validator"
)

// ApplicationHandler handles applications and their questions, answers,
// notes and deadlines.
type ApplicationHandler struct {
	applicationService *service.ApplicationService
}

// NewApplicationHandler creates a new ApplicationHandler.
func NewApplicationHandler(applicationService *service.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{applicationService: applicationService}
}

// Create godoc
// POST /api/v1/user/application
// Starts an application for a program, copying its questions.
func (h *ApplicationHandler) Create(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}

	var req model.CreateApplicationRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	app, err := h.applicationService.Create(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		failWithError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, app)
}

// List godoc
// GET /api/v1/user/application
// Lists applications. Those beyond the plan limit come back as summaries.
func (h *ApplicationHandler) List(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}

	apps, err := h.applicationService.List(c.Request.Context(), claims.UserID)
	if err != nil {
		failWithError(c, err)
		return
	}
	response.Success(c, http.StatusOK, apps)
}

// Get godoc
// GET /api/v1/user/application/:id
func (h *ApplicationHandler) Get(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	app, err := h.applicationService.Get(c.Request.Context(), claims.UserID, id)
	if err != nil {
		failWithError(c, err)
		return
	}
	response.Success(c, http.StatusOK, app)
}

// UpcomingDeadlines godoc
// GET /api/v1/user/application/deadlines/upcoming?days=30
func (h *ApplicationHandler) UpcomingDeadlines(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}

	days := 30
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
				map[string]string{"days": "days must be a positive number"})
			return
		}
		days = n
	}

	deadlines, err := h.applicationService.UpcomingDeadlines(c.Request.Context(), claims.UserID, days)
	if err != nil {
		failWithError(c, err)
		return
	}
	response.Success(c, http.StatusOK, deadlines)
}

// ─── Questions ─────────────────────────────────────────────────────────────

// ListQuestions godoc
// GET /api/v1/user/application/:id/questions
func (h *ApplicationHandler) ListQuestions(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	questions, err := h.applicationService.ListQuestions(c.Request.Context(), claims.UserID, id)
	if err != nil {
		failWithError(c, err)
		return
	}
	response.Success(c, http.StatusOK, questions)
}

// GetQuestion godoc
// GET /api/v1/user/application/:id/questions/:question_id
func (h *ApplicationHandler) GetQuestion(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	questionID, ok := parseUUIDParam(c, "question_id")
	if !ok {
		return
	}

	q, err := h.applicationService.GetQuestion(c.Request.Context(), claims.UserID, id, questionID)
	if err != nil {
		failWithError(c, err)
		return
	}
	response.Success(c, http.StatusOK, q)
}

// AddQuestion godoc
// POST /api/v1/user/application/:id/questions
// Adds a custom question.
func (h *ApplicationHandler) AddQuestion(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req model.ApplicationQuestionInput
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	q, err := h.applicationService.AddQuestion(c.Request.Context(), claims.UserID, id, &req)
	if err != nil {
		failWithError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, q)
}

// UpdateQuestion godoc
// PUT /api/v1/user/application/:id/questions/:question_id
func (h *ApplicationHandler) UpdateQuestion(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	questionID, ok := parseUUIDParam(c, "question_id")
	if !ok {
		return
	}

	var req model.ApplicationQuestionInput
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	q, err := h.applicationService.UpdateQuestion(c.Request.Context(), claims.UserID, id, questionID, &req)
	if err != nil {
		failWithError(c, err)
		return
	}
	response.Success(c, http.StatusOK, q)
}

// DeleteQuestion godoc
// DELETE /api/v1/user/application/:id/questions/:question_id
// Only custom questions can be removed.
func (h *ApplicationHandler) DeleteQuestion(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	questionID, ok := parseUUIDParam(c, "question_id")
	if !ok {
		return
	}

	if err := h.applicationService.DeleteQuestion(c.Request.Context(), claims.UserID, id, questionID); err != nil {
		failWithError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Question deleted successfully"})
}

// ─── Answers ───────────────────────────────────────────────────────────────

// UpdateFinalAnswer godoc
// POST /api/v1/user/application/:id/questions/:question_id/final-answer
func (h *ApplicationHandler) UpdateFinalAnswer(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	questionID, ok := parseUUIDParam(c, "question_id")
	if !ok {
		return
	}

	var req model.FinalAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	answer, err := h.applicationService.UpdateFinalAnswer(c.Request.Context(), claims.UserID, id, questionID, req.FinalAnswer)
	if err != nil {
		failWithError(c, err)
		return
	}
	response.Success(c, http.StatusOK, answer)
}

// UpdateAnswerStatus godoc
// POST /api/v1/user/application/:id/questions/:question_id/status
func (h *ApplicationHandler) UpdateAnswerStatus(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	questionID, ok := parseUUIDParam(c, "question_id")
	if !ok {
		return
	}

	var req model.AnswerStatusRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	answer, err := h.applicationService.UpdateAnswerStatus(c.Request.Context(), claims.UserID, id, questionID, req.Status)
	if err != nil {
		failWithError(c, err)
		return
	}
	response.Success(c, http.StatusOK, answer)
}

// ─── Notes ─────────────────────────────────────────────────────────────────

// ListNotes godoc
// GET /api/v1/user/application/:id/notes
func (h *ApplicationHandler) ListNotes(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	notes, err := h.applicationService.ListNotes(c.Request.Context(), claims.UserID, id)
	if err != nil {
		failWithError(c, err)
		return
	}
	response.Success(c, http.StatusOK, notes)
}

// AddNote godoc
// POST /api/v1/user/application/:id/notes
func (h *ApplicationHandler) AddNote(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req model.NoteRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	note, err := h.applicationService.AddNote(c.Request.Context(), claims.UserID, id, req.Content)
	if err != nil {
		failWithError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, note)
}

// UpdateNote godoc
// PUT /api/v1/user/application/:id/notes/:note_id
func (h *ApplicationHandler) UpdateNote(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	noteID, ok := parseUUIDParam(c, "note_id")
	if !ok {
		return
	}

	var req model.NoteRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	note, err := h.applicationService.UpdateNote(c.Request.Context(), claims.UserID, id, noteID, req.Content)
	if err != nil {
		failWithError(c, err)
		return
	}
	response.Success(c, http.StatusOK, note)
}

// DeleteNote godoc
// DELETE /api/v1/user/application/:id/notes/:note_id
func (h *ApplicationHandler) DeleteNote(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	noteID, ok := parseUUIDParam(c, "note_id")
	if !ok {
		return
	}

	if err := h.applicationService.DeleteNote(c.Request.Context(), claims.UserID, id, noteID); err != nil {
		failWithError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Note deleted successfully"})
}

// ─── Deadline ──────────────────────────────────────────────────────────────

// UpdateDeadline godoc
// POST /api/v1/user/application/:id/deadline
// Selects a program deadline or sets a custom one.
func (h *ApplicationHandler) UpdateDeadline(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req model.ApplicationDeadlineInput
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	deadline, err := h.applicationService.UpdateDeadline(c.Request.Context(), claims.UserID, id, &req)
	if err != nil {
		failWithError(c, err)
		return
	}
	response.Success(c, http.StatusOK, deadline)
}

// RemoveDeadline godoc
// DELETE /api/v1/user/application/:id/deadline
func (h *ApplicationHandler) RemoveDeadline(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.applicationService.RemoveDeadline(c.Request.Context(), claims.UserID, id); err != nil {
		failWithError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Deadline removed successfully"})
}
