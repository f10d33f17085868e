package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"mailflow/internal/engine"
	"mailflow/internal/models"

	"github.com/labstack/echo/v4"
)

// DraftResponse wraps a single generated draft
type DraftResponse struct {
	Draft *models.Draft `json:"draft"`
	Error string        `json:"error,omitempty"`
}

// SendDraftResponse reports the outcome of dispatching a draft
type SendDraftResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ListDraftsHandler lists the reply drafts generated for a thread
// @Summary List reply drafts
// @Description Returns every draft generated for the thread, including dismissed and sent ones
// @Tags drafts
// @Produce json
// @Param id path string true "Thread ID"
// @Success 200 {object} models.DraftListResponse
// @Failure 404 {object} models.DraftListResponse
// @Failure 500 {object} models.DraftListResponse
// @Router /api/threads/{id}/drafts [get]
func ListDraftsHandler(orch *engine.Orchestrator) echo.HandlerFunc {
	return func(c echo.Context) error {
		threadID := c.Param("id")

		drafts, err := orch.ListDrafts(c.Request().Context(), threadID)
		if err != nil {
			if errors.Is(err, engine.ErrNotFound) {
				return c.JSON(http.StatusNotFound, models.DraftListResponse{
					Error: "thread not found",
				})
			}
			return c.JSON(http.StatusInternalServerError, models.DraftListResponse{
				Error: err.Error(),
			})
		}

		return c.JSON(http.StatusOK, models.DraftListResponse{Drafts: drafts})
	}
}

// GenerateDraftHandler generates one reply draft for a thread
// @Summary Generate a reply draft
// @Description Drafts a reply to the latest inbound email. An optional context hint steers the tone of the reply.
// @Tags drafts
// @Accept json
// @Produce json
// @Param id path string true "Thread ID"
// @Param request body models.GenerateDraftRequest false "Generation options"
// @Success 201 {object} DraftResponse
// @Failure 404 {object} DraftResponse
// @Failure 502 {object} DraftResponse
// @Router /api/threads/{id}/drafts [post]
func GenerateDraftHandler(orch *engine.Orchestrator) echo.HandlerFunc {
	return func(c echo.Context) error {
		threadID := c.Param("id")

		var req models.GenerateDraftRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, DraftResponse{
				Error: fmt.Sprintf("Invalid request body: %v", err),
			})
		}

		draft, err := orch.GenerateDraft(c.Request().Context(), threadID, req.ContextHint)
		if err != nil {
			return c.JSON(draftErrorStatus(err), DraftResponse{Error: err.Error()})
		}

		return c.JSON(http.StatusCreated, DraftResponse{Draft: draft})
	}
}

// GenerateVariantsHandler generates several alternative reply drafts
// @Summary Generate reply draft variants
// @Description Drafts several alternative replies to the latest inbound email. The requested count is capped at 10. Variants that fail to generate are dropped; the call fails only when none succeed.
// @Tags drafts
// @Accept json
// @Produce json
// @Param id path string true "Thread ID"
// @Param request body models.GenerateDraftRequest false "Generation options"
// @Success 201 {object} models.DraftListResponse
// @Failure 404 {object} models.DraftListResponse
// @Failure 502 {object} models.DraftListResponse
// @Router /api/threads/{id}/drafts/variants [post]
func GenerateVariantsHandler(orch *engine.Orchestrator, defaultCount int) echo.HandlerFunc {
	return func(c echo.Context) error {
		threadID := c.Param("id")

		var req models.GenerateDraftRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, models.DraftListResponse{
				Error: fmt.Sprintf("Invalid request body: %v", err),
			})
		}

		count := req.Variants
		if count <= 0 {
			count = defaultCount
		}

		drafts, err := orch.GenerateVariants(c.Request().Context(), threadID, count)
		if err != nil {
			return c.JSON(draftErrorStatus(err), models.DraftListResponse{Error: err.Error()})
		}

		return c.JSON(http.StatusCreated, models.DraftListResponse{Drafts: drafts})
	}
}

// GenerateCustomDraftHandler generates a draft from user instructions
// @Summary Generate a custom reply draft
// @Description Drafts a reply following free-text instructions, optionally refining an existing draft
// @Tags drafts
// @Accept json
// @Produce json
// @Param id path string true "Thread ID"
// @Param request body models.GenerateDraftRequest true "Instructions and optional base draft"
// @Success 201 {object} DraftResponse
// @Failure 400 {object} DraftResponse
// @Failure 404 {object} DraftResponse
// @Failure 502 {object} DraftResponse
// @Router /api/threads/{id}/drafts/custom [post]
func GenerateCustomDraftHandler(orch *engine.Orchestrator) echo.HandlerFunc {
	return func(c echo.Context) error {
		threadID := c.Param("id")

		var req models.GenerateDraftRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, DraftResponse{
				Error: fmt.Sprintf("Invalid request body: %v", err),
			})
		}

		if req.Instructions == "" {
			return c.JSON(http.StatusBadRequest, DraftResponse{
				Error: "instructions are required",
			})
		}

		draft, err := orch.GenerateCustomDraft(c.Request().Context(), threadID, req.BaseDraftID, req.Instructions)
		if err != nil {
			return c.JSON(draftErrorStatus(err), DraftResponse{Error: err.Error()})
		}

		return c.JSON(http.StatusCreated, DraftResponse{Draft: draft})
	}
}

// SendDraftHandler dispatches an approved draft as an outbound reply
// @Summary Send a reply draft
// @Description Sends the draft to the thread's sender and records the reply in the conversation log
// @Tags drafts
// @Accept json
// @Produce json
// @Param id path string true "Thread ID"
// @Param request body models.SendDraftRequest true "Draft to send"
// @Success 200 {object} SendDraftResponse
// @Failure 400 {object} SendDraftResponse
// @Failure 404 {object} SendDraftResponse
// @Failure 502 {object} SendDraftResponse
// @Router /api/threads/{id}/send [post]
func SendDraftHandler(orch *engine.Orchestrator) echo.HandlerFunc {
	return func(c echo.Context) error {
		threadID := c.Param("id")

		var req models.SendDraftRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, SendDraftResponse{
				Success: false,
				Error:   fmt.Sprintf("Invalid request body: %v", err),
			})
		}

		if req.DraftID == "" {
			return c.JSON(http.StatusBadRequest, SendDraftResponse{
				Success: false,
				Error:   "draft_id is required",
			})
		}

		if err := orch.SendDraft(c.Request().Context(), threadID, req.DraftID); err != nil {
			if errors.Is(err, engine.ErrNotFound) {
				return c.JSON(http.StatusNotFound, SendDraftResponse{
					Success: false,
					Error:   err.Error(),
				})
			}
			if errors.Is(err, engine.ErrPersistenceFailed) {
				return c.JSON(http.StatusInternalServerError, SendDraftResponse{
					Success: false,
					Error:   err.Error(),
				})
			}
			return c.JSON(http.StatusBadGateway, SendDraftResponse{
				Success: false,
				Error:   err.Error(),
			})
		}

		return c.JSON(http.StatusOK, SendDraftResponse{
			Success: true,
			Message: "Reply sent",
		})
	}
}

// draftErrorStatus maps draft generation failures to HTTP statuses
func draftErrorStatus(err error) int {
	switch {
	case errors.Is(err, engine.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrPersistenceFailed):
		return http.StatusInternalServerError
	default:
		return http.StatusBadGateway
	}
}
