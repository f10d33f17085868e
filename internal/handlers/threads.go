package handlers

import (
	"errors"
	"net/http"

	"mailflow/internal/analytics"
	"mailflow/internal/engine"
	"mailflow/internal/models"

	"github.com/labstack/echo/v4"
)

// CloseThreadResponse reports the outcome of closing a thread
type CloseThreadResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// GetThreadHandler returns a thread with its message log and derived state
// @Summary Get a conversation thread
// @Description Returns the thread, its full message log and the current workflow state
// @Tags threads
// @Produce json
// @Param id path string true "Thread ID"
// @Success 200 {object} models.ThreadResponse
// @Failure 404 {object} models.ThreadResponse
// @Failure 500 {object} models.ThreadResponse
// @Router /api/threads/{id} [get]
func GetThreadHandler(orch *engine.Orchestrator) echo.HandlerFunc {
	return func(c echo.Context) error {
		threadID := c.Param("id")

		thread, messages, state, err := orch.GetThread(c.Request().Context(), threadID)
		if err != nil {
			if errors.Is(err, engine.ErrNotFound) {
				return c.JSON(http.StatusNotFound, models.ThreadResponse{
					Error: "thread not found",
				})
			}
			return c.JSON(http.StatusInternalServerError, models.ThreadResponse{
				Error: err.Error(),
			})
		}

		return c.JSON(http.StatusOK, models.ThreadResponse{
			Thread:   thread,
			State:    state,
			Messages: messages,
		})
	}
}

// ThreadSummaryHandler returns the analytics summary for a thread
// @Summary Summarize a conversation thread
// @Description Scans the sender's recent exchange for tone, urgency and a suggested response, with a compact context digest
// @Tags threads
// @Produce json
// @Param id path string true "Thread ID"
// @Success 200 {object} models.ThreadSummaryResponse
// @Failure 404 {object} models.ThreadSummaryResponse
// @Failure 500 {object} models.ThreadSummaryResponse
// @Router /api/threads/{id}/summary [get]
func ThreadSummaryHandler(svc *analytics.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		threadID := c.Param("id")

		summary, err := svc.AnalyzeThread(c.Request().Context(), threadID)
		if err != nil {
			if errors.Is(err, analytics.ErrThreadNotFound) {
				return c.JSON(http.StatusNotFound, models.ThreadSummaryResponse{
					Error: "thread not found",
				})
			}
			return c.JSON(http.StatusInternalServerError, models.ThreadSummaryResponse{
				Error: err.Error(),
			})
		}

		return c.JSON(http.StatusOK, models.ThreadSummaryResponse{Summary: summary})
	}
}

// CloseThreadHandler marks a thread as resolved
// @Summary Close a conversation thread
// @Description Marks the thread as completed. Later emails from the same sender open a fresh thread.
// @Tags threads
// @Produce json
// @Param id path string true "Thread ID"
// @Success 200 {object} CloseThreadResponse
// @Failure 404 {object} CloseThreadResponse
// @Failure 500 {object} CloseThreadResponse
// @Router /api/threads/{id}/close [post]
func CloseThreadHandler(orch *engine.Orchestrator) echo.HandlerFunc {
	return func(c echo.Context) error {
		threadID := c.Param("id")

		if err := orch.CloseThread(c.Request().Context(), threadID); err != nil {
			if errors.Is(err, engine.ErrNotFound) {
				return c.JSON(http.StatusNotFound, CloseThreadResponse{
					Success: false,
					Error:   "thread not found",
				})
			}
			return c.JSON(http.StatusInternalServerError, CloseThreadResponse{
				Success: false,
				Error:   err.Error(),
			})
		}

		return c.JSON(http.StatusOK, CloseThreadResponse{Success: true})
	}
}
