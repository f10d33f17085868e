package handlers

import (
	"fmt"
	"net/http"
	"time"

	"mailflow/internal/engine"
	"mailflow/internal/models"

	"github.com/labstack/echo/v4"
)

// IncomingEmailHandler ingests one email event from the mailbox connector
// @Summary Ingest an incoming email
// @Description Attaches the email to its conversation thread and runs AI analysis. Stale, duplicate and outbound events are accepted and silently dropped.
// @Tags emails
// @Accept json
// @Produce json
// @Param request body models.IncomingEmailRequest true "Email event"
// @Success 202 {object} models.IncomingEmailResponse
// @Failure 400 {object} models.IncomingEmailResponse
// @Failure 500 {object} models.IncomingEmailResponse
// @Router /api/emails/incoming [post]
func IncomingEmailHandler(orch *engine.Orchestrator) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req models.IncomingEmailRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, models.IncomingEmailResponse{
				Accepted: false,
				Error:    fmt.Sprintf("Invalid request body: %v", err),
			})
		}

		if req.ID == "" || req.From == "" {
			return c.JSON(http.StatusBadRequest, models.IncomingEmailResponse{
				Accepted: false,
				Error:    "id and from are required",
			})
		}

		direction := models.Direction(req.Direction)
		if direction == "" {
			direction = models.DirectionReceived
		}
		if direction != models.DirectionReceived && direction != models.DirectionSent {
			return c.JSON(http.StatusBadRequest, models.IncomingEmailResponse{
				Accepted: false,
				Error:    fmt.Sprintf("unknown direction %q", req.Direction),
			})
		}

		date := req.Date
		if date.IsZero() {
			date = time.Now().UTC()
		}

		email := models.Email{
			ID:        req.ID,
			From:      req.From,
			Subject:   req.Subject,
			Body:      req.Body,
			Date:      date,
			Direction: direction,
		}

		if err := orch.HandleIncomingEmail(c.Request().Context(), email); err != nil {
			return c.JSON(http.StatusInternalServerError, models.IncomingEmailResponse{
				Accepted: false,
				Error:    err.Error(),
			})
		}

		return c.JSON(http.StatusAccepted, models.IncomingEmailResponse{Accepted: true})
	}
}
