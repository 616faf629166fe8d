// Package response centralizes HTTP response shapes and helpers.
// Handlers rely on it to keep controllers thin and uniform.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sanpolsito/ultimate-frisbee-stats/internal/game"
	"github.com/sanpolsito/ultimate-frisbee-stats/internal/repository"
	"github.com/sanpolsito/ultimate-frisbee-stats/internal/service"
)

// ErrorPayload is the canonical error envelope returned by the API.
type ErrorPayload struct {
	Error       string               `json:"error"`
	Message     string               `json:"message,omitempty"`
	FieldErrors []service.FieldError `json:"field_errors,omitempty"`
}

// MapError converts a domain / infrastructure error into an HTTP status and payload.
// Extend here as new domain error categories emerge.
func MapError(err error) (int, ErrorPayload) {
	if err == nil {
		return http.StatusOK, ErrorPayload{Error: "ok"}
	}

	if errors.Is(err, service.ErrInvalidInput) {
		return http.StatusBadRequest, ErrorPayload{
			Error:       "invalid_input",
			Message:     "one or more fields are invalid",
			FieldErrors: service.FieldErrors(err),
		}
	}

	// Live-game rule violations: the request was well-formed, the match state
	// refused it.
	switch {
	case errors.Is(err, game.ErrFinished):
		return http.StatusConflict, ErrorPayload{Error: "match_finished", Message: err.Error()}
	case errors.Is(err, game.ErrNotActive):
		return http.StatusConflict, ErrorPayload{Error: "match_not_active", Message: err.Error()}
	case errors.Is(err, game.ErrNotHalftime):
		return http.StatusConflict, ErrorPayload{Error: "not_halftime", Message: err.Error()}
	case errors.Is(err, game.ErrGenderNotSelected):
		return http.StatusConflict, ErrorPayload{Error: "gender_not_selected", Message: err.Error()}
	case errors.Is(err, game.ErrNoPendingEvent):
		return http.StatusConflict, ErrorPayload{Error: "no_pending_event", Message: err.Error()}
	case errors.Is(err, game.ErrClockRunning),
		errors.Is(err, game.ErrClockNotRunning),
		errors.Is(err, game.ErrClockExpired):
		return http.StatusConflict, ErrorPayload{Error: "clock_state", Message: err.Error()}
	case errors.Is(err, game.ErrPoolTimerRunning),
		errors.Is(err, game.ErrPoolTimerNotRunning):
		return http.StatusConflict, ErrorPayload{Error: "pool_timer_state", Message: err.Error()}
	case errors.Is(err, game.ErrPlayerNotFound):
		return http.StatusNotFound, ErrorPayload{Error: "player_not_found"}
	case errors.Is(err, game.ErrEventNotFound):
		return http.StatusNotFound, ErrorPayload{Error: "event_not_found"}
	case errors.Is(err, game.ErrInvalidTeam),
		errors.Is(err, game.ErrInvalidConfig),
		errors.Is(err, game.ErrInvalidEventType),
		errors.Is(err, game.ErrInvalidGender),
		errors.Is(err, game.ErrInvalidPool):
		return http.StatusBadRequest, ErrorPayload{Error: "invalid_input", Message: err.Error()}
	}

	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, ErrorPayload{Error: "not_found"}
	case errors.Is(err, repository.ErrAlreadyExists):
		return http.StatusConflict, ErrorPayload{Error: "already_exists"}
	case errors.Is(err, repository.ErrConflict):
		return http.StatusConflict, ErrorPayload{Error: "conflict"}
	default:
		return http.StatusInternalServerError, ErrorPayload{Error: "internal_error"}
	}
}

// WriteError writes an error response and aborts the context.
func WriteError(c *gin.Context, err error) {
	status, payload := MapError(err)
	c.AbortWithStatusJSON(status, payload)
}

// WriteData writes a successful JSON response.
func WriteData(c *gin.Context, status int, data any) {
	c.JSON(status, data)
}
