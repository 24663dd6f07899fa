package handler

import (
	"errors"

	"hireboard/internal/delivery/http/middleware"
	"hireboard/internal/pkg/response"
	"hireboard/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

// mapUsecaseError turns usecase sentinels into HTTP errors. Validation
// errors carry their field map; a rejected transition keeps its message.
func mapUsecaseError(err error) error {
	if err == nil {
		return nil
	}

	var verr *usecase.ValidationError
	var terr *usecase.TransitionError
	switch {
	case errors.As(err, &verr):
		return middleware.NewAppError(fiber.StatusUnprocessableEntity, "Validation failed", verr.Fields, err)
	case errors.As(err, &terr):
		return middleware.NewAppError(fiber.StatusUnprocessableEntity, terr.Error(), map[string]string{"stage": terr.Error()}, err)
	case errors.Is(err, usecase.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	case errors.Is(err, usecase.ErrNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Resource not found", nil, err)
	case errors.Is(err, usecase.ErrStageConflict):
		return middleware.NewAppError(fiber.StatusConflict, "Candidate stage was changed by someone else, reload and try again", nil, err)
	case errors.Is(err, usecase.ErrStageChangeInProgress):
		return middleware.NewAppError(fiber.StatusConflict, "A stage change for this candidate is already in progress", nil, err)
	case errors.Is(err, usecase.ErrSessionState):
		return middleware.NewAppError(fiber.StatusConflict, "Assessment session does not accept this action", nil, err)
	case errors.Is(err, usecase.ErrUnavailable):
		return middleware.NewAppError(fiber.StatusServiceUnavailable, "Temporarily unavailable, please retry", nil, err)
	case errors.Is(err, usecase.ErrUnauthorized):
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
