package middleware

import (
	"errors"
	"fmt"

	"hireboard/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
)

// AppError is the error handlers return to pick the response status. Data
// is rendered as the envelope payload, e.g. per-field validation messages.
type AppError struct {
	StatusCode int
	Message    string
	Data       any
	Cause      error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func NewAppError(statusCode int, message string, data any, cause error) *AppError {
	return &AppError{StatusCode: statusCode, Message: message, Data: data, Cause: cause}
}

// ValidationFailed is the 422 carrying field -> message pairs.
func ValidationFailed(fields map[string]string) *AppError {
	return NewAppError(fiber.StatusUnprocessableEntity, "Validation failed", fields, nil)
}

type ErrorMiddleware struct {
	logger logrus.FieldLogger
}

func NewErrorMiddleware(logger logrus.FieldLogger) *ErrorMiddleware {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ErrorMiddleware{logger: logger}
}

func (m *ErrorMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				m.requestLogger(c).WithError(fmt.Errorf("panic: %v", r)).Error("panic recovered")
				err = response.Error(c, fiber.StatusInternalServerError, response.MessageInternalServerError, nil)
			}
		}()

		err = c.Next()
		if err == nil {
			return nil
		}

		out := classify(err)
		if out.internal {
			m.requestLogger(c).WithError(err).WithField("status", out.status).Error("request failed")
		}
		return response.Error(c, out.status, out.message, out.data)
	}
}

func (m *ErrorMiddleware) requestLogger(c fiber.Ctx) logrus.FieldLogger {
	return m.logger.WithFields(logrus.Fields{
		"rid":    RequestID(c),
		"method": c.Method(),
		"path":   c.Path(),
	})
}

type outcome struct {
	status   int
	message  string
	data     any
	internal bool
}

var masked = outcome{
	status:   fiber.StatusInternalServerError,
	message:  response.MessageInternalServerError,
	internal: true,
}

// classify maps err to the envelope. 503 keeps its message so clients can
// tell a retryable failure apart; every other 5xx is masked.
func classify(err error) outcome {
	var (
		status  int
		message string
		data    any
	)

	var appErr *AppError
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &appErr):
		status, message, data = appErr.StatusCode, appErr.Message, appErr.Data
	case errors.As(err, &fiberErr):
		status, message = fiberErr.Code, fiberErr.Message
	default:
		return masked
	}

	switch {
	case status <= 0:
		return masked
	case status == fiber.StatusServiceUnavailable:
		// retryable, message is safe to show
	case status >= fiber.StatusInternalServerError:
		return masked
	}

	if message == "" {
		message = response.DefaultMessage(status)
	}
	return outcome{status: status, message: message, data: data, internal: status >= fiber.StatusInternalServerError}
}
