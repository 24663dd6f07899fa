package middleware

import (
	"math/rand/v2"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
)

// FaultMiddleware fails a share of mutating requests with 503 so clients can
// exercise their rollback paths against a live server.
type FaultMiddleware struct {
	rate   float64
	roll   func() float64
	logger logrus.FieldLogger
}

func NewFaultMiddleware(rate float64, logger logrus.FieldLogger) *FaultMiddleware {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &FaultMiddleware{rate: rate, roll: rand.Float64, logger: logger}
}

func (m *FaultMiddleware) Enabled() bool {
	return m != nil && m.rate > 0
}

func (m *FaultMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		if !m.Enabled() {
			return c.Next()
		}
		switch c.Method() {
		case fiber.MethodPost, fiber.MethodPut, fiber.MethodPatch:
		default:
			return c.Next()
		}
		if m.roll() >= m.rate {
			return c.Next()
		}
		m.logger.WithFields(logrus.Fields{"rid": RequestID(c), "method": c.Method(), "path": c.Path()}).Info("injected fault")
		return NewAppError(fiber.StatusServiceUnavailable, "Injected failure, please retry", nil, nil)
	}
}
