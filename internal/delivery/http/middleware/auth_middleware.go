package middleware

import (
	"errors"
	"strings"

	"hireboard/internal/pkg/jwt"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

const ctxRecruiterKey = "recruiter"

// DefaultAuthor is recorded when a change has no authenticated recruiter.
const DefaultAuthor = "system"

// Recruiter is the identity taken from a verified access token.
type Recruiter struct {
	ID    uuid.UUID
	Email string
	Name  string
}

type AuthMiddleware struct {
	jwt jwt.Service
}

func NewAuthMiddleware(jwtSvc jwt.Service) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwtSvc}
}

// Middleware only admits access tokens; a refresh token is rejected even
// when its signature is valid.
func (m *AuthMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		token, ok := BearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
		}

		claims, err := m.jwt.ValidateToken(token)
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return NewAppError(fiber.StatusUnauthorized, "Token expired", nil, err)
		case err != nil:
			return NewAppError(fiber.StatusUnauthorized, "Invalid token", nil, err)
		case m.jwt.IsRefreshToken(claims):
			return NewAppError(fiber.StatusUnauthorized, "Invalid token", nil, nil)
		}

		c.Locals(ctxRecruiterKey, Recruiter{ID: claims.UserID, Email: claims.Email, Name: claims.Name})
		return c.Next()
	}
}

func CurrentRecruiter(c fiber.Ctx) (Recruiter, bool) {
	r, ok := c.Locals(ctxRecruiterKey).(Recruiter)
	return r, ok && r.ID != uuid.Nil
}

func UserID(c fiber.Ctx) (uuid.UUID, bool) {
	r, ok := CurrentRecruiter(c)
	return r.ID, ok
}

// Author is the name recorded on history entries and notes: the recruiter's
// name, then their email.
func Author(c fiber.Ctx) string {
	r, _ := CurrentRecruiter(c)
	if name := strings.TrimSpace(r.Name); name != "" {
		return name
	}
	if r.Email != "" {
		return r.Email
	}
	return DefaultAuthor
}

// BearerToken extracts the token from an "Authorization: Bearer ..." value.
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
