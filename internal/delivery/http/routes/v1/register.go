package v1

import (
	"hireboard/internal/delivery/http/handler"

	"github.com/gofiber/fiber/v3"
)

type Handlers struct {
	Auth        *handler.AuthHandler
	Jobs        *handler.JobsHandler
	Candidates  *handler.CandidateHandler
	Assessments *handler.AssessmentHandler
	Sessions    *handler.SessionHandler
	Dashboard   *handler.DashboardHandler
}

// Register mounts the v1 API. Public routes go first: group middleware in
// fiber applies to every later route sharing the prefix.
func Register(r fiber.Router, h Handlers, authMw fiber.Handler) {
	if r == nil {
		return
	}

	if h.Auth != nil {
		h.Auth.RegisterRoutes(r.Group("/auth"))
	}
	if h.Sessions != nil {
		h.Sessions.RegisterRoutes(r)
	}
	if h.Assessments != nil {
		h.Assessments.RegisterPublicRoutes(r.Group("/assessments"))
	}

	RegisterUsers(r, h.Auth, authMw)
	RegisterJobs(r, h.Jobs, authMw)
	if h.Candidates != nil {
		h.Candidates.RegisterRoutes(r.Group("/candidates", authMw))
	}
	if h.Assessments != nil {
		h.Assessments.RegisterRoutes(r.Group("/assessments", authMw))
	}
	if h.Dashboard != nil {
		h.Dashboard.RegisterRoutes(r.Group("/dashboard", authMw))
	}
}
