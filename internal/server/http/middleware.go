package http

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

type ctxKey string

const userIDKey ctxKey = "userID"

// observe logs and measures every request. It renders handler errors itself
// so that the recorded status is the one the client sees. Metrics are
// labelled with the route pattern, not the raw path.
func (s *Server) observe(c *fiber.Ctx) error {
	start := time.Now()
	done := s.metrics.RequestStarted()

	if err := c.Next(); err != nil {
		if herr := s.app.ErrorHandler(c, err); herr != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}

	status := c.Response().StatusCode()
	done(c.Method(), c.Route().Path, status)
	s.log.Debug(c.UserContext(), "request",
		"method", c.Method(),
		"path", c.Path(),
		"status", status,
		"duration", time.Since(start),
		"request_id", requestID(c),
	)
	return nil
}

// requireAuth accepts "Authorization: Bearer <access token>" and stores the
// token subject for the handlers.
func (s *Server) requireAuth(c *fiber.Ctx) error {
	scheme, token, ok := strings.Cut(c.Get(fiber.HeaderAuthorization), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return common.ErrorUnauthorized
	}

	claims, err := s.verifier.ParseAccessToken(strings.TrimSpace(token))
	if err != nil {
		return err
	}

	c.Locals(userIDKey, claims.Subject)
	return c.Next()
}

func userIDFrom(c *fiber.Ctx) string {
	id, _ := c.Locals(userIDKey).(string)
	return id
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals(requestid.ConfigDefault.ContextKey).(string)
	return id
}
