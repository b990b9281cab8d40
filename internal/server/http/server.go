// Package http exposes the authentication flows over a fiber HTTP API.
package http

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/obs"
	"github.com/dmitrijs2005/authkeeper/internal/server/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

const shutdownTimeout = 5 * time.Second

// AuthService is the part of services.AuthService the handlers call.
type AuthService interface {
	Register(ctx context.Context, in services.RegisterInput) (*services.AuthResult, error)
	Login(ctx context.Context, in services.LoginInput) (*services.AuthResult, error)
	Refresh(ctx context.Context, in services.RefreshInput) (*models.TokenPair, error)
	Profile(ctx context.Context, userID string) (*models.Profile, error)
}

type TokenVerifier interface {
	ParseAccessToken(token string) (*auth.Claims, error)
}

type Server struct {
	app      *fiber.App
	addr     string
	svc      AuthService
	verifier TokenVerifier
	metrics  *obs.Metrics
	log      logging.Logger
}

// NewServer builds the fiber app and registers every route. metrics may be
// nil, in which case /metrics is not served.
func NewServer(addr string, svc AuthService, verifier TokenVerifier, metrics *obs.Metrics, log logging.Logger) *Server {
	s := &Server{
		addr:     addr,
		svc:      svc,
		verifier: verifier,
		metrics:  metrics,
		log:      log.With("module", "http"),
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "authkeeper",
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})

	s.app.Use(requestid.New())
	s.app.Use(s.observe)
	s.app.Use(recover.New())

	s.routes()
	return s
}

func (s *Server) routes() {
	v1 := s.app.Group("/v1")

	v1.Get("/status", func(c *fiber.Ctx) error { return c.SendString("OK") })

	authGroup := v1.Group("/auth")
	authGroup.Post("/register", s.register)
	authGroup.Post("/login", s.login)
	authGroup.Post("/refresh-token", s.refresh)

	v1.Get("/users/profile", s.requireAuth, s.profile)

	if s.metrics != nil {
		s.app.Get("/metrics", adaptor.HTTPHandler(s.metrics.Handler()))
	}
}

// App returns the underlying fiber app, e.g. for app.Test.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run listens on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info(ctx, "http server listening", "addr", ln.Addr().String())
		errCh <- s.app.Listener(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.app.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		s.log.Info(ctx, "http server stopped")
		return nil
	}
}
