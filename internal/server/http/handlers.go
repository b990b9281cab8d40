package http

import (
	"github.com/dmitrijs2005/authkeeper/internal/server/services"
	"github.com/dmitrijs2005/authkeeper/internal/server/validation"
	"github.com/gofiber/fiber/v2"
)

type validator interface {
	Validate() error
}

// bind decodes the JSON body into req and validates it. An empty body is
// treated as an empty object.
func bind(c *fiber.Ctx, req validator) error {
	if len(c.Body()) > 0 {
		if err := c.BodyParser(req); err != nil {
			return errInvalidBody
		}
	}
	return req.Validate()
}

func (s *Server) register(c *fiber.Ctx) error {
	var req validation.RegisterRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := s.svc.Register(c.UserContext(), services.RegisterInput{
		Email:    validation.Value(req.Email),
		Password: validation.Value(req.Password),
		Name:     validation.Value(req.Name),
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

func (s *Server) login(c *fiber.Ctx) error {
	var req validation.LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := s.svc.Login(c.UserContext(), services.LoginInput{
		Email:    validation.Value(req.Email),
		Password: validation.Value(req.Password),
	})
	if err != nil {
		return err
	}
	return c.JSON(res)
}

func (s *Server) refresh(c *fiber.Ctx) error {
	var req validation.RefreshRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	pair, err := s.svc.Refresh(c.UserContext(), services.RefreshInput{
		Email:        validation.Value(req.Email),
		RefreshToken: validation.Value(req.RefreshToken),
	})
	if err != nil {
		return err
	}
	return c.JSON(pair)
}

func (s *Server) profile(c *fiber.Ctx) error {
	p, err := s.svc.Profile(c.UserContext(), userIDFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(p)
}
