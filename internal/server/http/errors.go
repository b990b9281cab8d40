package http

import (
	"errors"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/validation"
	"github.com/gofiber/fiber/v2"
)

const (
	msgValidation         = "Validation Error"
	msgInvalidBody        = "Invalid request body"
	msgBadCredentials     = "Incorrect email or password"
	msgBadRefreshToken    = "Incorrect email or refreshToken"
	msgUnauthorized       = "Unauthorized"
	msgInternal           = "Internal Server Error"
	msgEmailAlreadyExists = `"email" already exists`
)

var errInvalidBody = errors.New("invalid request body")

type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Errors  any    `json:"errors,omitempty"`
}

// fieldError is a validation failure; Field is the path to the offending
// value.
type fieldError struct {
	Field    []string `json:"field"`
	Location string   `json:"location"`
	Messages []string `json:"messages"`
	Types    []string `json:"types"`
}

// conflictError reports a value that is well formed but already taken.
type conflictError struct {
	Field    string   `json:"field"`
	Location string   `json:"location"`
	Messages []string `json:"messages"`
}

// handleError is the fiber ErrorHandler. It maps the service error taxonomy
// onto status codes; anything unrecognised becomes an opaque 500.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	var (
		verr     *validation.Error
		fiberErr *fiber.Error
	)

	switch {
	case errors.As(err, &verr):
		out := make([]fieldError, 0, len(verr.Errors))
		for _, fe := range verr.Errors {
			out = append(out, fieldError{
				Field:    []string{fe.Field},
				Location: fe.Location,
				Messages: fe.Messages,
				Types:    fe.Types,
			})
		}
		return reply(c, fiber.StatusBadRequest, msgValidation, out)

	case errors.Is(err, errInvalidBody):
		return reply(c, fiber.StatusBadRequest, msgInvalidBody, nil)

	case errors.Is(err, common.ErrEmailExists):
		return reply(c, fiber.StatusConflict, msgValidation, []conflictError{{
			Field:    "email",
			Location: validation.LocationBody,
			Messages: []string{msgEmailAlreadyExists},
		}})

	case errors.Is(err, common.ErrInvalidCredentials):
		return reply(c, fiber.StatusUnauthorized, msgBadCredentials, nil)

	case errors.Is(err, common.ErrInvalidRefreshToken):
		return reply(c, fiber.StatusUnauthorized, msgBadRefreshToken, nil)

	case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, common.ErrInvalidToken):
		return reply(c, fiber.StatusUnauthorized, msgUnauthorized, nil)

	case errors.As(err, &fiberErr):
		return reply(c, fiberErr.Code, fiberErr.Message, nil)
	}

	s.log.Error(c.UserContext(), "request failed",
		"method", c.Method(), "path", c.Path(), "request_id", requestID(c), "error", err)
	return reply(c, fiber.StatusInternalServerError, msgInternal, nil)
}

func reply(c *fiber.Ctx, code int, message string, errs any) error {
	return c.Status(code).JSON(errorBody{Code: code, Message: message, Errors: errs})
}
