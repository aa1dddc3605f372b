package serverutils

import (
	"errors"

	"ai-docrouter-be/pkg/document"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware turns any error returned further down the chain into
// the standard response envelope.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code := StatusFor(err)
		return ctx.Status(code).JSON(ErrorResponse(code, err.Error()))
	}
}

func StatusFor(err error) int {
	var fiberErr *fiber.Error
	var validationErr *ValidationError

	switch {
	case errors.Is(err, document.ErrMalformedInput), errors.Is(err, document.ErrUnsupportedFormat):
		return fiber.StatusUnprocessableEntity
	case errors.As(err, &validationErr):
		return fiber.StatusBadRequest
	case errors.As(err, &fiberErr):
		return fiberErr.Code
	default:
		return fiber.StatusInternalServerError
	}
}
