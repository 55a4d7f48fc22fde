package handlers

import (
	"errors"
	"fmt"
	"log/slog"

	"toko/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

const serverErrorMessage = "Server error"

// writeError maps a service error to its status and a client-safe message.
// Anything unrecognised is logged and reported as a generic 500.
func writeError(c *fiber.Ctx, err error) error {
	status, message := classify(err)
	if status == fiber.StatusInternalServerError {
		slog.Error("request failed",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Any("err", err))
	}
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrEmailTaken):
		return fiber.StatusBadRequest, "User already exists"
	case errors.Is(err, services.ErrPasswordTooLong):
		return fiber.StatusBadRequest, "Password must be at most 72 bytes"
	case errors.Is(err, services.ErrInvalidCredentials):
		return fiber.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, services.ErrProductNotFound):
		return fiber.StatusNotFound, "Product not found"
	case errors.Is(err, services.ErrInvalidFilter):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrInvalidQuantity):
		return fiber.StatusBadRequest, "Quantity must be between 1 and 10000"
	case errors.Is(err, services.ErrCartConflict):
		return fiber.StatusConflict, "Cart was updated by another request, please retry"
	default:
		return fiber.StatusInternalServerError, serverErrorMessage
	}
}

// parseBody decodes and validates a JSON request body into dst. On failure it
// writes the 400 response itself and returns ok == false.
func parseBody(c *fiber.Ctx, validate *validator.Validate, dst any) (ok bool, err error) {
	if err := c.BodyParser(dst); err != nil {
		slog.Debug("invalid request body", slog.String("path", c.Path()), slog.Any("err", err))
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	if err := validate.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return false, writeError(c, err)
		}
		errorMessages := make(map[string]string, len(validationErrors))
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Validation failed",
			"errors":  errorMessages,
		})
	}
	return true, nil
}

// ErrorHandler is the application-wide Fiber error handler. Unknown routes
// get a 404 JSON body; other framework errors keep their status.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		switch fe.Code {
		case fiber.StatusNotFound, fiber.StatusMethodNotAllowed:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "API endpoint not found",
			})
		case fiber.StatusInternalServerError:
		default:
			return c.Status(fe.Code).JSON(fiber.Map{
				"success": false,
				"message": fe.Message,
			})
		}
	}

	slog.Error("unhandled error", slog.String("method", c.Method()), slog.String("path", c.Path()), slog.Any("err", err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"message": serverErrorMessage,
	})
}
