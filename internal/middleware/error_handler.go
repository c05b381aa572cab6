package middleware

import (
	"errors"
	"log"

	"carrent/internal/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// ErrorHandler renders every error returned by a handler as
// {"error": {"name", "message", "details"}}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	if appErr, ok := apperror.As(err); ok {
		return c.Status(appErr.Status()).JSON(appErr.Envelope())
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(apperror.Body{Error: apperror.Detail{
			Name:    "HttpError",
			Message: fiberErr.Message,
		}})
	}

	log.Printf("Unhandled error on %s %s: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(apperror.Body{Error: apperror.Detail{
		Name:    "InternalServerError",
		Message: utils.StatusMessage(fiber.StatusInternalServerError),
	}})
}
