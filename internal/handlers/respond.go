package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"postsvc/dto"
	"postsvc/internal/apperr"
)

// respondError maps the domain error taxonomy onto HTTP statuses. Upstream
// failure detail stays out of response bodies.
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, apperr.ErrInvalidRequest):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Message: err.Error()})
	case errors.Is(err, apperr.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Message: err.Error()})
	case errors.Is(err, apperr.ErrAccessDenied):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Message: err.Error()})
	case errors.Is(err, apperr.ErrUnimplemented):
		return c.Status(fiber.StatusNotImplemented).JSON(dto.ErrorResponse{Message: err.Error()})
	case errors.Is(err, apperr.ErrDependency):
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Message: "upstream dependency failed"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Message: "internal error"})
	}
}

// pageParam parses the :page route segment.
func pageParam(c *fiber.Ctx) (int, error) {
	page, err := strconv.Atoi(c.Params("page"))
	if err != nil {
		return 0, apperr.InvalidRequest("page must be a number")
	}
	return page, nil
}
