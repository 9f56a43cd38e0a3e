package api

import (
	"errors"
	"strconv"

	"go-gamifier/internal/common/errs"

	"github.com/gofiber/fiber/v2"
)

// StatusFor maps an error kind to an HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, errs.ErrConflict), errors.Is(err, errs.ErrInvalidState):
		return fiber.StatusConflict
	case errors.Is(err, errs.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, errs.ErrValidation):
		return fiber.StatusBadRequest
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}

// Error writes {"error": msg} with the status derived from err.
func Error(c *fiber.Ctx, err error) error {
	return c.Status(StatusFor(err)).JSON(fiber.Map{
		"error": err.Error(),
	})
}

// Page reads page/limit query params, 1-based, with limit capped at 100.
func Page(c *fiber.Ctx, defaultLimit int64) (page, limit int64) {
	page, _ = strconv.ParseInt(c.Query("page", "1"), 10, 64)
	limit, _ = strconv.ParseInt(c.Query("limit", strconv.FormatInt(defaultLimit, 10)), 10, 64)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
