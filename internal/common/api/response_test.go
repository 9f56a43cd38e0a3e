package api

import (
	"errors"
	"fmt"
	"testing"

	"go-gamifier/internal/common/errs"

	"github.com/gofiber/fiber/v2"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errs.NotFound("User not found: %s", "x"), fiber.StatusNotFound},
		{errs.Conflict("dup"), fiber.StatusConflict},
		{errs.InvalidState("already approved"), fiber.StatusConflict},
		{errs.Forbidden("no"), fiber.StatusForbidden},
		{errs.Validation("bad"), fiber.StatusBadRequest},
		{fmt.Errorf("line 3: %w", errs.Validation("bad")), fiber.StatusBadRequest},
		{fiber.ErrUnauthorized, fiber.StatusUnauthorized},
		{errors.New("boom"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := StatusFor(tt.err); got != tt.want {
			t.Errorf("StatusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
