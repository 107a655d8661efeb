package server

import (
	"errors"
	"testing"

	"agora/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"already exists", models.NewAlreadyExistsError("addr-a"), fiber.StatusConflict},
		{"already reacted", models.NewAlreadyReactedError(1), fiber.StatusConflict},
		{"self follow", models.NewSelfFollowError(), fiber.StatusConflict},
		{"already following", models.NewAlreadyFollowingError("addr-a"), fiber.StatusConflict},
		{"not following", models.NewNotFollowingError("addr-a"), fiber.StatusConflict},
		{"profile required", models.NewProfileRequiredError("addr-a"), fiber.StatusForbidden},
		{"private access denied", models.NewPrivateAccessDeniedError(1), fiber.StatusForbidden},
		{"comment forbidden", models.NewCommentForbiddenError(1), fiber.StatusForbidden},
		{"not found", models.NewNotFoundError("post", 42), fiber.StatusNotFound},
		{"validation", models.NewValidationError("bad input"), fiber.StatusBadRequest},
		{"unauthorized", models.NewUnauthorizedError("no token"), fiber.StatusUnauthorized},
		{"internal", models.NewInternalError(errors.New("boom")), fiber.StatusInternalServerError},
		{"plain error", errors.New("untyped"), fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusForError(tt.err))
		})
	}
}
