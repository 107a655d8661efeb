package server

import (
	"agora/internal/models"
	"agora/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// Follow handles POST /api/follows
func (s *Server) Follow(c *fiber.Ctx) error {
	ctx := c.UserContext()
	caller := callerIdentity(c)

	var req struct {
		Target string `json:"target"`
	}
	if err := c.BodyParser(&req); err != nil || req.Target == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Field 'target' is required"))
	}

	ctx, span := observability.TraceEngineOperation(ctx, "follow", caller)
	defer span.End()

	if err := s.engine.Follow(ctx, caller, req.Target); err != nil {
		return respondEngineError(c, "follow", err)
	}
	recordSuccess(c, "follow")

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"follower": caller,
		"target":   req.Target,
	})
}

// Unfollow handles DELETE /api/follows/:target
func (s *Server) Unfollow(c *fiber.Ctx) error {
	ctx := c.UserContext()
	caller := callerIdentity(c)
	target := c.Params("target")

	ctx, span := observability.TraceEngineOperation(ctx, "unfollow", caller)
	defer span.End()

	if err := s.engine.Unfollow(ctx, caller, target); err != nil {
		return respondEngineError(c, "unfollow", err)
	}
	recordSuccess(c, "unfollow")

	return c.JSON(fiber.Map{
		"follower": caller,
		"target":   target,
	})
}
