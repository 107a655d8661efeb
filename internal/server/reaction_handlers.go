package server

import (
	"agora/internal/models"
	"agora/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// CreateReaction handles POST /api/posts/:id/reactions
//
// A reaction is permanent: each identity gets exactly one per post, and a
// like credits the post author's reward balance before the reaction lands.
func (s *Server) CreateReaction(c *fiber.Ctx) error {
	ctx := c.UserContext()
	caller := callerIdentity(c)

	id, err := s.parsePostID(c)
	if err != nil {
		return nil
	}

	var req struct {
		Liked *bool `json:"liked"`
	}
	if err := c.BodyParser(&req); err != nil || req.Liked == nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Field 'liked' is required"))
	}

	ctx, span := observability.TraceEngineOperation(ctx, "react", caller)
	defer span.End()

	post, err := s.engine.React(ctx, caller, id, *req.Liked)
	if err != nil {
		return respondEngineError(c, "react", err)
	}
	recordSuccess(c, "react")

	return c.Status(fiber.StatusCreated).JSON(post)
}
