package server

import (
	"agora/internal/models"
	"agora/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	ctx := c.UserContext()
	caller := callerIdentity(c)

	var req struct {
		Content string `json:"content"`
		Private bool   `json:"private"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	ctx, span := observability.TraceEngineOperation(ctx, "create_post", caller)
	defer span.End()

	post, err := s.engine.CreatePost(ctx, caller, req.Content, req.Private)
	if err != nil {
		return respondEngineError(c, "create_post", err)
	}
	recordSuccess(c, "create_post")

	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	ctx := c.UserContext()
	caller := callerIdentity(c)

	id, err := s.parsePostID(c)
	if err != nil {
		return nil
	}

	post, err := s.engine.GetPost(ctx, caller, id)
	if err != nil {
		return respondEngineError(c, "get_post", err)
	}

	return c.JSON(post)
}
