package server

import (
	"agora/internal/models"
	"agora/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// CreateComment handles POST /api/posts/:id/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	ctx := c.UserContext()
	caller := callerIdentity(c)

	id, err := s.parsePostID(c)
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	ctx, span := observability.TraceEngineOperation(ctx, "add_comment", caller)
	defer span.End()

	comment, err := s.engine.AddComment(ctx, caller, id, req.Content)
	if err != nil {
		return respondEngineError(c, "add_comment", err)
	}
	recordSuccess(c, "add_comment")

	return c.Status(fiber.StatusCreated).JSON(comment)
}

// GetComments handles GET /api/posts/:id/comments
func (s *Server) GetComments(c *fiber.Ctx) error {
	ctx := c.UserContext()
	caller := callerIdentity(c)

	id, err := s.parsePostID(c)
	if err != nil {
		return nil
	}

	comments, err := s.engine.GetComments(ctx, caller, id)
	if err != nil {
		return respondEngineError(c, "get_comments", err)
	}

	return c.JSON(fiber.Map{
		"post_id":  id,
		"comments": comments,
		"count":    len(comments),
	})
}
