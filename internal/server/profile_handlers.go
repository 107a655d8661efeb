package server

import (
	"agora/internal/models"
	"agora/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// CreateProfile handles POST /api/profiles
func (s *Server) CreateProfile(c *fiber.Ctx) error {
	ctx := c.UserContext()
	caller := callerIdentity(c)

	var req struct {
		Username string `json:"username"`
		Bio      string `json:"bio"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	ctx, span := observability.TraceEngineOperation(ctx, "create_profile", caller)
	defer span.End()

	profile, err := s.engine.CreateProfile(ctx, caller, req.Username, req.Bio)
	if err != nil {
		return respondEngineError(c, "create_profile", err)
	}
	recordSuccess(c, "create_profile")

	return c.Status(fiber.StatusCreated).JSON(profile)
}

// GetProfile handles GET /api/profiles/:identity
//
// An unregistered identity is not an error: the response carries a zero
// profile with exists=false, so clients can always render follower counts.
func (s *Server) GetProfile(c *fiber.Ctx) error {
	profile := s.engine.GetProfile(c.UserContext(), c.Params("identity"))

	return c.JSON(fiber.Map{
		"identity":       c.Params("identity"),
		"username":       profile.Username,
		"bio":            profile.Bio,
		"follower_count": profile.FollowerCount,
		"exists":         profile.Exists(),
	})
}

// GetFollowers handles GET /api/profiles/:identity/followers
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	identity := c.Params("identity")
	followers := s.engine.ListFollowers(c.UserContext(), identity)

	return c.JSON(fiber.Map{
		"identity":  identity,
		"followers": followers,
		"count":     len(followers),
	})
}

// GetFollowStatus handles GET /api/profiles/:identity/followers/:follower
func (s *Server) GetFollowStatus(c *fiber.Ctx) error {
	identity := c.Params("identity")
	follower := c.Params("follower")
	following := s.engine.IsFollowing(c.UserContext(), identity, follower)

	return c.JSON(fiber.Map{
		"identity":  identity,
		"follower":  follower,
		"following": following,
	})
}
