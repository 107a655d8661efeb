package server

import (
	"agora/internal/models"
	"agora/internal/reward"

	"github.com/gofiber/fiber/v2"
)

// GetRewardBalance handles GET /api/rewards/balance
func (s *Server) GetRewardBalance(c *fiber.Ctx) error {
	ctx := c.UserContext()
	caller := callerIdentity(c)

	balance, err := s.rewards.Balance(ctx, caller)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"identity": caller,
		"balance":  balance,
		"decimals": reward.RewardDecimals,
	})
}
