package campaign

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sondeolabs/convoca/internal/model"
)

// Participation answers the funnel snapshot for one campaign.
func (ctrl *Controller) Participation(c *fiber.Ctx) error {
	session := c.Locals("Session").(model.User)

	campaign, err := ctrl.campaigns.FindByUUID(c.Params("uuid"))
	if err != nil {
		return fiber.ErrInternalServerError
	}
	if campaign == nil || campaign.CompanyID != session.CompanyID {
		return fiber.NewError(fiber.StatusNotFound, "campaign not found")
	}

	snapshot, err := ctrl.tracker.Compute(campaign.UUID, session.CompanyID)
	if err != nil {
		return fiber.ErrInternalServerError
	}

	return c.JSON(snapshot)
}
