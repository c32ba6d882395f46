package campaign

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sondeolabs/convoca/internal/model"
	"github.com/sondeolabs/convoca/internal/sendtime"
)

// SendTimes answers the advisory optimal send schedule derived from the
// company's engagement history. Operators see it next to the operative
// reminder cadence; the two may legitimately disagree.
func (ctrl *Controller) SendTimes(c *fiber.Ctx) error {
	session := c.Locals("Session").(model.User)

	campaign, err := ctrl.campaigns.FindByUUID(c.Params("uuid"))
	if err != nil {
		return fiber.ErrInternalServerError
	}
	if campaign == nil || campaign.CompanyID != session.CompanyID {
		return fiber.NewError(fiber.StatusNotFound, "campaign not found")
	}

	now := time.Now().UTC()
	history, err := ctrl.invitations.SentHistory(session.CompanyID, now.Add(-sendtime.Window))
	if err != nil {
		return fiber.ErrInternalServerError
	}

	analyzed := sendtime.Analyze(history)

	return c.JSON(fiber.Map{
		"optimal_initial_send_time": sendtime.OptimalInitialSendTime(analyzed, now),
		"optimal_reminder_times":    sendtime.OptimalReminderTimes(analyzed, now),
		"samples":                   analyzed.Samples(),
	})
}
