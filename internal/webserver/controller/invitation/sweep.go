package invitation

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// SweepExpired runs the expiry sweep on demand, the hook external cron
// systems call. Idempotent, rows already expired are not matched again.
func (ctrl *Controller) SweepExpired(c *fiber.Ctx) error {
	expired, err := ctrl.invitations.MarkExpiredInvitations(time.Now().UTC())
	if err != nil {
		return fiber.ErrInternalServerError
	}

	return c.JSON(fiber.Map{"expired": expired})
}
