package invitation

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sondeolabs/convoca/internal/model"
)

// Cancel withdraws an invitation and every queued reminder for it.
func (ctrl *Controller) Cancel(c *fiber.Ctx) error {
	session := c.Locals("Session").(model.User)

	invitation, err := ctrl.invitations.FindByUUID(c.Params("uuid"))
	if err != nil {
		return fiber.ErrInternalServerError
	}
	if invitation == nil || invitation.CompanyID != session.CompanyID {
		return fiber.NewError(fiber.StatusNotFound, "invitation not found")
	}

	if invitation.IsTerminal() {
		return fiber.NewError(fiber.StatusGone, model.ErrTerminalStatus.Error())
	}

	now := time.Now().UTC()
	if _, err := ctrl.invitations.Transition(invitation, model.EventCancel, now); err != nil {
		return fiber.ErrInternalServerError
	}

	ctrl.queue.CancelByTarget(model.TargetInvitation, invitation.UUID)

	return c.JSON(fiber.Map{"status": invitation.Status})
}
