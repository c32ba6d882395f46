package invitation

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sondeolabs/convoca/internal/model"
	"github.com/sondeolabs/convoca/internal/notification"
	"github.com/sondeolabs/convoca/internal/reminder"
	"github.com/sondeolabs/convoca/internal/token"
)

// Resend enqueues an immediate reminder for an existing invitation. Closed
// invitations are rejected outright instead of silently re-sending.
func (ctrl *Controller) Resend(c *fiber.Ctx) error {
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
	if !reminder.CanSend(invitation, now) {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "reminder limit reached or last reminder too recent")
	}

	campaign, err := ctrl.campaigns.FindByUUID(invitation.CampaignID)
	if err != nil || campaign == nil {
		return fiber.ErrInternalServerError
	}

	name, locale := ctrl.recipientDetails(invitation)

	link := token.BuildLink(ctrl.config.BaseURL, campaignRoute(campaign.Kind), invitation.Token)
	kind, body, err := notification.Encode(notification.ReminderPayload{
		CampaignName:  campaign.Name,
		RecipientName: name,
		Link:          link,
		Index:         invitation.ReminderCount,
		ExpiresAt:     invitation.ExpiresAt,
		Locale:        locale,
	})
	if err != nil {
		log.Printf("error encoding resend payload: %s\n", err)
		return fiber.ErrInternalServerError
	}

	job := &model.NotificationJob{
		UUID:         uuid.NewString(),
		CompanyID:    invitation.CompanyID,
		TargetType:   model.TargetInvitation,
		TargetID:     invitation.UUID,
		Channel:      model.ChannelEmail,
		Priority:     model.PriorityHigh,
		Status:       model.JobPending,
		ScheduledFor: now,
		MaxRetries:   model.DefaultMaxRetries,
		PayloadKind:  kind,
		Payload:      body,
	}
	if err := ctrl.queue.Enqueue(job); err != nil {
		return fiber.ErrInternalServerError
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"id":        invitation.UUID,
		"scheduled": job.ScheduledFor,
	})
}
