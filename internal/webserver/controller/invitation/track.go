package invitation

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sondeolabs/convoca/internal/model"
	"github.com/sondeolabs/convoca/internal/notification"
)

// trackingPixel is a transparent 1x1 GIF answered on open tracking.
var trackingPixel = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00,
	0x00, 0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0x21, 0xf9, 0x04, 0x01, 0x00,
	0x00, 0x00, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00,
	0x00, 0x02, 0x02, 0x44, 0x01, 0x00, 0x3b,
}

// Open is the tracking-pixel endpoint embedded in invitation emails. The
// transition is a no-op unless the invitation is exactly in sent, so
// duplicated pixel loads are harmless.
func (ctrl *Controller) Open(c *fiber.Ctx) error {
	invitation, err := ctrl.invitations.FindByToken(c.Params("token"))
	if err != nil {
		return fiber.ErrInternalServerError
	}
	if invitation == nil {
		return fiber.ErrNotFound
	}

	now := time.Now().UTC()
	if _, err := ctrl.invitations.Transition(invitation, model.EventMarkOpened, now); err != nil {
		return fiber.ErrInternalServerError
	}

	ctrl.recordClientInfo(c, invitation)

	c.Set(fiber.HeaderContentType, "image/gif")
	return c.Send(trackingPixel)
}

// Start records that the recipient began responding.
func (ctrl *Controller) Start(c *fiber.Ctx) error {
	return ctrl.track(c, model.EventMarkStarted)
}

// Complete closes the invitation, cancels any reminders still queued and
// queues a thank-you notice for the recipient.
func (ctrl *Controller) Complete(c *fiber.Ctx) error {
	invitation, err := ctrl.invitations.FindByToken(c.Params("token"))
	if err != nil {
		return fiber.ErrInternalServerError
	}
	if invitation == nil {
		return fiber.ErrNotFound
	}

	alreadyCompleted := invitation.Status == model.StatusCompleted

	now := time.Now().UTC()
	if _, err := ctrl.invitations.Transition(invitation, model.EventMarkCompleted, now); err != nil {
		return fiber.ErrInternalServerError
	}

	// markCompleted replays unconditionally, so gate the queue work on the
	// prior status: one reminder sweep and one thank-you per completion,
	// however often the webhook is delivered.
	if !alreadyCompleted {
		// Eager cancellation. The dispatch-time gate would drop these anyway,
		// this just keeps the queue clean.
		ctrl.queue.CancelByTarget(model.TargetInvitation, invitation.UUID)
		ctrl.enqueueCompletionNotice(invitation, now)
	}

	return c.JSON(fiber.Map{"status": invitation.Status})
}

func (ctrl *Controller) enqueueCompletionNotice(invitation *model.Invitation, now time.Time) {
	campaign, err := ctrl.campaigns.FindByUUID(invitation.CampaignID)
	if err != nil || campaign == nil {
		return
	}

	name, locale := ctrl.recipientDetails(invitation)
	kind, body, err := notification.Encode(notification.CompletionPayload{
		CampaignName:  campaign.Name,
		RecipientName: name,
		Locale:        locale,
	})
	if err != nil {
		log.Printf("error encoding completion payload: %s\n", err)
		return
	}

	job := &model.NotificationJob{
		UUID:         uuid.NewString(),
		CompanyID:    invitation.CompanyID,
		TargetType:   model.TargetInvitation,
		TargetID:     invitation.UUID,
		Channel:      model.ChannelEmail,
		Priority:     model.PriorityLow,
		Status:       model.JobPending,
		ScheduledFor: now,
		MaxRetries:   model.DefaultMaxRetries,
		PayloadKind:  kind,
		Payload:      body,
	}
	if err := ctrl.queue.Enqueue(job); err != nil {
		log.Printf("error queueing completion notice for %s: %s\n", invitation.UUID, err)
	}
}

func (ctrl *Controller) track(c *fiber.Ctx, event model.Event) error {
	invitation, err := ctrl.invitations.FindByToken(c.Params("token"))
	if err != nil {
		return fiber.ErrInternalServerError
	}
	if invitation == nil {
		return fiber.ErrNotFound
	}

	now := time.Now().UTC()
	if _, err := ctrl.invitations.Transition(invitation, event, now); err != nil {
		return fiber.ErrInternalServerError
	}

	return c.JSON(fiber.Map{"status": invitation.Status})
}

// recordClientInfo keeps advisory delivery metadata. Never load-bearing,
// errors are swallowed inside the repository.
func (ctrl *Controller) recordClientInfo(c *fiber.Ctx, invitation *model.Invitation) {
	info, err := json.Marshal(map[string]string{
		"user_agent": c.Get(fiber.HeaderUserAgent),
		"ip":         c.IP(),
	})
	if err != nil {
		return
	}
	ctrl.invitations.AppendMetadata(invitation, string(info))
}
