package invitation

import (
	"errors"
	"log"
	"net/mail"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sondeolabs/convoca/internal/model"
	"github.com/sondeolabs/convoca/internal/notification"
	"github.com/sondeolabs/convoca/internal/reminder"
	"github.com/sondeolabs/convoca/internal/sendtime"
	"github.com/sondeolabs/convoca/internal/token"
)

type createRequest struct {
	CampaignID         string              `json:"campaign_id"`
	RecipientIDs       []string            `json:"recipient_ids"`
	Emails             []string            `json:"emails"`
	CustomMessage      string              `json:"custom_message"`
	Rules              []notification.Rule `json:"personalization_rules"`
	ExpiresAt          *time.Time          `json:"expires_at"`
	SendImmediately    bool                `json:"send_immediately"`
	UseOptimalSendTime bool                `json:"use_optimal_send_time"`
}

type createdInvitation struct {
	UUID      string    `json:"id"`
	Email     string    `json:"email"`
	Status    string    `json:"status"`
	ExpiresAt time.Time `json:"expires_at"`
}

type skippedRecipient struct {
	Email  string `json:"email"`
	Reason string `json:"reason"`
}

type recipient struct {
	id     string
	email  string
	name   string
	locale string
	attrs  map[string]string
}

// Create batch-creates invitations for a campaign. Recipients that already
// hold an active invitation are skipped and reported, never aborting the
// batch. Dispatch happens asynchronously: this handler only enqueues.
func (ctrl *Controller) Create(c *fiber.Ctx) error {
	session := c.Locals("Session").(model.User)

	var request createRequest
	if err := c.BodyParser(&request); err != nil {
		return fiber.ErrBadRequest
	}

	if len(request.RecipientIDs) == 0 && len(request.Emails) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no recipients given")
	}

	campaign, err := ctrl.campaigns.FindByUUID(request.CampaignID)
	if err != nil {
		return fiber.ErrInternalServerError
	}
	if campaign == nil || campaign.CompanyID != session.CompanyID {
		return fiber.NewError(fiber.StatusNotFound, "campaign not found")
	}

	now := time.Now().UTC()

	expiresAt := campaign.DefaultExpiry(now)
	if request.ExpiresAt != nil {
		expiresAt = request.ExpiresAt.UTC()
	}
	if !expiresAt.After(now) {
		return fiber.NewError(fiber.StatusBadRequest, "expiry must be in the future")
	}

	sendAt := now
	if !request.SendImmediately && request.UseOptimalSendTime {
		sendAt = ctrl.optimalSendTime(session.CompanyID, now)
	}

	recipients, skipped := ctrl.resolveRecipients(request)

	created := []createdInvitation{}
	for _, recipient := range recipients {
		invitation, reason := ctrl.createOne(campaign, recipient, request, session.CompanyID, sendAt, expiresAt, now)
		if reason != "" {
			skipped = append(skipped, skippedRecipient{Email: recipient.email, Reason: reason})
			continue
		}
		created = append(created, createdInvitation{
			UUID:      invitation.UUID,
			Email:     invitation.RecipientEmail,
			Status:    string(invitation.Status),
			ExpiresAt: invitation.ExpiresAt,
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"created": created,
		"skipped": skipped,
	})
}

func (ctrl *Controller) resolveRecipients(request createRequest) ([]recipient, []skippedRecipient) {
	recipients := []recipient{}
	skipped := []skippedRecipient{}

	if len(request.RecipientIDs) > 0 {
		resolved, unresolved := ctrl.resolveDirectory(request.RecipientIDs)
		recipients = append(recipients, resolved...)
		skipped = append(skipped, unresolved...)
	}

	// Bare email addresses cover recipients without a directory entry yet,
	// the user-onboarding variant.
	for _, email := range request.Emails {
		if _, err := mail.ParseAddress(email); err != nil {
			skipped = append(skipped, skippedRecipient{Email: email, Reason: "invalid email address"})
			continue
		}
		recipients = append(recipients, recipient{
			email: email,
			attrs: map[string]string{"email": email},
		})
	}

	return recipients, skipped
}

// resolveDirectory maps recipient ids to directory entries. A failed lookup
// reports every requested id as skipped so no recipient silently vanishes
// from the batch response.
func (ctrl *Controller) resolveDirectory(ids []string) ([]recipient, []skippedRecipient) {
	users, err := ctrl.users.FindByUuids(ids)
	if err != nil {
		log.Printf("error resolving recipients: %s\n", err)
		skipped := make([]skippedRecipient, 0, len(ids))
		for _, id := range ids {
			skipped = append(skipped, skippedRecipient{Email: id, Reason: "directory lookup failed"})
		}
		return nil, skipped
	}

	found := map[string]model.User{}
	for _, user := range users {
		found[user.Uuid] = user
	}

	recipients := []recipient{}
	skipped := []skippedRecipient{}
	for _, id := range ids {
		user, ok := found[id]
		if !ok {
			skipped = append(skipped, skippedRecipient{Email: id, Reason: "recipient not found"})
			continue
		}
		recipients = append(recipients, recipient{
			id:     user.Uuid,
			email:  user.Email,
			name:   user.Name,
			locale: user.Locale,
			attrs: map[string]string{
				"email":      user.Email,
				"name":       user.Name,
				"department": user.Department,
				"role":       roleName(user.Role),
			},
		})
	}
	return recipients, skipped
}

// createOne persists one invitation and enqueues its initial send plus the
// reminder sequence. A non-empty reason means the recipient was skipped.
func (ctrl *Controller) createOne(campaign *model.Campaign, recipient recipient, request createRequest, companyID string, sendAt, expiresAt, now time.Time) (*model.Invitation, string) {
	tok, err := token.Issue()
	if err != nil {
		return nil, "could not issue token"
	}

	invitation := &model.Invitation{
		UUID:           uuid.NewString(),
		CampaignID:     campaign.UUID,
		CompanyID:      companyID,
		RecipientID:    recipient.id,
		RecipientEmail: recipient.email,
		Token:          tok,
		Status:         model.StatusPending,
		ExpiresAt:      expiresAt,
	}

	if err := ctrl.invitations.Create(invitation); err != nil {
		if errors.Is(err, model.ErrDuplicateInvitation) {
			return nil, "duplicate"
		}
		return nil, "could not create invitation"
	}

	message := notification.SelectMessage(request.Rules, recipient.attrs, request.CustomMessage)

	link := token.BuildLink(ctrl.config.BaseURL, campaignRoute(campaign.Kind), tok)
	kind, body, err := notification.Encode(notification.InvitationPayload{
		CampaignName:  campaign.Name,
		CampaignKind:  string(campaign.Kind),
		RecipientName: recipient.name,
		Link:          link,
		CustomMessage: ctrl.composer.Sanitize(message),
		Locale:        recipient.locale,
	})
	if err != nil {
		log.Printf("error encoding invitation payload: %s\n", err)
		return invitation, ""
	}

	err = ctrl.queue.Enqueue(&model.NotificationJob{
		UUID:         uuid.NewString(),
		CompanyID:    companyID,
		TargetType:   model.TargetInvitation,
		TargetID:     invitation.UUID,
		Channel:      model.ChannelEmail,
		Priority:     model.PriorityHigh,
		Status:       model.JobPending,
		ScheduledFor: sendAt,
		MaxRetries:   model.DefaultMaxRetries,
		PayloadKind:  kind,
		Payload:      body,
	})
	if err != nil {
		// An invitation whose initial send never made the queue would sit in
		// pending forever and block a retried batch through the duplicate
		// guard. Cancel it so the recipient can be re-invited.
		log.Printf("error queueing initial send for %s: %s\n", invitation.UUID, err)
		if _, err := ctrl.invitations.Transition(invitation, model.EventCancel, now); err != nil {
			log.Printf("error cancelling unqueued invitation %s: %s\n", invitation.UUID, err)
		}
		return nil, "could not queue initial send"
	}

	ctrl.scheduleReminders(campaign, invitation, recipient, link, sendAt, now)

	return invitation, ""
}

func (ctrl *Controller) scheduleReminders(campaign *model.Campaign, invitation *model.Invitation, recipient recipient, link string, sendAt, now time.Time) {
	for _, planned := range reminder.Schedule(sendAt, invitation.ExpiresAt, now) {
		kind, body, err := notification.Encode(notification.ReminderPayload{
			CampaignName:  campaign.Name,
			RecipientName: recipient.name,
			Link:          link,
			Index:         planned.Index,
			ExpiresAt:     invitation.ExpiresAt,
			Locale:        recipient.locale,
		})
		if err != nil {
			log.Printf("error encoding reminder payload: %s\n", err)
			continue
		}

		err = ctrl.queue.Enqueue(&model.NotificationJob{
			UUID:         uuid.NewString(),
			CompanyID:    invitation.CompanyID,
			TargetType:   model.TargetInvitation,
			TargetID:     invitation.UUID,
			Channel:      model.ChannelEmail,
			Priority:     planned.Priority,
			Status:       model.JobPending,
			ScheduledFor: planned.ScheduledFor,
			MaxRetries:   model.DefaultMaxRetries,
			PayloadKind:  kind,
			Payload:      body,
		})
		if err != nil {
			log.Printf("error queueing reminder %d for %s: %s\n", planned.Index, invitation.UUID, err)
		}
	}
}

// optimalSendTime is advisory: any failure falls back to sending now rather
// than blocking creation.
func (ctrl *Controller) optimalSendTime(companyID string, now time.Time) time.Time {
	history, err := ctrl.invitations.SentHistory(companyID, now.Add(-sendtime.Window))
	if err != nil {
		return now
	}
	return sendtime.OptimalInitialSendTime(sendtime.Analyze(history), now)
}

func campaignRoute(kind model.CampaignKind) string {
	switch kind {
	case model.KindMicroclimate:
		return "microclimates"
	case model.KindOnboarding:
		return "onboarding"
	default:
		return "surveys"
	}
}

func roleName(role int) string {
	if role == model.RoleAdmin {
		return "admin"
	}
	return "employee"
}
