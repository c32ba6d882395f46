package invitation

import (
	"time"

	"github.com/sondeolabs/convoca/internal/model"
	"github.com/sondeolabs/convoca/internal/notification"
	"github.com/sondeolabs/convoca/internal/result"
)

type invitationsRepository interface {
	Create(invitation *model.Invitation) error
	FindByUUID(uuid string) (*model.Invitation, error)
	FindByToken(token string) (*model.Invitation, error)
	Transition(invitation *model.Invitation, event model.Event, now time.Time) (bool, error)
	AppendMetadata(invitation *model.Invitation, metadata string)
	List(companyID string, page, resultsPerPage int) (result.Paginated[[]model.Invitation], error)
	MarkExpiredInvitations(now time.Time) (int64, error)
	SentHistory(companyID string, since time.Time) ([]model.Invitation, error)
}

type usersRepository interface {
	FindByUuids(uuids []string) ([]model.User, error)
}

type campaignsRepository interface {
	FindByUUID(uuid string) (*model.Campaign, error)
}

type queueRepository interface {
	Enqueue(job *model.NotificationJob) error
	CancelByTarget(targetType, targetID string) error
}

type Config struct {
	BaseURL string
}

type Controller struct {
	invitations invitationsRepository
	users       usersRepository
	campaigns   campaignsRepository
	queue       queueRepository
	composer    *notification.Composer
	config      Config
}

func NewController(invitations invitationsRepository, users usersRepository, campaigns campaignsRepository, queue queueRepository, composer *notification.Composer, cfg Config) *Controller {
	return &Controller{
		invitations: invitations,
		users:       users,
		campaigns:   campaigns,
		queue:       queue,
		composer:    composer,
		config:      cfg,
	}
}

// recipientDetails looks up name and locale for personalization. Recipients
// without a directory entry fall back to the neutral greeting.
func (ctrl *Controller) recipientDetails(invitation *model.Invitation) (name, locale string) {
	if invitation.RecipientID == "" {
		return "", ""
	}
	users, err := ctrl.users.FindByUuids([]string{invitation.RecipientID})
	if err != nil || len(users) != 1 {
		return "", ""
	}
	return users[0].Name, users[0].Locale
}
