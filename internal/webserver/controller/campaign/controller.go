package campaign

import (
	"time"

	"github.com/sondeolabs/convoca/internal/model"
	"github.com/sondeolabs/convoca/internal/participation"
)

type campaignsRepository interface {
	FindByUUID(uuid string) (*model.Campaign, error)
}

type invitationsRepository interface {
	SentHistory(companyID string, since time.Time) ([]model.Invitation, error)
}

type Controller struct {
	campaigns   campaignsRepository
	invitations invitationsRepository
	tracker     *participation.Tracker
}

func NewController(campaigns campaignsRepository, invitations invitationsRepository, tracker *participation.Tracker) *Controller {
	return &Controller{
		campaigns:   campaigns,
		invitations: invitations,
		tracker:     tracker,
	}
}
