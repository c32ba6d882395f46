package model

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/sondeolabs/convoca/internal/result"
	"gorm.io/gorm"
)

type InvitationRepository struct {
	DB *gorm.DB
}

// Create persists a new invitation. The partial unique index on
// (campaign_id, recipient_email) over non-terminal rows backs the duplicate
// check, so a concurrent insert for the same pair cannot slip through.
func (r *InvitationRepository) Create(invitation *Invitation) error {
	active, err := r.FindActive(invitation.CampaignID, invitation.RecipientEmail)
	if err != nil {
		return err
	}
	if active != nil {
		return ErrDuplicateInvitation
	}

	if res := r.DB.Create(invitation); res.Error != nil {
		if strings.Contains(res.Error.Error(), "UNIQUE constraint failed") {
			return ErrDuplicateInvitation
		}
		log.Printf("error creating invitation: %s\n", res.Error)
		return res.Error
	}
	return nil
}

func (r *InvitationRepository) FindByToken(token string) (*Invitation, error) {
	return r.find("token", token)
}

func (r *InvitationRepository) FindByUUID(uuid string) (*Invitation, error) {
	return r.find("uuid", uuid)
}

// FindActive returns the non-terminal invitation for a (campaign, recipient)
// pair, if any.
func (r *InvitationRepository) FindActive(campaignID, recipientEmail string) (*Invitation, error) {
	var invitation Invitation

	res := r.DB.
		Where("campaign_id = ? AND recipient_email = ?", campaignID, recipientEmail).
		Where("status NOT IN ?", TerminalStatuses()).
		First(&invitation)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &invitation, res.Error
}

// Transition applies a lifecycle event and persists the invitation when the
// event actually changed it.
func (r *InvitationRepository) Transition(invitation *Invitation, event Event, now time.Time) (bool, error) {
	changed, err := invitation.Apply(event, now)
	if err != nil || !changed {
		return changed, err
	}

	if res := r.DB.Save(invitation); res.Error != nil {
		log.Printf("error updating invitation %s: %s\n", invitation.UUID, res.Error)
		return false, res.Error
	}
	return true, nil
}

// AppendMetadata merges delivery/client tracking info into the invitation.
// Advisory only, failures are logged and swallowed.
func (r *InvitationRepository) AppendMetadata(invitation *Invitation, metadata string) {
	invitation.Metadata = metadata
	if res := r.DB.Model(invitation).Update("metadata", metadata); res.Error != nil {
		log.Printf("error saving invitation metadata: %s\n", res.Error)
	}
}

// IncrementReminder bumps the reminder counter and stamps the send time.
func (r *InvitationRepository) IncrementReminder(invitation *Invitation, now time.Time) error {
	invitation.ReminderCount++
	invitation.LastReminderSent = &now

	res := r.DB.Model(invitation).Updates(map[string]interface{}{
		"reminder_count":     invitation.ReminderCount,
		"last_reminder_sent": now,
	})
	if res.Error != nil {
		log.Printf("error incrementing reminder count for %s: %s\n", invitation.UUID, res.Error)
	}
	return res.Error
}

// MarkExpiredInvitations transitions every overdue, non-terminal invitation to
// expired. Safe to re-run, rows already expired are not matched again.
func (r *InvitationRepository) MarkExpiredInvitations(now time.Time) (int64, error) {
	res := r.DB.Model(&Invitation{}).
		Where("status NOT IN ?", TerminalStatuses()).
		Where("expires_at < ?", now).
		Update("status", StatusExpired)
	if res.Error != nil {
		log.Printf("error expiring invitations: %s\n", res.Error)
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// List returns one page of a company's invitations, newest first.
func (r *InvitationRepository) List(companyID string, page, resultsPerPage int) (result.Paginated[[]Invitation], error) {
	var invitations []Invitation

	res := r.DB.
		Where("company_id = ?", companyID).
		Scopes(Paginate(page, resultsPerPage)).
		Order("created_at DESC").
		Find(&invitations)
	if res.Error != nil {
		log.Printf("error listing invitations: %s\n", res.Error)
		return result.Paginated[[]Invitation]{}, res.Error
	}

	var total int64
	r.DB.Model(&Invitation{}).Where("company_id = ?", companyID).Count(&total)

	return result.NewPaginated(resultsPerPage, page, int(total), invitations), nil
}

// ByCampaign returns every invitation of a campaign, restricted to the
// caller's company scope.
func (r *InvitationRepository) ByCampaign(campaignID, companyID string) ([]Invitation, error) {
	var invitations []Invitation

	res := r.DB.
		Where("campaign_id = ? AND company_id = ?", campaignID, companyID).
		Find(&invitations)
	if res.Error != nil {
		log.Printf("error listing campaign invitations: %s\n", res.Error)
		return nil, res.Error
	}
	return invitations, nil
}

// SentHistory returns a company's invitations sent since the given time,
// the raw material for send-time analysis.
func (r *InvitationRepository) SentHistory(companyID string, since time.Time) ([]Invitation, error) {
	var invitations []Invitation

	res := r.DB.
		Where("company_id = ? AND sent_at IS NOT NULL AND sent_at >= ?", companyID, since).
		Find(&invitations)
	if res.Error != nil {
		log.Printf("error loading sent history: %s\n", res.Error)
		return nil, res.Error
	}
	return invitations, nil
}

// DeleteByCompany removes every invitation of a tenant. Part of the
// best-effort offboarding purge.
func (r *InvitationRepository) DeleteByCompany(companyID string) error {
	res := r.DB.Where("company_id = ?", companyID).Delete(&Invitation{})
	if res.Error != nil {
		log.Printf("error purging invitations for company %s: %s\n", companyID, res.Error)
	}
	return res.Error
}

func (r *InvitationRepository) find(field, value string) (*Invitation, error) {
	var invitation Invitation

	res := r.DB.Where(fmt.Sprintf("%s = ?", field), value).First(&invitation)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &invitation, res.Error
}
