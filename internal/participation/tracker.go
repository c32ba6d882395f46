// Package participation aggregates invitation records into the funnel and
// response-rate metrics surfaced on campaign dashboards. Read side only, it
// never mutates records.
package participation

import (
	"sort"

	"github.com/sondeolabs/convoca/internal/model"
)

// Snapshot is the on-demand participation aggregate for one campaign.
type Snapshot struct {
	Total               int                   `json:"total"`
	Sent                int                   `json:"sent"`
	Opened              int                   `json:"opened"`
	Started             int                   `json:"started"`
	Completed           int                   `json:"completed"`
	Bounced             int                   `json:"bounced"`
	Expired             int                   `json:"expired"`
	ParticipationRate   float64               `json:"participation_rate"`
	CompletionRate      float64               `json:"completion_rate"`
	OpenRate            float64               `json:"open_rate"`
	AvgHoursToComplete  float64               `json:"avg_hours_to_complete"`
	DepartmentBreakdown []DepartmentBreakdown `json:"department_breakdown"`
}

// DepartmentBreakdown counts invited vs. completed per department.
type DepartmentBreakdown struct {
	Department string  `json:"department"`
	Invited    int     `json:"invited"`
	Completed  int     `json:"completed"`
	Rate       float64 `json:"rate"`
}

type invitationsRepository interface {
	ByCampaign(campaignID, companyID string) ([]model.Invitation, error)
}

type usersRepository interface {
	DepartmentByEmail(companyID string) (map[string]string, error)
}

type Tracker struct {
	invitations invitationsRepository
	users       usersRepository
}

func NewTracker(invitations invitationsRepository, users usersRepository) *Tracker {
	return &Tracker{
		invitations: invitations,
		users:       users,
	}
}

// Compute builds the snapshot for a campaign, always restricted to the
// caller's company scope.
func (t *Tracker) Compute(campaignID, companyID string) (Snapshot, error) {
	invitations, err := t.invitations.ByCampaign(campaignID, companyID)
	if err != nil {
		return Snapshot{}, err
	}

	departments, err := t.users.DepartmentByEmail(companyID)
	if err != nil {
		return Snapshot{}, err
	}

	snapshot := Snapshot{Total: len(invitations)}
	byDepartment := map[string]*DepartmentBreakdown{}
	var completionHours float64
	var completionSamples int

	for _, invitation := range invitations {
		// The funnel is cumulative: a completed invitation was also sent,
		// opened and started, whether or not each webhook arrived.
		switch invitation.Status {
		case model.StatusCompleted:
			snapshot.Completed++
			snapshot.Started++
			snapshot.Opened++
			snapshot.Sent++
		case model.StatusStarted:
			snapshot.Started++
			snapshot.Opened++
			snapshot.Sent++
		case model.StatusOpened:
			snapshot.Opened++
			snapshot.Sent++
		case model.StatusSent:
			snapshot.Sent++
		case model.StatusBounced:
			snapshot.Bounced++
		case model.StatusExpired:
			snapshot.Expired++
			// Expiry overwrites the status, so recover how far the recipient
			// got from the timestamps.
			switch {
			case invitation.StartedAt != nil:
				snapshot.Started++
				snapshot.Opened++
				snapshot.Sent++
			case invitation.OpenedAt != nil:
				snapshot.Opened++
				snapshot.Sent++
			case invitation.SentAt != nil:
				snapshot.Sent++
			}
		}

		if invitation.SentAt != nil && invitation.CompletedAt != nil {
			completionHours += invitation.CompletedAt.Sub(*invitation.SentAt).Hours()
			completionSamples++
		}

		department := departments[invitation.RecipientEmail]
		if department == "" {
			department = "unassigned"
		}
		entry, ok := byDepartment[department]
		if !ok {
			entry = &DepartmentBreakdown{Department: department}
			byDepartment[department] = entry
		}
		entry.Invited++
		if invitation.Status == model.StatusCompleted {
			entry.Completed++
		}
	}

	snapshot.ParticipationRate = rate(snapshot.Completed, snapshot.Total)
	snapshot.CompletionRate = rate(snapshot.Completed, snapshot.Started)
	snapshot.OpenRate = rate(snapshot.Opened, snapshot.Sent)
	if completionSamples > 0 {
		snapshot.AvgHoursToComplete = completionHours / float64(completionSamples)
	}

	for _, entry := range byDepartment {
		entry.Rate = rate(entry.Completed, entry.Invited)
		snapshot.DepartmentBreakdown = append(snapshot.DepartmentBreakdown, *entry)
	}
	sort.Slice(snapshot.DepartmentBreakdown, func(i, j int) bool {
		return snapshot.DepartmentBreakdown[i].Department < snapshot.DepartmentBreakdown[j].Department
	})

	return snapshot, nil
}

// rate is a percentage with the zero-denominator rule: no division by zero,
// no NaN, just 0.
func rate(numerator, denominator int) float64 {
	if denominator == 0 {
		return 0
	}
	return float64(numerator) / float64(denominator) * 100
}

