// Package reminder computes the bounded reminder cadence for freshly created
// invitations and gates reminder sends at dispatch time.
package reminder

import (
	"time"

	"github.com/sondeolabs/convoca/internal/model"
)

const (
	// MaxReminders caps how many reminders one invitation may receive.
	MaxReminders = 3
	// MinInterval is the minimum spacing between two reminders to the same
	// recipient.
	MinInterval = 3 * 24 * time.Hour

	firstOffset  = 3 * 24 * time.Hour
	secondOffset = 7 * 24 * time.Hour
	finalLead    = 24 * time.Hour
)

// Reminder is one planned notification: when it should go out and how urgent
// it is. The final pre-expiry reminder escalates to high priority.
type Reminder struct {
	ScheduledFor time.Time
	Priority     int
	Index        int
}

// Schedule plans the reminder sequence for an invitation whose initial send
// happens at sentAt: day+3, day+7 and one final reminder a day before expiry.
// Entries landing in the past or on/after the expiry are dropped, and the
// total never exceeds MaxReminders.
func Schedule(sentAt, expiresAt, now time.Time) []Reminder {
	candidates := []Reminder{
		{ScheduledFor: sentAt.Add(firstOffset), Priority: model.PriorityMedium},
		{ScheduledFor: sentAt.Add(secondOffset), Priority: model.PriorityMedium},
		{ScheduledFor: expiresAt.Add(-finalLead), Priority: model.PriorityHigh},
	}

	reminders := make([]Reminder, 0, MaxReminders)
	for _, candidate := range candidates {
		if !candidate.ScheduledFor.Before(expiresAt) {
			continue
		}
		if candidate.ScheduledFor.Before(now) {
			continue
		}
		candidate.Index = len(reminders)
		reminders = append(reminders, candidate)
		if len(reminders) == MaxReminders {
			break
		}
	}

	return reminders
}

// CanSend is the dispatch-time gate. Jobs scheduled long ago may have gone
// stale, so this is re-checked right before every reminder send: no reminders
// to closed invitations, past the cap, or within MinInterval of the last one.
func CanSend(invitation *model.Invitation, now time.Time) bool {
	if invitation.IsTerminal() {
		return false
	}
	if invitation.ReminderCount >= MaxReminders {
		return false
	}
	if invitation.LastReminderSent != nil && now.Sub(*invitation.LastReminderSent) < MinInterval {
		return false
	}
	return true
}
