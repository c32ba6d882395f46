package model

import (
	"errors"
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusSent      Status = "sent"
	StatusOpened    Status = "opened"
	StatusStarted   Status = "started"
	StatusCompleted Status = "completed"
	StatusExpired   Status = "expired"
	StatusBounced   Status = "bounced"
	StatusCancelled Status = "cancelled"
)

type Event string

const (
	EventMarkSent      Event = "markSent"
	EventMarkOpened    Event = "markOpened"
	EventMarkStarted   Event = "markStarted"
	EventMarkCompleted Event = "markCompleted"
	EventMarkExpired   Event = "markExpired"
	EventMarkBounced   Event = "markBounced"
	EventCancel        Event = "cancel"
)

var (
	ErrDuplicateInvitation = errors.New("an active invitation already exists for this recipient")
	ErrTerminalStatus      = errors.New("invitation is in a terminal status")
	ErrUnknownEvent        = errors.New("unknown transition event")
)

// Invitation tracks a single recipient through a campaign, from creation to
// completion or one of the side exits. The token is the only public lookup key.
type Invitation struct {
	ID               uint `gorm:"primarykey"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
	UUID             string `gorm:"uniqueIndex; not null"`
	CampaignID       string `gorm:"index; not null"`
	CompanyID        string `gorm:"index; not null"`
	RecipientID      string `gorm:"index"`
	RecipientEmail   string `gorm:"index; not null"`
	Token            string `gorm:"uniqueIndex; not null"`
	Status           Status `gorm:"index; not null; default:pending"`
	ExpiresAt        time.Time
	ReminderCount    int
	LastReminderSent *time.Time
	SentAt           *time.Time
	OpenedAt         *time.Time
	StartedAt        *time.Time
	CompletedAt      *time.Time
	Metadata         string
}

// transitions is the lifecycle table. An empty "from" list means the event
// applies regardless of the current status. The asymmetry is deliberate:
// markOpened and markStarted must be safe to replay from duplicated webhook
// deliveries, while markCompleted and markExpired always win.
var transitions = map[Event]struct {
	from []Status
	to   Status
}{
	EventMarkSent:      {from: []Status{StatusPending}, to: StatusSent},
	EventMarkOpened:    {from: []Status{StatusSent}, to: StatusOpened},
	EventMarkStarted:   {from: []Status{StatusSent, StatusOpened}, to: StatusStarted},
	EventMarkCompleted: {to: StatusCompleted},
	EventMarkExpired:   {to: StatusExpired},
	EventMarkBounced:   {from: []Status{StatusPending, StatusSent}, to: StatusBounced},
	EventCancel:        {from: []Status{StatusPending, StatusSent, StatusOpened, StatusStarted, StatusBounced}, to: StatusCancelled},
}

// Apply runs one lifecycle event against the invitation, returning whether the
// status changed. Guarded events on a non-matching status are a no-op, not an
// error. Timestamps are set only the first time their event applies.
func (i *Invitation) Apply(event Event, now time.Time) (bool, error) {
	rule, ok := transitions[event]
	if !ok {
		return false, ErrUnknownEvent
	}

	if len(rule.from) > 0 && !statusIn(i.Status, rule.from) {
		return false, nil
	}

	i.Status = rule.to

	switch event {
	case EventMarkSent:
		if i.SentAt == nil {
			i.SentAt = &now
		}
	case EventMarkOpened:
		if i.OpenedAt == nil {
			i.OpenedAt = &now
		}
	case EventMarkStarted:
		if i.StartedAt == nil {
			i.StartedAt = &now
		}
	case EventMarkCompleted:
		if i.CompletedAt == nil {
			i.CompletedAt = &now
		}
	}

	return true, nil
}

// IsTerminal reports whether no further lifecycle transitions are expected.
func (i *Invitation) IsTerminal() bool {
	return i.Status == StatusCompleted || i.Status == StatusExpired || i.Status == StatusCancelled
}

// TerminalStatuses lists the statuses after which an invitation is closed.
func TerminalStatuses() []Status {
	return []Status{StatusCompleted, StatusExpired, StatusCancelled}
}

func statusIn(status Status, list []Status) bool {
	for _, s := range list {
		if s == status {
			return true
		}
	}
	return false
}
