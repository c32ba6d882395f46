// Package notification turns queued payloads into localized, sendable email
// copy. Payloads are tagged variants, one shape per notification type, so the
// composer can switch exhaustively instead of digging through untyped maps.
package notification

import (
	"encoding/json"
	"errors"
	"time"
)

const (
	KindInvitation = "invitation"
	KindReminder   = "reminder"
	KindCompletion = "completion"
)

var ErrUnknownKind = errors.New("unknown notification payload kind")

// InvitationPayload is the initial send for a campaign invitation.
type InvitationPayload struct {
	CampaignName  string `json:"campaign_name"`
	CampaignKind  string `json:"campaign_kind"`
	RecipientName string `json:"recipient_name"`
	Link          string `json:"link"`
	CustomMessage string `json:"custom_message,omitempty"`
	Locale        string `json:"locale,omitempty"`
}

// ReminderPayload is a follow-up nudge for a still-open invitation.
type ReminderPayload struct {
	CampaignName  string    `json:"campaign_name"`
	RecipientName string    `json:"recipient_name"`
	Link          string    `json:"link"`
	Index         int       `json:"index"`
	ExpiresAt     time.Time `json:"expires_at"`
	Locale        string    `json:"locale,omitempty"`
}

// CompletionPayload thanks a recipient after they finish.
type CompletionPayload struct {
	CampaignName  string `json:"campaign_name"`
	RecipientName string `json:"recipient_name"`
	Locale        string `json:"locale,omitempty"`
}

// Encode serializes a payload for storage on a queue job, returning its kind
// tag alongside.
func Encode(payload interface{}) (kind string, body string, err error) {
	switch payload.(type) {
	case InvitationPayload, *InvitationPayload:
		kind = KindInvitation
	case ReminderPayload, *ReminderPayload:
		kind = KindReminder
	case CompletionPayload, *CompletionPayload:
		kind = KindCompletion
	default:
		return "", "", ErrUnknownKind
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", "", err
	}
	return kind, string(raw), nil
}
