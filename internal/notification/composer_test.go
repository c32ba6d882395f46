package notification_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sondeolabs/convoca/internal/i18n"
	"github.com/sondeolabs/convoca/internal/notification"
)

func newComposer(t *testing.T) *notification.Composer {
	t.Helper()

	translator, err := i18n.NewTranslator(notification.TranslationsFS(), "en")
	if err != nil {
		t.Fatalf("Unexpected error building translator: %v", err)
	}
	return notification.NewComposer(translator)
}

func TestComposeInvitation(t *testing.T) {
	composer := newComposer(t)

	kind, body, err := notification.Encode(notification.InvitationPayload{
		CampaignName:  "Spring Climate Survey",
		RecipientName: "Ana",
		Link:          "http://example.com/surveys/tok",
		CustomMessage: "We value your opinion",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	output, err := composer.Compose(kind, body)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !strings.Contains(output.Subject, "Spring Climate Survey") {
		t.Errorf("Expected subject to name the campaign, got %q", output.Subject)
	}
	if !strings.Contains(output.HTML, "Hello Ana,") {
		t.Errorf("Expected greeting in HTML body, got %q", output.HTML)
	}
	if !strings.Contains(output.HTML, "http://example.com/surveys/tok") {
		t.Errorf("Expected the invitation link in HTML body")
	}
	if !strings.Contains(output.Text, "http://example.com/surveys/tok") {
		t.Errorf("Expected the invitation link in text body")
	}
}

func TestComposeLocalizesSpanish(t *testing.T) {
	composer := newComposer(t)

	kind, body, err := notification.Encode(notification.InvitationPayload{
		CampaignName:  "Encuesta de Clima",
		RecipientName: "Ana",
		Link:          "http://example.com/surveys/tok",
		Locale:        "es",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	output, err := composer.Compose(kind, body)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !strings.Contains(output.Subject, "Te invitamos a participar en Encuesta de Clima") {
		t.Errorf("Expected spanish subject, got %q", output.Subject)
	}
	if !strings.Contains(output.HTML, "Hola Ana,") {
		t.Errorf("Expected spanish greeting, got %q", output.HTML)
	}
}

func TestComposeReminderMentionsDeadline(t *testing.T) {
	composer := newComposer(t)

	kind, body, err := notification.Encode(notification.ReminderPayload{
		CampaignName: "Spring Climate Survey",
		Link:         "http://example.com/surveys/tok",
		ExpiresAt:    time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	output, err := composer.Compose(kind, body)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !strings.Contains(output.Subject, "Reminder") {
		t.Errorf("Expected a reminder subject, got %q", output.Subject)
	}
	if !strings.Contains(output.HTML, "2026-03-16") {
		t.Errorf("Expected the deadline in the body, got %q", output.HTML)
	}
}

func TestSanitizeStripsMarkup(t *testing.T) {
	composer := newComposer(t)

	sanitized := composer.Sanitize(`Hi <script>alert("x")</script><b>there</b>`)
	if strings.Contains(sanitized, "<script>") {
		t.Errorf("Expected script tags to be stripped, got %q", sanitized)
	}
	if !strings.Contains(sanitized, "<b>there</b>") {
		t.Errorf("Expected harmless formatting to survive, got %q", sanitized)
	}
}

func TestComposeUnknownKind(t *testing.T) {
	composer := newComposer(t)

	if _, err := composer.Compose("carrier-pigeon", "{}"); !errors.Is(err, notification.ErrUnknownKind) {
		t.Errorf("Expected ErrUnknownKind, got %v", err)
	}
}

func TestEncodeUnknownPayload(t *testing.T) {
	if _, _, err := notification.Encode(struct{}{}); !errors.Is(err, notification.ErrUnknownKind) {
		t.Errorf("Expected ErrUnknownKind, got %v", err)
	}
}
