package notification

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"

	"github.com/microcosm-cc/bluemonday"
	"github.com/sondeolabs/convoca/internal/i18n"
)

//go:embed translations
var translations embed.FS

// TranslationsFS exposes the embedded copy catalogs so the binary and tests
// build the same translator.
func TranslationsFS() fs.FS {
	dir, err := fs.Sub(translations, "translations")
	if err != nil {
		panic(err)
	}
	return dir
}

// Output is ready-to-send email copy for one queue job.
type Output struct {
	Subject string
	HTML    string
	Text    string
}

// Composer renders queue payloads into localized email copy. Operator-supplied
// custom messages are sanitized before they reach a mailbox.
type Composer struct {
	translator *i18n.Translator
	sanitizer  *bluemonday.Policy
}

func NewComposer(translator *i18n.Translator) *Composer {
	return &Composer{
		translator: translator,
		sanitizer:  bluemonday.UGCPolicy(),
	}
}

// Compose interprets a stored payload by its kind tag.
func (c *Composer) Compose(kind, body string) (Output, error) {
	switch kind {
	case KindInvitation:
		var payload InvitationPayload
		if err := json.Unmarshal([]byte(body), &payload); err != nil {
			return Output{}, err
		}
		return c.composeInvitation(payload), nil
	case KindReminder:
		var payload ReminderPayload
		if err := json.Unmarshal([]byte(body), &payload); err != nil {
			return Output{}, err
		}
		return c.composeReminder(payload), nil
	case KindCompletion:
		var payload CompletionPayload
		if err := json.Unmarshal([]byte(body), &payload); err != nil {
			return Output{}, err
		}
		return c.composeCompletion(payload), nil
	}
	return Output{}, ErrUnknownKind
}

// Sanitize strips markup from operator-supplied text that is not allowed in
// user generated content.
func (c *Composer) Sanitize(message string) string {
	return c.sanitizer.Sanitize(message)
}

func (c *Composer) composeInvitation(payload InvitationPayload) Output {
	lang := locale(payload.Locale)
	subject := c.translator.T(lang, "You are invited to participate in %s", payload.CampaignName)
	greeting := c.translator.T(lang, "Hello %s,", payload.RecipientName)
	action := c.translator.T(lang, "Your feedback matters. Follow the link below to participate.")

	custom := ""
	if payload.CustomMessage != "" {
		custom = c.Sanitize(payload.CustomMessage)
	}

	html := fmt.Sprintf("<p>%s</p>", greeting)
	if custom != "" {
		html += fmt.Sprintf("<p>%s</p>", custom)
	}
	html += fmt.Sprintf("<p>%s</p><p><a href=%q>%s</a></p>", action, payload.Link, payload.Link)

	text := fmt.Sprintf("%s\n\n%s\n%s\n", greeting, action, payload.Link)

	return Output{Subject: subject, HTML: html, Text: text}
}

func (c *Composer) composeReminder(payload ReminderPayload) Output {
	lang := locale(payload.Locale)
	subject := c.translator.T(lang, "Reminder: %s is waiting for your response", payload.CampaignName)
	greeting := c.translator.T(lang, "Hello %s,", payload.RecipientName)
	action := c.translator.T(lang, "You have until %s to participate.", payload.ExpiresAt.Format("2006-01-02"))

	html := fmt.Sprintf("<p>%s</p><p>%s</p><p><a href=%q>%s</a></p>", greeting, action, payload.Link, payload.Link)
	text := fmt.Sprintf("%s\n\n%s\n%s\n", greeting, action, payload.Link)

	return Output{Subject: subject, HTML: html, Text: text}
}

func (c *Composer) composeCompletion(payload CompletionPayload) Output {
	lang := locale(payload.Locale)
	subject := c.translator.T(lang, "Thank you for participating in %s", payload.CampaignName)
	greeting := c.translator.T(lang, "Hello %s,", payload.RecipientName)
	body := c.translator.T(lang, "Your response has been recorded.")

	return Output{
		Subject: subject,
		HTML:    fmt.Sprintf("<p>%s</p><p>%s</p>", greeting, body),
		Text:    fmt.Sprintf("%s\n\n%s\n", greeting, body),
	}
}

func locale(lang string) string {
	if lang == "" {
		return "en"
	}
	return lang
}
