package infrastructure

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"
)

type SMTP struct {
	Server   string
	Port     int
	User     string
	Password string
}

// Send delivers one message and returns the Message-ID it was stamped with.
// SMTP does not hand back a provider id, so the header set here is what
// delivery webhooks correlate on.
func (s *SMTP) Send(to, subject, html, text string, headers map[string]string) (string, error) {
	messageID := fmt.Sprintf("<%s@convoca>", uuid.NewString())

	m := gomail.NewMessage()
	m.SetHeader("From", fmt.Sprintf("%s <%s>", "Convoca", s.User))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetHeader("Message-ID", messageID)
	for key, value := range headers {
		m.SetHeader(key, value)
	}
	m.SetBody("text/plain", text)
	m.AddAlternative("text/html", html)

	d := gomail.NewDialer(s.Server, s.Port, s.User, s.Password)

	if err := d.DialAndSend(m); err != nil {
		log.Println(err)
		return "", err
	}

	return messageID, nil
}
