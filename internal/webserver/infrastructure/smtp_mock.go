package infrastructure

import "sync"

type SentMessage struct {
	To      string
	Subject string
	HTML    string
	Text    string
	Headers map[string]string
}

type SMTPMock struct {
	mu       sync.Mutex
	messages []SentMessage
	Err      error
	Wg       sync.WaitGroup
}

func (s *SMTPMock) Send(to, subject, html, text string, headers map[string]string) (string, error) {
	defer s.Wg.Done()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return "", s.Err
	}

	s.messages = append(s.messages, SentMessage{
		To:      to,
		Subject: subject,
		HTML:    html,
		Text:    text,
		Headers: headers,
	})
	return "<mock@convoca>", nil
}

func (s *SMTPMock) CalledSend() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages) > 0
}

func (s *SMTPMock) Messages() []SentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SentMessage{}, s.messages...)
}
