package infrastructure

// NoEmail is the transport used when no SMTP settings are configured.
// Dispatch proceeds normally, nothing leaves the process.
type NoEmail struct {
}

func (s *NoEmail) Send(to, subject, html, text string, headers map[string]string) (string, error) {
	return "", nil
}
