package infrastructure

import (
	"errors"
	"sync"
)

// SMTPMock records sent emails. Callers expecting a delivery add to Wg before triggering it.
type SMTPMock struct {
	Fail bool
	mu   sync.Mutex
	sent []SentEmail
	Wg   sync.WaitGroup
}

type SentEmail struct {
	Address string
	Subject string
	Body    string
}

func (s *SMTPMock) Send(address, subject, body string) error {
	defer s.Wg.Done()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail {
		return errors.New("smtp server unavailable")
	}
	s.sent = append(s.sent, SentEmail{Address: address, Subject: subject, Body: body})
	return nil
}

func (s *SMTPMock) From() string {
	return ""
}

func (s *SMTPMock) CalledSend() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent) > 0
}

func (s *SMTPMock) Sent() []SentEmail {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SentEmail(nil), s.sent...)
}
