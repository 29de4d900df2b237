package testutil

import (
	"fmt"
	"strings"
	"sync"

	"github.com/mcoot/rpschat/internal/model"
)

// RecordingSink captures every message delivered to one connection.
// Set Fail to make deliveries return ErrTransportFailure.
type RecordingSink struct {
	mu       sync.Mutex
	id       model.ConnID
	messages []string
	fail     bool
	closed   bool
}

// NewRecordingSink creates a sink for the given connection
func NewRecordingSink(id model.ConnID) *RecordingSink {
	return &RecordingSink{id: id}
}

func (s *RecordingSink) ID() model.ConnID {
	return s.id
}

func (s *RecordingSink) Deliver(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail || s.closed {
		return fmt.Errorf("%w: %s", model.ErrTransportFailure, s.id)
	}
	s.messages = append(s.messages, line)
	return nil
}

func (s *RecordingSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// SetFail toggles delivery failures
func (s *RecordingSink) SetFail(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = fail
}

// Closed reports whether Close was called
func (s *RecordingSink) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Raw returns delivered payloads exactly as written, separators included
func (s *RecordingSink) Raw() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.messages))
	copy(out, s.messages)
	return out
}

// Messages returns delivered payloads with the trailing separator removed
func (s *RecordingSink) Messages() []string {
	raw := s.Raw()
	for i := range raw {
		raw[i] = strings.TrimSuffix(raw[i], "\n")
	}
	return raw
}

// Last returns the most recent message, or "" if none
func (s *RecordingSink) Last() string {
	msgs := s.Messages()
	if len(msgs) == 0 {
		return ""
	}
	return msgs[len(msgs)-1]
}

// Contains reports whether any message equals text
func (s *RecordingSink) Contains(text string) bool {
	for _, m := range s.Messages() {
		if m == text {
			return true
		}
	}
	return false
}

// Reset drops captured messages
func (s *RecordingSink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
}
