package trace

import (
	"errors"
	"sync"
)

// session collects coercion faults raised by the placeholders of one
// recording. fmt recovers panics raised inside Format, so a fault must be
// remembered as well as raised.
type session struct {
	mu         sync.Mutex
	faults     []error
	persistent bool
}

// fault records err if s belongs to a recording in progress. Faults under
// any other session are left to the coerced placeholder itself.
func (s *session) fault(err error) {
	if s == nil {
		return
	}

	recording.Lock()
	_, ok := recording.active[s]
	recording.Unlock()

	if ok {
		s.add(err)
	}
}

func (s *session) add(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.faults = append(s.faults, err)
}

func (s *session) err() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return errors.Join(s.faults...)
}

// recording tracks the sessions of recordings in progress.
var recording = struct {
	sync.Mutex
	active map[*session]struct{}
}{active: make(map[*session]struct{})}

func activate(s *session) {
	recording.Lock()
	defer recording.Unlock()

	recording.active[s] = struct{}{}
}

func deactivate(s *session) {
	recording.Lock()
	defer recording.Unlock()

	delete(recording.active, s)
}
