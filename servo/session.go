package servo

import (
	"fmt"
	"log"
	"sync"
)

// Session owns the one connection the panel talks through. The zero value is
// not usable; create one with NewSession.
type Session struct {
	open Opener
	baud int
	opts []LinkOption

	mu   sync.Mutex
	link *Link
	port string
}

// NewSession returns a disconnected session that opens ports with open at baud.
func NewSession(open Opener, baud int, opts ...LinkOption) *Session {
	if open == nil {
		open = OpenSerial
	}
	if baud <= 0 {
		baud = DefaultBaud
	}
	return &Session{open: open, baud: baud, opts: opts}
}

// take detaches the current link so it can be closed without holding mu.
func (s *Session) take() (*Link, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, port := s.link, s.port
	s.link, s.port = nil, ""
	return l, port
}

// Connect opens name, closing whatever link was open before. The port is
// opened without holding the session lock, so readers such as Port and Stats
// never wait on a slow open.
func (s *Session) Connect(name string) error {
	if old, port := s.take(); old != nil {
		if err := old.Close(); err != nil {
			log.Printf("session: close %s: %v", port, err)
		}
	}

	p, err := s.open(name, s.baud)
	if err != nil {
		return err
	}
	link := NewLink(p, s.opts...)

	s.mu.Lock()
	prev, prevPort := s.link, s.port
	s.link, s.port = link, name
	s.mu.Unlock()

	if prev != nil {
		if err := prev.Close(); err != nil {
			log.Printf("session: close %s: %v", prevPort, err)
		}
	}
	log.Printf("session: connected %s @ %d", name, s.baud)
	return nil
}

// Disconnect closes the current link.
func (s *Session) Disconnect() error {
	l, port := s.take()
	if l == nil {
		return ErrNotConnected
	}
	err := l.Close()
	log.Printf("session: disconnected %s", port)
	if err != nil {
		return fmt.Errorf("close: %w", err)
	}
	return nil
}

func (s *Session) current() *Link {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.link
}

// Connected reports whether a link is open.
func (s *Session) Connected() bool {
	return s.current() != nil
}

// Port is the name of the connected port, or "".
func (s *Session) Port() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

func (s *Session) Baud() int { return s.baud }

// SendSetpoint commands v in mode over the current link.
func (s *Session) SendSetpoint(mode Mode, v float64) error {
	l := s.current()
	if l == nil {
		return ErrNotConnected
	}
	if err := l.SendSetpoint(mode, v); err != nil {
		return err
	}
	log.Printf("session: %s % .2f", mode, v)
	return nil
}

// SetOrigin sends the origin command over the current link.
func (s *Session) SetOrigin() error {
	l := s.current()
	if l == nil {
		return ErrNotConnected
	}
	if err := l.SetOrigin(); err != nil {
		return err
	}
	log.Printf("session: origin")
	return nil
}

// Poll returns the newest frame received since the last call. ok is false
// when nothing arrived or no link is open.
func (s *Session) Poll() (t Telemetry, ok bool) {
	l := s.current()
	if l == nil {
		return Telemetry{}, false
	}
	return l.Poll()
}

// Err reports why the current link stopped reading, if it did.
func (s *Session) Err() error {
	l := s.current()
	if l == nil {
		return nil
	}
	return l.Err()
}

func (s *Session) Stats() Stats {
	l := s.current()
	if l == nil {
		return Stats{}
	}
	return l.Stats()
}
