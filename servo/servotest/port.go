// Package servotest provides an in-memory serial port for exercising links
// without hardware.
package servotest

import (
	"bytes"
	"io"
	"sync"
)

type readEvent struct {
	data []byte
	err  error
}

// Port is a fake serial port. Bytes passed to Feed are what the device
// "sends"; bytes written by the code under test are kept for Written.
type Port struct {
	events    chan readEvent
	kick      chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	rest []byte // unread tail of the last event; reader only

	mu       sync.Mutex
	out      bytes.Buffer
	closed   bool
	readErr  error
	writeErr error
}

func NewPort() *Port {
	return &Port{
		events: make(chan readEvent),
		kick:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

func (p *Port) Read(b []byte) (int, error) {
	for {
		if len(p.rest) > 0 {
			n := copy(b, p.rest)
			p.rest = p.rest[n:]
			return n, nil
		}

		p.mu.Lock()
		err := p.readErr
		p.mu.Unlock()
		if err != nil {
			return 0, err
		}

		select {
		case ev := <-p.events:
			if ev.err != nil {
				return 0, ev.err
			}
			n := copy(b, ev.data)
			p.rest = ev.data[n:]
			return n, nil
		case <-p.kick:
		case <-p.done:
			return 0, io.ErrClosedPipe
		}
	}
}

func (p *Port) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return 0, io.ErrClosedPipe
	}
	if p.writeErr != nil {
		return 0, p.writeErr
	}
	return p.out.Write(b)
}

func (p *Port) Close() error {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		p.mu.Unlock()
		close(p.done)
	})
	return nil
}

func (p *Port) deliver(ev readEvent) error {
	select {
	case p.events <- ev:
		return nil
	case <-p.done:
		return io.ErrClosedPipe
	}
}

// Feed delivers s to the reader. It blocks until the reader has picked it up.
func (p *Port) Feed(s string) error {
	if s == "" {
		return nil
	}
	return p.deliver(readEvent{data: []byte(s)})
}

// Timeout makes one read return (0, io.EOF), the way tarm/serial reports an
// expired read timeout on posix.
func (p *Port) Timeout() error {
	return p.deliver(readEvent{err: io.EOF})
}

func (p *Port) setReadErr(err error) {
	p.mu.Lock()
	p.readErr = err
	p.mu.Unlock()
	select {
	case p.kick <- struct{}{}:
	default:
	}
}

// Fail makes every later read return err, as a broken driver would.
func (p *Port) Fail(err error) {
	p.setReadErr(err)
}

// Hangup makes every later read return (0, io.EOF) at once, as a tty whose
// USB adapter was pulled does.
func (p *Port) Hangup() {
	p.setReadErr(io.EOF)
}

// FailWrites makes every later Write return err.
func (p *Port) FailWrites(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writeErr = err
}

// Written returns everything written to the port so far.
func (p *Port) Written() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.out.String()
}

func (p *Port) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Opener hands out ports and remembers every one it opened, keyed by name.
// A non-nil Gate holds every Open until it is closed.
type Opener struct {
	mu    sync.Mutex
	Ports map[string][]*Port
	Err   error
	Bauds []int
	Gate  chan struct{}
}

func NewOpener() *Opener {
	return &Opener{Ports: make(map[string][]*Port)}
}

// Open satisfies servo.Opener.
func (o *Opener) Open(name string, baud int) (io.ReadWriteCloser, error) {
	o.mu.Lock()
	o.Bauds = append(o.Bauds, baud)
	gate := o.Gate
	o.mu.Unlock()

	if gate != nil {
		<-gate
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.Err != nil {
		return nil, o.Err
	}
	p := NewPort()
	o.Ports[name] = append(o.Ports[name], p)
	return p, nil
}

// Calls reports how many times Open has been entered.
func (o *Opener) Calls() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.Bauds)
}

// Last returns the most recent port opened under name, or nil.
func (o *Opener) Last(name string) *Port {
	o.mu.Lock()
	defer o.mu.Unlock()
	ps := o.Ports[name]
	if len(ps) == 0 {
		return nil
	}
	return ps[len(ps)-1]
}
