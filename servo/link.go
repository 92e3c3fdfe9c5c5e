package servo

import (
	"bufio"
	"errors"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

const (
	// maxLine bounds a single inbound line; the firmware's frames are a few
	// dozen bytes.
	maxLine = 256

	// A read timeout never returns sooner than tarm/serial's 100ms VTIME
	// floor. This many empty reads in a row that return faster than
	// quickRead mean the tty has hung up.
	quickRead   = 20 * time.Millisecond
	hangupAfter = 8
)

// Stats counts what the reader goroutine did with inbound lines.
type Stats struct {
	Frames    uint64 // parsed and queued
	Malformed uint64 // dropped by ParseTelemetry
	Overruns  uint64 // queued frames overwritten before the poller took them
}

// LinkOptions collects what LinkOption values configure.
type LinkOptions struct {
	frameBuffer int
	logger      *log.Logger
}

// LinkOption configures a Link created by NewLink.
type LinkOption func(*LinkOptions)

// WithFrameBuffer sets how many frames may wait for the poller.
func WithFrameBuffer(n int) LinkOption {
	return func(opts *LinkOptions) {
		if n > 0 {
			opts.frameBuffer = n
		}
	}
}

// WithLogger routes link logging somewhere other than the standard logger.
func WithLogger(l *log.Logger) LinkOption {
	return func(opts *LinkOptions) {
		opts.logger = l
	}
}

// Link is one open serial connection to the driver. A goroutine reads lines
// from the port and queues parsed frames until Poll takes them.
type Link struct {
	port   io.ReadWriteCloser
	frames chan Telemetry
	log    *log.Logger

	wmu sync.Mutex

	frameCount atomic.Uint64
	malformed  atomic.Uint64
	overruns   atomic.Uint64

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
	done      chan struct{}

	emu sync.Mutex
	err error
}

// NewLink takes ownership of port and starts reading from it.
func NewLink(port io.ReadWriteCloser, opts ...LinkOption) *Link {
	o := LinkOptions{frameBuffer: 16, logger: log.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	l := &Link{
		port:   port,
		frames: make(chan Telemetry, o.frameBuffer),
		log:    o.logger,
		done:   make(chan struct{}),
	}
	go l.readLoop()
	return l
}

func (l *Link) write(p []byte) error {
	if l == nil || l.closed.Load() {
		return ErrNotConnected
	}
	l.wmu.Lock()
	defer l.wmu.Unlock()
	_, err := l.port.Write(p)
	return err
}

// SendSetpoint writes the command for v in the given mode. It does not wait
// for any acknowledgement.
func (l *Link) SendSetpoint(mode Mode, v float64) error {
	line, err := EncodeSetpoint(mode, v)
	if err != nil {
		return err
	}
	return l.write(line)
}

// SetOrigin asks the driver to zero its position.
func (l *Link) SetOrigin() error {
	return l.write([]byte(Origin))
}

// Frames exposes the queue of parsed frames. It is closed when the reader stops.
func (l *Link) Frames() <-chan Telemetry {
	return l.frames
}

// Poll drains every queued frame without blocking and returns the newest.
func (l *Link) Poll() (Telemetry, bool) {
	var (
		last Telemetry
		ok   bool
	)
	for {
		select {
		case t, open := <-l.frames:
			if !open {
				return last, ok
			}
			last, ok = t, true
		default:
			return last, ok
		}
	}
}

// Stats returns a snapshot of the reader's counters.
func (l *Link) Stats() Stats {
	return Stats{
		Frames:    l.frameCount.Load(),
		Malformed: l.malformed.Load(),
		Overruns:  l.overruns.Load(),
	}
}

// Err returns the error that stopped the reader, if any.
func (l *Link) Err() error {
	l.emu.Lock()
	defer l.emu.Unlock()
	return l.err
}

// Done is closed once the reader goroutine has exited.
func (l *Link) Done() <-chan struct{} {
	return l.done
}

// Close closes the port and waits for the reader to exit. It is safe to call
// more than once.
func (l *Link) Close() error {
	l.closeOnce.Do(func() {
		l.closed.Store(true)
		l.closeErr = l.port.Close()
		<-l.done
	})
	return l.closeErr
}

func (l *Link) readLoop() {
	defer close(l.done)
	defer close(l.frames)

	r := bufio.NewReader(l.port)
	var (
		pending  []byte
		overlong bool
		quick    int
	)
	for {
		began := time.Now()
		chunk, err := r.ReadSlice('\n')
		if len(chunk) > 0 {
			quick = 0
		}

		pending = append(pending, chunk...)
		if len(pending) > maxLine {
			if !overlong {
				l.malformed.Add(1)
				l.log.Printf("link: dropped line longer than %d bytes", maxLine)
				overlong = true
			}
			pending = pending[:0]
		}

		if err == nil {
			if !overlong {
				l.handleLine(pending)
			}
			overlong = false
			pending = pending[:0]
			continue
		}

		if l.closed.Load() {
			return
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		// tarm/serial reports a read timeout as io.EOF on posix and as an
		// empty read on windows, which bufio turns into io.ErrNoProgress.
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrNoProgress) {
			if len(chunk) > 0 || time.Since(began) >= quickRead {
				quick = 0
				continue
			}
			if quick++; quick < hangupAfter {
				continue
			}
			err = io.ErrUnexpectedEOF
		}

		l.emu.Lock()
		l.err = err
		l.emu.Unlock()
		l.log.Printf("link: read: %v", err)
		return
	}
}

func (l *Link) handleLine(line []byte) {
	t, err := ParseTelemetry(line)
	if err != nil {
		l.malformed.Add(1)
		l.log.Printf("link: dropped %q: %v", line, err)
		return
	}

	for {
		select {
		case l.frames <- t:
			l.frameCount.Add(1)
			return
		default:
		}
		// Full: the oldest frame is stale anyway.
		select {
		case <-l.frames:
			l.overruns.Add(1)
		default:
		}
	}
}
