package servo

import (
	"fmt"
	"io"
	"time"

	serial "github.com/tarm/serial"
)

// DefaultBaud is the rate the bridge firmware configures USART1 with.
const DefaultBaud = 115200

// readTimeout bounds each serial read so Close is noticed promptly. tarm/serial
// rounds it to whole deciseconds on posix.
const readTimeout = 100 * time.Millisecond

// Opener opens a named port. Sessions take one so tests can swap the hardware out.
type Opener func(name string, baud int) (io.ReadWriteCloser, error)

// OpenSerial opens name at baud, 8N1.
func OpenSerial(name string, baud int) (io.ReadWriteCloser, error) {
	cfg := &serial.Config{
		Name:        name,
		Baud:        baud,
		Size:        8,
		Parity:      serial.ParityNone,
		StopBits:    serial.Stop1,
		ReadTimeout: readTimeout,
	}
	p, err := serial.OpenPort(cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	return p, nil
}
