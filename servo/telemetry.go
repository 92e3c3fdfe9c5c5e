package servo

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// FrameFields is the number of comma separated fields in a telemetry line.
const FrameFields = 5

// ErrMalformedFrame marks a line that is not a five field telemetry frame.
var ErrMalformedFrame = errors.New("malformed telemetry frame")

// Telemetry is one frame reported by the driver. Fields are kept verbatim;
// the firmware prints them as "%.2f,%.2f,%.2f,%d,%d".
type Telemetry struct {
	Position    string
	Speed       string
	Current     string
	Temperature string
	ErrorCode   string
}

// ParseTelemetry decodes one inbound line. Anything that is not valid UTF-8
// or does not split into exactly five fields yields ErrMalformedFrame.
func ParseTelemetry(line []byte) (Telemetry, error) {
	if !utf8.Valid(line) {
		return Telemetry{}, fmt.Errorf("%w: invalid utf-8", ErrMalformedFrame)
	}
	f := strings.Split(strings.TrimSpace(string(line)), ",")
	if len(f) != FrameFields {
		return Telemetry{}, fmt.Errorf("%w: %d fields", ErrMalformedFrame, len(f))
	}
	return Telemetry{
		Position:    f[0],
		Speed:       f[1],
		Current:     f[2],
		Temperature: f[3],
		ErrorCode:   f[4],
	}, nil
}

// Fields returns the frame in wire order.
func (t Telemetry) Fields() []string {
	return []string{t.Position, t.Speed, t.Current, t.Temperature, t.ErrorCode}
}

var faults = map[string]string{
	"0": "none",
	"1": "motor over-temperature",
	"2": "over-current",
	"3": "over-voltage",
	"4": "under-voltage",
	"5": "encoder fault",
	"6": "MOSFET over-temperature",
	"7": "motor stall",
}

// DescribeFault names a servo mode error code.
func DescribeFault(code string) string {
	if s, ok := faults[strings.TrimSpace(code)]; ok {
		return s
	}
	return "unknown"
}
