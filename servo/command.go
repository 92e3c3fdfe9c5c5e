// Package servo speaks the line protocol of the AK servo serial bridge:
// setpoint commands out, five-field telemetry frames back.
package servo

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Mode selects which setpoint field a command carries.
type Mode int

const (
	Position Mode = iota
	Speed
	Current
)

// Modes lists every mode in wire field order.
var Modes = [...]Mode{Position, Speed, Current}

var (
	// ErrNotConnected is returned by sends when no link is open.
	ErrNotConnected = errors.New("not connected")
	// ErrInvalidMode rejects a mode outside Position, Speed and Current.
	ErrInvalidMode = errors.New("invalid mode")
	// ErrInvalidValue rejects NaN and infinite setpoints.
	ErrInvalidValue = errors.New("invalid value")
)

// Origin is the fixed line that tells the driver to zero its position.
const Origin = "origin\r\n"

func (m Mode) String() string {
	switch m {
	case Position:
		return "position"
	case Speed:
		return "speed"
	case Current:
		return "current"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

func (m Mode) valid() bool { return m >= Position && m <= Current }

// Range is the span an operator may command for a mode.
type Range struct {
	Min, Max float64
	Step     float64 // fine step; coarse is 10x
}

// Resolution of every setpoint, matching the two-decimal wire format.
const Resolution = 0.01

var ranges = [...]Range{
	Position: {Min: -360, Max: 360, Step: 1},
	Speed:    {Min: -100000, Max: 100000, Step: 1000},
	Current:  {Min: -60000, Max: 60000, Step: 500},
}

// Range returns the commandable span of m.
func (m Mode) Range() Range {
	if !m.valid() {
		return Range{}
	}
	return ranges[m]
}

// Clamp limits v to r and snaps it to Resolution.
func (r Range) Clamp(v float64) float64 {
	v = math.Round(v/Resolution) * Resolution
	return math.Max(r.Min, math.Min(r.Max, v))
}

// Command is one outbound setpoint line split into its fields.
type Command struct {
	Position float64
	Speed    float64
	Current  float64
}

// NewCommand puts v in the field selected by mode and zeroes the others.
func NewCommand(mode Mode, v float64) (Command, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Command{}, fmt.Errorf("%w: %v", ErrInvalidValue, v)
	}
	var c Command
	switch mode {
	case Position:
		c.Position = v
	case Speed:
		c.Speed = v
	case Current:
		c.Current = v
	default:
		return Command{}, fmt.Errorf("%w: %d", ErrInvalidMode, int(mode))
	}
	return c, nil
}

// Mode reports the field the firmware acts on: the first non-zero one in
// position, speed, current order. ok is false for an all-zero command.
func (c Command) Mode() (Mode, bool) {
	switch {
	case c.Position != 0:
		return Position, true
	case c.Speed != 0:
		return Speed, true
	case c.Current != 0:
		return Current, true
	}
	return Position, false
}

// MarshalText renders the command as a CRLF terminated wire line.
func (c Command) MarshalText() ([]byte, error) {
	var b bytes.Buffer
	fmt.Fprintf(&b, "% .2f,% .2f,% .2f\r\n", c.Position, c.Speed, c.Current)
	return b.Bytes(), nil
}

// EncodeSetpoint builds the wire line commanding v in the given mode.
func EncodeSetpoint(mode Mode, v float64) ([]byte, error) {
	c, err := NewCommand(mode, v)
	if err != nil {
		return nil, err
	}
	return c.MarshalText()
}

// ParseCommand reads a line produced by EncodeSetpoint back into its fields.
func ParseCommand(line []byte) (Command, error) {
	parts := bytes.Split(bytes.TrimSpace(line), []byte(","))
	if len(parts) != 3 {
		return Command{}, fmt.Errorf("command: want 3 fields, got %d", len(parts))
	}
	var vals [3]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(string(bytes.TrimSpace(p)), 64)
		if err != nil {
			return Command{}, fmt.Errorf("command field %d: %w", i, err)
		}
		vals[i] = v
	}
	return Command{Position: vals[0], Speed: vals[1], Current: vals[2]}, nil
}
