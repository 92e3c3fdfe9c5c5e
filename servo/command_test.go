package servo

import (
	"errors"
	"math"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestEncodeSetpoint(t *testing.T) {
	Convey("Given a setpoint", t, func() {
		Convey("Position 123.456 is rounded to two signed decimals", func() {
			line, err := EncodeSetpoint(Position, 123.456)
			So(err, ShouldBeNil)
			So(string(line), ShouldEqual, " 123.46, 0.00, 0.00\r\n")
		})

		Convey("Speed lands in the second field", func() {
			line, err := EncodeSetpoint(Speed, -2500)
			So(err, ShouldBeNil)
			So(string(line), ShouldEqual, " 0.00,-2500.00, 0.00\r\n")
		})

		Convey("Current lands in the third field", func() {
			line, err := EncodeSetpoint(Current, 0.5)
			So(err, ShouldBeNil)
			So(string(line), ShouldEqual, " 0.00, 0.00, 0.50\r\n")
		})

		Convey("Every mode yields two zero fields and the value in its own slot", func() {
			for _, mode := range Modes {
				for _, v := range []float64{-360, -1.25, 7, 99999.99} {
					line, err := EncodeSetpoint(mode, v)
					So(err, ShouldBeNil)
					So(strings.HasSuffix(string(line), "\r\n"), ShouldBeTrue)

					fields := strings.Split(strings.TrimSuffix(string(line), "\r\n"), ",")
					So(fields, ShouldHaveLength, 3)
					for i, f := range fields {
						if Mode(i) == mode {
							So(strings.TrimSpace(f), ShouldNotEqual, "0.00")
						} else {
							So(f, ShouldEqual, " 0.00")
						}
					}
				}
			}
		})

		Convey("An unknown mode is rejected", func() {
			_, err := EncodeSetpoint(Mode(7), 1)
			So(errors.Is(err, ErrInvalidMode), ShouldBeTrue)
		})

		Convey("Non-finite values are rejected", func() {
			_, err := EncodeSetpoint(Position, math.NaN())
			So(errors.Is(err, ErrInvalidValue), ShouldBeTrue)
			_, err = EncodeSetpoint(Speed, math.Inf(-1))
			So(errors.Is(err, ErrInvalidValue), ShouldBeTrue)
		})
	})
}

func TestParseCommand(t *testing.T) {
	Convey("Parsing an encoded command recovers its fields", t, func() {
		for _, mode := range Modes {
			line, err := EncodeSetpoint(mode, -42.318)
			So(err, ShouldBeNil)

			c, err := ParseCommand(line)
			So(err, ShouldBeNil)

			got, ok := c.Mode()
			So(ok, ShouldBeTrue)
			So(got, ShouldEqual, mode)

			want, _ := NewCommand(mode, -42.32)
			So(c.Position, ShouldAlmostEqual, want.Position, 1e-9)
			So(c.Speed, ShouldAlmostEqual, want.Speed, 1e-9)
			So(c.Current, ShouldAlmostEqual, want.Current, 1e-9)
		}
	})

	Convey("An all-zero command has no mode", t, func() {
		c, err := ParseCommand([]byte(" 0.00, 0.00, 0.00\r\n"))
		So(err, ShouldBeNil)
		_, ok := c.Mode()
		So(ok, ShouldBeFalse)
	})

	Convey("Lines with the wrong shape fail", t, func() {
		_, err := ParseCommand([]byte("origin\r\n"))
		So(err, ShouldNotBeNil)
		_, err = ParseCommand([]byte("1,x,3\r\n"))
		So(err, ShouldNotBeNil)
	})
}

func TestRange(t *testing.T) {
	Convey("Ranges follow the driver limits", t, func() {
		So(Position.Range(), ShouldResemble, Range{Min: -360, Max: 360, Step: 1})
		So(Speed.Range().Max, ShouldEqual, 100000.0)
		So(Current.Range().Min, ShouldEqual, -60000.0)
		So(Mode(-1).Range(), ShouldResemble, Range{})
	})

	Convey("Clamp keeps values inside the range", t, func() {
		r := Position.Range()
		So(r.Clamp(400), ShouldEqual, 360.0)
		So(r.Clamp(-1000), ShouldEqual, -360.0)
		So(r.Clamp(12.344), ShouldAlmostEqual, 12.34, 1e-9)
	})

	Convey("Modes print their names", t, func() {
		So(Position.String(), ShouldEqual, "position")
		So(Current.String(), ShouldEqual, "current")
		So(Mode(9).String(), ShouldEqual, "Mode(9)")
	})
}
