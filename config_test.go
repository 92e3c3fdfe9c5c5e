package main

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoadConfig(t *testing.T) {
	Convey("With no environment or flags the defaults apply", t, func() {
		cfg, err := loadConfig(nil)
		So(err, ShouldBeNil)
		So(cfg.Baud, ShouldEqual, 115200)
		So(cfg.Poll, ShouldEqual, 10*time.Millisecond)
		So(cfg.LogFile, ShouldEqual, "akservo.log")
		So(cfg.Port, ShouldBeEmpty)
		So(cfg.List, ShouldBeFalse)
	})

	Convey("The environment sets defaults and flags override them", t, func() {
		t.Setenv("AKSERVO_PORT", "/dev/ttyACM0")
		t.Setenv("AKSERVO_BAUD", "57600")
		t.Setenv("AKSERVO_POLL", "25ms")

		cfg, err := loadConfig([]string{"-baud", "9600", "-list"})
		So(err, ShouldBeNil)
		So(cfg.Port, ShouldEqual, "/dev/ttyACM0")
		So(cfg.Baud, ShouldEqual, 9600)
		So(cfg.Poll, ShouldEqual, 25*time.Millisecond)
		So(cfg.List, ShouldBeTrue)
	})

	Convey("Nonsense values are rejected", t, func() {
		_, err := loadConfig([]string{"-baud", "0"})
		So(err, ShouldNotBeNil)

		_, err = loadConfig([]string{"-poll", "-1s"})
		So(err, ShouldNotBeNil)

		t.Setenv("AKSERVO_BAUD", "fast")
		_, err = loadConfig(nil)
		So(err, ShouldNotBeNil)
	})
}
