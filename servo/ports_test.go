package servo

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"go.bug.st/serial/enumerator"
)

func TestDescribePort(t *testing.T) {
	Convey("USB adapters carry product and hardware id", t, func() {
		p := describePort(&enumerator.PortDetails{
			Name:         "/dev/ttyUSB0",
			IsUSB:        true,
			VID:          "1a86",
			PID:          "7523",
			SerialNumber: "A12",
			Product:      "USB Serial",
		})
		So(p, ShouldResemble, PortInfo{
			Name:        "/dev/ttyUSB0",
			Description: "USB Serial",
			HWID:        "USB VID:PID=1A86:7523 SER=A12",
		})
		So(p.String(), ShouldEqual, "/dev/ttyUSB0: USB Serial [USB VID:PID=1A86:7523 SER=A12]")
	})

	Convey("Other ports are n/a", t, func() {
		p := describePort(&enumerator.PortDetails{Name: "/dev/ttyS0"})
		So(p, ShouldResemble, PortInfo{Name: "/dev/ttyS0", Description: "n/a", HWID: "n/a"})
	})

	Convey("Ports sort by name", t, func() {
		ports := []PortInfo{{Name: "COM3"}, {Name: "COM10"}, {Name: "COM1"}}
		sortPorts(ports)
		So(ports[0].Name, ShouldEqual, "COM1")
		So(ports[2].Name, ShouldEqual, "COM3")
	})
}
