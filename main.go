// akservo — Bubble Tea control panel for a CubeMars AK servo behind a serial bridge
//
// Build:
//   go build -o akservo
//
// Run:
//   ./akservo                      # pick a port from the list
//   ./akservo -port /dev/ttyUSB0   # connect at start
//   ./akservo -list                # print serial ports and exit
//
// Environment defaults (flags win): AKSERVO_PORT, AKSERVO_BAUD, AKSERVO_POLL, AKSERVO_LOG.
//
// Keys:
//   tab        — switch between port list and sliders
//   c / enter  — connect selected port (port list)
//   x          — disconnect
//   r          — refresh port list
//   o          — set origin
//   ←/→        — move slider (shift for x10)
//   0          — zero slider
//   e          — type an exact value for the active slider and send it
//   enter      — send active slider (sliders)
//   q          — quit
//
// Notes:
//  • Wire format: "pos,speed,current\r\n" with one non-zero field, "% .2f" each;
//    telemetry comes back as five comma separated fields per line.
//  • Log output goes to the -log file while the UI is running.
//
package main

import (
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"akservo/servo"
)

// ---------------------------------- main ---------------------------------------

func main() {
	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	if cfg.List {
		ports, err := servo.ListPorts()
		if err != nil {
			log.Fatal(err)
		}
		for _, p := range ports {
			fmt.Println(p)
		}
		return
	}

	f, err := tea.LogToFile(cfg.LogFile, "akservo")
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	session := servo.NewSession(servo.OpenSerial, cfg.Baud)
	p := tea.NewProgram(newApp(session, cfg, servo.ListPorts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatal(err)
	}
}
