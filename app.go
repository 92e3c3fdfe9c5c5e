package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"akservo/servo"
)

// ------------------------------ App model --------------------------------------

type focusArea int

const (
	focusPorts focusArea = iota
	focusSliders
)

// slider holds one setpoint. Moving it only changes the value; the command
// goes out when the operator commits it.
type slider struct {
	mode  servo.Mode
	value float64
	bar   progress.Model
}

func (s *slider) nudge(steps float64) {
	r := s.mode.Range()
	s.value = r.Clamp(s.value + steps*r.Step)
}

func (s *slider) set(v float64) { s.value = s.mode.Range().Clamp(v) }

func (s slider) percent() float64 {
	r := s.mode.Range()
	return (s.value - r.Min) / (r.Max - r.Min)
}

type appModel struct {
	session   *servo.Session
	poll      time.Duration
	startPort string
	listPorts func() ([]servo.PortInfo, error)

	ports    table.Model
	portList []servo.PortInfo

	sliders [len(servo.Modes)]slider
	active  int
	focus   focusArea

	telemetry servo.Telemetry
	linkLost  error

	status string
	err    error

	entering bool
	input    textinput.Model
}

type pollMsg struct{}

type portsMsg struct {
	ports []servo.PortInfo
	err   error
}

type connectMsg struct {
	port string
	err  error
}

type disconnectMsg struct{ err error }

type writeDoneMsg struct {
	what string
	err  error
}

func newApp(session *servo.Session, cfg config, listPorts func() ([]servo.PortInfo, error)) appModel {
	ti := textinput.New()
	ti.CharLimit = 16
	ti.Prompt = "> "

	columns := []table.Column{
		{Title: "Port", Width: 22},
		{Title: "Description", Width: 24},
		{Title: "HWID", Width: 32},
	}
	t := table.New(table.WithColumns(columns), table.WithHeight(5), table.WithFocused(true))
	t.SetStyles(defaultTableStyles())

	m := appModel{
		session:   session,
		poll:      cfg.Poll,
		startPort: cfg.Port,
		listPorts: listPorts,
		ports:     t,
		input:     ti,
		status:    "choose the serial port and press c to connect",
	}
	for i, mode := range servo.Modes {
		m.sliders[i] = slider{
			mode: mode,
			bar:  progress.New(progress.WithDefaultGradient(), progress.WithWidth(40), progress.WithoutPercentage()),
		}
	}
	return m
}

func (m appModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.refreshPorts(), poll(m.poll)}
	if m.startPort != "" {
		cmds = append(cmds, m.connect(m.startPort))
	}
	return tea.Batch(cmds...)
}

// poll arms the next telemetry tick.
func poll(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return pollMsg{} })
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case pollMsg:
		if t, ok := m.session.Poll(); ok {
			m.telemetry = t
		}
		if err := m.session.Err(); err != nil && m.linkLost == nil {
			m.linkLost = err
			m.err = fmt.Errorf("link lost: %w", err)
		}
		return m, poll(m.poll)

	case tea.KeyMsg:
		if m.entering {
			return m.updateEntry(msg)
		}

		switch msg.String() {
		case "q", "ctrl+c":
			_ = m.session.Disconnect()
			return m, tea.Quit
		case "tab":
			if m.focus == focusPorts {
				m.focus = focusSliders
				m.ports.Blur()
			} else {
				m.focus = focusPorts
				m.ports.Focus()
			}
			return m, nil
		case "r":
			return m, m.refreshPorts()
		case "c":
			return m, m.connectSelected()
		case "x":
			return m, m.disconnect()
		case "o":
			return m, m.setOrigin()
		case "e":
			m.entering = true
			m.input.SetValue("")
			m.input.Focus()
			return m, nil
		}

		if m.focus == focusSliders {
			return m.updateSliders(msg)
		}
		if msg.String() == "enter" {
			return m, m.connectSelected()
		}

	case portsMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.portList = msg.ports
		rows := make([]table.Row, 0, len(msg.ports))
		for _, p := range msg.ports {
			rows = append(rows, table.Row{p.Name, p.Description, p.HWID})
		}
		m.ports.SetRows(rows)
		if len(rows) > 0 && m.ports.Cursor() >= len(rows) {
			m.ports.SetCursor(len(rows) - 1)
		}
		m.status = fmt.Sprintf("found %d ports", len(rows))
		return m, nil

	case connectMsg:
		if msg.err != nil {
			m.err = msg.err
			m.status = "not connected"
			return m, nil
		}
		m.err, m.linkLost = nil, nil
		m.status = fmt.Sprintf("connected %s @ %d", msg.port, m.session.Baud())
		return m, nil

	case disconnectMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err, m.linkLost = nil, nil
		m.status = "disconnected"
		return m, nil

	case writeDoneMsg:
		if msg.err != nil {
			m.err = msg.err
			m.status = ""
			return m, nil
		}
		m.err = nil
		m.status = "sent " + msg.what
		return m, nil
	}

	var cmd tea.Cmd
	m.ports, cmd = m.ports.Update(msg)
	return m, cmd
}

func (m appModel) updateSliders(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := &m.sliders[m.active]
	switch msg.String() {
	case "up", "k":
		if m.active > 0 {
			m.active--
		}
	case "down", "j":
		if m.active < len(m.sliders)-1 {
			m.active++
		}
	case "left", "h":
		s.nudge(-1)
	case "right", "l":
		s.nudge(1)
	case "shift+left", "H":
		s.nudge(-10)
	case "shift+right", "L":
		s.nudge(10)
	case "0":
		s.set(0)
	case "enter", " ":
		return m, m.sendSetpoint(s.mode, s.value)
	}
	return m, nil
}

func (m appModel) updateEntry(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		_ = m.session.Disconnect()
		return m, tea.Quit
	case tea.KeyEnter:
		val := strings.TrimSpace(m.input.Value())
		m.entering = false
		m.input.Blur()
		v, err := strconv.ParseFloat(val, 64)
		if err != nil {
			m.err = fmt.Errorf("not a number: %q", val)
			return m, nil
		}
		s := &m.sliders[m.active]
		s.set(v)
		m.focus = focusSliders
		m.ports.Blur()
		return m, m.sendSetpoint(s.mode, s.value)
	case tea.KeyEsc:
		m.entering = false
		m.input.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m appModel) selectedPort() string {
	i := m.ports.Cursor()
	if i < 0 || i >= len(m.portList) {
		return ""
	}
	return m.portList[i].Name
}

// ------------------------------ Commands ---------------------------------------

func (m appModel) refreshPorts() tea.Cmd {
	list := m.listPorts
	return func() tea.Msg {
		ports, err := list()
		return portsMsg{ports: ports, err: err}
	}
}

func (m appModel) connectSelected() tea.Cmd {
	name := m.selectedPort()
	if name == "" {
		return func() tea.Msg { return connectMsg{err: errors.New("no port selected")} }
	}
	return m.connect(name)
}

func (m appModel) connect(name string) tea.Cmd {
	s := m.session
	return func() tea.Msg {
		return connectMsg{port: name, err: s.Connect(name)}
	}
}

func (m appModel) disconnect() tea.Cmd {
	s := m.session
	return func() tea.Msg {
		return disconnectMsg{err: s.Disconnect()}
	}
}

func (m appModel) sendSetpoint(mode servo.Mode, v float64) tea.Cmd {
	s := m.session
	return func() tea.Msg {
		return writeDoneMsg{what: fmt.Sprintf("%s % .2f", mode, v), err: s.SendSetpoint(mode, v)}
	}
}

func (m appModel) setOrigin() tea.Cmd {
	s := m.session
	return func() tea.Msg {
		return writeDoneMsg{what: "origin", err: s.SetOrigin()}
	}
}
