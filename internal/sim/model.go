// Package sim runs the face in a terminal. Bubble Tea's update loop is the
// face's event loop: key presses, expired deadlines and minute ticks all
// arrive as messages and are handled one at a time.
package sim

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sweeney/watchface/internal/face"
	"github.com/sweeney/watchface/internal/logic"
	"github.com/sweeney/watchface/internal/render"
	"github.com/sweeney/watchface/internal/timer"
	"github.com/sweeney/watchface/internal/xslog"
)

const (
	batteryStep = 10
	maxNotices  = 6
	// buzzVisible is how long a pulse stays highlighted in the status panel.
	buzzVisible = time.Second
)

var (
	frameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
	panelStyle = lipgloss.NewStyle().
			PaddingLeft(2)
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Width(11)
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	buzzStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("226"))
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Options configures the simulator.
type Options struct {
	Face  face.Config
	Frame *render.Frame
	// Scheduler runs the overlay and alert deadlines. Firings, when set,
	// delivers its expired callbacks (see timer.Loop).
	Scheduler timer.Scheduler
	Firings   <-chan func()
	// Ticks delivers wall-clock minute boundaries.
	Ticks <-chan time.Time
	// Initial host state.
	Battery   logic.BatteryState
	Connected bool
	Logger    *slog.Logger
}

type firingMsg struct{ f func() }

type tickMsg struct{ t time.Time }

// host is the simulated battery and phone link. The face peeks it at
// startup; key presses change it and send the matching event.
type host struct {
	battery   logic.BatteryState
	connected bool
}

func (h *host) PeekBattery() logic.BatteryState { return h.battery }
func (h *host) PeekBluetooth() bool             { return h.connected }

// buzzer records haptic pulses for display.
type buzzer struct {
	now    func() time.Time
	pulses int
	last   time.Time
}

func (b *buzzer) ShortPulse() {
	b.pulses++
	b.last = b.now()
}

// journal keeps the most recent notices.
type journal struct {
	notices []face.Notice
}

func (j *journal) add(n face.Notice) {
	j.notices = append(j.notices, n)
	if len(j.notices) > maxNotices {
		j.notices = j.notices[len(j.notices)-maxNotices:]
	}
}

// Model is the Bubble Tea model of the simulator.
type Model struct {
	ctrl    *face.Controller
	frame   *render.Frame
	sched   timer.Scheduler
	firings <-chan func()
	ticks   <-chan time.Time

	host    *host
	buzz    *buzzer
	journal *journal

	keys     keyMap
	help     help.Model
	quitting bool
}

// New builds the face on the simulated platform and starts it.
func New(opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = xslog.Discard()
	}
	h := &host{battery: opts.Battery, connected: opts.Connected}
	b := &buzzer{now: opts.Scheduler.Now}
	j := &journal{}

	ctrl := face.NewController(opts.Face, face.Platform{
		Scheduler: opts.Scheduler,
		Screen:    opts.Frame,
		Canvas:    opts.Frame,
		Vibrator:  b,
		Battery:   h,
		Bluetooth: h,
	},
		face.WithLogger(logger),
		face.WithNoticeSink(j.add),
	)
	ctrl.Start()

	m := Model{
		ctrl:    ctrl,
		frame:   opts.Frame,
		sched:   opts.Scheduler,
		firings: opts.Firings,
		ticks:   opts.Ticks,
		host:    h,
		buzz:    b,
		journal: j,
		keys:    defaultKeyMap(),
		help:    help.New(),
	}
	m.redrawIfDirty()
	return m
}

// Controller exposes the face controller.
func (m Model) Controller() *face.Controller {
	return m.ctrl
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(waitFiring(m.firings), waitTick(m.ticks))
}

func waitFiring(ch <-chan func()) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		f, ok := <-ch
		if !ok {
			return nil
		}
		return firingMsg{f: f}
	}
}

func waitTick(ch <-chan time.Time) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		t, ok := <-ch
		if !ok {
			return nil
		}
		return tickMsg{t: t}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd = m.handleKey(msg)
	case firingMsg:
		msg.f()
		cmd = waitFiring(m.firings)
	case tickMsg:
		m.ctrl.Handle(face.MinuteTick{Time: msg.t})
		cmd = waitTick(m.ticks)
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
	}
	m.redrawIfDirty()
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	h := m.host
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.ctrl.Close()
		return tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Tap):
		m.ctrl.Handle(face.Tapped{})
	case key.Matches(msg, m.keys.BatteryUp):
		h.battery.Level = min(h.battery.Level+batteryStep, 100)
		m.ctrl.Handle(face.BatteryChanged{State: h.battery})
	case key.Matches(msg, m.keys.BatteryDown):
		h.battery.Level = max(h.battery.Level-batteryStep, 0)
		m.ctrl.Handle(face.BatteryChanged{State: h.battery})
	case key.Matches(msg, m.keys.Plug):
		h.battery.Plugged = !h.battery.Plugged
		if !h.battery.Plugged {
			h.battery.Charging = false
		}
		m.ctrl.Handle(face.BatteryChanged{State: h.battery})
	case key.Matches(msg, m.keys.Charge):
		h.battery.Charging = !h.battery.Charging
		if h.battery.Charging {
			h.battery.Plugged = true
		}
		m.ctrl.Handle(face.BatteryChanged{State: h.battery})
	case key.Matches(msg, m.keys.Bluetooth):
		h.connected = !h.connected
		m.ctrl.Handle(face.BluetoothChanged{Connected: h.connected})
	}
	return nil
}

// redrawIfDirty mirrors face.Run: a redraw follows any handler that left
// the hands dirty.
func (m *Model) redrawIfDirty() {
	if m.ctrl.NeedsRedraw() {
		m.ctrl.Handle(face.RedrawRequested{})
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	watch := frameStyle.Render(render.Braille(m.frame.Render()))
	side := panelStyle.Render(m.statusView())
	body := lipgloss.JoinHorizontal(lipgloss.Top, watch, side)
	return lipgloss.JoinVertical(lipgloss.Left, body, m.help.View(m.keys))
}

func (m Model) statusView() string {
	s := m.ctrl.Snapshot()
	var b strings.Builder

	b.WriteString(titleStyle.Render("watchface"))
	b.WriteString("\n\n")

	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label))
		b.WriteString(value)
		b.WriteString("\n")
	}

	row("time", fmt.Sprintf("%02d:%02d  day %s", s.Time.Hour, s.Time.Minute, s.DateText))

	overlay := dimStyle.Render(string(s.Overlay))
	if s.Overlay.Visible() {
		overlay = okStyle.Render(string(s.Overlay))
	}
	row("overlay", overlay)

	batt := fmt.Sprintf("%d%%", s.Battery.Level)
	switch {
	case s.Battery.Charging:
		batt += " charging"
	case s.Battery.Plugged:
		batt += " plugged"
	}
	row("battery", batt)
	row("icon", iconText(s.BatteryIcon, s.BatteryHidden))

	link := warnStyle.Render("disconnected")
	if s.Bluetooth.Connected {
		link = okStyle.Render("connected")
	}
	if s.Bluetooth.AlreadyVibrated {
		link += dimStyle.Render(" (alerted)")
	}
	row("bluetooth", link)

	vibe := fmt.Sprintf("%d", m.buzz.pulses)
	if m.buzz.pulses > 0 && m.sched.Now().Sub(m.buzz.last) < buzzVisible {
		vibe += " " + buzzStyle.Render("BZZT")
	}
	row("pulses", vibe)
	row("taps", fmt.Sprintf("%d", s.Counts.Taps))

	b.WriteString("\n")
	b.WriteString(titleStyle.Render("notices"))
	b.WriteString("\n")
	if len(m.journal.notices) == 0 {
		b.WriteString(dimStyle.Render("none"))
		b.WriteString("\n")
	}
	for _, n := range m.journal.notices {
		b.WriteString(dimStyle.Render(n.Timestamp.Format("15:04:05.000")))
		b.WriteString(" ")
		b.WriteString(string(n.Type))
		b.WriteString("\n")
	}
	return b.String()
}

func iconText(id logic.IconID, hidden bool) string {
	if hidden {
		return dimStyle.Render(string(id) + " (hidden)")
	}
	return string(id)
}
