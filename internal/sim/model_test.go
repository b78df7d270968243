package sim

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"

	"github.com/sweeney/watchface/internal/assets"
	"github.com/sweeney/watchface/internal/face"
	"github.com/sweeney/watchface/internal/logic"
	"github.com/sweeney/watchface/internal/render"
	"github.com/sweeney/watchface/internal/timer"
)

var epoch = time.Date(2026, 3, 7, 15, 30, 0, 0, time.UTC)

func newModel(t *testing.T, battery logic.BatteryState, connected bool) (Model, *timer.Manual) {
	t.Helper()
	set, err := assets.Load("")
	if err != nil {
		t.Fatalf("assets: %v", err)
	}
	t.Cleanup(func() { set.Close() })
	frame, err := render.NewFrame(set)
	if err != nil {
		t.Fatalf("frame: %v", err)
	}
	clock := timer.NewManual(epoch)
	m := New(Options{
		Face:      face.DefaultConfig(),
		Frame:     frame,
		Scheduler: clock,
		Battery:   battery,
		Connected: connected,
	})
	return m, clock
}

func press(t *testing.T, m Model, keys string) Model {
	t.Helper()
	for _, r := range keys {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(Model)
	}
	return m
}

func noticeTypes(m Model) []face.NoticeType {
	var out []face.NoticeType
	for _, n := range m.journal.notices {
		out = append(out, n.Type)
	}
	return out
}

func TestNewStartsFace(t *testing.T) {
	m, _ := newModel(t, logic.BatteryState{Level: 50}, true)

	s := m.Controller().Snapshot()
	if s.Overlay != logic.Showing {
		t.Errorf("overlay: got %s, want SHOWING", s.Overlay)
	}
	if s.Counts.Redraws != 1 {
		t.Errorf("redraws: got %d, want 1", s.Counts.Redraws)
	}
	if diff := cmp.Diff([]face.NoticeType{face.NoticeOverlayShown}, noticeTypes(m)); diff != "" {
		t.Errorf("notices mismatch (-want +got):\n%s", diff)
	}
}

func TestOverlayExpiresAndTapShowsIt(t *testing.T) {
	m, clock := newModel(t, logic.BatteryState{Level: 50}, true)

	clock.Advance(face.DisplayTimeout)
	if got := m.Controller().Snapshot().Overlay; got != logic.Hidden {
		t.Fatalf("overlay after timeout: got %s", got)
	}

	m = press(t, m, "t")
	s := m.Controller().Snapshot()
	if s.Overlay != logic.Showing {
		t.Errorf("overlay after tap: got %s", s.Overlay)
	}
	if s.Counts.Taps != 1 {
		t.Errorf("taps: got %d, want 1", s.Counts.Taps)
	}
}

func TestBatteryKeys(t *testing.T) {
	m, _ := newModel(t, logic.BatteryState{Level: 50}, true)

	m = press(t, m, "-")
	if got := m.Controller().Snapshot().Battery.Level; got != 40 {
		t.Errorf("after -: got %d, want 40", got)
	}

	m = press(t, m, "++++++++")
	if got := m.Controller().Snapshot().Battery.Level; got != 100 {
		t.Errorf("after +: got %d, want clamped 100", got)
	}

	m = press(t, m, "c")
	b := m.Controller().Snapshot().Battery
	if !b.Charging || !b.Plugged {
		t.Errorf("charging should imply plugged: got %+v", b)
	}
	if got := m.Controller().Snapshot().BatteryIcon; got != logic.IconBatteryCharging {
		t.Errorf("icon: got %s, want charging", got)
	}

	m = press(t, m, "p")
	b = m.Controller().Snapshot().Battery
	if b.Charging || b.Plugged {
		t.Errorf("unplug should stop charging: got %+v", b)
	}

	types := noticeTypes(m)
	if types[len(types)-1] != face.NoticeBattery {
		t.Errorf("last notice: got %s, want BATTERY_CHANGED", types[len(types)-1])
	}
}

func TestBluetoothToggleAlerts(t *testing.T) {
	m, clock := newModel(t, logic.BatteryState{Level: 80}, true)
	clock.Advance(face.DisplayTimeout)

	m = press(t, m, "b")
	clock.Advance(face.GracePeriod + face.PulseGap)

	if m.buzz.pulses != 2 {
		t.Errorf("pulses: got %d, want 2", m.buzz.pulses)
	}
	s := m.Controller().Snapshot()
	if s.Bluetooth.Connected || !s.Bluetooth.AlreadyVibrated {
		t.Errorf("bluetooth: got %+v", s.Bluetooth)
	}

	view := m.View()
	for _, want := range []string{"disconnected", "BZZT", string(face.NoticeBTAlert)} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	m = press(t, m, "b")
	if !m.Controller().Snapshot().Bluetooth.Connected {
		t.Error("expected reconnect")
	}
}

func TestMinuteTickRedraws(t *testing.T) {
	m, _ := newModel(t, logic.BatteryState{Level: 80}, true)
	before := m.Controller().Snapshot().Counts.Redraws

	next, _ := m.Update(tickMsg{t: epoch.Add(24 * time.Hour).Truncate(time.Minute)})
	m = next.(Model)

	s := m.Controller().Snapshot()
	if s.DateText != "08" {
		t.Errorf("date: got %q, want 08", s.DateText)
	}
	if s.Counts.Redraws != before+1 {
		t.Errorf("redraws: got %d, want %d", s.Counts.Redraws, before+1)
	}
}

func TestFiringMsgRunsCallback(t *testing.T) {
	m, _ := newModel(t, logic.BatteryState{Level: 80}, true)
	ran := false

	_, cmd := m.Update(firingMsg{f: func() { ran = true }})
	if !ran {
		t.Error("callback not run")
	}
	if cmd != nil {
		t.Error("expected no follow-up without a firing channel")
	}
}

func TestWaitCommands(t *testing.T) {
	if waitFiring(nil) != nil || waitTick(nil) != nil {
		t.Fatal("nil channels should give nil commands")
	}

	ticks := make(chan time.Time, 1)
	ticks <- epoch
	msg := waitTick(ticks)()
	if got, ok := msg.(tickMsg); !ok || !got.t.Equal(epoch) {
		t.Errorf("waitTick: got %#v", msg)
	}
	close(ticks)
	if msg := waitTick(ticks)(); msg != nil {
		t.Errorf("closed ticks: got %#v, want nil", msg)
	}

	firings := make(chan func(), 1)
	firings <- func() {}
	if _, ok := waitFiring(firings)().(firingMsg); !ok {
		t.Error("waitFiring should wrap the callback")
	}
}

func TestQuitClosesFace(t *testing.T) {
	m, clock := newModel(t, logic.BatteryState{Level: 80}, true)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m = next.(Model)
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
	if m.View() != "" {
		t.Error("view should be empty after quit")
	}
	if clock.Pending() != 0 {
		t.Errorf("pending deadlines after quit: %d", clock.Pending())
	}
}

func TestHelpToggle(t *testing.T) {
	m, _ := newModel(t, logic.BatteryState{Level: 80}, true)
	if m.help.ShowAll {
		t.Fatal("help should start collapsed")
	}
	m = press(t, m, "?")
	if !m.help.ShowAll {
		t.Error("expected full help")
	}
	if !strings.Contains(m.View(), "Toggle charging") {
		t.Error("full help should list the charge key")
	}
}
