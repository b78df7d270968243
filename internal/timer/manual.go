package timer

import (
	"sort"
	"time"
)

// Manual is a virtual-time Scheduler for tests and one-shot rendering.
// Callbacks only run inside Advance, in deadline order, with Now set to each
// callback's deadline.
type Manual struct {
	now     time.Time
	seq     uint64
	entries []*manualEntry
}

type manualEntry struct {
	at       time.Time
	seq      uint64
	f        func()
	canceled bool
}

func (e *manualEntry) Cancel() {
	e.canceled = true
}

// NewManual creates a Manual scheduler starting at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now returns the virtual time.
func (m *Manual) Now() time.Time {
	return m.now
}

// AfterFunc queues f to run at Now()+d.
func (m *Manual) AfterFunc(d time.Duration, f func()) Handle {
	if d < 0 {
		d = 0
	}
	m.seq++
	e := &manualEntry{at: m.now.Add(d), seq: m.seq, f: f}
	m.entries = append(m.entries, e)
	return e
}

// Advance moves virtual time forward by d, running every callback due by
// then, including callbacks scheduled by earlier callbacks.
func (m *Manual) Advance(d time.Duration) {
	target := m.now.Add(d)
	for {
		e := m.next(target)
		if e == nil {
			break
		}
		m.now = e.at
		e.f()
	}
	m.now = target
}

// Pending returns the number of live queued callbacks.
func (m *Manual) Pending() int {
	n := 0
	for _, e := range m.entries {
		if !e.canceled {
			n++
		}
	}
	return n
}

// next pops the earliest live entry due at or before target.
func (m *Manual) next(target time.Time) *manualEntry {
	live := m.entries[:0]
	for _, e := range m.entries {
		if !e.canceled {
			live = append(live, e)
		}
	}
	m.entries = live

	sort.SliceStable(m.entries, func(i, j int) bool {
		if m.entries[i].at.Equal(m.entries[j].at) {
			return m.entries[i].seq < m.entries[j].seq
		}
		return m.entries[i].at.Before(m.entries[j].at)
	})

	if len(m.entries) == 0 || m.entries[0].at.After(target) {
		return nil
	}
	e := m.entries[0]
	m.entries = m.entries[1:]
	return e
}
