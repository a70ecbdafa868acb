package memdom

import (
	"sort"
	"sync"
	"time"

	"go-excelproc/internal/formctl"
)

// Clock is a manual formctl.Scheduler. Callbacks run only from Advance.
type Clock struct {
	mu      sync.Mutex
	now     time.Duration
	pending []timer
	seq     int
}

type timer struct {
	at  time.Duration
	seq int
	f   func()
}

func (c *Clock) AfterFunc(d time.Duration, f func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.pending = append(c.pending, timer{at: c.now + d, seq: c.seq, f: f})
}

// Advance moves time forward and runs every callback that became due, in
// due order.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due, rest []timer
	for _, t := range c.pending {
		if t.at <= c.now {
			due = append(due, t)
		} else {
			rest = append(rest, t)
		}
	}
	c.pending = rest
	c.mu.Unlock()

	sort.Slice(due, func(i, j int) bool {
		if due[i].at != due[j].at {
			return due[i].at < due[j].at
		}
		return due[i].seq < due[j].seq
	})
	for _, t := range due {
		t.f()
	}
}

// Pending counts callbacks not yet run.
func (c *Clock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Icons counts icon substitutions.
type Icons struct {
	mu sync.Mutex
	n  int
}

func (i *Icons) Replace() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.n++
}

func (i *Icons) Count() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.n
}

// Tooltips records attached triggers.
type Tooltips struct {
	mu       sync.Mutex
	attached []string
}

func (t *Tooltips) Attach(tr formctl.TooltipTrigger) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.attached = append(t.attached, tr.Title())
}

func (t *Tooltips) Attached() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.attached...)
}

// Mount builds a controller over d driven by a manual clock.
func Mount(d *Document) (*formctl.Controller, *Clock, *Icons, *Tooltips) {
	clock := &Clock{}
	icons := &Icons{}
	tips := &Tooltips{}
	c := &formctl.Controller{Doc: d, Icons: icons, Tooltips: tips, Timer: clock}
	return c, clock, icons, tips
}
