// Package gatetest provides a manually advanced clock for debounce tests.
package gatetest

import (
	"sort"
	"sync"
	"time"

	"github.com/oakwood-commons/querybar/internal/gate"
)

// Clock is a gate.Clock whose time only moves when Advance is called.
// Callbacks run synchronously on the goroutine calling Advance.
type Clock struct {
	mu     sync.Mutex
	now    time.Duration
	nextID int
	timers map[int]*timer
}

type timer struct {
	clock *Clock
	id    int
	due   time.Duration
	f     func()
}

func (t *timer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if _, ok := t.clock.timers[t.id]; !ok {
		return false
	}
	delete(t.clock.timers, t.id)
	return true
}

// NewClock returns a clock at time zero.
func NewClock() *Clock {
	return &Clock{timers: map[int]*timer{}}
}

// AfterFunc implements gate.Clock.
func (c *Clock) AfterFunc(d time.Duration, f func()) gate.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	t := &timer{clock: c, id: c.nextID, due: c.now + d, f: f}
	c.timers[t.id] = t
	return t
}

// Pending returns the number of scheduled callbacks.
func (c *Clock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

// Advance moves time forward by d and runs every callback that became due,
// in due order.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []*timer
	for id, t := range c.timers {
		if t.due <= c.now {
			due = append(due, t)
			delete(c.timers, id)
		}
	}
	c.mu.Unlock()

	sort.Slice(due, func(i, j int) bool {
		if due[i].due == due[j].due {
			return due[i].id < due[j].id
		}
		return due[i].due < due[j].due
	})
	for _, t := range due {
		t.f()
	}
}
