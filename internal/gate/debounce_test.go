package gate_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/querybar/internal/gate"
	"github.com/oakwood-commons/querybar/internal/gate/gatetest"
)

func TestDebouncerOnlyLastTriggerFires(t *testing.T) {
	clock := gatetest.NewClock()
	d := gate.NewDebouncer(100*time.Millisecond, clock)

	var fired []string
	for _, text := range []string{"a", "ag", "age", "agent"} {
		text := text
		d.Trigger(func() { fired = append(fired, text) })
		clock.Advance(40 * time.Millisecond)
	}
	assert.Empty(t, fired, "nothing fires while the burst continues")

	clock.Advance(60 * time.Millisecond)
	assert.Equal(t, []string{"agent"}, fired)
	assert.False(t, d.Pending())
}

func TestDebouncerSeparateBurstsFireSeparately(t *testing.T) {
	clock := gatetest.NewClock()
	d := gate.NewDebouncer(0, clock)
	assert.Equal(t, gate.DefaultDebounceDelay, d.Delay())

	var count int32
	d.Trigger(func() { atomic.AddInt32(&count, 1) })
	clock.Advance(gate.DefaultDebounceDelay)
	d.Trigger(func() { atomic.AddInt32(&count, 1) })
	clock.Advance(gate.DefaultDebounceDelay)
	assert.EqualValues(t, 2, atomic.LoadInt32(&count))
}

func TestDebouncerCancelAndStop(t *testing.T) {
	clock := gatetest.NewClock()
	d := gate.NewDebouncer(10*time.Millisecond, clock)

	fired := false
	d.Trigger(func() { fired = true })
	require.True(t, d.Pending())
	d.Cancel()
	clock.Advance(time.Second)
	assert.False(t, fired)

	d.Stop()
	d.Trigger(func() { fired = true })
	clock.Advance(time.Second)
	assert.False(t, fired, "triggers after Stop are ignored")
	assert.Zero(t, clock.Pending())
}

func TestDebouncerRealClock(t *testing.T) {
	d := gate.NewDebouncer(5*time.Millisecond, nil)
	done := make(chan struct{})
	d.Trigger(func() { close(done) })
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("debounced call never fired")
	}
}
