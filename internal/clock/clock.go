// Package clock supplies the wall-clock time and the tick counter that game
// operations consume from their environment.
package clock

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"sync/atomic"
	"time"
)

// Clock reports the current unix time in seconds.
type Clock interface {
	Now() int64
}

// TickSource yields a counter that advances on every read.
type TickSource interface {
	Tick() uint64
}

// System reads the host wall clock.
type System struct{}

// Now implements Clock.
func (System) Now() int64 {
	return time.Now().Unix()
}

// Counter is a monotonic tick source starting from a secret random offset,
// so the next value cannot be guessed from outside the process.
type Counter struct {
	n atomic.Uint64
}

// NewCounter seeds a Counter from crypto/rand.
func NewCounter() (*Counter, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return nil, fmt.Errorf("read tick seed: %w", err)
	}
	c := &Counter{}
	c.n.Store(binary.LittleEndian.Uint64(b[:]))
	return c, nil
}

// NewCounterAt returns a Counter whose first Tick is start+1.
func NewCounterAt(start uint64) *Counter {
	c := &Counter{}
	c.n.Store(start)
	return c
}

// Tick implements TickSource.
func (c *Counter) Tick() uint64 {
	return c.n.Add(1)
}

// Fixed is a Clock and TickSource that always returns the same values.
type Fixed struct {
	Time int64
	Slot uint64
}

// Now implements Clock.
func (f Fixed) Now() int64 { return f.Time }

// Tick implements TickSource.
func (f Fixed) Tick() uint64 { return f.Slot }
