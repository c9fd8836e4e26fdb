package frame

import "time"

// Clock tracks the duration of the last frame and the time since start.
// Now returns seconds from an arbitrary origin.
type Clock struct {
	now   func() float64
	start float64
	last  float64
	delta float64
}

func NewClock(now func() float64) *Clock {
	t := now()
	return &Clock{now: now, start: t, last: t}
}

// WallTime is a Clock source backed by the monotonic clock.
func WallTime() func() float64 {
	origin := time.Now()
	return func() float64 {
		return time.Since(origin).Seconds()
	}
}

// FixedStep returns a source that advances by step on every call.
func FixedStep(step time.Duration) func() float64 {
	var t float64
	return func() float64 {
		v := t
		t += step.Seconds()
		return v
	}
}

// Tick ends the current frame.
func (c *Clock) Tick() {
	t := c.now()
	c.delta = t - c.last
	c.last = t
}

// Delta is the length of the last completed frame in seconds.
func (c *Clock) Delta() float64 {
	return c.delta
}

func (c *Clock) Total() float64 {
	return c.last - c.start
}
