package sdk

import (
	"time"

	"github.com/benbjohnson/clock"
)

// Clock is the single trusted time source shared by every engine operation.
type Clock = clock.Clock

// NewClock returns the wall clock.
func NewClock() Clock {
	return clock.New()
}

// FixedClock returns a mock clock pinned at t, handy for scripted CLI runs
// where the operator passes --now.
func FixedClock(t time.Time) *clock.Mock {
	m := clock.NewMock()
	m.Set(t)
	return m
}

// NowUnix reads the clock in whole seconds, the resolution every stored
// timestamp uses.
func NowUnix(c Clock) int64 {
	return c.Now().Unix()
}
