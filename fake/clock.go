// File: fake/clock.go
// Author: momentics <momentics@gmail.com>

package fake

import (
	"time"

	"github.com/benbjohnson/clock"
)

// Clock is a mock clock whose Sleep returns at once and records the
// requested duration.
type Clock struct {
	*clock.Mock
	Sleeps []time.Duration
}

func NewClock() *Clock {
	return &Clock{Mock: clock.NewMock()}
}

func (c *Clock) Sleep(d time.Duration) {
	c.Sleeps = append(c.Sleeps, d)
}
