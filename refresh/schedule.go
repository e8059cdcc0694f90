package refresh

import (
	"time"

	"github.com/fwojciec/schedbot"
)

// DefaultInterval is the time between refresh cycles.
const DefaultInterval = 24 * time.Hour

var _ schedbot.Schedule = Every(DefaultInterval)

// Every returns a Schedule that activates at a fixed interval.
// A non-positive interval uses DefaultInterval.
func Every(d time.Duration) schedbot.Schedule {
	if d <= 0 {
		d = DefaultInterval
	}
	return interval(d)
}

type interval time.Duration

func (i interval) Next(after time.Time) time.Time {
	return after.Add(time.Duration(i))
}
