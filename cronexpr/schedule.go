// Package cronexpr provides refresh schedules from cron expressions.
package cronexpr

import (
	"strings"
	"time"

	"github.com/fwojciec/schedbot"
	"github.com/gorhill/cronexpr"
)

var _ schedbot.Schedule = (*Schedule)(nil)

// Schedule activates at the times matched by a cron expression.
type Schedule struct {
	expr *cronexpr.Expression
	spec string
}

// Parse parses a cron expression such as "0 3 * * *" or "@daily".
func Parse(spec string) (*Schedule, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, schedbot.Errorf(schedbot.EINVALID, "cron expression required")
	}
	expr, err := cronexpr.Parse(spec)
	if err != nil {
		return nil, schedbot.Errorf(schedbot.EINVALID, "invalid cron expression %q: %v", spec, err)
	}
	return &Schedule{expr: expr, spec: spec}, nil
}

// Next returns the first matching time after the given time, or the zero
// time if the expression never matches again.
func (s *Schedule) Next(after time.Time) time.Time {
	return s.expr.Next(after)
}

// String returns the expression as parsed.
func (s *Schedule) String() string {
	return s.spec
}
