// File: reactor/idle.go
// Author: momentics <momentics@gmail.com>
//
// Additive idle backoff between empty poll cycles.

package reactor

import "time"

// idleStep runs after every successful readiness query. With events pending
// the idle duration snaps back to budget/10. Otherwise the caller's thread
// sleeps for the current duration, which then grows by budget/10 up to
// budget.
func (r *Reactor[W]) idleStep(budget time.Duration) {
	if budget < 0 {
		budget = 0
	}
	step := budget / 10

	if r.pending() > 0 {
		r.idle = step
		r.cfg.metrics.ObserveIdle(false, r.idle)
		return
	}

	sleep := r.idle
	if sleep > budget {
		sleep = budget
	}
	if sleep > 0 {
		r.cfg.clock.Sleep(sleep)
	}

	if r.idle != budget {
		r.idle += step
		if r.idle > budget {
			r.idle = budget
		}
	}
	r.cfg.metrics.ObserveIdle(sleep > 0, r.idle)
}
