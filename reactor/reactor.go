// File: reactor/reactor.go
// Author: momentics <momentics@gmail.com>
//
// Edge-style readiness reactor on top of a level-triggered Selector.

package reactor

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/eapache/queue"
	"go.uber.org/zap"

	"github.com/momentics/hioload-cio/api"
)

// Reactor multiplexes registered descriptors and queues readiness events.
// W is the type of the caller-owned wrapper attached to each registration.
type Reactor[W any] struct {
	cfg config

	regs  map[int]*registration[W]
	order []*registration[W]

	readInterest  map[int]struct{}
	writeInterest map[int]struct{}
	readHigh      int
	writeHigh     int
	readFds       []int
	writeFds      []int

	// events holds *Event[W] in creation order. Consumed and dropped
	// entries stay queued until the next Poll.
	events *queue.Queue
	cursor int

	idle   time.Duration
	nextID uint64
	closed bool
}

// New creates an empty reactor.
func New[W any](opts ...Option) (*Reactor[W], error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.selector == nil {
		cfg.selector = NewSelector()
	}
	if cfg.maxRegistrations < 0 {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "reactor: negative registration limit").
			WithContext("max", cfg.maxRegistrations)
	}
	return &Reactor[W]{
		cfg:           cfg,
		regs:          make(map[int]*registration[W]),
		readInterest:  make(map[int]struct{}),
		writeInterest: make(map[int]struct{}),
		events:        queue.New(),
	}, nil
}

// Register installs or replaces the registration for fd. A previous
// registration of the same descriptor is discarded first, together with
// any of its events not yet returned by Next.
func (r *Reactor[W]) Register(fd, token int, flags Flags, wrapper W) error {
	if r.closed {
		return api.ErrClosed
	}
	if fd < 0 || flags&^flagMask != 0 {
		return api.NewError(api.ErrCodeInvalidArgument, "reactor: invalid registration").
			WithContext("fd", fd).
			WithContext("flags", flags.String())
	}

	old, replacing := r.regs[fd]
	if !replacing && r.cfg.maxRegistrations > 0 && len(r.regs) >= r.cfg.maxRegistrations {
		return api.NewError(api.ErrCodeResourceExhausted, "reactor: registration limit reached").
			WithContext("fd", fd).
			WithContext("max", r.cfg.maxRegistrations)
	}
	if replacing {
		r.discard(old)
	}

	r.nextID++
	reg := &registration[W]{
		id:      r.nextID,
		fd:      fd,
		token:   token,
		flags:   flags,
		wrapper: wrapper,
	}
	r.regs[fd] = reg
	r.order = append(r.order, reg)

	if flags&FlagReadable != 0 {
		r.readInterest[fd] = struct{}{}
		if fd+1 > r.readHigh {
			r.readHigh = fd + 1
		}
	}
	if flags&FlagWritable != 0 {
		r.writeInterest[fd] = struct{}{}
		if fd+1 > r.writeHigh {
			r.writeHigh = fd + 1
		}
	}

	r.cfg.metrics.SetRegistrations(len(r.regs))
	r.cfg.logger.Debug("register",
		zap.Int("fd", fd),
		zap.Int("token", token),
		zap.Stringer("flags", flags),
		zap.Bool("replaced", replacing))
	return nil
}

// Unregister forgets fd. The descriptor and its wrapper are left untouched.
func (r *Reactor[W]) Unregister(fd int) error {
	if r.closed {
		return api.ErrClosed
	}
	reg, ok := r.regs[fd]
	if !ok {
		return api.NewError(api.ErrCodeNotFound, "reactor: descriptor not registered").
			WithContext("fd", fd)
	}
	r.discard(reg)
	r.cfg.metrics.SetRegistrations(len(r.regs))
	r.cfg.logger.Debug("unregister", zap.Int("fd", fd))
	return nil
}

// discard removes reg from every index and drops its undelivered events.
func (r *Reactor[W]) discard(reg *registration[W]) {
	delete(r.readInterest, reg.fd)
	delete(r.writeInterest, reg.fd)
	delete(r.regs, reg.fd)
	for i, o := range r.order {
		if o == reg {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	for i := 0; i < r.events.Length(); i++ {
		ev := r.events.Get(i).(*Event[W])
		if ev.regID == reg.id && !ev.consumed {
			ev.dropped = true
		}
	}
}

// Poll runs one readiness cycle. Events consumed since the previous call
// are reclaimed first; then every registration's snapshot is refreshed and
// new events are queued per the edge policy. When nothing is pending the
// calling goroutine sleeps for the current idle duration, bounded by budget.
//
// A signal interrupting the readiness query yields a nil error and no new
// events; the caller just polls again.
func (r *Reactor[W]) Poll(budget time.Duration) error {
	if r.closed {
		return api.ErrClosed
	}
	r.reclaim()

	readReady, err := r.query(r.readInterest, &r.readFds, FlagReadable)
	if err != nil {
		return r.queryFailed(err)
	}
	writeReady, err := r.query(r.writeInterest, &r.writeFds, FlagWritable)
	if err != nil {
		return r.queryFailed(err)
	}

	now := r.cfg.clock.Now()
	for _, reg := range r.order {
		_, readable := readReady[reg.fd]
		_, writable := writeReady[reg.fd]
		wasWritable := reg.ready.Writable
		reg.ready = Readiness{Readable: readable, Writable: writable}

		// Readability may persist after a partial read, so it is reported
		// every cycle. Writability is reported on the rising edge only.
		if readable || (writable && !wasWritable) {
			r.enqueue(reg, now)
		}
	}

	r.cfg.metrics.ObservePoll()
	r.idleStep(budget)
	return nil
}

// maxBudgetMicros is the largest microsecond budget a time.Duration holds.
const maxBudgetMicros = uint64(math.MaxInt64 / time.Microsecond)

// PollMicros is Poll with the budget given in microseconds. Budgets beyond
// the range of time.Duration are clamped.
func (r *Reactor[W]) PollMicros(usec uint64) error {
	if usec > maxBudgetMicros {
		usec = maxBudgetMicros
	}
	return r.Poll(time.Duration(usec) * time.Microsecond)
}

func (r *Reactor[W]) query(set map[int]struct{}, scratch *[]int, want Flags) (map[int]struct{}, error) {
	if len(set) == 0 {
		return nil, nil
	}
	fds := (*scratch)[:0]
	for fd := range set {
		fds = append(fds, fd)
	}
	*scratch = fds
	return r.cfg.selector.Select(fds, want)
}

func (r *Reactor[W]) queryFailed(err error) error {
	if errors.Is(err, ErrInterrupted) {
		r.cfg.metrics.ObserveInterrupted()
		r.cfg.logger.Debug("poll interrupted")
		return nil
	}
	r.cfg.metrics.ObservePollError()
	r.cfg.logger.Debug("poll failed", zap.Error(err))
	return fmt.Errorf("reactor: select: %w", err)
}

// enqueue appends an event unless an undelivered one with the same
// snapshot already exists for reg.
func (r *Reactor[W]) enqueue(reg *registration[W], now time.Time) {
	for i := 0; i < r.events.Length(); i++ {
		ev := r.events.Get(i).(*Event[W])
		if ev.pending() && ev.regID == reg.id && ev.ready == reg.ready {
			return
		}
	}
	r.events.Add(&Event[W]{
		fd:      reg.fd,
		token:   reg.token,
		wrapper: reg.wrapper,
		ready:   reg.ready,
		ts:      now,
		regID:   reg.id,
	})
	r.cfg.metrics.ObserveEvent(reg.ready.Readable, reg.ready.Writable)
}

// reclaim frees everything Next already returned or discard dropped.
// Undelivered events keep their relative order.
func (r *Reactor[W]) reclaim() {
	for n := r.events.Length(); n > 0; n-- {
		ev := r.events.Remove().(*Event[W])
		if ev.pending() {
			r.events.Add(ev)
		}
	}
	r.cursor = 0
}

// Next returns the oldest undelivered event and marks it consumed. The
// event stays valid until the next Poll. Once Next reports false it keeps
// doing so until new events are polled.
func (r *Reactor[W]) Next() (*Event[W], bool) {
	if r.closed {
		return nil, false
	}
	for r.cursor < r.events.Length() {
		ev := r.events.Get(r.cursor).(*Event[W])
		r.cursor++
		if ev.pending() {
			ev.consumed = true
			return ev, true
		}
	}
	return nil, false
}

// Close drops all registrations and events. Descriptors and wrappers stay
// with the caller. Close is idempotent; every other method fails with
// api.ErrClosed afterwards.
func (r *Reactor[W]) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.regs = nil
	r.order = nil
	r.readInterest = nil
	r.writeInterest = nil
	r.events = queue.New()
	r.cursor = 0
	r.cfg.metrics.SetRegistrations(0)
	r.cfg.logger.Debug("reactor closed")
	return nil
}

// Len returns the number of registered descriptors.
func (r *Reactor[W]) Len() int {
	return len(r.regs)
}

// Pending returns the number of queued events Next has not returned yet.
func (r *Reactor[W]) Pending() int {
	return r.pending()
}

func (r *Reactor[W]) pending() int {
	n := 0
	for i := 0; i < r.events.Length(); i++ {
		if r.events.Get(i).(*Event[W]).pending() {
			n++
		}
	}
	return n
}

// Interest returns the flags fd is registered with.
func (r *Reactor[W]) Interest(fd int) (Flags, bool) {
	reg, ok := r.regs[fd]
	if !ok {
		return 0, false
	}
	return reg.flags, true
}

// HighWater returns one past the largest descriptor ever added to the read
// and write interest sets.
func (r *Reactor[W]) HighWater() (read, write int) {
	return r.readHigh, r.writeHigh
}

// IdleDuration returns the sleep the next empty cycle will take, before
// capping to that cycle's budget.
func (r *Reactor[W]) IdleDuration() time.Duration {
	return r.idle
}
