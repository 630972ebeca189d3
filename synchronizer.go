package loadsync

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/smartwalle/loadsync/internal/counter"
)

type Outcome int

const (
	// OutcomeTimeout means fewer notifications than expected arrived in time.
	OutcomeTimeout Outcome = iota
	// OutcomeReached means exactly the expected number arrived.
	OutcomeReached
	// OutcomeOvershoot means more than expected had arrived when the wait
	// returned. It still counts as success.
	OutcomeOvershoot
)

func (this Outcome) Succeeded() bool {
	return this == OutcomeReached || this == OutcomeOvershoot
}

func (this Outcome) String() string {
	switch this {
	case OutcomeTimeout:
		return "timeout"
	case OutcomeReached:
		return "reached"
	case OutcomeOvershoot:
		return "overshoot"
	}
	return fmt.Sprintf("Outcome(%d)", int(this))
}

// Synchronizer counts qualifying load notifications and lets a sequential
// caller wait until a given number of them arrived.
//
// A notification qualifies when its kind is in the allow-list. An empty
// allow-list accepts every kind.
type Synchronizer struct {
	kinds   map[string]struct{}
	counter *counter.Counter
	logger  *slog.Logger
}

var _ Waiter = (*Synchronizer)(nil)

func NewSynchronizer(opts ...Option) *Synchronizer {
	var nOpts = newOptions(opts)
	var s = &Synchronizer{}
	s.kinds = make(map[string]struct{}, len(nOpts.kinds))
	for _, kind := range nOpts.kinds {
		s.kinds[kind] = struct{}{}
	}
	s.counter = counter.New()
	s.logger = nOpts.logger
	return s
}

// Register subscribes to eventName on subscriber, counting notifications
// whose source matches sourcePattern (path.Match syntax, empty matches all).
// It may be called for several patterns; all of them feed the same counter.
func (this *Synchronizer) Register(subscriber Subscriber, sourcePattern, eventName string) (*Subscription, error) {
	if subscriber == nil {
		return nil, ErrNilSubscriber
	}
	if len(eventName) == 0 {
		return nil, ErrEmptyEvent
	}
	if len(sourcePattern) == 0 {
		sourcePattern = "*"
	}
	if _, err := path.Match(sourcePattern, ""); err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidPattern, sourcePattern, err)
	}

	var sub = subscriber.Subscribe(eventName, func(source, kind string) {
		// the pattern was validated above, so Match cannot fail here
		if matched, _ := path.Match(sourcePattern, source); matched == false {
			return
		}
		this.OnNotification(kind)
	})
	this.logger.Debug("load listener registered",
		slog.String("pattern", sourcePattern),
		slog.String("event", eventName),
	)
	return sub, nil
}

// OnNotification is the handler behind every registration. It may be called
// from any goroutine.
func (this *Synchronizer) OnNotification(kind string) {
	if this.qualifies(kind) == false {
		this.logger.Debug("load notification ignored", slog.String("kind", kind))
		return
	}
	var count = this.counter.Incr()
	this.logger.Debug("load notification counted", slog.String("kind", kind), slog.Int("count", count))
}

func (this *Synchronizer) qualifies(kind string) bool {
	if len(this.kinds) == 0 {
		return true
	}
	var _, ok = this.kinds[kind]
	return ok
}

// ResetAndTrigger sets the counter to zero and then runs action, returning
// its error.
func (this *Synchronizer) ResetAndTrigger(action func() error) error {
	this.counter.Reset()
	if action == nil {
		return nil
	}
	return action()
}

// WaitUntil blocks until expected notifications have been counted since the
// last reset or timeout elapses.
func (this *Synchronizer) WaitUntil(expected int, timeout time.Duration) bool {
	return this.Await(context.Background(), expected, timeout).Succeeded()
}

func (this *Synchronizer) Await(ctx context.Context, expected int, timeout time.Duration) Outcome {
	var count, ok = this.counter.WaitAtLeast(ctx, expected, timeout)
	if ok == false {
		this.logger.Warn("load wait timed out",
			slog.Int("expected", expected),
			slog.Int("count", count),
			slog.Duration("timeout", timeout),
		)
		return OutcomeTimeout
	}
	if count > expected {
		this.logger.Warn("more load notifications than expected",
			slog.Int("expected", expected),
			slog.Int("count", count),
		)
		return OutcomeOvershoot
	}
	return OutcomeReached
}

// TriggerAndAwait is ResetAndTrigger followed by Await. The wait is skipped
// when action fails.
func (this *Synchronizer) TriggerAndAwait(ctx context.Context, expected int, timeout time.Duration, action func() error) (Outcome, error) {
	if err := this.ResetAndTrigger(action); err != nil {
		return OutcomeTimeout, err
	}
	return this.Await(ctx, expected, timeout), nil
}

func (this *Synchronizer) Count() int {
	return this.counter.Load()
}
