package loadsync

import (
	"context"
	"time"
)

// Subscriber is anything that can call fn for each notification named name.
type Subscriber interface {
	Subscribe(name string, fn func(source, kind string)) *Subscription
}

// Waiter turns asynchronous notifications into a blocking wait.
type Waiter interface {
	ResetAndTrigger(action func() error) error

	Await(ctx context.Context, expected int, timeout time.Duration) Outcome

	Count() int
}
