package acceptance

import (
	"context"
	"fmt"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

const DefaultPollInterval = 20 * time.Millisecond

// Env returns the variables a predicate is evaluated against. It is called
// again on every poll.
type Env func() map[string]any

// CompilePredicate type-checks predicate against the variables in env.
// Variables missing from env are rejected.
func CompilePredicate(predicate string, env map[string]any) (*vm.Program, error) {
	if env == nil {
		env = map[string]any{}
	}
	var program, err = expr.Compile(predicate, expr.Env(env), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidPredicate, predicate, err)
	}
	return program, nil
}

// WaitFor polls predicate every interval until it is true, timeout elapses
// or ctx is done. An evaluation error stops the wait.
func WaitFor(ctx context.Context, predicate string, env Env, timeout, interval time.Duration) (bool, error) {
	if env == nil {
		env = func() map[string]any { return map[string]any{} }
	}
	var program, err = CompilePredicate(predicate, env())
	if err != nil {
		return false, err
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	var eval = func() (bool, error) {
		var out, rErr = expr.Run(program, env())
		if rErr != nil {
			return false, fmt.Errorf("evaluate %q: %w", predicate, rErr)
		}
		var ok, _ = out.(bool)
		return ok, nil
	}

	var deadline = time.NewTimer(timeout)
	defer deadline.Stop()
	var ticker = time.NewTicker(interval)
	defer ticker.Stop()

	for {
		var ok, eErr = eval()
		if eErr != nil || ok {
			return ok, eErr
		}

		select {
		case <-ticker.C:
		case <-deadline.C:
			return eval()
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
}
