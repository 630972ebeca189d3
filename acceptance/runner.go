package acceptance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/smartwalle/loadsync"
)

type StepReport struct {
	Name    string
	Results []Result
	Outcome loadsync.Outcome
	Count   int
	// Recovered is set when the step failed and its fallback action ran
	// without error.
	Recovered bool
}

func (this StepReport) Passed() bool {
	for _, result := range this.Results {
		if result.Passed == false {
			return false
		}
	}
	return true
}

type Report struct {
	RunID    string
	Scenario string
	Steps    []StepReport
	// Aborted is set when a required step failed and the remaining steps
	// were skipped.
	Aborted bool
}

func (this Report) Passed() bool {
	if this.Aborted {
		return false
	}
	for _, step := range this.Steps {
		if step.Passed() == false {
			return false
		}
	}
	return true
}

func (this Report) Failures() []Result {
	var failures []Result
	for _, step := range this.Steps {
		for _, result := range step.Results {
			if result.Passed == false {
				failures = append(failures, result)
			}
		}
	}
	return failures
}

type RunnerOption func(runner *Runner)

func WithRunnerLogger(logger *slog.Logger) RunnerOption {
	return func(runner *Runner) {
		if logger != nil {
			runner.logger = logger
		}
	}
}

func WithPollInterval(interval time.Duration) RunnerOption {
	return func(runner *Runner) {
		runner.interval = interval
	}
}

// Runner executes scenarios against a Driver. Load waits go through the
// Waiter, which must already be registered for the application's load
// notifications.
type Runner struct {
	driver   Driver
	waiter   loadsync.Waiter
	logger   *slog.Logger
	interval time.Duration
}

func NewRunner(driver Driver, waiter loadsync.Waiter, opts ...RunnerOption) *Runner {
	var runner = &Runner{
		driver:   driver,
		waiter:   waiter,
		logger:   slog.Default(),
		interval: DefaultPollInterval,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(runner)
		}
	}
	return runner
}

func (this *Runner) Run(ctx context.Context, scenario *Scenario) Report {
	var report = Report{
		RunID:    uuid.NewString(),
		Scenario: scenario.Name,
	}
	var logger = this.logger.With(slog.String("run", report.RunID), slog.String("scenario", scenario.Name))
	var verifier = NewVerifier(logger)

	logger.Info("scenario started", slog.Int("steps", len(scenario.Steps)))
	for i := range scenario.Steps {
		if ctx.Err() != nil {
			verifier.Fail(fmt.Sprintf("scenario cancelled: %v", ctx.Err()))
			report.Steps = append(report.Steps, StepReport{Name: "cancelled", Results: verifier.Results()[verifier.len()-1:]})
			report.Aborted = true
			break
		}

		var step = &scenario.Steps[i]
		var first = verifier.len()
		var stepReport = this.runStep(ctx, scenario, step, verifier, logger)
		if step.OnFail != nil && verifier.failedSince(first) {
			stepReport.Recovered = this.fallback(ctx, step, verifier, logger)
		}
		stepReport.Results = verifier.Results()[first:]
		report.Steps = append(report.Steps, stepReport)

		if step.Required && stepReport.Passed() == false {
			logger.Error("required step failed, aborting", slog.String("step", step.Name))
			report.Aborted = true
			break
		}
	}
	logger.Info("scenario finished", slog.Bool("passed", report.Passed()))
	return report
}

func (this *Runner) runStep(ctx context.Context, scenario *Scenario, step *Step, verifier *Verifier, logger *slog.Logger) StepReport {
	var stepReport = StepReport{Name: step.Name, Outcome: loadsync.OutcomeReached}
	var details = step.Details
	if len(details) == 0 {
		details = step.Name
	}
	var timeout = scenario.timeout(step)
	var expected = scenario.await(step)

	logger.Debug("step started", slog.String("step", step.Name))

	if action := this.action(ctx, step); action != nil {
		if err := this.waiter.ResetAndTrigger(action); err != nil {
			verifier.Fail(fmt.Sprintf("%s: action failed: %v", details, err))
			return stepReport
		}
		if expected > 0 {
			stepReport.Outcome = this.waiter.Await(ctx, expected, timeout)
			stepReport.Count = this.waiter.Count()
			if stepReport.Outcome.Succeeded() == false {
				verifier.Fail(fmt.Sprintf("%s: timed out after %s waiting for %d load notifications, got %d",
					details, timeout, expected, stepReport.Count))
				return stepReport
			}
		}
	}

	if len(step.Until) > 0 {
		var ok, err = WaitFor(ctx, step.Until, func() map[string]any {
			return stepEnv(this.waiter.Count(), expected)
		}, timeout, this.interval)
		switch {
		case err != nil:
			verifier.Fail(fmt.Sprintf("%s: %v", details, err))
			return stepReport
		case ok == false:
			verifier.Fail(fmt.Sprintf("%s: condition '%s' not met within %s", details, step.Until, timeout))
			return stepReport
		}
	}

	if step.Expect != nil {
		this.check(ctx, step.Expect, details, verifier)
	}
	return stepReport
}

func (this *Runner) fallback(ctx context.Context, step *Step, verifier *Verifier, logger *slog.Logger) bool {
	var err error
	if len(step.OnFail.Click) > 0 {
		err = this.driver.Click(ctx, step.OnFail.Click)
	} else {
		err = this.driver.InvokeMenu(ctx, step.OnFail.Menu...)
	}
	if err != nil {
		verifier.Fail(fmt.Sprintf("%s: fallback failed: %v", step.Name, err))
		return false
	}
	logger.Info("step failed, fallback ran", slog.String("step", step.Name))
	return true
}

// stepEnv holds the variables an until predicate can use: loaded is the
// number of load notifications counted since the step's action, expected the
// step's await threshold.
func stepEnv(loaded, expected int) map[string]any {
	return map[string]any{
		"loaded":   loaded,
		"expected": expected,
	}
}

func (this *Runner) action(ctx context.Context, step *Step) func() error {
	switch {
	case len(step.Click) > 0:
		return func() error {
			return this.driver.Click(ctx, step.Click)
		}
	case len(step.Menu) > 0:
		return func() error {
			return this.driver.InvokeMenu(ctx, step.Menu...)
		}
	}
	return nil
}

func (this *Runner) check(ctx context.Context, expect *Expectation, details string, verifier *Verifier) {
	if expect.Exists != nil {
		verifier.Verify(this.driver.Exists(ctx, expect.Object) == *expect.Exists, details)
		return
	}

	var actual, err = this.driver.Property(ctx, expect.Object, expect.Property)
	if err != nil {
		verifier.Fail(fmt.Sprintf("%s: read %s.%s: %v", details, expect.Object, expect.Property, err))
		return
	}

	if expect.Equals != nil {
		verifier.Compare(*expect.Equals, actual, details)
		return
	}
	verifier.Match(expect.Matches, actual, details)
}
