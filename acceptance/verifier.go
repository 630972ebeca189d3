package acceptance

import (
	"fmt"
	"log/slog"
	"regexp"
	"sync"
)

type Result struct {
	Details  string
	Passed   bool
	Expected string
	Actual   string
	Message  string
}

// Verifier records verification results. A failed check is reported and
// returned as false; it never stops the caller.
type Verifier struct {
	mu      sync.Mutex
	results []Result
	logger  *slog.Logger
}

func NewVerifier(logger *slog.Logger) *Verifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Verifier{logger: logger}
}

func (this *Verifier) Verify(ok bool, details string) bool {
	var result = Result{Details: details, Passed: ok}
	if ok == false {
		result.Message = details
	}
	this.record(result)
	return ok
}

func (this *Verifier) Compare(expected, actual, details string) bool {
	var result = Result{
		Details:  details,
		Passed:   expected == actual,
		Expected: expected,
		Actual:   actual,
	}
	if result.Passed == false {
		result.Message = fmt.Sprintf("%s: expected '%s', got '%s'", details, expected, actual)
	}
	this.record(result)
	return result.Passed
}

// Match checks actual against the regular expression pattern. An invalid
// pattern is a failure.
func (this *Verifier) Match(pattern, actual, details string) bool {
	var result = Result{
		Details:  details,
		Expected: pattern,
		Actual:   actual,
	}
	var re, err = regexp.Compile(pattern)
	switch {
	case err != nil:
		result.Message = fmt.Sprintf("%s: invalid pattern '%s': %v", details, pattern, err)
	case re.MatchString(actual):
		result.Passed = true
	default:
		result.Message = fmt.Sprintf("%s: pattern does not match: '%s', text found is: '%s'", details, pattern, actual)
	}
	this.record(result)
	return result.Passed
}

func (this *Verifier) Fail(details string) {
	this.record(Result{Details: details, Message: details})
}

func (this *Verifier) record(result Result) {
	this.mu.Lock()
	this.results = append(this.results, result)
	this.mu.Unlock()

	if result.Passed {
		this.logger.Info("pass", slog.String("details", result.Details))
		return
	}
	this.logger.Error("fail",
		slog.String("details", result.Details),
		slog.String("message", result.Message),
	)
}

func (this *Verifier) Results() []Result {
	this.mu.Lock()
	defer this.mu.Unlock()

	var results = make([]Result, len(this.results))
	copy(results, this.results)
	return results
}

func (this *Verifier) Failures() []Result {
	var failures []Result
	for _, result := range this.Results() {
		if result.Passed == false {
			failures = append(failures, result)
		}
	}
	return failures
}

func (this *Verifier) Passed() bool {
	return len(this.Failures()) == 0
}

func (this *Verifier) len() int {
	this.mu.Lock()
	defer this.mu.Unlock()
	return len(this.results)
}

func (this *Verifier) failedSince(first int) bool {
	this.mu.Lock()
	defer this.mu.Unlock()

	for _, result := range this.results[first:] {
		if result.Passed == false {
			return true
		}
	}
	return false
}
