package acceptance

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultTimeout = 5 * time.Second

// Scenario is an ordered list of steps, usually loaded from YAML.
type Scenario struct {
	Name     string   `yaml:"name"`
	Defaults Defaults `yaml:"defaults"`
	Steps    []Step   `yaml:"steps"`
}

type Defaults struct {
	Timeout time.Duration `yaml:"timeout"`
	Await   int           `yaml:"await"`
}

// Step triggers at most one action, optionally waits for it to finish
// loading and then checks one expectation.
type Step struct {
	Name string `yaml:"name"`

	Click string   `yaml:"click"`
	Menu  []string `yaml:"menu"`

	// Await is the number of load notifications the action causes.
	// Nil falls back to Defaults.Await, zero disables the wait.
	Await   *int          `yaml:"await"`
	Until   string        `yaml:"until"`
	Timeout time.Duration `yaml:"timeout"`

	Expect  *Expectation `yaml:"expect"`
	Details string       `yaml:"details"`

	// OnFail runs once after the step failed, before the next step. The
	// failure stays in the report.
	OnFail *Fallback `yaml:"on_fail"`

	// Required steps abort the run when they fail.
	Required bool `yaml:"required"`
}

// Fallback is a recovery action. Exactly one of Click and Menu is set.
type Fallback struct {
	Click string   `yaml:"click"`
	Menu  []string `yaml:"menu"`
}

type Expectation struct {
	Object   string  `yaml:"object"`
	Property string  `yaml:"property"`
	Equals   *string `yaml:"equals"`
	Matches  string  `yaml:"matches"`
	Exists   *bool   `yaml:"exists"`
}

func LoadScenario(r io.Reader) (*Scenario, error) {
	var scenario = &Scenario{}
	var decoder = yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(scenario); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidScenario)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}
	if err := scenario.Validate(); err != nil {
		return nil, err
	}
	return scenario, nil
}

func LoadScenarioFile(filename string) (*Scenario, error) {
	var file, err = os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scenario, err := LoadScenario(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return scenario, nil
}

func (this *Scenario) Validate() error {
	if len(this.Steps) == 0 {
		return fmt.Errorf("%w: no steps", ErrInvalidScenario)
	}
	if this.Defaults.Timeout < 0 || this.Defaults.Await < 0 {
		return fmt.Errorf("%w: negative defaults", ErrInvalidScenario)
	}
	for i := range this.Steps {
		if err := this.Steps[i].validate(); err != nil {
			return fmt.Errorf("%w: step %d (%s): %v", ErrInvalidScenario, i+1, this.Steps[i].Name, err)
		}
	}
	return nil
}

func (this *Step) validate() error {
	if len(this.Click) > 0 && len(this.Menu) > 0 {
		return errors.New("click and menu are exclusive")
	}
	if len(this.Click) == 0 && len(this.Menu) == 0 && this.Expect == nil && len(this.Until) == 0 {
		return errors.New("nothing to do")
	}
	if this.Await != nil && *this.Await < 0 {
		return errors.New("negative await")
	}
	if this.Timeout < 0 {
		return errors.New("negative timeout")
	}
	if len(this.Until) > 0 {
		if _, err := CompilePredicate(this.Until, stepEnv(0, 0)); err != nil {
			return err
		}
	}
	if this.OnFail != nil {
		if err := this.OnFail.validate(); err != nil {
			return err
		}
	}
	if this.Expect != nil {
		return this.Expect.validate()
	}
	return nil
}

func (this *Fallback) validate() error {
	if (len(this.Click) > 0) == (len(this.Menu) > 0) {
		return errors.New("on_fail: exactly one of click, menu")
	}
	return nil
}

func (this *Expectation) validate() error {
	if len(this.Object) == 0 {
		return errors.New("expect: missing object")
	}

	var checks = 0
	if this.Equals != nil {
		checks++
	}
	if len(this.Matches) > 0 {
		checks++
		if _, err := regexp.Compile(this.Matches); err != nil {
			return fmt.Errorf("expect: %v", err)
		}
	}
	if this.Exists != nil {
		checks++
	}
	if checks != 1 {
		return errors.New("expect: exactly one of equals, matches, exists")
	}
	if this.Exists == nil && len(this.Property) == 0 {
		return errors.New("expect: missing property")
	}
	return nil
}

func (this *Scenario) await(step *Step) int {
	if step.Await != nil {
		return *step.Await
	}
	return this.Defaults.Await
}

func (this *Scenario) timeout(step *Step) time.Duration {
	if step.Timeout > 0 {
		return step.Timeout
	}
	if this.Defaults.Timeout > 0 {
		return this.Defaults.Timeout
	}
	return DefaultTimeout
}
