package runner

import (
	"time"

	"github.com/google/uuid"
)

// TestSuite is one playthrough. A suite with Cases only sequences other
// case files.
type TestSuite struct {
	Name   string     `yaml:"name"`
	Player string     `yaml:"player,omitempty"` // a unique suffix is added per run
	Steps  []TestStep `yaml:"steps,omitempty"`
	Cases  []string   `yaml:"cases,omitempty"`
}

// IsSequence returns true if this is a suite that sequences other cases
func (ts *TestSuite) IsSequence() bool {
	return len(ts.Cases) > 0
}

// TestStep sends one input and checks the view that comes back.
type TestStep struct {
	Name         string       `yaml:"name,omitempty"`
	Input        string       `yaml:"input"`
	Expectations Expectations `yaml:"expect"`
}

// Expectations on a returned view. Unset fields are not checked.
type Expectations struct {
	Node      *string  `yaml:"node,omitempty"`
	Stage     *string  `yaml:"stage,omitempty"`
	Ended     *bool    `yaml:"ended,omitempty"`
	Invalid   *bool    `yaml:"invalid,omitempty"`
	Choices   *int     `yaml:"choices,omitempty"`
	Inventory []string `yaml:"inventory,omitempty"` // order independent
	MinPoints *int     `yaml:"min_points,omitempty"`

	LinesContain    []string `yaml:"lines_contain,omitempty"`
	LinesNotContain []string `yaml:"lines_not_contain,omitempty"`
	LinesRegex      string   `yaml:"lines_regex,omitempty"`
}

// TestResult contains the outcome of running a test step
type TestResult struct {
	TestName string
	StepName string
	Success  bool
	Error    error
	Duration time.Duration
	Lines    string
}

// TestJob represents a test suite to be executed
type TestJob struct {
	Name     string
	Suite    TestSuite
	CaseFile string
}

// TestRunResult contains the results of running an entire test suite
type TestRunResult struct {
	Job       TestJob
	Results   []TestResult
	SessionID uuid.UUID
	Duration  time.Duration
	Error     error
}
