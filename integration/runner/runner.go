package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/jwebster45206/verdant-hollow/pkg/chat"
	"github.com/jwebster45206/verdant-hollow/pkg/story"
)

type ErrorHandlingMode string

const ErrorHandlingExit ErrorHandlingMode = "exit"
const ErrorHandlingContinue ErrorHandlingMode = "continue"

// Runner plays test suites against a running verdant-hollow API
type Runner struct {
	BaseURL           string
	Client            *http.Client
	Timeout           time.Duration
	Logger            func(format string, args ...interface{})
	ErrorHandlingMode ErrorHandlingMode
}

// NewRunner creates a new test runner
func NewRunner(baseURL string) *Runner {
	return &Runner{
		BaseURL:           strings.TrimSuffix(baseURL, "/"),
		Client:            &http.Client{Timeout: 60 * time.Second},
		Timeout:           30 * time.Second,
		Logger:            func(string, ...interface{}) {},
		ErrorHandlingMode: ErrorHandlingContinue,
	}
}

// LoadTestSuite loads a test suite from a YAML file
func LoadTestSuite(filename string) (TestSuite, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return TestSuite{}, fmt.Errorf("failed to read test file %s: %w", filename, err)
	}

	var suite TestSuite
	if err := yaml.Unmarshal(content, &suite); err != nil {
		return TestSuite{}, fmt.Errorf("failed to parse YAML in %s: %w", filename, err)
	}

	return suite, nil
}

// LoadTestSuiteWithExpansion loads a test suite and expands it if it's a sequence
func LoadTestSuiteWithExpansion(filename string, casesDir string) ([]TestJob, error) {
	suite, err := LoadTestSuite(filename)
	if err != nil {
		return nil, err
	}

	if !suite.IsSequence() {
		return []TestJob{{
			Name:     suite.Name,
			Suite:    suite,
			CaseFile: filename,
		}}, nil
	}

	var jobs []TestJob
	for _, caseFile := range suite.Cases {
		casePath := filepath.Join(casesDir, caseFile)
		subJobs, err := LoadTestSuiteWithExpansion(casePath, casesDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load case '%s' referenced by sequence '%s': %w", caseFile, suite.Name, err)
		}
		jobs = append(jobs, subJobs...)
	}

	return jobs, nil
}

// RunSuite starts a fresh session, plays every step and ends the session.
func (r *Runner) RunSuite(ctx context.Context, suite TestSuite) (TestRunResult, error) {
	start := time.Now()
	result := TestRunResult{
		Job:     TestJob{Name: suite.Name, Suite: suite},
		Results: make([]TestResult, 0, len(suite.Steps)),
	}

	// A unique name keeps earlier runs' saves out of the way.
	name := suite.Player
	if name == "" {
		name = "Tester"
	}
	name = fmt.Sprintf("%s %s", name, uuid.NewString()[:8])

	view, err := r.startSession(ctx, name)
	if err != nil {
		result.Error = fmt.Errorf("failed to start session: %w", err)
		result.Duration = time.Since(start)
		return result, result.Error
	}
	result.SessionID = view.SessionID
	defer func() {
		if err := r.endSession(context.WithoutCancel(ctx), view.SessionID); err != nil {
			r.Logger("    failed to end session %s: %v", view.SessionID, err)
		}
	}()

	for i, step := range suite.Steps {
		r.Logger("    [%d/%d] Running step: %s", i+1, len(suite.Steps), step.Name)
		stepResult := r.runStep(ctx, view.SessionID, step)
		stepResult.TestName = suite.Name
		result.Results = append(result.Results, stepResult)

		if stepResult.Error != nil {
			r.Logger("    [%d/%d] ✗ %s: %v", i+1, len(suite.Steps), step.Name, stepResult.Error)
			if result.Error == nil {
				result.Error = fmt.Errorf("step %d (%s) failed: %w", i, step.Name, stepResult.Error)
			}
			if r.ErrorHandlingMode == ErrorHandlingExit {
				break
			}
			continue
		}
		r.Logger("    [%d/%d] ✓ %s (%v)", i+1, len(suite.Steps), step.Name, stepResult.Duration)
	}

	result.Duration = time.Since(start)
	return result, result.Error
}

func (r *Runner) runStep(ctx context.Context, sessionID uuid.UUID, step TestStep) TestResult {
	start := time.Now()
	res := TestResult{StepName: step.Name}

	stepCtx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	view, err := r.sendInput(stepCtx, sessionID, step.Input)
	res.Duration = time.Since(start)
	if err != nil {
		res.Error = err
		return res
	}
	res.Lines = strings.Join(view.Lines, "\n")

	if err := checkExpectations(step.Expectations, view); err != nil {
		res.Error = err
		return res
	}
	res.Success = true
	return res
}

// checkExpectations validates a step's expectations against the returned view
func checkExpectations(exp Expectations, view *story.View) error {
	if exp.Node != nil && string(view.Node) != *exp.Node {
		return fmt.Errorf("expected node '%s', got '%s'", *exp.Node, view.Node)
	}
	if exp.Stage != nil && view.Stage != *exp.Stage {
		return fmt.Errorf("expected stage '%s', got '%s'", *exp.Stage, view.Stage)
	}
	if exp.Ended != nil && view.Ended != *exp.Ended {
		return fmt.Errorf("expected ended=%t, got %t", *exp.Ended, view.Ended)
	}
	if exp.Invalid != nil && view.Invalid != *exp.Invalid {
		return fmt.Errorf("expected invalid=%t, got %t", *exp.Invalid, view.Invalid)
	}
	if exp.Choices != nil && len(view.Choices) != *exp.Choices {
		return fmt.Errorf("expected %d choices, got %d: %v", *exp.Choices, len(view.Choices), view.Choices)
	}
	if exp.MinPoints != nil && view.Points < *exp.MinPoints {
		return fmt.Errorf("expected at least %d points, got %d", *exp.MinPoints, view.Points)
	}
	if exp.Inventory != nil {
		want := slices.Sorted(slices.Values(exp.Inventory))
		got := slices.Sorted(slices.Values(view.Player.Inventory))
		if !slices.Equal(want, got) {
			return fmt.Errorf("expected inventory %v, got %v", exp.Inventory, view.Player.Inventory)
		}
	}

	text := strings.ToLower(strings.Join(view.Lines, "\n"))
	for _, s := range exp.LinesContain {
		if !strings.Contains(text, strings.ToLower(s)) {
			return fmt.Errorf("lines do not contain '%s': %q", s, text)
		}
	}
	for _, s := range exp.LinesNotContain {
		if strings.Contains(text, strings.ToLower(s)) {
			return fmt.Errorf("lines unexpectedly contain '%s'", s)
		}
	}
	if exp.LinesRegex != "" {
		re, err := regexp.Compile(exp.LinesRegex)
		if err != nil {
			return fmt.Errorf("invalid lines_regex: %w", err)
		}
		if !re.MatchString(text) {
			return fmt.Errorf("lines do not match regex '%s'", exp.LinesRegex)
		}
	}
	return nil
}

func (r *Runner) startSession(ctx context.Context, name string) (*story.View, error) {
	body, err := json.Marshal(map[string]string{"player_name": name})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	return r.doView(ctx, http.MethodPost, r.BaseURL+"/v1/sessions", body, http.StatusCreated)
}

func (r *Runner) sendInput(ctx context.Context, sessionID uuid.UUID, input string) (*story.View, error) {
	body, err := json.Marshal(chat.InputRequest{SessionID: sessionID, Input: input})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	url := fmt.Sprintf("%s/v1/sessions/%s/input", r.BaseURL, sessionID)
	return r.doView(ctx, http.MethodPost, url, body, http.StatusOK)
}

func (r *Runner) endSession(ctx context.Context, sessionID uuid.UUID) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, fmt.Sprintf("%s/v1/sessions/%s", r.BaseURL, sessionID), nil)
	if err != nil {
		return fmt.Errorf("failed to create DELETE request: %w", err)
	}
	resp, err := r.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("end session returned status %d", resp.StatusCode)
	}
	return nil
}

func (r *Runner) doView(ctx context.Context, method, url string, body []byte, want int) (*story.View, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != want {
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var view story.View
	if err := json.Unmarshal(data, &view); err != nil {
		return nil, fmt.Errorf("failed to parse view: %w", err)
	}
	return &view, nil
}
