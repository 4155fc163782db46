// Package importer drives an import run: it submits loaded custom fields
// one at a time, either all at once or interactively, and records the
// outcome of every submission.
//
// Submission failures never stop a run; they are recorded and the run moves
// on to the next field. Only prompt I/O failures and context cancellation
// end a run early.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/JonMunkholm/halofields/internal/customfield"
	"github.com/JonMunkholm/halofields/internal/logging"
)

// RunMode selects how fields are submitted.
type RunMode int

const (
	ModeImport RunMode = iota + 1
	ModeDebug
	ModeQuit
)

func (m RunMode) String() string {
	switch m {
	case ModeImport:
		return "import"
	case ModeDebug:
		return "debug"
	case ModeQuit:
		return "quit"
	default:
		return fmt.Sprintf("RunMode(%d)", int(m))
	}
}

// ParseRunMode accepts a menu choice ("1", "2", "3") or a mode name.
func ParseRunMode(s string) (RunMode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "import":
		return ModeImport, true
	case "2", "debug":
		return ModeDebug, true
	case "3", "quit", "q":
		return ModeQuit, true
	default:
		return 0, false
	}
}

// DebugAction is the per-field choice in debug mode.
type DebugAction int

const (
	ActionProcess DebugAction = iota + 1
	ActionSkip
	ActionQuit
)

func (a DebugAction) String() string {
	switch a {
	case ActionProcess:
		return "process"
	case ActionSkip:
		return "skip"
	case ActionQuit:
		return "quit"
	default:
		return fmt.Sprintf("DebugAction(%d)", int(a))
	}
}

// ParseDebugAction accepts a menu choice ("1", "2", "3") or an action name.
func ParseDebugAction(s string) (DebugAction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "process", "p":
		return ActionProcess, true
	case "2", "skip", "s":
		return ActionSkip, true
	case "3", "quit", "q":
		return ActionQuit, true
	default:
		return 0, false
	}
}

// Submitter creates one field on the remote system.
type Submitter interface {
	Submit(ctx context.Context, cf customfield.CustomField) error
}

// Prompter is the interactive side of a run. Answers are returned raw; the
// controller validates them and asks again on anything it does not accept.
type Prompter interface {
	// AskMode shows the main menu and returns the answer.
	AskMode(ctx context.Context) (string, error)
	// AskAction shows field index (0-based) of total and returns the answer.
	AskAction(ctx context.Context, index, total int, cf customfield.CustomField) (string, error)
	// InvalidChoice reports an answer that was not accepted.
	InvalidChoice(answer string)
	// Recorded reports the outcome of a submission.
	Recorded(o Outcome)
}

// Controller runs the submission of a loaded set of fields.
type Controller struct {
	fields    []customfield.CustomField
	submitter Submitter
	prompter  Prompter
	runID     string
}

// NewController creates a Controller for fields.
func NewController(fields []customfield.CustomField, submitter Submitter, prompter Prompter) *Controller {
	return &Controller{
		fields:    fields,
		submitter: submitter,
		prompter:  prompter,
		runID:     uuid.NewString(),
	}
}

// RunID identifies this run in log output.
func (c *Controller) RunID() string {
	return c.runID
}

// ChooseMode asks for a run mode until a valid one is given.
func (c *Controller) ChooseMode(ctx context.Context) (RunMode, error) {
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		answer, err := c.prompter.AskMode(ctx)
		if err != nil {
			return 0, fmt.Errorf("read mode: %w", err)
		}
		if mode, ok := ParseRunMode(answer); ok {
			return mode, nil
		}
		slog.Warn("invalid menu choice", "event", "invalid_choice", "answer", answer)
		c.prompter.InvalidChoice(answer)
	}
}

// Run executes mode. ModeQuit returns empty results without submitting.
func (c *Controller) Run(ctx context.Context, mode RunMode) (*Results, error) {
	ctx = logging.ContextWithRunID(ctx, c.runID)
	logger := logging.WithFields(ctx, "mode", mode.String(), "fields", len(c.fields))
	logger.Info("run started", "event", "run_started")

	var (
		results *Results
		err     error
	)
	switch mode {
	case ModeImport:
		results, err = c.ImportAll(ctx)
	case ModeDebug:
		results, err = c.Debug(ctx)
	case ModeQuit:
		results = &Results{}
	default:
		return nil, fmt.Errorf("unknown run mode %d", int(mode))
	}

	if results != nil {
		logger.Info("run finished",
			"event", "run_finished",
			"total", results.Total(),
			"successful", len(results.Successful),
			"failed", len(results.Failed),
		)
	}
	return results, err
}

// ImportAll submits every field once, in order.
func (c *Controller) ImportAll(ctx context.Context) (*Results, error) {
	results := &Results{}
	for _, cf := range c.fields {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		c.submit(ctx, cf, results)
	}
	return results, nil
}

// Debug asks, field by field, whether to submit, skip, or stop.
func (c *Controller) Debug(ctx context.Context) (*Results, error) {
	results := &Results{}
	logger := logging.FromContext(ctx)

	for i, cf := range c.fields {
		action, err := c.chooseAction(ctx, i, cf)
		if err != nil {
			return results, err
		}

		switch action {
		case ActionProcess:
			c.submit(ctx, cf, results)
		case ActionSkip:
			logger.Info("field skipped", "event", "skipped", "label", cf.Label().String())
		case ActionQuit:
			logger.Info("debug run stopped", "event", "quit", "remaining", len(c.fields)-i)
			return results, nil
		}
	}
	return results, nil
}

func (c *Controller) chooseAction(ctx context.Context, index int, cf customfield.CustomField) (DebugAction, error) {
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		answer, err := c.prompter.AskAction(ctx, index, len(c.fields), cf)
		if err != nil {
			return 0, fmt.Errorf("read action: %w", err)
		}
		if action, ok := ParseDebugAction(answer); ok {
			return action, nil
		}
		logging.FromContext(ctx).Warn("invalid menu choice", "event", "invalid_choice", "answer", answer)
		c.prompter.InvalidChoice(answer)
	}
}

// submit sends one field and records its outcome. Errors are recorded, not
// returned.
func (c *Controller) submit(ctx context.Context, cf customfield.CustomField, results *Results) {
	label := cf.Label().String()
	logger := logging.WithFields(ctx, "label", label, "name", cf.Name().String())

	if err := c.submitter.Submit(ctx, cf); err != nil {
		results.AddFailure(label, err)
		logger.Error("field submission failed",
			"event", "submitted",
			"outcome", "failure",
			"code", MapError(err).Code,
			"user_message", FormatUserError(err),
			"error", err,
		)
		c.prompter.Recorded(results.Failed[len(results.Failed)-1])
		return
	}

	results.AddSuccess(label)
	logger.Info("field created", "event", "submitted", "outcome", "success")
	c.prompter.Recorded(results.Successful[len(results.Successful)-1])
}
