// Package cmdrun executes external command-line tools.
package cmdrun

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/simplesurance/fedora-bot/internal/logfields"
)

const loggerName = "cmdrun"

// DefaultTimeout is the maximum duration a command may run.
const DefaultTimeout = 5 * time.Minute

// Cmd describes a command execution.
type Cmd struct {
	Name string
	Args []string
	// Stdin is written to the standard input of the process, can be nil.
	Stdin []byte
	// Secret arguments are not logged.
	SecretArgs bool
}

func (c *Cmd) String() string {
	if c.SecretArgs {
		return c.Name + " **hidden**"
	}

	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Result is the output of a finished command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes commands.
// An error is only returned if the command could not be started or did not
// terminate normally, a non-zero exit code is reported via Result.ExitCode.
type Runner interface {
	Run(ctx context.Context, cmd *Cmd) (*Result, error)
}

// RunnerFunc is an adapter to use ordinary functions as Runner.
type RunnerFunc func(ctx context.Context, cmd *Cmd) (*Result, error)

func (f RunnerFunc) Run(ctx context.Context, cmd *Cmd) (*Result, error) {
	return f(ctx, cmd)
}

// Exec runs commands as child processes. The processes inherit the
// environment of the bot, including KRB5CCNAME.
type Exec struct {
	logger  *zap.Logger
	timeout time.Duration
}

func NewExec() *Exec {
	return &Exec{
		logger:  zap.L().Named(loggerName),
		timeout: DefaultTimeout,
	}
}

func (e *Exec) Run(ctx context.Context, cmd *Cmd) (*Result, error) {
	var stdout, stderr bytes.Buffer

	ctx, cancelFn := context.WithTimeout(ctx, e.timeout)
	defer cancelFn()

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...) //nolint:gosec // commands are hardcoded by callers
	c.Stdout = &stdout
	c.Stderr = &stderr
	if cmd.Stdin != nil {
		c.Stdin = bytes.NewReader(cmd.Stdin)
	}

	logger := e.logger.With(zap.Stringer("cmd", cmd))
	logger.Debug("running command", logfields.Event("command_starting"))

	err := c.Run()
	result := Result{
		Stdout: strings.TrimSpace(stdout.String()),
		Stderr: strings.TrimSpace(stderr.String()),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.Exited() {
			result.ExitCode = exitErr.ExitCode()
			logger.Debug(
				"command failed",
				logfields.Event("command_failed"),
				zap.Int("exit_code", result.ExitCode),
				zap.String("stderr", result.Stderr),
			)

			return &result, nil
		}

		return nil, fmt.Errorf("running %s failed: %w", cmd.Name, err)
	}

	logger.Debug("command finished", logfields.Event("command_finished"))

	return &result, nil
}

// Output returns the stderr output of the result if it is non-empty,
// otherwise stdout.
func (r *Result) Output() string {
	if r.Stderr != "" {
		return r.Stderr
	}

	return r.Stdout
}
