package patcher

import (
	"context"
	stderrors "errors"
	"os/exec"
	"time"

	"github.com/rs/zerolog"

	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/errors"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/logging"
)

// ExecPatcher runs the patcher as a child process. The invocation is passed
// as command line flags appended after the configured arguments.
type ExecPatcher struct {
	command        string
	args           []string
	cancelExitCode int
	waitDelay      time.Duration
	logger         zerolog.Logger
}

// DefaultWaitDelay bounds how long Run waits for the patcher's output to
// close after the process exited or was killed.
const DefaultWaitDelay = 5 * time.Second

// NewExecPatcher creates a patcher running command with the given leading
// arguments. A process exiting with cancelExitCode is reported as
// ErrUserCanceled; zero disables the mapping.
func NewExecPatcher(command string, args []string, cancelExitCode int) *ExecPatcher {
	return &ExecPatcher{
		command:        command,
		args:           append([]string(nil), args...),
		cancelExitCode: cancelExitCode,
		waitDelay:      DefaultWaitDelay,
		logger:         logging.GetLogger("patcher"),
	}
}

// WithWaitDelay overrides DefaultWaitDelay
func (p *ExecPatcher) WithWaitDelay(d time.Duration) *ExecPatcher {
	p.waitDelay = d
	return p
}

// Args returns the full argument list for inv
func (p *ExecPatcher) Args(inv Invocation) []string {
	args := append([]string(nil), p.args...)
	args = append(args,
		"--modules", inv.ExtensionRoot,
		"--target", inv.TargetAssembly,
		"--entry-point", inv.EntryPoint,
		"--mods", inv.ModsPath,
	)
	if inv.Context != "" {
		args = append(args, "--context", inv.Context)
	}
	if inv.RuntimeDir != "" {
		args = append(args, "--runtime-dir", inv.RuntimeDir)
	}
	if inv.InjectRuntime {
		args = append(args, "--inject-runtime")
	}
	if inv.DryRun {
		args = append(args, "--dry-run")
	}
	return args
}

// Run executes the patcher and waits for it to finish
func (p *ExecPatcher) Run(ctx context.Context, inv Invocation) error {
	args := p.Args(inv)
	logging.LogCommand(p.logger, p.command, args)

	stdout := newLineLogger(p.logger, zerolog.InfoLevel, "stdout")
	stderr := newLineLogger(p.logger, zerolog.WarnLevel, "stderr")

	cmd := exec.CommandContext(ctx, p.command, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = p.waitDelay

	err := cmd.Run()
	stdout.Flush()
	stderr.Flush()

	if err == nil || stderrors.Is(err, exec.ErrWaitDelay) {
		if err != nil {
			p.logger.Warn().Msg("Patcher exited but left its output open")
		}
		p.logger.Info().Str("target", inv.TargetAssembly).Msg("Patcher finished")
		return nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	var startErr *exec.Error
	if stderrors.As(err, &startErr) {
		return errors.Wrapf(err, errors.ErrPatcherExec, "failed to start %s", p.command).
			WithDetail("command", p.command)
	}

	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		if p.cancelExitCode != 0 && code == p.cancelExitCode {
			p.logger.Info().Int("exitCode", code).Msg("Patcher canceled by user")
			return ErrUserCanceled
		}
		return errors.Wrapf(err, errors.ErrPatcherExec, "patcher exited with code %d", code).
			WithDetail("exitCode", code).
			WithDetail("target", inv.TargetAssembly)
	}
	return errors.Wrap(err, errors.ErrPatcherExec, "patcher failed")
}

