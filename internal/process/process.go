package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"unicode/utf8"
)

// maxDiagnosticBytes caps how much captured output an ExitError message carries.
const maxDiagnosticBytes = 4096

var errEmptyCommand = errors.New("command is empty")

// Command describes one external invocation.
type Command struct {
	// Name is the executable, looked up in PATH when it has no separator.
	Name string
	// Args are passed verbatim, without any further shell processing.
	Args []string
	// Dir is the working directory; empty means the current one.
	Dir string
	// Env holds extra KEY=VALUE pairs appended to the inherited environment.
	Env []string
	// Stdout optionally receives a live copy of the standard output.
	Stdout io.Writer
	// Stderr optionally receives a live copy of the standard error.
	Stderr io.Writer
}

// Result is the outcome of a finished process.
type Result struct {
	// ExitCode is the process exit status.
	ExitCode int
	// Stdout is the captured standard output.
	Stdout []byte
	// Stderr is the captured standard error.
	Stderr []byte
}

// ExitError reports a process that ran but exited with a non-zero status.
type ExitError struct {
	// Command is the program name; arguments are left out since they may carry
	// values expanded from the environment.
	Command string
	// Result holds the exit code and the captured output.
	Result *Result
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s exited with code %d", e.Command, e.Result.ExitCode)
	if diagnostic := e.Diagnostic(); diagnostic != "" {
		msg += ": " + diagnostic
	}

	return msg
}

// Diagnostic returns the tail of stderr, or of stdout when stderr is empty.
func (e *ExitError) Diagnostic() string {
	output := bytes.TrimSpace(e.Result.Stderr)
	if len(output) == 0 {
		output = bytes.TrimSpace(e.Result.Stdout)
	}

	if len(output) > maxDiagnosticBytes {
		start := len(output) - maxDiagnosticBytes
		for start < len(output) && !utf8.RuneStart(output[start]) {
			start++
		}

		output = output[start:]
	}

	return string(output)
}

// Runner executes commands. Tests substitute fakes for it.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// ExecRunner runs commands as child processes.
type ExecRunner struct{}

// NewExecRunner creates a runner backed by os/exec.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run starts the command, waits for it and captures its output.
// A non-zero exit status is reported as *ExitError together with the result.
func (r *ExecRunner) Run(ctx context.Context, c Command) (*Result, error) {
	if strings.TrimSpace(c.Name) == "" {
		return nil, errEmptyCommand
	}

	cmd := exec.CommandContext(ctx, c.Name, c.Args...) //nolint:gosec // Commands come from the project configuration.
	cmd.Dir = c.Dir

	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}

	var stdout, stderr bytes.Buffer

	cmd.Stdout = tee(&stdout, c.Stdout)
	cmd.Stderr = tee(&stderr, c.Stderr)

	err := cmd.Run()
	result := &Result{
		Stdout: stdout.Bytes(),
		Stderr: stderr.Bytes(),
	}

	if err == nil {
		return result, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, fmt.Errorf("%s: %w", c.Name, ctxErr)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()

		return result, &ExitError{Command: c.Name, Result: result}
	}

	return result, fmt.Errorf("run %s: %w", c.Name, err)
}

func tee(buf *bytes.Buffer, w io.Writer) io.Writer {
	if w == nil {
		return buf
	}

	return io.MultiWriter(buf, w)
}
