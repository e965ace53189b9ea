// Package execpipe runs the external schema-to-class generator.
package execpipe

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/goaux/stacktrace/v2"
)

// CheckPath checks if the given executable exists in the system's PATH.
// It returns an error if the executable is not found, or nil if it is.
func CheckPath(executable string) error {
	_, err := stacktrace.Trace2(exec.LookPath(executable))
	return err
}

// ExitError is returned by Run when the command could not be started or
// exited unsuccessfully.
type ExitError struct {
	Name   string
	Args   []string
	Err    error
	Stderr string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s: %v, stderr=%q", e.Name, e.Err, strings.TrimSpace(e.Stderr))
}

func (e *ExitError) Unwrap() error { return e.Err }

// Run executes an external command with the given arguments, piping its stdout
// to the provided writer and capturing its stderr.
//
// Parameters:
//
//	ctx: Cancelling it kills the command.
//	w: The io.Writer to which the command's stdout will be piped. May be nil.
//	r: The io.Reader from which the command's stdin will be read. May be nil.
//	name: The name of the executable to run.
//	args: Variable number of strings representing the arguments to pass to the executable.
//
// Returns:
//
//	An *ExitError if the command fails to execute, carrying the command name,
//	the underlying error, and the captured stderr.
func Run(ctx context.Context, w io.Writer, r io.Reader, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = r
	if w == nil {
		w = io.Discard
	}
	cmd.Stdout = w
	stderr := new(bytes.Buffer)
	cmd.Stderr = stderr
	if err := stacktrace.Trace(cmd.Run()); err != nil {
		return &ExitError{Name: name, Args: args, Err: err, Stderr: stderr.String()}
	}
	return nil
}
