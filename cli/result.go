package cli

import (
	"errors"
	"fmt"
)

// CommandError signals a command failure with a specific exit code. Commands
// return it after writing their own output, so main only has to exit.
type CommandError struct {
	exitCode int
}

// NewCommandError creates a CommandError with the given exit code.
func NewCommandError(exitCode int) *CommandError {
	return &CommandError{exitCode: exitCode}
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command failed with exit code %d", e.exitCode)
}

// ExitCode returns the exit code for the process.
func (e *CommandError) ExitCode() int {
	return e.exitCode
}

// ExitCode maps the error returned by a command to a process exit code: 0
// for nil, the code of a CommandError, and 1 for anything else.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.exitCode
	}
	return 1
}
