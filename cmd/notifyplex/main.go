package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	cmd := newRootCommand()
	err := cmd.Execute()
	if err == nil {
		return
	}

	var status *exitStatus
	if errors.As(err, &status) {
		if status.message != "" {
			fmt.Fprintln(os.Stderr, status.message)
		}
		os.Exit(status.code)
	}

	if !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(1)
}

// exitStatus carries an explicit process exit code through cobra's error
// path. NZBGet reads post-processing results from the exit code alone, so
// the run command always terminates through one of these.
type exitStatus struct {
	code    int
	message string
}

func (e *exitStatus) Error() string {
	if e.message != "" {
		return e.message
	}
	return fmt.Sprintf("exit status %d", e.code)
}

func exitWith(code int) error {
	return &exitStatus{code: code}
}

func exitWithMessage(code int, format string, args ...any) error {
	return &exitStatus{code: code, message: fmt.Sprintf(format, args...)}
}
