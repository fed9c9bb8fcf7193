package cli

import (
	"errors"
	"fmt"
)

// Exit codes returned by the specfile binary.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitInvalid = 2
	ExitConfig  = 3
)

// ConfigError represents an error in the tool configuration or in flags.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("config error: %s", e.Message)
	}
	return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
}

// CommandError represents an error from a command execution.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// InvalidError reports specification files that did not validate. The
// issues have already been printed.
type InvalidError struct {
	Files  []string
	Issues int
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("%d issue(s) in %v", e.Issues, e.Files)
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{
		Field:   field,
		Message: message,
	}
}

// NewCommandError creates a new CommandError.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{
		Command: command,
		Err:     err,
	}
}

// ExitCode maps a command error to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var invalid *InvalidError
	if errors.As(err, &invalid) {
		return ExitInvalid
	}
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return ExitConfig
	}
	return ExitFailure
}
