package cli

import (
	"errors"
	"fmt"
	"testing"
)

func TestConfigError(t *testing.T) {
	tests := []struct {
		name string
		err  *ConfigError
		want string
	}{
		{
			name: "with field",
			err:  &ConfigError{Field: "watch.debounce", Message: "must be positive"},
			want: "config error in watch.debounce: must be positive",
		},
		{
			name: "without field",
			err:  &ConfigError{Message: "no specification files given"},
			want: "config error: no specification files given",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCommandErrorUnwrap(t *testing.T) {
	underlyingErr := errors.New("underlying error")
	err := NewCommandError("expand", underlyingErr)

	expected := "command expand failed: underlying error"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
	if !errors.Is(err, underlyingErr) {
		t.Error("errors.Is() should work with CommandError.Unwrap()")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"plain", errors.New("boom"), ExitFailure},
		{"invalid", &InvalidError{Files: []string{"a.yaml"}, Issues: 2}, ExitInvalid},
		{"config", NewConfigError("--format", "bad"), ExitConfig},
		{"wrapped config", NewCommandError("check", NewConfigError("-f", "missing")), ExitConfig},
		{"wrapped invalid", fmt.Errorf("check: %w", &InvalidError{Issues: 1}), ExitInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
