package config

import (
	"fmt"
	"strings"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the field, e.g. "expansion.workers".
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError holds every field error found in a configuration.
type ValidationError struct {
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate checks the whole configuration and returns a ValidationError
// holding every violation, or nil.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateSpecification(&cfg.Specification)...)
	errs = append(errs, validateExpansion(&cfg.Expansion)...)
	errs = append(errs, validateWatch(&cfg.Watch)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateSpecification(cfg *SpecificationConfig) []FieldError {
	var errs []FieldError

	if cfg.MaxFileSize <= 0 {
		errs = append(errs, FieldError{
			Field:   "specification.max_file_size",
			Message: fmt.Sprintf("must be positive, got %d", cfg.MaxFileSize),
		})
	}
	if cfg.MaxDepth <= 0 {
		errs = append(errs, FieldError{
			Field:   "specification.max_depth",
			Message: fmt.Sprintf("must be positive, got %d", cfg.MaxDepth),
		})
	}
	if cfg.MaxIterations <= 0 {
		errs = append(errs, FieldError{
			Field:   "specification.max_iterations",
			Message: fmt.Sprintf("must be positive, got %d", cfg.MaxIterations),
		})
	}
	for i, f := range cfg.Files {
		if strings.TrimSpace(f) == "" {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("specification.files[%d]", i),
				Message: "file path cannot be empty",
			})
		}
	}
	return errs
}

func validateExpansion(cfg *ExpansionConfig) []FieldError {
	var errs []FieldError

	if cfg.Workers < 0 {
		errs = append(errs, FieldError{
			Field:   "expansion.workers",
			Message: fmt.Sprintf("cannot be negative, got %d", cfg.Workers),
		})
	}
	validFormats := map[string]bool{"yaml": true, "json": true}
	if !validFormats[cfg.Format] {
		errs = append(errs, FieldError{
			Field:   "expansion.format",
			Message: fmt.Sprintf("invalid format %q: must be 'yaml' or 'json'", cfg.Format),
		})
	}
	return errs
}

func validateWatch(cfg *WatchConfig) []FieldError {
	var errs []FieldError

	if cfg.Debounce < 0 {
		errs = append(errs, FieldError{
			Field:   "watch.debounce",
			Message: "debounce cannot be negative",
		})
	}
	if cfg.ListenAddress != "" && !strings.Contains(cfg.ListenAddress, ":") {
		errs = append(errs, FieldError{
			Field:   "watch.listen_address",
			Message: fmt.Sprintf("invalid listen address %q: expected host:port", cfg.ListenAddress),
		})
	}
	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(cfg.Logging.Level)] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true, "console": true}
	if !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json', 'text' or 'console'", cfg.Logging.Format),
		})
	}
	for i, p := range cfg.Logging.RedactPatterns {
		if p.Pattern == "" {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("telemetry.logging.redact_patterns[%d].pattern", i),
				Message: "pattern is required",
			})
		}
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "metrics path must start with /",
		})
	}
	if cfg.Metrics.MaxCardinality < 0 {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.max_cardinality",
			Message: "cannot be negative",
		})
	}

	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.endpoint",
			Message: "tracing endpoint is required when tracing is enabled",
		})
	}
	validSamplers := map[string]bool{"always": true, "never": true, "ratio": true}
	if !validSamplers[cfg.Tracing.Sampler] {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sampler",
			Message: fmt.Sprintf("invalid sampler %q: must be 'always', 'never' or 'ratio'", cfg.Tracing.Sampler),
		})
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1.0 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sample_ratio",
			Message: "sample ratio must be between 0.0 and 1.0",
		})
	}

	if cfg.Health.Enabled {
		if !strings.HasPrefix(cfg.Health.LivenessPath, "/") {
			errs = append(errs, FieldError{
				Field:   "telemetry.health.liveness_path",
				Message: "liveness path must start with /",
			})
		}
		if !strings.HasPrefix(cfg.Health.ReadinessPath, "/") {
			errs = append(errs, FieldError{
				Field:   "telemetry.health.readiness_path",
				Message: "readiness path must start with /",
			})
		}
	}
	return errs
}
