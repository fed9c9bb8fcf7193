// Package config provides configuration for the specfile tool.
//
// Configuration is read from an optional YAML file, completed with
// defaults, overridden by environment variables and validated:
//
//	cfg, err := config.LoadConfigWithEnvOverrides("specfile.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention SPECFILE_SECTION_FIELD:
//
//   - SPECFILE_EXPANSION_WORKERS overrides expansion.workers
//   - SPECFILE_EXPANSION_SEED overrides expansion.seed
//   - SPECFILE_WATCH_DEBOUNCE overrides watch.debounce
//   - SPECFILE_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// # Configuration Precedence
//
//  1. Default values (defaults.go)
//  2. Values from the YAML file
//  3. Environment variable overrides
//  4. Validation, which reports every invalid field at once
//
// # Example
//
//	specification:
//	  max_iterations: 50000
//	expansion:
//	  workers: 8
//	  format: json
//	watch:
//	  debounce: 500ms
//	  listen_address: "localhost:9090"
//	telemetry:
//	  logging:
//	    level: debug
//	  tracing:
//	    enabled: true
//	    endpoint: "localhost:4317"
//	    insecure: true
//
// The package also keeps a process-wide configuration (Initialize,
// GetConfig, SetConfig, ReloadConfig) for the CLI.
package config
