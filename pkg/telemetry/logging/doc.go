// Package logging provides structured logging with secret redaction.
//
// # Overview
//
// The logging package wraps Go's standard log/slog package to provide:
//   - JSON, text and console output formats
//   - Redaction of credentials found in commands and environment values
//   - Context fields (project, sources, experiment index, trace IDs)
//
// A Logger embeds *slog.Logger and is passed as such to the specification
// and group packages.
//
// # Usage
//
//	logger, err := logging.New(logging.FromConfig(cfg.Telemetry.Logging))
//	if err != nil {
//	    return err
//	}
//
//	ctx = logging.WithSources(ctx, []string{"polyaxonfile.yaml"})
//	logger.InfoContext(ctx, "loaded specification", "kind", "group")
//
// # Redaction
//
// Attributes whose key names a secret (token, password, api_key, ...) are
// masked entirely. String and error values are scanned for:
//
//   - Bearer tokens: Bearer abc.def becomes Bearer ***
//   - URL credentials: s3://user:pass@host becomes s3://***@host
//   - AWS access keys, provider API keys (sk-, hf_, ghp_)
//   - Secret flags and variables: --api-key=x, HF_TOKEN=x
//
// Extra patterns come from telemetry.logging.redact_patterns.
package logging
