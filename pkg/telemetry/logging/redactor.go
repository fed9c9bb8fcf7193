package logging

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/orbit-ml/specfile/pkg/config"
)

// Redactor masks secrets in log attributes. Specification documents carry
// commands and environment blocks, which regularly embed credentials.
type Redactor struct {
	patterns []*redactPattern
}

type redactPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

// Built-in pattern names.
const (
	PatternBearerToken    = "bearer_token"
	PatternURLCredentials = "url_credentials"
	PatternAWSAccessKey   = "aws_access_key"
	PatternAPIKey         = "api_key"
	PatternSecretFlag     = "secret_flag"
)

var defaultPatterns = []struct {
	name        string
	regex       string
	replacement string
}{
	{PatternBearerToken, `Bearer\s+[a-zA-Z0-9\-._~+/]+=*`, "Bearer ***"},
	{PatternURLCredentials, `([a-zA-Z][a-zA-Z0-9+.-]*://)[^/\s:@]+:[^/\s@]+@`, "${1}***@"},
	{PatternAWSAccessKey, `\b(AKIA|ASIA)[A-Z0-9]{16}\b`, "${1}***"},
	{PatternAPIKey, `\b(sk|pk|hf|ghp|xox[bp])[-_][a-zA-Z0-9\-_]{8,}`, "${1}-***"},
	// --password=x, --api-key x, TOKEN=x
	{PatternSecretFlag, `(?i)(--?[a-z0-9_-]*(?:password|passwd|secret|token|api[-_]?key)(?:=|\s+)|\b[a-z0-9_]*(?:password|passwd|secret|token|api[-_]?key)=)[^\s"']+`, "${1}***"},
}

var sensitiveKeys = []string{
	"password", "passwd", "pwd",
	"secret", "token", "api_key", "apikey",
	"authorization", "credential",
	"private_key", "privatekey", "access_key",
}

// NewRedactor creates a Redactor with the built-in patterns followed by
// custom ones.
func NewRedactor(custom []config.RedactPattern) (*Redactor, error) {
	r := &Redactor{}
	for _, p := range defaultPatterns {
		r.patterns = append(r.patterns, &redactPattern{
			name:        p.name,
			regex:       regexp.MustCompile(p.regex),
			replacement: p.replacement,
		})
	}
	for _, p := range custom {
		regex, err := regexp.Compile(p.Pattern)
		if err != nil {
			return nil, fmt.Errorf("redact pattern %q: %w", p.Name, err)
		}
		replacement := p.Replacement
		if replacement == "" {
			replacement = "***"
		}
		r.patterns = append(r.patterns, &redactPattern{
			name:        p.Name,
			regex:       regex,
			replacement: replacement,
		})
	}
	return r, nil
}

// RedactString applies every pattern to value in order.
func (r *Redactor) RedactString(value string) string {
	if value == "" {
		return value
	}
	for _, p := range r.patterns {
		value = p.regex.ReplaceAllString(value, p.replacement)
	}
	return value
}

// RedactAttr masks the value of a with a sensitive key and runs the
// patterns over string and error values.
func (r *Redactor) RedactAttr(a slog.Attr) slog.Attr {
	if isSensitiveKey(a.Key) {
		return slog.String(a.Key, RedactSecret(a.Value.String()))
	}
	switch a.Value.Kind() {
	case slog.KindString:
		return slog.String(a.Key, r.RedactString(a.Value.String()))
	case slog.KindAny:
		switch v := a.Value.Any().(type) {
		case error:
			return slog.String(a.Key, r.RedactString(v.Error()))
		case fmt.Stringer:
			return slog.String(a.Key, r.RedactString(v.String()))
		case []string:
			out := make([]string, len(v))
			for i, s := range v {
				out[i] = r.RedactString(s)
			}
			return slog.Any(a.Key, out)
		}
	}
	return a
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// RedactSecret masks a secret, keeping a four character prefix of values
// long enough to stay unguessable.
func RedactSecret(value string) string {
	switch {
	case value == "":
		return ""
	case len(value) <= 8:
		return "***"
	default:
		return value[:4] + "***"
	}
}
