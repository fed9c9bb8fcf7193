package health

import (
	"encoding/json"
	"net/http"
	"runtime"

	"github.com/orbit-ml/specfile/pkg/config"
)

// VersionInfo contains build and version information.
type VersionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	GoVersion string `json:"go_version"`
}

// LivenessHandler returns the handler of the liveness probe.
//
// Example response:
//
//	{"status": "ok", "timestamp": "2026-10-18T10:30:00Z"}
func (c *Checker) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowed(w, r) {
			return
		}
		writeJSON(w, r, http.StatusOK, c.CheckLiveness(r.Context()))
	}
}

// ReadinessHandler returns the handler of the readiness probe. It answers
// 503 Service Unavailable while any check fails.
//
// Example response while the watched files do not load:
//
//	{
//	    "status": "degraded",
//	    "checks": {
//	        "specification": {"status": "unhealthy", "message": "settings.matrix: ..."}
//	    },
//	    "timestamp": "2026-10-18T10:30:00Z"
//	}
func (c *Checker) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowed(w, r) {
			return
		}
		status := c.CheckReadiness(r.Context())
		code := http.StatusOK
		if status.Status != StatusReady {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, r, code, status)
	}
}

// VersionHandler returns a handler reporting build information.
func VersionHandler(version, commit string) http.HandlerFunc {
	info := VersionInfo{
		Version:   version,
		Commit:    commit,
		GoVersion: runtime.Version(),
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowed(w, r) {
			return
		}
		writeJSON(w, r, http.StatusOK, info)
	}
}

// Register mounts the probes on mux at the configured paths, plus
// /version.
//
//	mux := http.NewServeMux()
//	health.Register(mux, checker, &cfg.Telemetry.Health, "1.0.0", "abc123")
func Register(mux *http.ServeMux, checker *Checker, cfg *config.HealthConfig, version, commit string) {
	if cfg == nil || !cfg.Enabled {
		return
	}
	liveness, readiness := cfg.LivenessPath, cfg.ReadinessPath
	if liveness == "" {
		liveness = config.DefaultLivenessPath
	}
	if readiness == "" {
		readiness = config.DefaultReadinessPath
	}
	mux.HandleFunc(liveness, checker.LivenessHandler())
	mux.HandleFunc(readiness, checker.ReadinessHandler())
	mux.HandleFunc("/version", VersionHandler(version, commit))
}

func allowed(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, r *http.Request, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if r.Method != http.MethodHead {
		_ = json.NewEncoder(w).Encode(v)
	}
}
