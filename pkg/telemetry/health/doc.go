// Package health provides liveness and readiness probes for long-running
// commands such as specfile watch.
//
// Liveness only reports that the process is up. Readiness runs every
// registered check and answers 503 while any of them fails; the watch
// command registers a check that fails while the watched files do not
// load.
//
//	checker := health.New(5 * time.Second)
//	checker.RegisterCheck("specification", watcher.Check)
//
//	mux := http.NewServeMux()
//	health.Register(mux, checker, &cfg.Telemetry.Health, version, commit)
package health
