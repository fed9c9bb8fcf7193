// Package server serves the telemetry endpoints (metrics, liveness and
// readiness) of a long-running command.
//
//	srv := server.NewServer(cfg.Watch.ListenAddress, tel.Handler(),
//	    server.WithLogger(tel.Logger().Logger))
//	if err := srv.Start(ctx); err != nil {
//	    return err
//	}
//
// Start blocks until ctx is cancelled, then stops accepting connections and
// waits up to the shutdown timeout for open requests.
package server
