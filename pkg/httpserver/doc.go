// Package httpserver runs the service's HTTP surface with graceful shutdown
// and provides liveness and readiness handlers.
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	return srv.Run(ctx, router)
//
// Run returns after SIGINT, SIGTERM or cancellation of ctx once in-flight
// requests have finished or the shutdown timeout has passed.
package httpserver
