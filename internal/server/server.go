package server

import (
	"context"
	"net/http"
	"time"
)

// Server encapsulates the HTTP server of the application, providing controlled startup and shutdown.
type Server struct {
	// server — embedded HTTP server from net/http package, fully configured and ready to use.
	server *http.Server
}

// ListenAndServe starts the HTTP server and begins listening on the configured address.
// Blocks execution until the server is stopped or an error occurs.
// If server is stopped via Shutdown, method returns http.ErrServerClosed.
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server with the provided context.
// Active connections are allowed to complete within the timeout specified in the context.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// NewServer creates and configures a new server instance.
//
// Parameters:
// - address: address and port to listen on (e.g., ":8080").
// - router: prediction routes.
// - readTimeout, writeTimeout: connection timeouts.
//
// Returns pointer to a ready-to-run server.
func NewServer(
	address string,
	router *ApiV1Router,
	readTimeout time.Duration,
	writeTimeout time.Duration,
) *Server {
	s := Server{&http.Server{
		Addr:           address,
		Handler:        router.Handler(),
		ReadTimeout:    readTimeout,
		WriteTimeout:   writeTimeout,
		MaxHeaderBytes: 1024 * 10,
	}}

	return &s
}
