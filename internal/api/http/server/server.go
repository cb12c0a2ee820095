package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// HTTPServer wraps an http.Server with address and lifecycle methods.
type HTTPServer struct {
	server   *http.Server
	addr     string
	certFile string
	keyFile  string
}

// NewHTTPServer creates an HTTPServer serving the given handler. When both
// certFile and keyFile are set the server speaks TLS.
func NewHTTPServer(handler http.Handler, addr, certFile, keyFile string) *HTTPServer {
	return &HTTPServer{
		server: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		addr:     addr,
		certFile: certFile,
		keyFile:  keyFile,
	}
}

// Start starts serving on the configured address. It blocks until the
// server is shut down.
func (s *HTTPServer) Start() error {
	var err error
	if s.certFile != "" && s.keyFile != "" {
		err = s.server.ListenAndServeTLS(s.certFile, s.keyFile)
	} else {
		err = s.server.ListenAndServe()
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}

// Stop gracefully stops the server.
func (s *HTTPServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Address returns the configured listen address.
func (s *HTTPServer) Address() string {
	return s.addr
}
