package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/orbiterhost/orbiter-cli/internal/server/middleware"
)

// CallbackFunc receives the query parameters forwarded from the OAuth
// redirect fragment. A nil error marks the login as complete.
type CallbackFunc func(ctx context.Context, params url.Values) error

// Config holds the callback listener configuration.
type Config struct {
	Host              string
	Port              int // 0 picks a free port
	ShutdownTimeout   time.Duration
	RequestsPerMinute int
}

// DefaultConfig returns the configuration used by `orbiter login`.
func DefaultConfig() Config {
	return Config{
		Host:              "127.0.0.1",
		Port:              54321,
		ShutdownTimeout:   2 * time.Second,
		RequestsPerMinute: 30,
	}
}

// Server is the short-lived loopback listener that captures the OAuth
// redirect. It delivers exactly one result on Done.
type Server struct {
	cfg        Config
	router     chi.Router
	onCallback CallbackFunc
	httpServer *http.Server
	listener   net.Listener
	logger     *slog.Logger

	claimed  atomic.Bool
	done     chan error
	doneOnce sync.Once
}

// New creates a Server with its routes wired. Call Start to begin accepting
// connections.
func New(cfg Config, onCallback CallbackFunc, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		cfg:        cfg,
		onCallback: onCallback,
		logger:     logger,
		done:       make(chan error, 1),
	}
	s.setupRouter()
	return s
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimw.Recoverer)
	if s.cfg.RequestsPerMinute > 0 {
		r.Use(middleware.RateLimit(s.cfg.RequestsPerMinute))
	}

	r.Get("/healthz", s.handleHealthz)
	r.Get("/auth", s.handleForward)
	r.Get("/callback", s.handleCallback)

	s.router = r
}

// forwardPage moves the token-bearing URL fragment into the query string of
// a same-origin request; browsers never send fragments to the server. Query
// parameters already on the redirect are kept, fragment values win.
var forwardPage = template.Must(template.New("forward").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Orbiter login</title></head>
<body>
<p>Completing login&hellip;</p>
<script>
  var params = new URLSearchParams(window.location.search);
  new URLSearchParams(window.location.hash.substring(1)).forEach(function(v, k) {
    params.set(k, v);
  });
  window.location.replace("/callback?" + params.toString());
</script>
</body>
</html>`))

var resultPage = template.Must(template.New("result").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Orbiter login</title></head>
<body>
<h2>{{.Title}}</h2>
<p>{{.Message}}</p>
</body>
</html>`))

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleForward(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	forwardPage.Execute(w, nil)
}

func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")

	// Only the first callback is handled.
	if !s.claimed.CompareAndSwap(false, true) {
		s.logger.Debug("ignoring repeated login callback", "request_id", middleware.GetRequestID(r.Context()))
		w.WriteHeader(http.StatusConflict)
		resultPage.Execute(w, map[string]string{
			"Title":   "Login already completed",
			"Message": "This login has already been handled. You can close this window.",
		})
		return
	}

	err := s.onCallback(r.Context(), r.URL.Query())
	if err != nil {
		s.logger.Warn("login callback failed", "error", err, "request_id", middleware.GetRequestID(r.Context()))
		w.WriteHeader(http.StatusBadRequest)
		resultPage.Execute(w, map[string]string{
			"Title":   "Login failed",
			"Message": err.Error(),
		})
	} else {
		resultPage.Execute(w, map[string]string{
			"Title":   "Login successful",
			"Message": "You can close this window and return to your terminal.",
		})
	}

	s.finish(err)
}

func (s *Server) finish(err error) {
	s.doneOnce.Do(func() {
		s.done <- err
	})
}

// Start binds the listener and serves in a background goroutine.
func (s *Server) Start() error {
	addr := net.JoinHostPort(s.cfg.Host, fmt.Sprint(s.cfg.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	s.listener = ln

	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	go func() {
		s.logger.Debug("callback listener starting", "addr", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.finish(fmt.Errorf("callback listener: %w", err))
		}
	}()
	return nil
}

// Port returns the bound port, which differs from Config.Port when that was 0.
func (s *Server) Port() int {
	if s.listener == nil {
		return s.cfg.Port
	}
	return s.listener.Addr().(*net.TCPAddr).Port
}

// Done delivers the outcome of the first callback, or a listener failure.
func (s *Server) Done() <-chan error {
	return s.done
}

// Shutdown drains in-flight requests so the result page reaches the browser,
// then closes the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	if s.cfg.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
		defer cancel()
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.httpServer.Close()
		return fmt.Errorf("callback listener shutdown: %w", err)
	}
	s.logger.Debug("callback listener stopped")
	return nil
}

// ServeHTTP implements http.Handler, delegating to the router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
