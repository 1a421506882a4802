package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quill/app/logger"
	"quill/app/middleware"
	"quill/app/repositories"
	"quill/app/routes"
	"quill/config"
)

// limiterCleanupInterval is how often idle like limiters are dropped.
const limiterCleanupInterval = 10 * time.Minute

// Server runs the HTTP API on top of a store.
type Server struct {
	cfg     config.AppConfig
	limiter *middleware.RateLimiter
	http    *http.Server
}

// NewServer wires routes, middleware and the likes rate limiter for store.
func NewServer(cfg config.AppConfig, store repositories.Store) *Server {
	var limiter *middleware.RateLimiter
	if cfg.RateLimit.LikesPerMinute > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.LikesPerMinute, cfg.RateLimit.Burst)
		trusted, err := middleware.ParseTrustedProxies(cfg.RateLimit.TrustedProxies)
		if err != nil {
			logger.Log.Errorf("Ignoring trusted proxies: %v", err)
		} else {
			limiter.TrustProxies(trusted)
		}
	}

	maxImage := cfg.Uploads.MaxImageBytes
	if sized, ok := store.(interface{ MaxValueSize() int }); ok {
		if limit := int64(sized.MaxValueSize()); limit > 0 && (maxImage <= 0 || maxImage > limit) {
			logger.Log.Infof("Capping image uploads at %d bytes for this store", limit)
			maxImage = limit
		}
	}

	handler := routes.NewHandler(store, routes.Options{
		LikeLimiter:    limiter,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		MaxImageBytes:  maxImage,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
	})

	return &Server{
		cfg:     cfg,
		limiter: limiter,
		http: &http.Server{
			Addr:         cfg.Server.Addr,
			Handler:      handler,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Server.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully, letting in-flight requests finish within the shutdown timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s.limiter != nil {
		stop := s.limiter.StartCleanup(limiterCleanupInterval)
		defer stop()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.Serve(ln)
	}()
	logger.Log.Infof("Starting blog service on %s", ln.Addr())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Log.Info("Shutting down blog service")
	timeout := s.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// RunAppServer starts the blog service and blocks until SIGINT or SIGTERM.
// It returns the process exit code.
func RunAppServer(args []string) int {
	opts, err := parseOptions(args)
	if err != nil {
		fmt.Fprintf(stdout, "Error: %v\n", err)
		return 1
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		fmt.Fprintf(stdout, "Error: %v\n", err)
		return 1
	}

	store, err := openStore(cfg)
	if err != nil {
		logger.Log.Errorf("Failed to open store: %v", err)
		return 1
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewServer(cfg, store).Run(ctx); err != nil {
		logger.Log.Errorf("Server error: %v", err)
		return 1
	}
	logger.Log.Info("Blog service stopped")
	return 0
}
