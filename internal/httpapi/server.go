// Package httpapi exposes the tracker over a JSON API. Each signed-in user
// gets a session controller; the handlers translate HTTP into controller and
// service calls.
package httpapi

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/auth"
	applog "fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/session"
	"fintrack/internal/store"
)

type Server struct {
	http.Server
	authSvc     *auth.Service
	txSvc       *services.TransactionService
	records     store.RecordStore
	rateLimiter *rateLimiter

	mu       sync.Mutex
	sessions map[string]*session.Controller

	shutdownOnce sync.Once
}

// Simple in-memory rate limiter
type rateLimiter struct {
	mu           sync.Mutex
	clients      map[string]*clientInfo
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type clientInfo struct {
	lastRequest time.Time
	requests    int
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		clients:     make(map[string]*clientInfo),
		stopCleanup: make(chan struct{}),
	}
	go rl.startCleanup()
	return rl
}

// startCleanup runs periodic cleanup to remove stale client entries
func (rl *rateLimiter) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanupStaleEntries removes client entries older than 10 minutes
func (rl *rateLimiter) cleanupStaleEntries() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, client := range rl.clients {
		if client.lastRequest.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() {
		if rl.stopCleanup != nil {
			close(rl.stopCleanup)
		}
	})
}

func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	client, exists := rl.clients[clientIP]

	if !exists {
		rl.clients[clientIP] = &clientInfo{
			lastRequest: now,
			requests:    1,
		}
		return true
	}

	// Reset counter if more than 1 minute has passed
	if now.Sub(client.lastRequest) > time.Minute {
		client.requests = 1
		client.lastRequest = now
		return true
	}

	// Allow up to 60 requests per minute
	client.requests++
	client.lastRequest = now

	return client.requests <= 60
}

// NewServer configures routes, returning a ready-to-run http.Server.
func NewServer(addr string, authSvc *auth.Service, txSvc *services.TransactionService, records store.RecordStore) *Server {
	mux := http.NewServeMux()
	apiLogger := applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentHTTP)

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: applog.Middleware(apiLogger)(mux),
		},
		authSvc:     authSvc,
		txSvc:       txSvc,
		records:     records,
		rateLimiter: newRateLimiter(),
		sessions:    make(map[string]*session.Controller),
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("/api/auth/register", s.withMiddleware(s.handleRegister))
	mux.HandleFunc("/api/auth/login", s.withMiddleware(s.handleLogin))
	mux.HandleFunc("/api/auth/logout", s.withMiddleware(s.requireAuth(s.handleLogout)))

	mux.HandleFunc("/api/transactions", s.withMiddleware(s.requireAuth(s.handleTransactions)))
	mux.HandleFunc("/api/transactions/", s.withMiddleware(s.requireAuth(s.handleTransactionByID)))
	mux.HandleFunc("/api/filters", s.withMiddleware(s.requireAuth(s.handleFilters)))
	mux.HandleFunc("/api/dashboard", s.withMiddleware(s.requireAuth(s.handleDashboard)))
	mux.HandleFunc("/api/yearly", s.withMiddleware(s.requireAuth(s.handleYearly)))
	mux.HandleFunc("/api/export.csv", s.withMiddleware(s.requireAuth(s.handleExport)))
	mux.HandleFunc("/api/categories", s.withMiddleware(s.handleCategories))

	return s
}

// Shutdown stops the cleanup goroutine, tears down live sessions, and shuts
// down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}

		s.mu.Lock()
		for uid, ctrl := range s.sessions {
			ctrl.HandleAuthChange(nil)
			delete(s.sessions, uid)
		}
		s.mu.Unlock()

		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// sessionFor returns the user's controller, creating and wiring one on first
// use.
func (s *Server) sessionFor(u *auth.User) *session.Controller {
	s.mu.Lock()
	ctrl, ok := s.sessions[u.UID]
	if !ok {
		ctrl = session.NewController(s.records, nil)
		s.sessions[u.UID] = ctrl
	}
	s.mu.Unlock()

	if !ok {
		// Subscribes to the user's collection; done outside the server lock.
		ctrl.HandleAuthChange(u)
	}
	return ctrl
}

func (s *Server) dropSession(uid string) {
	s.mu.Lock()
	ctrl, ok := s.sessions[uid]
	delete(s.sessions, uid)
	s.mu.Unlock()
	if ok {
		ctrl.HandleAuthChange(nil)
	}
}

// withMiddleware adds security headers, rate limiting, request IDs, and
// request logging.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Extract client IP (considering proxies)
		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := applog.WithRequestID(r.Context(), requestID)
		r = r.WithContext(ctx)

		applog.HTTPStart(ctx, r, clientIP)

		// Rate limit mutating requests per client.
		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP) {
			applog.FromContext(ctx).WarnContext(ctx, "Rate limit exceeded",
				"client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		applog.HTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

type contextKey string

const userKey contextKey = "user"

func contextWithUser(ctx context.Context, u *auth.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

func userFromContext(ctx context.Context) *auth.User {
	u, _ := ctx.Value(userKey).(*auth.User)
	return u
}

// generateRequestID creates a unique request ID for tracing
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
