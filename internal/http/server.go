package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"caixa/internal/auth"
	"caixa/internal/cache"
	"caixa/internal/export/google"
	"caixa/internal/gateway"
	"caixa/internal/middleware/ratelimit"
	"caixa/internal/reports"
	"caixa/internal/store"
)

// Server exposes the synchronized store as a JSON API. Report payloads are
// cached briefly and invalidated on every mutation.
type Server struct {
	http.Server
	store    *store.Store
	sessions gateway.Sessions
	exporter *google.Client

	rateLimiter *ratelimit.Limiter

	dashCache   *cache.LRUCache[reports.Dashboard]
	reportCache *cache.LRUCache[reports.MonthlyReport]
	cacheMgr    *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
// The exporter may be nil when report export is not configured.
func NewServer(addr string, st *store.Store, sessions gateway.Sessions, exporter *google.Client) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		store:       st,
		sessions:    sessions,
		exporter:    exporter,
		rateLimiter: ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		dashCache:   cache.NewLRUCache[reports.Dashboard](16, 1*time.Minute),
		reportCache: cache.NewLRUCache[reports.MonthlyReport](64, 5*time.Minute),
		cacheMgr:    cache.NewManager(),
	}

	s.cacheMgr.Register(s.dashCache)
	s.cacheMgr.Register(s.reportCache)
	s.cacheMgr.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("GET /api/products", s.wrap(s.handleListProducts))
	mux.HandleFunc("POST /api/products", s.wrap(s.handleCreateProduct))
	mux.HandleFunc("PUT /api/products/{id}", s.wrap(s.handleUpdateProduct))
	mux.HandleFunc("DELETE /api/products/{id}", s.wrap(s.handleDeleteProduct))

	mux.HandleFunc("GET /api/sales", s.wrap(s.handleListSales))
	mux.HandleFunc("POST /api/sales", s.wrap(s.handleCreateSale))
	mux.HandleFunc("PUT /api/sales/{id}", s.wrap(s.handleUpdateSale))
	mux.HandleFunc("DELETE /api/sales/{id}", s.wrap(s.handleDeleteSale))

	mux.HandleFunc("GET /api/expenses", s.wrap(s.handleListExpenses))
	mux.HandleFunc("POST /api/expenses", s.wrap(s.handleCreateExpense))
	mux.HandleFunc("PUT /api/expenses/{id}", s.wrap(s.handleUpdateExpense))
	mux.HandleFunc("DELETE /api/expenses/{id}", s.wrap(s.handleDeleteExpense))

	mux.HandleFunc("GET /api/payment-methods", s.wrap(s.handleListPaymentMethods))
	mux.HandleFunc("POST /api/payment-methods", s.wrap(s.handleCreatePaymentMethod))
	mux.HandleFunc("PUT /api/payment-methods/{name}", s.wrap(s.handleRenamePaymentMethod))
	mux.HandleFunc("DELETE /api/payment-methods/{name}", s.wrap(s.handleDeletePaymentMethod))

	mux.HandleFunc("GET /api/tags", s.wrap(s.handleListTags))
	mux.HandleFunc("POST /api/tags", s.wrap(s.handleCreateTag))
	mux.HandleFunc("PUT /api/tags/{name}", s.wrap(s.handleRenameTag))
	mux.HandleFunc("DELETE /api/tags/{name}", s.wrap(s.handleDeleteTag))

	mux.HandleFunc("GET /api/dashboard", s.wrap(s.handleDashboard))
	mux.HandleFunc("GET /api/reports/monthly", s.wrap(s.handleMonthlyReport))
	mux.HandleFunc("POST /api/reports/export", s.wrap(s.handleExportReport))

	return s
}

// wrap applies security headers, request id, rate limiting of mutations,
// session resolution, and request logging to a handler.
func (s *Server) wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ip := clientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "request started",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"client_ip", ip)

		if isMutation(r.Method) && !s.rateLimiter.Allow(ip) {
			slog.WarnContext(ctx, "rate limit exceeded", "client_ip", ip, "path", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "limite de requisições excedido", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		r = r.WithContext(s.resolveSession(r))

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "request completed",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds())
	}
}

// resolveSession turns a bearer token into a user id on the context. An
// absent or unknown token leaves the context untouched; mutating store
// actions reject it downstream.
func (s *Server) resolveSession(r *http.Request) context.Context {
	ctx := r.Context()
	token := bearerToken(r)
	if token == "" || s.sessions == nil {
		return ctx
	}
	userID, err := s.sessions.LookupSession(ctx, token)
	if err != nil {
		slog.WarnContext(ctx, "session lookup failed", "error", err)
		return ctx
	}
	if userID == "" {
		return ctx
	}
	return auth.WithUser(ctx, userID)
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) > len(prefix) && h[:len(prefix)] == prefix {
		return h[len(prefix):]
	}
	return ""
}

func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

// invalidateReports drops all cached report payloads. Called after every
// successful mutation.
func (s *Server) invalidateReports() {
	s.dashCache.Clear()
	s.reportCache.Clear()
}

// Shutdown stops the cleanup goroutines and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheMgr.Stop()
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

type requestIDKey struct{}

// responseWriter captures the status code for request logging.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
