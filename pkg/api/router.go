package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rohitbhushankumariift2022-coder/easeTransfer/internal/logger"
	"github.com/rohitbhushankumariift2022-coder/easeTransfer/internal/telemetry"
	"github.com/rohitbhushankumariift2022-coder/easeTransfer/pkg/api/handlers"
	"github.com/rohitbhushankumariift2022-coder/easeTransfer/pkg/feedback"
	"github.com/rohitbhushankumariift2022-coder/easeTransfer/pkg/hub"
	"github.com/rohitbhushankumariift2022-coder/easeTransfer/pkg/stats"
)

// Deps carries the collaborators the HTTP surface exposes. Nil fields
// disable their endpoints rather than failing: a hub without a feedback
// log still serves everything else.
type Deps struct {
	// Registry is the session registry backing /api/files, /api/devices,
	// and the readiness probe.
	Registry *hub.Registry

	// WS is the WebSocket adapter mounted at /ws.
	WS http.Handler

	// Conns reports open WebSocket connections for /api/info. When nil,
	// the registry's device count is used instead.
	Conns handlers.ConnectionCounter

	// Stats backs /api/stats. May be nil.
	Stats *stats.Store

	// Feedback backs POST /api/feedback. May be nil.
	Feedback *feedback.Log

	// Metrics is the Prometheus handler. When nil, no metrics route is
	// mounted at all.
	Metrics http.Handler

	// Web serves the embedded landing page at /. When nil, / redirects
	// to /health.
	Web http.Handler

	// Version is reported by the health endpoint.
	Version string

	// StartedAt anchors the uptime reported by the health endpoint.
	StartedAt time.Time
}

// NewRouter creates and configures the chi router with all middleware and routes.
//
// The router is configured with:
//   - Request ID middleware for request tracking
//   - Real IP extraction for proper client identification
//   - Custom request logging using the internal logger
//   - Panic recovery to prevent server crashes
//   - Request timeout on plain HTTP routes (the WebSocket endpoint is
//     exempt; relay connections stay open for the life of the session)
//
// Routes:
//   - GET /ws - WebSocket upgrade for the relay protocol
//   - GET /api/qrcode - QR code for joining from another device
//   - GET /api/info - Hub address and connection count
//   - GET /api/files - Buffered file metadata across all sessions
//   - GET /api/devices - Connected device metadata
//   - GET /api/stats - Lifetime usage counters
//   - POST /api/feedback - Append a feedback entry
//   - GET /health - Liveness probe
//   - GET /health/ready - Readiness probe
//   - GET /metrics - Prometheus exposition (only when enabled)
//   - GET / - Embedded landing page
func NewRouter(cfg Config, deps Deps) http.Handler {
	cfg.applyDefaults()

	r := chi.NewRouter()

	// Middleware stack - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(tracing)

	// WebSocket endpoint, mounted outside the timeout group so the
	// middleware never kills a connection that is merely long-lived.
	if deps.WS != nil {
		r.Handle("/ws", deps.WS)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))

		healthHandler := handlers.NewHealthHandler(deps.Registry, deps.Version, deps.StartedAt)
		r.Route("/health", func(r chi.Router) {
			r.Get("/", healthHandler.Liveness)
			r.Get("/ready", healthHandler.Readiness)
		})

		r.Route("/api", func(r chi.Router) {
			qrHandler := handlers.NewQRCodeHandler(cfg.Port)
			r.Get("/qrcode", qrHandler.Generate)

			infoHandler := handlers.NewInfoHandler(cfg.Port, deps.Conns, deps.Registry)
			r.Get("/info", infoHandler.Info)

			filesHandler := handlers.NewFilesHandler(deps.Registry)
			r.Get("/files", filesHandler.List)

			devicesHandler := handlers.NewDevicesHandler(deps.Registry)
			r.Get("/devices", devicesHandler.List)

			statsHandler := handlers.NewStatsHandler(deps.Stats)
			r.Get("/stats", statsHandler.Get)

			feedbackHandler := handlers.NewFeedbackHandler(deps.Feedback)
			r.Post("/feedback", feedbackHandler.Submit)
		})

		if deps.Metrics != nil {
			r.Method(http.MethodGet, cfg.MetricsPath, deps.Metrics)
		}
	})

	// Landing page at the root; everything unmatched falls through to it.
	if deps.Web != nil {
		r.Handle("/*", deps.Web)
	} else {
		// Root redirect to health for convenience
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/health", http.StatusTemporaryRedirect)
		})
	}

	return r
}

// tracing starts a span per HTTP request when telemetry is enabled. The
// WebSocket endpoint is exempt: its frames get their own spans from the
// read pump.
func tracing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !telemetry.IsEnabled() || r.URL.Path == "/ws" {
			next.ServeHTTP(w, r)
			return
		}

		ctx, span := telemetry.StartAPISpan(r.Context(), r.Method, r.URL.Path)
		defer span.End()

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// isQuietPath returns true for endpoints whose requests are logged at
// DEBUG: health probes and metrics scrapes fire constantly, and the
// WebSocket endpoint gets its own lifecycle logging from the adapter.
func isQuietPath(path string) bool {
	return path == "/health" || strings.HasPrefix(path, "/health/") ||
		path == "/metrics" || path == "/ws"
}

// requestLogger is a custom middleware that logs requests using the internal logger.
//
// It logs:
//   - Request start (DEBUG level): method, path, remote addr
//   - Request completion (INFO level): method, path, status, duration
//   - Probe and WebSocket requests are logged at DEBUG level to reduce noise
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())

		logger.Debug("HTTP request started",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		)

		// Wrap response writer to capture status code
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		duration := time.Since(start)

		logArgs := []any{
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", duration.String(),
		}

		if isQuietPath(r.URL.Path) {
			logger.Debug("HTTP request completed", logArgs...)
		} else {
			logger.Info("HTTP request completed", logArgs...)
		}
	})
}
