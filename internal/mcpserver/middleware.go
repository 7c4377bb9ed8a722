package mcpserver

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/oveku/mnemosyne/internal/logging"
)

// requestLogger attaches a request-scoped logger (derived from the logger
// already on the request context) to the context and emits a structured
// start (at V(1)) and completion record, the way every other ambient
// concern in this service is logged.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		log := logging.FromContext(r.Context()).WithValues(
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		)

		ww := newStatusResponseWriter(w)
		ctx := logging.IntoContext(r.Context(), log)
		log.V(1).Info("request started")
		next.ServeHTTP(ww, r.WithContext(ctx))
		log.Info("request completed", "status", ww.status, "duration", time.Since(start))
	})
}

var _ http.Flusher = &statusResponseWriter{}

type statusResponseWriter struct {
	http.ResponseWriter
	status int
}

func newStatusResponseWriter(w http.ResponseWriter) *statusResponseWriter {
	return &statusResponseWriter{w, http.StatusOK}
}

func (w *statusResponseWriter) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (w *statusResponseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// corsAndContentTypeMiddleware applies the two header rules §6.2 requires
// of every response on the /mcp endpoint.
func corsAndContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Access-Control-Allow-Origin", "*")
		next.ServeHTTP(w, r)
	})
}
