package trace

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"fiscal/internal/log"
)

type ContextKey string

const (
	RequestIDKey ContextKey = "request_id"

	// RequestIDHeader is echoed on every response and honoured on requests.
	RequestIDHeader = "X-Request-ID"
)

// Middleware assigns request ids and logs request completion.
type Middleware struct {
	extractIP func(*http.Request) string
	logger    *log.Logger
	requests  atomic.Int64
}

func NewMiddleware(extractIP func(*http.Request) string, logger *log.Logger) *Middleware {
	return &Middleware{
		extractIP: extractIP,
		logger:    logger.WithComponent(log.ComponentHTTP),
	}
}

func (m *Middleware) Middleware(next http.Handler) http.Handler {
	structured := log.NewStructuredLogger(m.logger)
	logged := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := ""
		if m.extractIP != nil {
			clientIP = m.extractIP(r)
		}

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		structured.LogHTTPEnd(r.Context(), r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	})
	withLogger := log.Middleware(m.logger)(log.RequestIDMiddleware(func(r *http.Request) string {
		return GetRequestID(r.Context())
	})(logged))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" || len(requestID) > 64 {
			requestID = GenerateRequestID()
		}
		w.Header().Set(RequestIDHeader, requestID)
		m.requests.Add(1)

		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		withLogger.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Requests returns the number of requests seen.
func (m *Middleware) Requests() int64 {
	return m.requests.Load()
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

// GenerateRequestID creates a unique request ID for tracing
func GenerateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

// GetRequestID extracts the request ID from context
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}
