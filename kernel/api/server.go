package api

import (
	"context"
	"io/fs"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/grocyscan/grocy-scanner/kernel/engine"
	"github.com/michaelquigley/pfxlog"
	"github.com/sirupsen/logrus"
)

const RequestIDHeader = "X-Request-ID"

const runningMessage = "Grocy Item Scanner is running!"

type ctxKey int

const requestIDKey ctxKey = iota

// Server is the inbound http surface of the scanner.
type Server struct {
	scanner    *engine.Scanner
	reconciler *engine.Reconciler
	static     fs.FS
	mux        *http.ServeMux
}

// NewServer wires the routes. A nil static filesystem answers GET / with a status message
// instead of the web front end.
func NewServer(scanner *engine.Scanner, reconciler *engine.Reconciler, static fs.FS) *Server {
	s := &Server{
		scanner:    scanner,
		reconciler: reconciler,
		static:     static,
		mux:        http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("POST /config", s.handleConfig)
	s.mux.HandleFunc("GET /api/check-barcode", s.handleCheckBarcode)
	s.mux.HandleFunc("POST /api/check-barcode", s.handleCheckBarcode)
	s.mux.HandleFunc("POST /api/purchase-product", s.handleStock("purchase", "product purchased"))
	s.mux.HandleFunc("POST /api/consume-product", s.handleStock("consume", "product consumed"))
	s.mux.HandleFunc("POST /api/open-product", s.handleStock("open", "product opened"))
	s.mux.HandleFunc("POST /api/test-grocy-connection", s.handleTestConnection)
	s.mux.HandleFunc("GET /api/scans", s.handleScans)
	s.mux.HandleFunc("GET /scan/{barcode}", s.handleFallback)

	if s.static != nil {
		s.mux.Handle("GET /", http.FileServerFS(s.static))
	} else {
		s.mux.HandleFunc("GET /{$}", s.handleRoot)
	}
}

// Handler returns the routes wrapped in request id and access logging.
func (s *Server) Handler() http.Handler {
	return withRequestID(s.mux)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Handler().ServeHTTP(w, r)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		r = r.WithContext(context.WithValue(r.Context(), requestIDKey, id))

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		requestLogger(r).WithFields(logrus.Fields{
			"status":   rec.status,
			"duration": time.Since(start).String(),
		}).Debug("handled request")
	})
}

func requestLogger(r *http.Request) *logrus.Entry {
	id, _ := r.Context().Value(requestIDKey).(string)
	return pfxlog.Logger().WithFields(logrus.Fields{
		"request_id": id,
		"method":     r.Method,
		"path":       r.URL.Path,
	})
}
