package diag

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"acoustimon/internal/logger"
)

const (
	readTimeout     = 5 * time.Second
	writeTimeout    = 10 * time.Second
	shutdownTimeout = 2 * time.Second
)

// Status is the agent snapshot served at /status.
type Status struct {
	DeviceID      string  `json:"device_id"`
	Category      string  `json:"category"`
	UptimeMs      int64   `json:"uptime_ms"`
	Connected     bool    `json:"connected"`
	UploadEnabled bool    `json:"upload_enabled"`
	CompressorOn  bool    `json:"compressor_on"`
	AnomalyScore  float64 `json:"anomaly_score"`
}

// Server serves /healthz, /status and /metrics on the configured address.
type Server struct {
	router   *mux.Router
	http     *http.Server
	statusFn func() Status
}

func NewServer(listen string, statusFn func() Status) *Server {
	s := &Server{
		router:   mux.NewRouter(),
		statusFn: statusFn,
	}

	s.router.HandleFunc("/healthz", s.healthHandler).Methods(http.MethodGet)
	s.router.HandleFunc("/status", s.statusHandler).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.Handler())

	s.http = &http.Server{
		Addr:         listen,
		Handler:      s.router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	return s
}

// Start serves in the background; listen errors are logged, not fatal.
func (s *Server) Start() {
	go func() {
		logger.Info().Str("listen", s.http.Addr).Msg("Diagnostics server listening")

		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("Diagnostics server failed")
		}
	}()
}

func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return s.http.Shutdown(ctx)
}

func (s *Server) healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) statusHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.statusFn()); err != nil {
		logger.Debug().Err(err).Msg("Status encode failed")
	}
}
