// Package status serves the monitor's last published reading and its
// Prometheus metrics over HTTP.
package status

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"AirPaper/internal/config"
	"AirPaper/internal/logging"
	"AirPaper/internal/metrics"
	"AirPaper/internal/monitor"
)

const (
	minTimeout      = 2 * time.Second
	shutdownTimeout = 4 * time.Second
)

// Source is satisfied by *monitor.Loop.
type Source interface {
	Last() (monitor.Reading, bool)
}

type Server struct {
	srv  *http.Server
	cfg  config.Status
	log  *log.Logger
	done chan struct{}
}

// NewRouter exposes GET / and GET /metrics.
func NewRouter(src Source, m *metrics.Metrics) *mux.Router {
	r := mux.NewRouter()
	r.Handle("/", m.WrapHandler("/", readingHandler(src))).Methods(http.MethodGet)
	r.Handle("/metrics", m.WrapHandler("/metrics", m.Handler())).Methods(http.MethodGet)
	return r
}

func readingHandler(src Source) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reading, ok := src.Last()
		if !ok {
			http.Error(w, "no reading published yet", http.StatusServiceUnavailable)
			return
		}
		body, err := json.Marshal(NewSensorReading(reading))
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	})
}

// New returns a server for cfg. interval sizes the read and write timeouts.
func New(cfg config.Status, interval time.Duration, src Source, m *metrics.Metrics, logger *log.Logger) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	timeout := max(minTimeout, interval)
	handler := handlers.LoggingHandler(logging.Std(logger, log.DebugLevel).Writer(), NewRouter(src, m))
	return &Server{
		srv: &http.Server{
			Addr:         net.JoinHostPort(cfg.Host, fmt.Sprint(cfg.Port)),
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
			IdleTimeout:  120 * time.Second,
			Handler:      handler,
			ErrorLog:     logging.Std(logger, log.ErrorLevel),
		},
		cfg:  cfg,
		log:  logger,
		done: make(chan struct{}),
	}
}

// Start listens in the background. Failing to bind is logged, not fatal:
// the status endpoint is a convenience and must not stop acquisition.
func (s *Server) Start() {
	go func() {
		defer close(s.done)
		if s.cfg.Host == "0.0.0.0" {
			if ip, err := outboundIP(); err == nil {
				s.log.Infof("Listening on %s:%d…", ip, s.cfg.Port)
			}
		} else {
			s.log.Infof("Listening on %s…", s.srv.Addr)
		}
		err := s.srv.ListenAndServe()
		s.log.Info("Status server stopped", "err", err)
	}()
}

// Shutdown waits up to four seconds for open requests.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := s.srv.Shutdown(ctx)
	<-s.done
	return err
}

// outboundIP resolves the address other hosts would reach us on.
func outboundIP() (net.IP, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP, nil
}
