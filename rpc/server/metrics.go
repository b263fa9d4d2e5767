package server

import (
	"errors"
	"fmt"
	"github.com/VictoriaMetrics/metrics"
	"io"
	"net"
	"net/http"
	"time"
)

const (
	metricAccepted  = `dcaesar_connections_accepted_total`
	metricSpawned   = `dcaesar_workers_started_total`
	metricReaped    = `dcaesar_workers_finished_total`
	metricFailed    = `dcaesar_workers_failed_total`
	metricMalformed = `dcaesar_requests_malformed_total`
	metricActive    = `dcaesar_workers_active`
)

// initMetrics registers all metrics of the server, so they are exported with 0 from the start
func (s *RPCServer) initMetrics() {
	for _, name := range []string{metricAccepted, metricSpawned, metricReaped, metricFailed, metricMalformed} {
		s.metrics.GetOrCreateCounter(name)
	}
	s.metrics.NewGauge(metricActive, func() float64 {
		return float64(s.ActiveWorkers())
	})
}

// WriteMetrics writes the server metrics in prometheus text format to w
func (s *RPCServer) WriteMetrics(w io.Writer, exposeProcessMetrics bool) {
	s.metrics.WritePrometheus(w)
	if exposeProcessMetrics {
		metrics.WriteProcessMetrics(w)
	}
}

// serveMetrics exposes the metrics on http://addr/metrics until the returned function is called
func (s *RPCServer) serveMetrics(addr string) (stop func(), err error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on metrics endpoint %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		s.WriteMetrics(w, true)
	})
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			Logger.Errorf("metrics endpoint failed: %v", err)
		}
	}()
	Logger.Infof("Serving metrics on http://%s/metrics", ln.Addr())

	return func() { _ = srv.Close() }, nil
}
