// Package metrics exposes activity events as Prometheus counters.
package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	auth "github.com/goliatone/go-petcare-auth"
)

// Sink counts activity events. It implements auth.ActivitySink.
type Sink struct {
	AuthEvents   *prometheus.CounterVec
	EntityEvents *prometheus.CounterVec
}

var _ auth.ActivitySink = (*Sink)(nil)

// NewSink creates and registers the counters on reg
func NewSink(reg prometheus.Registerer) *Sink {
	s := &Sink{
		AuthEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "petcare_auth_events_total",
				Help: "Total number of authentication events by type",
			},
			[]string{"event"},
		),
		EntityEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "petcare_entity_events_total",
				Help: "Total number of entity lifecycle events by resource and type",
			},
			[]string{"resource", "event"},
		),
	}
	reg.MustRegister(s.AuthEvents, s.EntityEvents)
	return s
}

// Record implements auth.ActivitySink
func (s *Sink) Record(_ context.Context, event auth.ActivityEvent) error {
	if event.Resource != "" {
		s.EntityEvents.WithLabelValues(event.Resource, string(event.EventType)).Inc()
		return nil
	}
	s.AuthEvents.WithLabelValues(string(event.EventType)).Inc()
	return nil
}

// NewRegistry returns a registry with the Go and process collectors
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Server serves /metrics from a registry
type Server struct {
	addr   string
	server *http.Server
	logger auth.Logger
}

func NewServer(addr string, gatherer prometheus.Gatherer, logger auth.Logger) *Server {
	if logger == nil {
		logger = auth.NoopLogger{}
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return &Server{
		addr: addr,
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// Start listens on addr and serves in the background. It returns the
// bound address.
func (s *Server) Start() (string, error) {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return "", err
	}

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("metrics server stopped", "error", err)
		}
	}()

	return ln.Addr().String(), nil
}

func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
