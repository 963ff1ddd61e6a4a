// Package metrics exposes Prometheus metrics for rolls and store operations.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"dicey/events"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// Roll Metrics
var (
	// RollsTotal tracks completed rolls by kind
	RollsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dicey_rolls_total",
			Help: "Total completed rolls by kind",
		},
		[]string{"kind"},
	)

	// DiceRolledTotal tracks individual dice drawn across all kept rolls
	DiceRolledTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dicey_dice_rolled_total",
			Help: "Total individual dice drawn for recorded rolls",
		},
	)

	// SavedRollsTotal tracks saved roll writes
	SavedRollsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dicey_saved_rolls_total",
			Help: "Total saved roll writes",
		},
	)
)

// Store Metrics
var (
	// StoreOpsTotal tracks store operations by operation and status
	StoreOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dicey_store_operations_total",
			Help: "Total roll store operations by operation and status",
		},
		[]string{"operation", "status"},
	)

	// StoreOpDuration tracks store operation latency in seconds
	StoreOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dicey_store_operation_duration_seconds",
			Help:    "Roll store operation duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)
)

// StoreObserver records store operations. It satisfies service.OperationObserver.
type StoreObserver struct{}

// ObserveOperation counts the operation and records its latency
func (StoreObserver) ObserveOperation(operation string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	StoreOpsTotal.WithLabelValues(operation, status).Inc()
	StoreOpDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// SubscribeToBus counts roll events published after successful commits
func SubscribeToBus(bus *events.Bus) {
	bus.Subscribe(events.EventTypeRollPerformed, func(ctx context.Context, event events.Event) {
		rollEvent, ok := event.(events.RollEvent)
		if !ok {
			return
		}
		RollsTotal.WithLabelValues(string(rollEvent.Kind)).Inc()
		DiceRolledTotal.Add(float64(len(rollEvent.Rolls)))
	})
	bus.Subscribe(events.EventTypeSavedRollStored, func(ctx context.Context, event events.Event) {
		SavedRollsTotal.Inc()
	})
}

// Server serves the /metrics endpoint
type Server struct {
	srv *http.Server
}

// NewServer creates a metrics server listening on addr
func NewServer(addr string) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start serves in the background until Shutdown is called
func (s *Server) Start() {
	go func() {
		log.WithField("addr", s.srv.Addr).Info("Starting metrics server")
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("Metrics server stopped")
		}
	}()
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Handler returns the HTTP handler serving /metrics
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}
