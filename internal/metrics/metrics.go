// Package metrics exposes daemon counters over HTTP for Prometheus.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PendingCounter reports how many reminders wait to fire.
type PendingCounter interface {
	PendingCount(ctx context.Context) (int, error)
}

// PendingFunc adapts a function to PendingCounter.
type PendingFunc func(ctx context.Context) (int, error)

func (f PendingFunc) PendingCount(ctx context.Context) (int, error) { return f(ctx) }

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	Fired              prometheus.Counter
	TickErrors         prometheus.Counter
	NotificationsSent  prometheus.Counter
	NotificationErrors prometheus.Counter
}

func New(pending PendingCounter) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Fired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reminder_fired_total",
			Help: "Reminders moved from pending to history",
		}),
		TickErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reminder_tick_errors_total",
			Help: "Scheduler polls that failed on the store",
		}),
		NotificationsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reminder_notifications_sent_total",
			Help: "Notification copies delivered",
		}),
		NotificationErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reminder_notification_errors_total",
			Help: "Notification copies that failed to deliver",
		}),
	}

	m.registry.MustRegister(
		m.Fired, m.TickErrors, m.NotificationsSent, m.NotificationErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	if pending != nil {
		m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "reminder_pending",
			Help: "Reminders waiting to fire",
		}, func() float64 {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			n, err := pending.PendingCount(ctx)
			if err != nil {
				return -1
			}
			return float64(n)
		}))
	}

	return m
}

func (m *Metrics) ReminderFired()      { m.Fired.Inc() }
func (m *Metrics) TickFailed()         { m.TickErrors.Inc() }
func (m *Metrics) NotificationSent()   { m.NotificationsSent.Inc() }
func (m *Metrics) NotificationFailed() { m.NotificationErrors.Inc() }

// Router serves /metrics and /healthz.
func (m *Metrics) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))

	return r
}

// Serve listens on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string, log *slog.Logger) error {
	log = log.With("component", "metrics")
	server := &http.Server{
		Addr:              addr,
		Handler:           m.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	ctxTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctxTimeout); err != nil {
		log.Error("shutdown failed", "err", err)
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
