// Package metrics exposes Prometheus collectors for the HTTP API and the song workflow.
package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "songboard",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "songboard",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "route"},
	)

	songEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "songboard",
			Subsystem: "songs",
			Name:      "events_total",
			Help:      "Song lifecycle events (suggested, approved, rejected, updated, removed, viewed).",
		},
		[]string{"event"},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		songEvents,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// RecordSongEvent counts one lifecycle event.
func RecordSongEvent(event string) {
	songEvents.WithLabelValues(event).Inc()
}

// Middleware records the count and latency of every request by route pattern.
func Middleware(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	status := c.Response().StatusCode()
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
	} else if err != nil {
		status = fiber.StatusInternalServerError
	}

	route := c.Route().Path
	httpRequests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
	return err
}

// Handler serves the registry in the Prometheus text format.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(Registry, promhttp.HandlerOpts{}))
}
