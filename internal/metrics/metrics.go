// Package metrics exposes Prometheus counters for the recognition pipeline
// and HTTP surface.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters and gauges for the hand tracker.
type Metrics struct {
	registry             *prometheus.Registry
	requestsTotal        prometheus.Counter
	errorsTotal          prometheus.Counter
	framesProcessedTotal prometheus.Counter
	handsDetectedTotal   prometheus.Counter
	detectionErrorsTotal prometheus.Counter
	captureStartsTotal   prometheus.Counter
	captureFailuresTotal prometheus.Counter
	fingersExtended      *prometheus.CounterVec
	activeSession        prometheus.Gauge
	frameDuration        prometheus.Histogram
}

// New creates and registers Prometheus metrics on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		requestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mudra_requests_total",
			Help: "Total number of HTTP requests received",
		}),
		errorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mudra_errors_total",
			Help: "Total number of HTTP responses with error status (4xx or 5xx)",
		}),
		framesProcessedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mudra_frames_processed_total",
			Help: "Total number of frames run through detection",
		}),
		handsDetectedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mudra_hands_detected_total",
			Help: "Total number of hands found across all frames",
		}),
		detectionErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mudra_detection_errors_total",
			Help: "Total number of frames skipped because detection failed",
		}),
		captureStartsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mudra_capture_starts_total",
			Help: "Total number of capture sessions started",
		}),
		captureFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mudra_capture_failures_total",
			Help: "Total number of failed attempts to start capture",
		}),
		fingersExtended: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mudra_fingers_extended_total",
			Help: "Total number of times each finger was classified extended",
		}, []string{"finger"}),
		activeSession: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mudra_active_session",
			Help: "1 while a capture session is running",
		}),
		frameDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "mudra_frame_duration_seconds",
			Help:    "Time from frame arrival to rendered output",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1},
		}),
	}

	registry.MustRegister(
		m.requestsTotal,
		m.errorsTotal,
		m.framesProcessedTotal,
		m.handsDetectedTotal,
		m.detectionErrorsTotal,
		m.captureStartsTotal,
		m.captureFailuresTotal,
		m.fingersExtended,
		m.activeSession,
		m.frameDuration,
	)
	return m
}

// IncRequests increments the total request counter.
func (m *Metrics) IncRequests() {
	m.requestsTotal.Inc()
}

// IncErrors increments the errors counter.
func (m *Metrics) IncErrors() {
	m.errorsTotal.Inc()
}

// ObserveFrame records one processed frame with its hand count and latency.
func (m *Metrics) ObserveFrame(hands int, took time.Duration) {
	m.framesProcessedTotal.Inc()
	m.handsDetectedTotal.Add(float64(hands))
	m.frameDuration.Observe(took.Seconds())
}

// IncFingerExtended counts one extended classification for finger.
func (m *Metrics) IncFingerExtended(finger string) {
	m.fingersExtended.WithLabelValues(finger).Inc()
}

// IncDetectionErrors increments the detection error counter.
func (m *Metrics) IncDetectionErrors() {
	m.detectionErrorsTotal.Inc()
}

// IncCaptureStarts increments the capture start counter.
func (m *Metrics) IncCaptureStarts() {
	m.captureStartsTotal.Inc()
}

// IncCaptureFailures increments the capture failure counter.
func (m *Metrics) IncCaptureFailures() {
	m.captureFailuresTotal.Inc()
}

// SetActiveSession sets the active session gauge.
func (m *Metrics) SetActiveSession(active bool) {
	if active {
		m.activeSession.Set(1)
		return
	}
	m.activeSession.Set(0)
}

// Handler returns an http.Handler that serves Prometheus metrics.
// updateGauges is called before each scrape to refresh gauge values.
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		h.ServeHTTP(w, r)
	})
}
