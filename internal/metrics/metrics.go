// Package metrics exposes the Prometheus collectors shared by the server,
// the collaborator decorators and the orchestrator.
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "stockagent"

type Recorder struct {
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	httpInFlight  prometheus.Gauge
	upstreamCalls *prometheus.CounterVec
	upstreamTime  *prometheus.HistogramVec
	assessments   *prometheus.CounterVec
	finalScore    prometheus.Histogram
	newsAnalyzed  prometheus.Histogram
}

var (
	defaultRecorder *Recorder
	defaultOnce     sync.Once
)

// Default returns the recorder registered on the global Prometheus registry.
func Default() *Recorder {
	defaultOnce.Do(func() {
		defaultRecorder = New(prometheus.DefaultRegisterer)
	})
	return defaultRecorder
}

// New registers a fresh set of collectors on reg.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		httpRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"route", "method", "status"},
		),
		httpDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"route", "method", "class"},
		),
		httpInFlight: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_in_flight_requests",
				Help:      "Current number of in-flight HTTP requests",
			},
		),
		upstreamCalls: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upstream_calls_total",
				Help:      "Calls made to market, news and language-model providers",
			},
			[]string{"component", "provider", "operation", "outcome"},
		),
		upstreamTime: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "upstream_call_duration_seconds",
				Help:      "Duration of upstream provider calls in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"component", "provider", "operation"},
		),
		assessments: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "assessments_total",
				Help:      "Assessments produced by outlook and confidence",
			},
			[]string{"outlook", "confidence"},
		),
		finalScore: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "assessment_final_score",
				Help:      "Distribution of composite assessment scores",
				Buckets:   prometheus.LinearBuckets(-1, 0.2, 11),
			},
		),
		newsAnalyzed: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "assessment_news_items",
				Help:      "Relevant news items scored per assessment",
				Buckets:   []float64{0, 1, 2, 3, 5, 10},
			},
		),
	}
}

func (r *Recorder) RecordHTTP(route, method string, status int, d time.Duration) {
	r.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(route, method, StatusClass(status)).Observe(d.Seconds())
}

func (r *Recorder) InFlight(delta float64) {
	r.httpInFlight.Add(delta)
}

// RecordUpstream records one collaborator call. err decides the outcome label.
func (r *Recorder) RecordUpstream(component, provider, operation string, d time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.upstreamCalls.WithLabelValues(component, provider, operation, outcome).Inc()
	r.upstreamTime.WithLabelValues(component, provider, operation).Observe(d.Seconds())
}

func (r *Recorder) RecordAssessment(outlook, confidence string, score float64, newsItems int) {
	r.assessments.WithLabelValues(outlook, confidence).Inc()
	r.finalScore.Observe(score)
	r.newsAnalyzed.Observe(float64(newsItems))
}

func StatusClass(code int) string {
	switch {
	case code >= 100 && code < 200:
		return "1xx"
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
