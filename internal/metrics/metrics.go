// Package metrics 持有进程级 Prometheus 指标
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pigeon"

var (
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "path"},
	)

	messagesSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "messages",
			Name:      "sent_total",
			Help:      "Messages persisted, by target kind.",
		},
		[]string{"target"},
	)

	fanOutRows = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "messages",
			Name:      "fanout_rows_total",
			Help:      "Per-recipient delivery rows created.",
		},
	)

	otpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "otp_requests_total",
			Help:      "OTP requests, by purpose and SMS dispatch status.",
		},
		[]string{"purpose", "status"},
	)

	purged = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cleanup",
			Name:      "purged_rows_total",
			Help:      "Rows removed by the periodic cleanup job.",
		},
		[]string{"table"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		messagesSent,
		fanOutRows,
		otpRequests,
		purged,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler 暴露已注册的指标
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func IncInFlight() { httpInFlight.Inc() }

func DecInFlight() { httpInFlight.Dec() }

// ObserveHTTP 记录一次请求；path 应为路由模板，避免标签基数膨胀
func ObserveHTTP(method, path string, status int, d time.Duration) {
	httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

func MessageSent(target string, recipients int) {
	messagesSent.WithLabelValues(target).Inc()
	fanOutRows.Add(float64(recipients))
}

func OTPRequested(purpose, status string) {
	otpRequests.WithLabelValues(purpose, status).Inc()
}

func Purged(table string, n int64) {
	if n > 0 {
		purged.WithLabelValues(table).Add(float64(n))
	}
}
