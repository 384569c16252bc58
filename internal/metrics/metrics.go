package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics counts what the acquisition loop does. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	published     prometheus.Counter
	notReady      prometheus.Counter
	storeFailures prometheus.Counter
	co2           prometheus.Gauge
	temperature   prometheus.Gauge
	humidity      prometheus.Gauge

	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		published: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scd4x_samples_published_total",
			Help: "Samples written to the store.",
		}),
		notReady: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scd4x_not_ready_total",
			Help: "Poll cycles skipped because the sensor had no new sample.",
		}),
		storeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scd4x_store_failures_total",
			Help: "Store writes that failed after the client's retries.",
		}),
		co2: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scd4x_co2_ppm",
			Help: "Last published CO2 concentration.",
		}),
		temperature: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scd4x_temperature_celsius",
			Help: "Last published temperature.",
		}),
		humidity: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scd4x_humidity_percent",
			Help: "Last published relative humidity.",
		}),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}

	m.registry.MustRegister(
		m.published,
		m.notReady,
		m.storeFailures,
		m.co2,
		m.temperature,
		m.humidity,
		m.httpRequestsTotal,
		m.httpDuration,
	)
	return m
}

func (m *Metrics) Published(co2 int, temperature, humidity float64) {
	if m == nil {
		return
	}
	m.published.Inc()
	m.co2.Set(float64(co2))
	m.temperature.Set(temperature)
	m.humidity.Set(humidity)
}

func (m *Metrics) NotReady() {
	if m == nil {
		return
	}
	m.notReady.Inc()
}

func (m *Metrics) StoreFailure() {
	if m == nil {
		return
	}
	m.storeFailures.Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

func (m *Metrics) WrapHandler(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(recorder, r)

		if m != nil {
			m.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
			m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		}
	})
}
