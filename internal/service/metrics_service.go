package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appErrors "github.com/acadsys/registrar-api/pkg/errors"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP layer
// and the enrollment engine.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	engineOps       *prometheus.CounterVec

	studentsActive   prometheus.Gauge
	coursesTotal     prometheus.Gauge
	enrollmentsTotal prometheus.Gauge
	auditEntries     prometheus.Gauge
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	engineOps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "engine_operations_total",
		Help: "Total enrollment engine operations by outcome",
	}, []string{"operation", "outcome"})

	studentsActive := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "registry_students_active",
		Help: "Number of active students in the registry",
	})

	coursesTotal := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "catalog_courses_total",
		Help: "Number of courses in the catalog",
	})

	enrollmentsTotal := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "engine_enrollments_total",
		Help: "Number of enrollment records, any status",
	})

	auditEntries := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "audit_log_entries",
		Help: "Number of retained audit log entries",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, engineOps, studentsActive, coursesTotal, enrollmentsTotal, auditEntries, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:         registry,
		handler:          handler,
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		engineOps:        engineOps,
		studentsActive:   studentsActive,
		coursesTotal:     coursesTotal,
		enrollmentsTotal: enrollmentsTotal,
		auditEntries:     auditEntries,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordEngineOperation counts one engine operation, labelled with its
// outcome: "success" or the error code.
func (m *MetricsService) RecordEngineOperation(operation string, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = appErrors.FromError(err).Code
	}
	m.engineOps.WithLabelValues(operation, outcome).Inc()
}

// SetStudentCount refreshes the active student gauge. Services call the
// gauge setters after every mutation while still holding the state lock.
func (m *MetricsService) SetStudentCount(active int) {
	if m == nil {
		return
	}
	m.studentsActive.Set(float64(active))
}

// SetCourseCount refreshes the course gauge.
func (m *MetricsService) SetCourseCount(total int) {
	if m == nil {
		return
	}
	m.coursesTotal.Set(float64(total))
}

// SetEnrollmentCount refreshes the enrollment gauge.
func (m *MetricsService) SetEnrollmentCount(total int) {
	if m == nil {
		return
	}
	m.enrollmentsTotal.Set(float64(total))
}

// SetAuditEntryCount refreshes the audit log gauge.
func (m *MetricsService) SetAuditEntryCount(total int) {
	if m == nil {
		return
	}
	m.auditEntries.Set(float64(total))
}
