package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "clustermadani_"

	resultSuccess = "success"
	resultError   = "error"
)

// Exported result labels.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)

var (
	registerOnce sync.Once

	loginAttempts *prometheus.CounterVec

	paymentRecordTotal   *prometheus.CounterVec
	paymentRecordLatency *prometheus.HistogramVec

	reconcileTruncations prometheus.Counter

	residentMutations *prometheus.CounterVec

	exportTotal   *prometheus.CounterVec
	exportLatency *prometheus.HistogramVec

	importRows *prometheus.CounterVec
)

// Init registers observability metrics and DB-backed gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		loginAttempts = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "login_attempts_total",
				Help: "Total login attempts by result",
			},
			[]string{"result"},
		)

		paymentRecordTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "payment_record_total",
				Help: "Total IPL payment recordings by result",
			},
			[]string{"result"},
		)
		paymentRecordLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "payment_record_latency_seconds",
				Help:    "IPL payment recording latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		reconcileTruncations = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "reconcile_walk_truncations_total",
				Help: "Period walks cut off by the safety bound",
			},
		)

		residentMutations = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "resident_mutations_total",
				Help: "Total resident record mutations by action and result",
			},
			[]string{"action", "result"},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_total",
				Help: "Total export downloads by format and result",
			},
			[]string{"format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "export_latency_seconds",
				Help:    "Export rendering latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		importRows = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "import_rows_total",
				Help: "Total imported spreadsheet rows by kind and result",
			},
			[]string{"kind", "result"},
		)

		prometheus.MustRegister(
			loginAttempts,
			paymentRecordTotal,
			paymentRecordLatency,
			reconcileTruncations,
			residentMutations,
			exportTotal,
			exportLatency,
			importRows,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

// IncLoginAttempt increments the login counter.
func IncLoginAttempt(result string) {
	if result == "" {
		result = resultSuccess
	}
	if loginAttempts != nil {
		loginAttempts.WithLabelValues(result).Inc()
	}
}

// ObservePaymentRecord records payment recording duration and result.
func ObservePaymentRecord(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if paymentRecordTotal != nil {
		paymentRecordTotal.WithLabelValues(result).Inc()
	}
	if paymentRecordLatency != nil {
		paymentRecordLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// IncReconcileTruncation counts a period walk cut off by its bound.
func IncReconcileTruncation() {
	if reconcileTruncations != nil {
		reconcileTruncations.Inc()
	}
}

// CountResidentMutation increments the resident mutation counter.
func CountResidentMutation(action, result string) {
	if action == "" {
		action = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if residentMutations != nil {
		residentMutations.WithLabelValues(action, result).Inc()
	}
}

// ObserveExport records export duration by format and result.
func ObserveExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
	if exportLatency != nil {
		exportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// AddImportRows counts imported rows by kind.
func AddImportRows(kind, result string, count int) {
	if count <= 0 {
		return
	}
	if kind == "" {
		kind = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if importRows != nil {
		importRows.WithLabelValues(kind, result).Add(float64(count))
	}
}

func registerDBMetrics(db *sql.DB, logger *log.Logger) {
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "residents_total",
			Help: "Resident records in the database",
		},
		func() float64 {
			return queryCount(db, logger, "SELECT COUNT(*) FROM residents")
		},
	))

	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "payments_total",
			Help: "Payment records in the database",
		},
		func() float64 {
			return queryCount(db, logger, "SELECT COUNT(*) FROM ipl_payments")
		},
	))
}

func queryCount(db *sql.DB, logger *log.Logger, query string) float64 {
	if db == nil {
		return 0
	}
	var count int64
	if err := db.QueryRow(query).Scan(&count); err != nil {
		if logger != nil {
			logger.Printf("metrics query failed: %v", err)
		}
		return 0
	}
	if count < 0 {
		return 0
	}
	return float64(count)
}
