package metrics

import (
	"database/sql"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "infrasites_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	photoUploadsTotal  *prometheus.CounterVec
	photoUploadLatency *prometheus.HistogramVec
	photoCompressRatio prometheus.Histogram
	photoFallbackTotal prometheus.Counter

	submissionsTotal   *prometheus.CounterVec
	submissionLatency  *prometheus.HistogramVec
	submissionScore    prometheus.Histogram
	documentBuildTotal *prometheus.CounterVec

	siteImportRowsTotal *prometheus.CounterVec

	emailLookupsTotal *prometheus.CounterVec
)

// Init registers observability metrics and DB-backed gauges.
func Init(db *sql.DB) {
	registerOnce.Do(func() {
		photoUploadsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "photo_uploads_total",
				Help: "Total photo upload attempts by result",
			},
			[]string{"result"},
		)
		photoUploadLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "photo_upload_latency_seconds",
				Help:    "Photo upload latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		photoCompressRatio = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "photo_compress_ratio",
				Help:    "Compressed size as a fraction of the original",
				Buckets: prometheus.LinearBuckets(0.05, 0.05, 20),
			},
		)
		photoFallbackTotal = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "photo_fallbacks_total",
				Help: "Total photos kept local after a failed upload",
			},
		)

		submissionsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "submissions_total",
				Help: "Total submission attempts by final stage and result",
			},
			[]string{"stage", "result"},
		)
		submissionLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "submission_latency_seconds",
				Help:    "End-to-end submission latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		submissionScore = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "submission_score",
				Help:    "Completion score of attempted submissions",
				Buckets: prometheus.LinearBuckets(0, 10, 11),
			},
		)
		documentBuildTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "document_builds_total",
				Help: "Total document renders by format and result",
			},
			[]string{"format", "result"},
		)

		siteImportRowsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "site_import_rows_total",
				Help: "Total site import rows by result",
			},
			[]string{"result"},
		)

		emailLookupsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "email_lookups_total",
				Help: "Total directory email lookups by result",
			},
			[]string{"result"},
		)

		prometheus.MustRegister(
			photoUploadsTotal,
			photoUploadLatency,
			photoCompressRatio,
			photoFallbackTotal,
			submissionsTotal,
			submissionLatency,
			submissionScore,
			documentBuildTotal,
			siteImportRowsTotal,
			emailLookupsTotal,
		)

		if db != nil {
			registerDBMetrics(db)
		}
	})
}

func registerDBMetrics(db *sql.DB) {
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "db_open_connections",
			Help: "Open database connections",
		},
		func() float64 { return float64(db.Stats().OpenConnections) },
	))
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "db_in_use_connections",
			Help: "Database connections currently in use",
		},
		func() float64 { return float64(db.Stats().InUse) },
	))
}

// ObservePhotoUpload records one upload attempt.
func ObservePhotoUpload(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if photoUploadsTotal != nil {
		photoUploadsTotal.WithLabelValues(result).Inc()
	}
	if photoUploadLatency != nil {
		photoUploadLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObserveCompressRatio records compressed/original size for one photo.
func ObserveCompressRatio(originalBytes, compressedBytes int) {
	if originalBytes <= 0 || compressedBytes <= 0 {
		return
	}
	if photoCompressRatio != nil {
		photoCompressRatio.Observe(float64(compressedBytes) / float64(originalBytes))
	}
}

// IncPhotoFallback counts a photo kept local after a failed upload.
func IncPhotoFallback() {
	if photoFallbackTotal != nil {
		photoFallbackTotal.Inc()
	}
}

// ObserveSubmission records a submission attempt.
func ObserveSubmission(stage, result string, score int, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if submissionsTotal != nil {
		submissionsTotal.WithLabelValues(stage, result).Inc()
	}
	if submissionLatency != nil {
		submissionLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
	if submissionScore != nil {
		submissionScore.Observe(float64(score))
	}
}

// IncDocumentBuild counts one document render.
func IncDocumentBuild(format, result string) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if documentBuildTotal != nil {
		documentBuildTotal.WithLabelValues(format, result).Inc()
	}
}

// AddSiteImportRows counts imported and rejected rows.
func AddSiteImportRows(result string, count int) {
	if count <= 0 {
		return
	}
	if result == "" {
		result = resultSuccess
	}
	if siteImportRowsTotal != nil {
		siteImportRowsTotal.WithLabelValues(result).Add(float64(count))
	}
}

// IncEmailLookup counts one directory lookup.
func IncEmailLookup(result string) {
	if result == "" {
		result = resultSuccess
	}
	if emailLookupsTotal != nil {
		emailLookupsTotal.WithLabelValues(result).Inc()
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)
