package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	UploadsTotal          metric.Int64Counter
	UploadDurationSeconds metric.Float64Histogram
	MailSentTotal         metric.Int64Counter
	MailErrorsTotal       metric.Int64Counter
	DbQueryErrorsTotal    metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metric instruments only once.
// It gets the Meter from the globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("campwise")
		var err error
		m := &AppMetrics{}

		m.UploadsTotal, err = meter.Int64Counter(
			"image_uploads_total",
			metric.WithDescription("Total number of asset-host uploads attempted"),
			metric.WithUnit("{upload}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create image_uploads_total: %v", err)
		}

		m.UploadDurationSeconds, err = meter.Float64Histogram(
			"image_upload_duration_seconds",
			metric.WithDescription("Duration of asset-host uploads in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create image_upload_duration_seconds: %v", err)
		}

		m.MailSentTotal, err = meter.Int64Counter(
			"mail_sent_total",
			metric.WithDescription("Total number of mails handed to the relay"),
			metric.WithUnit("{mail}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create mail_sent_total: %v", err)
		}

		m.MailErrorsTotal, err = meter.Int64Counter(
			"mail_errors_total",
			metric.WithDescription("Total number of mail relay failures"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create mail_errors_total: %v", err)
		}

		m.DbQueryErrorsTotal, err = meter.Int64Counter(
			"db_query_errors_total",
			metric.WithDescription("Total number of database query errors"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create db_query_errors_total: %v", err)
		}

		appMetrics = m
	})
}

// Get returns the globally initialized AppMetrics instance.
// Panics if InitAppMetrics was not called first.
func Get() *AppMetrics {
	if appMetrics == nil {
		panic("metrics instruments not initialized. Call metrics.InitAppMetrics() first.")
	}
	return appMetrics
}
