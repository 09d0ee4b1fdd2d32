// Package metrics defines package-level Prometheus metric variables for the
// personal-data logger. The collectors are live as soon as the package is
// imported; RegisterWith exposes them on a registry.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// RecordsFormatted counts every log record passed through a redacting
	// formatter.
	RecordsFormatted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "personal_data_records_formatted_total",
		Help: "Total log records formatted by the redacting formatter.",
	})

	// FieldsRedacted counts replaced values, labelled by field name.
	FieldsRedacted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "personal_data_fields_redacted_total",
		Help: "Values replaced by the redaction token, by field name.",
	}, []string{"field"})

	// DBConnections counts database sessions successfully established.
	DBConnections = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "personal_data_db_connections_total",
		Help: "Database sessions successfully established.",
	})

	// DBConnectErrors counts failed attempts to establish a database session.
	DBConnectErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "personal_data_db_connect_errors_total",
		Help: "Failed attempts to establish a database session.",
	})
)

// RegisterWith registers all metrics with the given registerer.
func RegisterWith(reg prometheus.Registerer) {
	reg.MustRegister(
		RecordsFormatted,
		FieldsRedacted,
		DBConnections,
		DBConnectErrors,
	)
}
