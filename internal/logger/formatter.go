package logger

import (
	"github.com/developingchet/personal-data/internal/metrics"
	"github.com/developingchet/personal-data/internal/redact"
)

const (
	Redaction = "***"
	Separator = ';'
)

// RedactingFormatter obfuscates configured fields in the record message and
// then delegates to a base Formatter.
type RedactingFormatter struct {
	base     Formatter
	redactor *redact.Redactor
}

// NewRedactingFormatter wraps a TemplateFormatter. fields is copied; later
// changes to the caller's slice have no effect.
func NewRedactingFormatter(fields []string) *RedactingFormatter {
	return WrapFormatter(TemplateFormatter{}, fields)
}

// WrapFormatter wraps an arbitrary base Formatter.
func WrapFormatter(base Formatter, fields []string) *RedactingFormatter {
	return &RedactingFormatter{
		base:     base,
		redactor: redact.New(fields, Redaction, Separator),
	}
}

// Fields returns a copy of the redacted field names.
func (f *RedactingFormatter) Fields() []string { return f.redactor.Fields() }

// Format rewrites r.Message in place, then formats r with the base formatter.
// Errors from the base formatter are returned unchanged.
func (f *RedactingFormatter) Format(r *Record) (string, error) {
	r.Message = f.redactor.RedactFunc(r.Message, countRedaction)
	metrics.RecordsFormatted.Inc()
	return f.base.Format(r)
}

func countRedaction(field string) {
	metrics.FieldsRedacted.WithLabelValues(field).Inc()
}
