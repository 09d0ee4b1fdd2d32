// Package redact obfuscates the values of selected fields in "key=value"
// log text.
package redact

import "regexp"

// FilterDatum returns message with the value of every "field=value" pair
// whose field is listed in fields replaced by redaction. A value is the run
// of one or more characters up to the next separator.
func FilterDatum(fields []string, redaction, message string, separator rune) string {
	return New(fields, redaction, separator).Redact(message)
}

// Redactor holds the compiled patterns for a fixed set of fields so that
// hot paths do not recompile them on every message. It is safe for
// concurrent use.
type Redactor struct {
	rules []rule
}

type rule struct {
	field       string
	re          *regexp.Regexp
	replacement string
}

// New compiles one pattern per field. Field names and the separator are
// quoted, so they always match literally. The match is not anchored on the
// left: "name" also matches the tail of "username=".
func New(fields []string, redaction string, separator rune) *Redactor {
	sep := regexp.QuoteMeta(string(separator))
	r := &Redactor{rules: make([]rule, 0, len(fields))}
	for _, f := range fields {
		r.rules = append(r.rules, rule{
			field:       f,
			re:          regexp.MustCompile(regexp.QuoteMeta(f) + "=[^" + sep + "]+"),
			replacement: f + "=" + redaction,
		})
	}
	return r
}

// Redact applies every rule to message in field order.
func (r *Redactor) Redact(message string) string {
	return r.RedactFunc(message, nil)
}

// RedactFunc is Redact with a callback invoked once per replaced value.
func (r *Redactor) RedactFunc(message string, hit func(field string)) string {
	for _, ru := range r.rules {
		message = ru.re.ReplaceAllStringFunc(message, func(string) string {
			if hit != nil {
				hit(ru.field)
			}
			return ru.replacement
		})
	}
	return message
}

// Fields returns a copy of the configured field names.
func (r *Redactor) Fields() []string {
	out := make([]string, len(r.rules))
	for i, ru := range r.rules {
		out[i] = ru.field
	}
	return out
}
