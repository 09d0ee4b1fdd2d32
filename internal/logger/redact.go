// Package logger assembles the PII-scrubbing user_data logger and provides
// log output helpers, including a credential-masking writer for operational
// logs.
package logger

import (
	"io"
	"regexp"
)

var redactPatterns = []struct {
	re          *regexp.Regexp
	replacement []byte
}{
	// MySQL DSNs: user:password@tcp(host:port)/db.
	{regexp.MustCompile(`([\w.-]+):[^@\s"/]+@(tcp|unix)\(`), []byte("${1}:[REDACTED]@${2}(")},
	// password=... and passwd=... in key=value text. Backslash escapes from
	// JSON encoding are part of the value.
	{regexp.MustCompile(`(?i)(passw(?:or)?d)=(?:\\.|[^;&\s"\\])+`), []byte("${1}=[REDACTED]")},
	// Bearer tokens in Authorization headers or log fields.
	{regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9\-._~+/]+=*`), []byte("bearer [REDACTED]")},
}

// RedactWriter masks credentials in every chunk before passing it on. It is
// meant for whole log lines, such as those produced by zerolog.
type RedactWriter struct{ w io.Writer }

func NewRedactWriter(w io.Writer) *RedactWriter { return &RedactWriter{w: w} }

func (r *RedactWriter) Write(p []byte) (int, error) {
	out := p
	for _, pat := range redactPatterns {
		out = pat.re.ReplaceAll(out, pat.replacement)
	}
	_, err := r.w.Write(out)
	return len(p), err
}
