package logger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// NameFieldName is the event field carrying the logger name.
const NameFieldName = "logger"

// Handler is a zerolog output writer. Like zerolog.ConsoleWriter it decodes
// each JSON event, but it renders the event through a Formatter.
type Handler struct {
	out       io.Writer
	formatter Formatter
}

// NewHandler returns a Handler writing formatted lines to out. Writes are
// serialised, so a single Handler may be shared by concurrent loggers.
func NewHandler(out io.Writer, f Formatter) *Handler {
	return &Handler{out: zerolog.SyncWriter(out), formatter: f}
}

// Formatter returns the formatter this handler renders with.
func (h *Handler) Formatter() Formatter { return h.formatter }

func (h *Handler) Write(p []byte) (int, error) {
	rec, err := decodeRecord(p)
	if err != nil {
		return 0, err
	}
	line, err := h.formatter.Format(rec)
	if err != nil {
		return 0, err
	}
	if _, err := io.WriteString(h.out, line+"\n"); err != nil {
		return 0, err
	}
	return len(p), nil
}

// decodeRecord turns a zerolog JSON event into a Record. Fields other than
// name, level, time and message are appended to the message as key=value;
// pairs in key order, so they go through redaction as well. The message is
// terminated with Separator before the first pair, and separators inside
// keys and values are percent-encoded, so a redacted value always runs to
// the end of its own pair.
func decodeRecord(p []byte) (*Record, error) {
	var evt map[string]any
	d := json.NewDecoder(bytes.NewReader(p))
	d.UseNumber()
	if err := d.Decode(&evt); err != nil {
		return nil, fmt.Errorf("logger: decode event: %w", err)
	}

	rec := &Record{Level: zerolog.NoLevel, Time: time.Now()}
	if v, ok := evt[NameFieldName].(string); ok {
		rec.Name = v
	}
	if v, ok := evt[zerolog.LevelFieldName].(string); ok {
		if l, err := zerolog.ParseLevel(v); err == nil {
			rec.Level = l
		}
	}
	if v, ok := evt[zerolog.TimestampFieldName].(string); ok {
		if ts, err := time.Parse(time.RFC3339Nano, v); err == nil {
			rec.Time = ts
		}
	}
	msg, _ := evt[zerolog.MessageFieldName].(string)

	for _, k := range []string{NameFieldName, zerolog.LevelFieldName, zerolog.TimestampFieldName, zerolog.MessageFieldName} {
		delete(evt, k)
	}
	if len(evt) == 0 {
		rec.Message = msg
		return rec, nil
	}

	keys := make([]string, 0, len(evt))
	for k := range evt {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(msg)
	if msg != "" && !strings.HasSuffix(msg, string(Separator)) {
		b.WriteRune(Separator)
	}
	for _, k := range keys {
		b.WriteString(pairEscaper.Replace(k))
		b.WriteByte('=')
		b.WriteString(pairEscaper.Replace(fieldValue(evt[k])))
		b.WriteRune(Separator)
	}
	rec.Message = b.String()
	return rec, nil
}

// pairEscaper percent-encodes the separator in structured keys and values.
var pairEscaper = strings.NewReplacer("%", "%25", string(Separator), "%3B")

func fieldValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}
