package logger

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const (
	// Tag opens every formatted line.
	Tag = "HOLBERTON"

	// TimeLayout renders timestamps with millisecond precision.
	TimeLayout = "2006-01-02 15:04:05,000"
)

// Record is a single log event as seen by a Formatter. It is owned by the
// Handler for the duration of one Write call.
type Record struct {
	Name    string
	Level   zerolog.Level
	Time    time.Time
	Message string
}

// Formatter renders a Record into one output line without a trailing newline.
type Formatter interface {
	Format(r *Record) (string, error)
}

// TemplateFormatter renders "[HOLBERTON] <name> <LEVEL> <time>: <message>".
type TemplateFormatter struct{}

func (TemplateFormatter) Format(r *Record) (string, error) {
	return fmt.Sprintf("[%s] %s %s %s: %s",
		Tag, r.Name, LevelName(r.Level), r.Time.Format(TimeLayout), r.Message), nil
}

// LevelName maps a zerolog level to its conventional upper-case name.
func LevelName(l zerolog.Level) string {
	switch l {
	case zerolog.TraceLevel:
		return "TRACE"
	case zerolog.DebugLevel:
		return "DEBUG"
	case zerolog.InfoLevel:
		return "INFO"
	case zerolog.WarnLevel:
		return "WARNING"
	case zerolog.ErrorLevel:
		return "ERROR"
	case zerolog.FatalLevel, zerolog.PanicLevel:
		return "CRITICAL"
	default:
		return "NOTSET"
	}
}
