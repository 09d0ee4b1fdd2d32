package logger

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// UserDataLogger is the name of the logger returned by GetLogger.
const UserDataLogger = "user_data"

// PIIFields are the fields obfuscated by the user_data logger.
var PIIFields = [...]string{"name", "email", "phone", "ssn", "password"}

// Logger is a zerolog.Logger that writes only to its own handlers. It never
// forwards events to the global zerolog logger.
type Logger struct {
	zerolog.Logger
	name     string
	handlers []*Handler
}

// New builds a named logger that drops events below level.
func New(name string, level zerolog.Level, handlers ...*Handler) *Logger {
	ws := make([]io.Writer, len(handlers))
	for i, h := range handlers {
		ws[i] = h
	}
	zl := zerolog.New(zerolog.MultiLevelWriter(ws...)).
		Level(level).
		Hook(timestampHook{}).
		With().Str(NameFieldName, name).Logger()

	return &Logger{
		Logger:   zl,
		name:     name,
		handlers: append([]*Handler(nil), handlers...),
	}
}

// NewUserDataLogger assembles the user_data logger: INFO and above, one
// handler on out with PII redaction.
func NewUserDataLogger(out io.Writer) *Logger {
	return New(UserDataLogger, zerolog.InfoLevel,
		NewHandler(out, NewRedactingFormatter(PIIFields[:])))
}

func (l *Logger) Name() string { return l.name }

// Handlers returns a copy of the attached handlers.
func (l *Logger) Handlers() []*Handler {
	return append([]*Handler(nil), l.handlers...)
}

// timestampHook stamps events with full precision regardless of
// zerolog.TimeFieldFormat, which the operational logger sets globally.
type timestampHook struct{}

func (timestampHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	e.Str(zerolog.TimestampFieldName, time.Now().Format(time.RFC3339Nano))
}

// Registry maps names to configured loggers. The zero value is ready to use.
type Registry struct {
	mu      sync.Mutex
	loggers map[string]*Logger
}

// Get returns the logger registered under name. On the first call for a
// name, build is run under the registry lock and its result registered;
// later calls return that logger unchanged.
func (r *Registry) Get(name string, build func() *Logger) *Logger {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.loggers[name]; ok {
		return l
	}
	if r.loggers == nil {
		r.loggers = make(map[string]*Logger)
	}
	l := build()
	r.loggers[name] = l
	return l
}

var registry Registry

// GetLogger returns the process-wide user_data logger writing to stdout.
func GetLogger() *Logger {
	return registry.Get(UserDataLogger, func() *Logger {
		return NewUserDataLogger(os.Stdout)
	})
}
