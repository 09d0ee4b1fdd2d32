package logger

import (
	"bytes"
	"errors"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var lineRE = regexp.MustCompile(
	`^\[HOLBERTON\] user_data (\w+) \d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2},\d{3}: (.*)$`)

func lines(buf *bytes.Buffer) []string {
	s := strings.TrimSuffix(buf.String(), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func TestUserDataLogger_RedactsPII(t *testing.T) {
	var buf bytes.Buffer
	log := NewUserDataLogger(&buf)

	log.Info().Msg("name=Bob;email=bob@x.com;ssn=123-45-6789;")

	out := lines(&buf)
	require.Len(t, out, 1)
	m := lineRE.FindStringSubmatch(out[0])
	require.NotNil(t, m, "unexpected line %q", out[0])
	assert.Equal(t, "INFO", m[1])
	assert.True(t, strings.HasSuffix(out[0], ": name=***;email=***;ssn=***;"))
}

func TestUserDataLogger_InterpolatesBeforeRedacting(t *testing.T) {
	var buf bytes.Buffer
	log := NewUserDataLogger(&buf)

	log.Info().Msgf("email=%s;phone=%s;role=%s;", "bob@x.com", "555-0100", "admin")

	out := lines(&buf)
	require.Len(t, out, 1)
	assert.True(t, strings.HasSuffix(out[0], ": email=***;phone=***;role=admin;"), out[0])
}

func TestUserDataLogger_DropsBelowInfo(t *testing.T) {
	var buf bytes.Buffer
	log := NewUserDataLogger(&buf)

	log.Debug().Msg("name=Bob;")
	log.Trace().Msg("name=Bob;")
	assert.Empty(t, buf.String())

	log.Warn().Msg("name=Bob;")
	log.Error().Msg("ssn=1;")
	out := lines(&buf)
	require.Len(t, out, 2)
	assert.Equal(t, "WARNING", lineRE.FindStringSubmatch(out[0])[1])
	assert.Equal(t, "ERROR", lineRE.FindStringSubmatch(out[1])[1])
}

func TestUserDataLogger_RedactsStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewUserDataLogger(&buf)

	log.Info().Str("email", "bob@x.com").Int("attempt", 3).Msg("login")

	out := lines(&buf)
	require.Len(t, out, 1)
	assert.True(t, strings.HasSuffix(out[0], ": login;attempt=3;email=***;"), out[0])
}

func TestUserDataLogger_StructuredValueWithSeparator(t *testing.T) {
	var buf bytes.Buffer
	log := NewUserDataLogger(&buf)

	log.Info().Str("password", "hunter;2secret").Msg("login")

	out := lines(&buf)
	require.Len(t, out, 1)
	assert.True(t, strings.HasSuffix(out[0], ": login;password=***;"), out[0])
	assert.NotContains(t, out[0], "2secret")
}

func TestUserDataLogger_UnterminatedMessageKeepsFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewUserDataLogger(&buf)

	log.Info().Int("attempt", 3).Msg("email=bob@x.com")

	out := lines(&buf)
	require.Len(t, out, 1)
	assert.True(t, strings.HasSuffix(out[0], ": email=***;attempt=3;"), out[0])
}

func TestUserDataLogger_ErrorField(t *testing.T) {
	var buf bytes.Buffer
	log := NewUserDataLogger(&buf)

	log.Error().Err(errors.New("lookup failed for password=abc")).Msg("")

	out := lines(&buf)
	require.Len(t, out, 1)
	assert.True(t, strings.HasSuffix(out[0], ": error=lookup failed for password=***;"), out[0])
}

func TestUserDataLogger_Assembly(t *testing.T) {
	log := NewUserDataLogger(&bytes.Buffer{})

	assert.Equal(t, UserDataLogger, log.Name())
	assert.Equal(t, zerolog.InfoLevel, log.GetLevel())

	hs := log.Handlers()
	require.Len(t, hs, 1)
	rf, ok := hs[0].Formatter().(*RedactingFormatter)
	require.True(t, ok)
	assert.Equal(t, []string{"name", "email", "phone", "ssn", "password"}, rf.Fields())
}

func TestNew_DoesNotWriteToGlobalLogger(t *testing.T) {
	var global, own bytes.Buffer
	orig := zlog.Logger
	zlog.Logger = zerolog.New(&global)
	t.Cleanup(func() { zlog.Logger = orig })

	l := New("audit", zerolog.InfoLevel, NewHandler(&own, TemplateFormatter{}))
	l.Info().Msg("hello")

	assert.Empty(t, global.String())
	assert.Contains(t, own.String(), "[HOLBERTON] audit INFO ")
	assert.True(t, strings.HasSuffix(own.String(), ": hello\n"))
}

func TestNew_MultipleHandlers(t *testing.T) {
	var a, b bytes.Buffer
	log := New("multi", zerolog.InfoLevel,
		NewHandler(&a, TemplateFormatter{}),
		NewHandler(&b, NewRedactingFormatter([]string{"ssn"})))

	log.Info().Msg("ssn=1;")

	assert.True(t, strings.HasSuffix(a.String(), ": ssn=1;\n"))
	assert.True(t, strings.HasSuffix(b.String(), ": ssn=***;\n"))
	assert.Len(t, log.Handlers(), 2)
}

func TestGetLogger_Idempotent(t *testing.T) {
	first := GetLogger()
	second := GetLogger()

	assert.Same(t, first, second)
	assert.Len(t, second.Handlers(), 1)
	assert.Equal(t, UserDataLogger, second.Name())
}

func TestRegistry_BuildsOnce(t *testing.T) {
	var reg Registry
	var mu sync.Mutex
	builds := 0
	build := func() *Logger {
		mu.Lock()
		builds++
		mu.Unlock()
		return NewUserDataLogger(&bytes.Buffer{})
	}

	var wg sync.WaitGroup
	got := make([]*Logger, 16)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = reg.Get("user_data", build)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, builds)
	for _, l := range got {
		assert.Same(t, got[0], l)
	}
	assert.Len(t, got[0].Handlers(), 1)
}

func TestRegistry_SeparateNames(t *testing.T) {
	var reg Registry
	a := reg.Get("a", func() *Logger { return New("a", zerolog.InfoLevel) })
	b := reg.Get("b", func() *Logger { return New("b", zerolog.InfoLevel) })

	assert.NotSame(t, a, b)
	assert.Equal(t, "a", a.Name())
	assert.Equal(t, "b", b.Name())
}

func TestHandler_ConcurrentWritesKeepLinesWhole(t *testing.T) {
	var buf bytes.Buffer
	log := NewUserDataLogger(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Info().Msg("name=Bob;email=bob@x.com;")
		}()
	}
	wg.Wait()

	out := lines(&buf)
	require.Len(t, out, 20)
	for _, l := range out {
		assert.Regexp(t, lineRE, l)
		assert.True(t, strings.HasSuffix(l, ": name=***;email=***;"))
	}
}
