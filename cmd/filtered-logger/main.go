package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/developingchet/personal-data/internal/config"
	"github.com/developingchet/personal-data/internal/db"
	"github.com/developingchet/personal-data/internal/logger"
	"github.com/developingchet/personal-data/internal/metrics"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// maxLineSize bounds a single stdin line for the log command.
const maxLineSize = 1 << 20

// Seams replaced by tests.
var (
	loadConfig = config.Load
	getLogger  = logger.GetLogger
	openDB     = db.Open
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("fatal")
		os.Exit(1)
	}
}

// newRootCmd builds and returns the root cobra command. Extracted from main so
// that tests can invoke it directly without spawning a subprocess.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "filtered-logger",
		Short: "Log user data with PII fields redacted",
		Long: `Emits key=value; messages through the user_data logger, which replaces
the values of name, email, phone, ssn and password with ***.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	logCmd := &cobra.Command{
		Use:   "log [message...]",
		Short: "Log a message (or each stdin line) through the redacting logger",
		RunE:  runLog,
	}
	logCmd.Flags().String("level", "info", "severity: debug, info, warn, error")
	logCmd.Flags().String("metrics-textfile", "", "write Prometheus counters to this file after logging")
	rootCmd.AddCommand(logCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "dbcheck",
		Short: "Open a database session with PERSONAL_DATA_DB_* settings and ping it",
		RunE:  runDBCheck,
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "filtered-logger %s (commit: %s, built: %s)\n", version, commit, date)
		},
	})

	return rootCmd
}

func runLog(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	initLogging(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())

	levelName, _ := cmd.Flags().GetString("level")
	level, err := zerolog.ParseLevel(strings.ToLower(levelName))
	if err != nil || level == zerolog.NoLevel {
		return fmt.Errorf("invalid --level %q", levelName)
	}

	l := getLogger()
	if len(args) > 0 {
		l.WithLevel(level).Msg(strings.Join(args, " "))
	} else {
		sc := bufio.NewScanner(cmd.InOrStdin())
		sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		for sc.Scan() {
			l.WithLevel(level).Msg(sc.Text())
		}
		if err := sc.Err(); err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
	}

	if path, _ := cmd.Flags().GetString("metrics-textfile"); path != "" {
		reg := prometheus.NewRegistry()
		metrics.RegisterWith(reg)
		if err := prometheus.WriteToTextfile(path, reg); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}

func runDBCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	initLogging(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	conn, err := openDB(ctx, cfg.Database())
	if err != nil {
		return err
	}
	defer conn.Close()

	fmt.Fprintln(cmd.OutOrStdout(), "ok")
	return nil
}

// initLogging configures the operational logger on w. It sets the level on
// log.Logger only: a global zerolog level would also silence user_data.
func initLogging(level string, format string, w io.Writer) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	redacted := logger.NewRedactWriter(w)
	if format == "text" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: redacted}).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(redacted).With().Timestamp().Logger()
	}

	switch level {
	case "trace":
		log.Logger = log.Logger.Level(zerolog.TraceLevel)
	case "debug":
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	case "warn", "warning":
		log.Logger = log.Logger.Level(zerolog.WarnLevel)
	case "error":
		log.Logger = log.Logger.Level(zerolog.ErrorLevel)
	default:
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	_ = mysql.SetLogger(db.DriverLogger{})
}
