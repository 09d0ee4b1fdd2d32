// Package db opens MySQL sessions from environment-supplied credentials.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"github.com/developingchet/personal-data/internal/config"
	"github.com/developingchet/personal-data/internal/metrics"
)

// Connect loads the database settings and opens a session with them.
// Logging settings are not consulted.
func Connect(ctx context.Context) (*sql.DB, error) {
	d, err := config.LoadDatabase()
	if err != nil {
		return nil, err
	}
	return Open(ctx, d)
}

// Open validates d, then establishes a session. A missing database name is
// reported as a *config.Error before any network activity. Driver errors
// are wrapped, so errors.As still reaches *mysql.MySQLError. No retries are
// made; ctx bounds the attempt.
func Open(ctx context.Context, d config.Database) (*sql.DB, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	mc := mysql.NewConfig()
	mc.User = d.Username
	mc.Passwd = d.Password
	mc.Net = "tcp"
	mc.Addr = d.Host
	mc.DBName = d.Name

	connector, err := mysql.NewConnector(mc)
	if err != nil {
		return nil, fmt.Errorf("db: connector: %w", err)
	}

	db := sql.OpenDB(connector)
	configure(db)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		metrics.DBConnectErrors.Inc()
		return nil, fmt.Errorf("db: connect %s/%s: %w", d.Host, d.Name, err)
	}

	metrics.DBConnections.Inc()
	log.Debug().Str("host", d.Host).Str("database", d.Name).Str("user", d.Username).Msg("database connected")
	return db, nil
}

// configure sets connection pool defaults.
func configure(db *sql.DB) {
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetMaxIdleConns(5)
	db.SetMaxOpenConns(20)
}

// DriverLogger forwards go-sql-driver/mysql diagnostics to the operational
// zerolog logger. Install it with mysql.SetLogger.
type DriverLogger struct{}

func (DriverLogger) Print(v ...any) {
	log.Warn().Str("component", "mysql").Msg(fmt.Sprint(v...))
}
