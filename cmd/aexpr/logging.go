package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	slogmulti "github.com/samber/slog-multi"
	slogjournal "github.com/systemd/slog-journal"
	"github.com/urfave/cli/v3"
)

const (
	logLevelKey   = "log-level"
	logJSONKey    = "log-json"
	logJournalKey = "log-journal"
)

var logFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    logLevelKey,
		Usage:   "Engine log level (debug, info, warn, error)",
		Value:   "warn",
		Sources: cli.EnvVars("AEXPR_LOG_LEVEL"),
	},
	&cli.StringFlag{
		Name:    logJSONKey,
		Usage:   "Also write JSON log records to this file",
		Sources: cli.EnvVars("AEXPR_LOG_JSON"),
	},
	&cli.BoolFlag{
		Name:    logJournalKey,
		Usage:   "Also send log records to the systemd journal",
		Sources: cli.EnvVars("AEXPR_LOG_JOURNAL"),
	},
}

// newLogger fans engine records out to stderr and whichever optional sinks the
// flags ask for. The returned func closes the JSON file, if any.
func newLogger(cmd *cli.Command) (*slog.Logger, func() error, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cmd.String(logLevelKey))); err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", logLevelKey, err)
	}
	opts := &slog.HandlerOptions{Level: level}

	terminalHandler := slog.NewTextHandler(os.Stderr, opts)
	handlers := []slog.Handler{terminalHandler}
	closer := func() error { return nil }

	if path := cmd.String(logJSONKey); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return nil, nil, fmt.Errorf("open json log: %w", err)
		}
		handlers = append(handlers, slog.NewJSONHandler(f, opts))
		closer = f.Close
	}

	if cmd.Bool(logJournalKey) {
		journalHandler, err := slogjournal.NewHandler(&slogjournal.Options{
			ReplaceGroup: toJournalKey,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				a.Key = toJournalKey(a.Key)
				return a
			},
		})
		if err != nil {
			// not fatal, most machines running benchmarks have no journal socket
			record := slog.NewRecord(time.Now(), slog.LevelWarn, "new systemd journal handler", 0)
			record.Add("error", err)
			_ = terminalHandler.Handle(context.Background(), record)
		} else {
			handlers = append(handlers, journalHandler)
		}
	}

	return slog.New(slogmulti.Fanout(handlers...)), closer, nil
}

// journal fields are upper case ascii letters, digits and underscores
func toJournalKey(str string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			return r
		}
		return '_'
	}, strings.ToUpper(str))
}
