package internal

import (
	"fmt"
	"github.com/rs/zerolog"
	"io"
	"os"
	"robokassa/entity"
	"robokassa/services"
	"time"
)

// Logger implements services.LogHandler on top of zerolog.
// Records at info level and above are copied to the audit database when one is set.
type Logger struct {
	category string
	debug    bool
	database services.Database
	log      zerolog.Logger
}

func NewLogger(category string, debug bool, database services.Database) *Logger {
	logger := &Logger{
		category: category,
		debug:    debug,
		database: database,
	}
	logger.SetOutput(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	return logger
}

// SetOutput redirects console output, mainly for tests.
func (l *Logger) SetOutput(w io.Writer) {
	level := zerolog.InfoLevel
	if l.debug {
		level = zerolog.DebugLevel
	}
	l.log = zerolog.New(w).Level(level).With().Timestamp().Str("category", l.category).Logger()
}

func (l *Logger) Debug(text string) {
	l.log.Debug().Msg(text)
}

func (l *Logger) Info(text string) {
	l.log.Info().Msg(text)
	l.store("info", text)
}

func (l *Logger) Warn(text string) {
	l.log.Warn().Msg(text)
	l.store("warn", text)
}

func (l *Logger) Error(text string, err error) {
	l.log.Error().Err(err).Msg(text)
	if err != nil {
		text = fmt.Sprintf("%s: %v", text, err)
	}
	l.store("error", text)
}

func (l *Logger) store(level, text string) {
	if l.database == nil {
		return
	}
	message := &entity.LogMessage{
		Time:     time.Now(),
		Level:    level,
		Category: l.category,
		Text:     text,
	}
	if err := l.database.WriteLogMessage(message); err != nil {
		l.log.Error().Err(err).Msg("write log message")
	}
}

// secret masks identifiers such as phone numbers in log output.
func secret(some string) string {
	if len(some) > 5 {
		return fmt.Sprintf("%s***", some[0:5])
	}
	if some == "" {
		return "?"
	}
	return "***"
}
