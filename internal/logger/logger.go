package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	once   sync.Once
	mu     sync.RWMutex
	logger *zerolog.Logger
)

func Init() {
	once.Do(func() {
		l := newLogger(os.Stdout, os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
		mu.Lock()
		logger = &l
		mu.Unlock()
	})
}

// SetOutput redirects log lines to w, keeping the configured level and format.
func SetOutput(w io.Writer) {
	Init()
	l := newLogger(w, os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	mu.Lock()
	logger = &l
	mu.Unlock()
}

func newLogger(w io.Writer, level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.DebugLevel
	}

	out := w
	if format != "json" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.DateTime, NoColor: true}
	}

	return zerolog.New(out).Level(lvl).With().Timestamp().Str("app", "athan").Logger()
}

func get() *zerolog.Logger {
	mu.RLock()
	l := logger
	mu.RUnlock()
	if l == nil {
		Init()
		mu.RLock()
		l = logger
		mu.RUnlock()
	}
	return l
}

func Info(message string, v ...interface{}) {
	get().Info().Msgf(message, v...)
}

func Warn(message string, v ...interface{}) {
	get().Warn().Msgf(message, v...)
}

func Error(message string, v ...interface{}) {
	get().Error().Msgf(message, v...)
}

func Debug(message string, v ...interface{}) {
	get().Debug().Msgf(message, v...)
}
