package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup builds the process logger and installs it as the zerolog global. Development mode logs
// at debug level through the console writer.
func Setup(dev bool) zerolog.Logger {
	return setup(os.Stderr, dev)
}

func setup(out io.Writer, dev bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if dev {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(out).Level(level).With().Timestamp().Caller().Logger()

	if dev {
		logger = logger.Output(zerolog.ConsoleWriter{Out: out, FormatTimestamp: func(i any) string {
			return time.Now().Format(time.RFC3339)
		}}).Level(level).With().Logger()
	}

	log.Logger = logger
	zerolog.DefaultContextLogger = &log.Logger

	return logger
}

// ErrorWriter adapts a logger for http.Server.ErrorLog.
type ErrorWriter struct {
	logger zerolog.Logger
}

func NewErrorWriter(logger zerolog.Logger) *ErrorWriter {
	return &ErrorWriter{logger: logger}
}

func (w *ErrorWriter) Write(p []byte) (int, error) {
	msg := string(p)
	if n := len(msg); n > 0 && msg[n-1] == '\n' {
		msg = msg[:n-1]
	}
	w.logger.Error().Str("component", "http.Server").Msg(msg)
	return len(p), nil
}
