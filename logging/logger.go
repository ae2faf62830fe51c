package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures the global zerolog logger. With consoleOutput set the log
// is human-readable for local development, otherwise structured JSON.
func Setup(consoleOutput bool) {
	var logContext zerolog.Context
	if consoleOutput {
		logContext = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With()
	} else {
		logContext = log.With()
	}
	log.Logger = logContext.Caller().Logger().Hook(contextHook{})
	zerolog.LevelFieldName = "severity"
	zerolog.TimestampFieldName = "timestamp"
	zerolog.TimeFieldFormat = time.RFC3339Nano

	zerolog.SetGlobalLevel(zerolog.TraceLevel)
}
