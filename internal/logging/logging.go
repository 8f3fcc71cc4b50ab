// Package logging provides structured logging using zerolog, following the
// same component-sub-logger shape the rest of this codebase's lineage uses.
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Log is the global base logger. Use the component helpers below for
// component-scoped sub-loggers rather than logging through Log directly.
var Log zerolog.Logger

// Initialize configures the global logger. level is a zerolog level name
// ("debug", "info", "warn", "error"); pretty selects human-readable console
// output for local development instead of JSON.
func Initialize(level string, pretty bool) {
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	if pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	} else {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	}

	Log = log.With().Str("service", "orchestration-core").Logger()
	Log.Info().Str("level", logLevel.String()).Bool("pretty", pretty).Msg("logger initialized")
}

func component(name string) *zerolog.Logger {
	l := Log.With().Str("component", name).Logger()
	return &l
}

func Session() *zerolog.Logger       { return component("session") }
func Scheduler() *zerolog.Logger     { return component("scheduler") }
func Rules() *zerolog.Logger         { return component("rules") }
func EventBus() *zerolog.Logger      { return component("eventbus") }
func ExplainEngine() *zerolog.Logger { return component("explainengine") }
func Store() *zerolog.Logger         { return component("store") }
func HTTP() *zerolog.Logger          { return component("http") }
