package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

type Options struct {
	Level   string `doc:"log from debug, info, warn or error, offsets such as info+2 are allowed"`
	File    string `doc:"append logs to file"`
	Format  string `doc:"format logs as text or json"                                          default:"text"`
	Source  bool   `doc:"add source file and line to logs"`
	Service string `doc:"service name attached to every log line"                              default:"contacts-api"`
}

// New builds a logger from options. Invalid options are reset to their
// default and reported as warnings by the returned logger.
func New(options *Options) *slog.Logger {
	return newWithStdout(options, os.Stdout)
}

type warning struct {
	msg  string
	args []any
}

func newWithStdout(options *Options, stdout io.Writer) *slog.Logger {
	var warnings []warning
	opts := slog.HandlerOptions{AddSource: options.Source}

	if options.Level != "" {
		var level slog.Level
		err := level.UnmarshalText([]byte(options.Level))
		if err != nil {
			options.Level = ""
			warnings = append(warnings, warning{"could not parse logger level", []any{"err", err}})
		} else {
			opts.Level = level
		}
	}

	output := stdout
	switch options.File {
	case "", "-":
	case os.DevNull:
		return slog.New(slog.DiscardHandler)
	default:
		f, err := os.OpenFile(options.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			options.File = ""
			warnings = append(warnings, warning{"could not open logger file", []any{"err", err}})
		} else {
			output = f
		}
	}

	var handler slog.Handler
	switch strings.ToLower(options.Format) {
	case "json":
		handler = slog.NewJSONHandler(output, &opts)
	case "text":
		handler = slog.NewTextHandler(output, &opts)
	default:
		warnings = append(warnings, warning{"could not parse logger format", []any{"format", options.Format}})
		options.Format = "text"
		handler = slog.NewTextHandler(output, &opts)
	}

	logger := slog.New(handler)
	if options.Service != "" {
		logger = logger.With(slog.String("service", options.Service))
	}
	for _, w := range warnings {
		logger.Warn(w.msg, w.args...)
	}
	return logger
}
