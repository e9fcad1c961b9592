package output

import (
	"fmt"
	"io"
	"time"

	"github.com/abdul-hamid-achik/reqline/packages/core/runner"
)

// Format names accepted by New
const (
	FormatConsole = "console"
	FormatJSON    = "json"
	FormatJUnit   = "junit"
)

// Formatter renders run results as they complete
type Formatter interface {
	FormatResult(result *runner.RunResult)
	FormatError(err error)
	FormatHeader(version string)
}

// Flushable formatters buffer results until Flush
type Flushable interface {
	Flush(totalDuration time.Duration) error
}

// Options shared by every formatter
type Options struct {
	Writer  io.Writer
	Verbose bool
	NoColor bool
}

// New returns the formatter registered under name
func New(name string, opts Options) (Formatter, error) {
	switch name {
	case "", FormatConsole:
		consoleOpts := []ConsoleOption{WithVerbose(opts.Verbose), WithNoColor(opts.NoColor)}
		if opts.Writer != nil {
			consoleOpts = append(consoleOpts, WithWriter(opts.Writer))
		}
		return NewConsoleFormatter(consoleOpts...), nil
	case FormatJSON:
		var jsonOpts []JSONOption
		if opts.Writer != nil {
			jsonOpts = append(jsonOpts, JSONWithWriter(opts.Writer))
		}
		return NewJSONFormatter(jsonOpts...), nil
	case FormatJUnit:
		var junitOpts []JUnitOption
		if opts.Writer != nil {
			junitOpts = append(junitOpts, JUnitWithWriter(opts.Writer))
		}
		return NewJUnitFormatter(junitOpts...), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (expected console, json or junit)", name)
	}
}

// lineName labels a result by its position and reqline text
func lineName(r *runner.LineResult) string {
	return fmt.Sprintf("#%d %s", r.Line, truncate(r.Reqline, 80))
}

func lineDuration(r *runner.LineResult) time.Duration {
	if r.Report == nil {
		return 0
	}
	return time.Duration(r.Report.Response.Duration) * time.Millisecond
}

func truncate(s string, maxLen int) string {
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}
