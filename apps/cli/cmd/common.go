package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/reqline/packages/core/parser"
	"github.com/abdul-hamid-achik/reqline/packages/core/runner"
	"github.com/abdul-hamid-achik/reqline/packages/history"
)

// clientFlags are the outbound client overrides shared by exec, bench and serve
type clientFlags struct {
	timeout  string
	insecure bool
	proxy    string
}

func (f *clientFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.timeout, "timeout", getEnvString("REQLINE_TIMEOUT", ""), "Request timeout (e.g., 30s, 1m) (env: REQLINE_TIMEOUT)")
	cmd.Flags().BoolVarP(&f.insecure, "insecure", "k", false, "Disable SSL certificate validation")
	cmd.Flags().StringVar(&f.proxy, "proxy", "", "Proxy URL for outbound requests (overrides config)")
}

// runnerConfig merges the loaded config with flag overrides
func (f *clientFlags) runnerConfig(recorder runner.Recorder) (*runner.Config, error) {
	timeout := appConfig.Timeout
	if f.timeout != "" {
		d, err := time.ParseDuration(f.timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout value %q: %w (use format like 30s, 1m, 500ms)", f.timeout, err)
		}
		timeout = d
	}

	proxy := appConfig.Proxy
	if f.proxy != "" {
		proxy = f.proxy
	}

	cfg := &runner.Config{
		Timeout:        timeout,
		FollowRedirect: appConfig.FollowRedirects,
		MaxRedirects:   appConfig.MaxRedirects,
		Insecure:       f.insecure || !appConfig.ValidateSSL,
		Proxy:          proxy,
		DefaultHeaders: appConfig.Headers,
		Logger:         logger,
	}
	if recorder != nil {
		cfg.Recorder = recorder
	}
	return cfg, nil
}

// openHistory opens the configured history store. It returns nil when
// history is disabled.
func openHistory() (*history.Store, error) {
	if appConfig.History.Path == "" {
		return nil, nil
	}
	store, err := history.Open(appConfig.History.Path)
	if err != nil {
		return nil, configError(err)
	}
	return store, nil
}

// collectLines gathers reqlines from a file or from positional arguments.
// A single "-" argument reads from stdin.
func collectLines(cmd *cobra.Command, file string, args []string) ([]*parser.Line, error) {
	if file != "" {
		if len(args) > 0 {
			return nil, &exitError{code: ExitUsageError, err: fmt.Errorf("use either --file or reqline arguments, not both")}
		}
		lines, err := parser.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("cannot read %s: %w", file, err)
		}
		return lines, nil
	}

	if len(args) == 1 && args[0] == "-" {
		return parser.ReadLines(cmd.InOrStdin())
	}

	if len(args) == 0 {
		return nil, &exitError{code: ExitUsageError, err: fmt.Errorf("no reqline given (pass it as an argument, use --file, or - for stdin)")}
	}

	lines := make([]*parser.Line, 0, len(args))
	for i, arg := range args {
		lines = append(lines, &parser.Line{Number: i + 1, Text: arg})
	}
	return lines, nil
}

// outputWriter returns the file named by path, or stdout when path is empty
func outputWriter(path string) (*os.File, func(), error) {
	if path == "" {
		return nil, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot create output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
