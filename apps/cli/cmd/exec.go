package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/reqline/packages/core/runner"
	"github.com/abdul-hamid-achik/reqline/packages/output"
)

const (
	// WatchDebounceDelay is the debounce delay for file watch events
	WatchDebounceDelay = 300 * time.Millisecond
)

var execCmd = &cobra.Command{
	Use:   "exec [reqline...]",
	Short: "Execute reqline statements",
	Long: `Execute one or more reqline statements and print their reports.

Each argument is one reqline. With --file, reqlines are read one per line;
blank lines and lines starting with # are skipped.

Examples:
  reqline exec 'HTTP GET | URL https://httpbin.org/get | QUERY {"a": 1}'
  reqline exec --file smoke.reqline --output json
  reqline exec --file smoke.reqline --watch
  cat smoke.reqline | reqline exec -`,
	RunE: execCommand,
}

var (
	execFileFlag       string
	execOutputFlag     string
	execOutputFileFlag string
	execVerboseFlag    bool
	execBailFlag       bool
	execWatchFlag      bool
	execNoHistoryFlag  bool
	execClientFlags    clientFlags
)

func init() {
	execCmd.Flags().StringVarP(&execFileFlag, "file", "f", "", "Read reqlines from file")
	execCmd.Flags().StringVarP(&execOutputFlag, "output", "o", getEnvString("REQLINE_OUTPUT", output.FormatConsole), "Output format: console, json, junit (env: REQLINE_OUTPUT)")
	execCmd.Flags().StringVar(&execOutputFileFlag, "output-file", "", "Write output to file (default: stdout)")
	execCmd.Flags().BoolVarP(&execVerboseFlag, "verbose", "v", false, "Show full URL and response payload")
	execCmd.Flags().BoolVar(&execBailFlag, "bail", getEnvBool("REQLINE_BAIL", false), "Stop on first failure (env: REQLINE_BAIL)")
	execCmd.Flags().BoolVarP(&execWatchFlag, "watch", "w", false, "Re-run the file whenever it changes (requires --file)")
	execCmd.Flags().BoolVar(&execNoHistoryFlag, "no-history", false, "Do not record reports even when history is configured")
	execClientFlags.register(execCmd)
}

func execCommand(cmd *cobra.Command, args []string) error {
	if execWatchFlag && execFileFlag == "" {
		return &exitError{code: ExitUsageError, err: fmt.Errorf("--watch requires --file")}
	}

	outFile, closeOut, err := outputWriter(execOutputFileFlag)
	if err != nil {
		return err
	}
	defer closeOut()

	var out io.Writer = cmd.OutOrStdout()
	if outFile != nil {
		out = outFile
	}

	newFormatter := func() (output.Formatter, error) {
		return output.New(execOutputFlag, output.Options{
			Writer:  out,
			Verbose: execVerboseFlag,
			NoColor: noColorFlag || outFile != nil,
		})
	}

	var recorder runner.Recorder
	if !execNoHistoryFlag {
		store, err := openHistory()
		if err != nil {
			return err
		}
		if store != nil {
			defer store.Close()
			recorder = store
		}
	}

	cfg, err := execClientFlags.runnerConfig(recorder)
	if err != nil {
		return &exitError{code: ExitUsageError, err: err}
	}
	cfg.Bail = execBailFlag
	r := runner.NewRunner(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runOnce := func() (*runner.RunResult, error) {
		formatter, err := newFormatter()
		if err != nil {
			return nil, &exitError{code: ExitUsageError, err: err}
		}
		formatter.FormatHeader(version)

		lines, err := collectLines(cmd, execFileFlag, args)
		if err != nil {
			formatter.FormatError(err)
			return nil, err
		}

		result := r.RunLines(ctx, lines)
		result.File = execFileFlag
		formatter.FormatResult(result)

		if flushable, ok := formatter.(output.Flushable); ok {
			if err := flushable.Flush(result.Duration); err != nil {
				return nil, fmt.Errorf("error writing output: %w", err)
			}
		}
		return result, nil
	}

	result, err := runOnce()
	if err != nil {
		return err
	}

	if !execWatchFlag {
		return resultError(result)
	}

	return watchFile(ctx, cmd, execFileFlag, func() {
		_, err := runOnce()
		if err != nil {
			logger.WithError(err).Error("re-run failed")
		}
	})
}

// resultError converts a run result into the command's error. A single
// failing reqline keeps its own classification.
func resultError(result *runner.RunResult) error {
	if result.Failed == 0 {
		return nil
	}
	if len(result.Results) == 1 {
		return result.Results[0].Error
	}
	return failure(fmt.Errorf("%d of %d reqlines failed", result.Failed, len(result.Results)))
}

// watchFile calls rerun after path is written, debouncing bursts of events.
// It returns when ctx is cancelled.
func watchFile(ctx context.Context, cmd *cobra.Command, path string, rerun func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	// editors often replace files, so watch the directory
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "\nWatching %s for changes... (press Ctrl+C to stop)\n", path)

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(WatchDebounceDelay, func() {
				fmt.Fprintf(cmd.ErrOrStderr(), "\nFile changed: %s\nRe-running...\n", path)
				rerun()
				fmt.Fprintf(cmd.ErrOrStderr(), "\nWatching %s for changes... (press Ctrl+C to stop)\n", path)
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.WithError(err).Warn("watcher error")
		}
	}
}
