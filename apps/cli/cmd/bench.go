package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/reqline/packages/bench"
	"github.com/abdul-hamid-achik/reqline/packages/core/runner"
)

var benchCmd = &cobra.Command{
	Use:   "bench <reqline>",
	Short: "Repeat one reqline and report latency percentiles",
	Long: `Execute a reqline repeatedly and report throughput, status codes,
errors and latency percentiles. Each iteration is an independent execution.

Examples:
  reqline bench 'HTTP GET | URL http://localhost:8080/healthz' -n 1000 -c 10
  reqline bench 'HTTP GET | URL http://localhost:8080' -n 200 --rate 50
  reqline bench 'HTTP GET | URL http://localhost:8080' --threshold "p99<200ms,errors<1%"`,
	Args: cobra.ExactArgs(1),
	RunE: benchCommand,
}

var (
	benchIterationsFlag  int
	benchRateFlag        float64
	benchConcurrencyFlag int
	benchThresholdFlag   string
	benchJSONFlag        bool
	benchClientFlags     clientFlags
)

func init() {
	benchCmd.Flags().IntVarP(&benchIterationsFlag, "iterations", "n", getEnvInt("REQLINE_BENCH_ITERATIONS", 100), "Number of executions (env: REQLINE_BENCH_ITERATIONS)")
	benchCmd.Flags().Float64VarP(&benchRateFlag, "rate", "r", 0, "Target requests per second (0 = unthrottled)")
	benchCmd.Flags().IntVarP(&benchConcurrencyFlag, "concurrency", "c", getEnvInt("REQLINE_BENCH_CONCURRENCY", 1), "Maximum concurrent requests (env: REQLINE_BENCH_CONCURRENCY)")
	benchCmd.Flags().StringVar(&benchThresholdFlag, "threshold", "", "Pass/fail thresholds (e.g., \"p90<200ms,errors<0.1%\")")
	benchCmd.Flags().BoolVar(&benchJSONFlag, "json", false, "Output results as JSON")
	benchClientFlags.register(benchCmd)
}

func benchCommand(cmd *cobra.Command, args []string) error {
	thresholds, err := bench.ParseThresholds(benchThresholdFlag)
	if err != nil {
		return &exitError{code: ExitUsageError, err: err}
	}

	cfg := &bench.Config{
		Iterations:  benchIterationsFlag,
		Rate:        benchRateFlag,
		Concurrency: benchConcurrencyFlag,
		Thresholds:  thresholds,
	}
	if err := cfg.Validate(); err != nil {
		return &exitError{code: ExitUsageError, err: err}
	}

	runnerCfg, err := benchClientFlags.runnerConfig(nil)
	if err != nil {
		return &exitError{code: ExitUsageError, err: err}
	}
	exec := runner.NewRunner(runnerCfg)

	reporter := bench.NewReporter(
		bench.WithWriter(cmd.OutOrStdout()),
		bench.WithNoColor(noColorFlag),
	)
	if !benchJSONFlag {
		reporter.Header(args[0], cfg)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := bench.NewRunner(cfg, exec).Run(ctx, args[0])
	if err != nil {
		return err
	}

	if benchJSONFlag {
		if err := reporter.JSON(result); err != nil {
			return err
		}
	} else {
		reporter.Summary(result)
	}

	if !result.Passed {
		return failure(fmt.Errorf("bench thresholds failed"))
	}
	return nil
}
