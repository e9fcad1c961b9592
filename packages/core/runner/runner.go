package runner

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/abdul-hamid-achik/reqline/packages/core/apperr"
	"github.com/abdul-hamid-achik/reqline/packages/core/parser"
	"github.com/abdul-hamid-achik/reqline/packages/http"
	"github.com/abdul-hamid-achik/reqline/packages/logging"
)

// Client is the outbound collaborator. Both calls block until the exchange
// completes and return the status and payload unmodified.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (*http.Response, error)
	Post(ctx context.Context, url string, body []byte, headers map[string]string) (*http.Response, error)
}

// Recorder persists executed reports. Recording failures never fail a run.
type Recorder interface {
	Record(ctx context.Context, d *parser.Descriptor, report *Report) error
}

type Runner struct {
	client   Client
	config   *Config
	logger   logrus.FieldLogger
	recorder Recorder
	now      func() time.Time
}

type Config struct {
	Timeout        time.Duration
	FollowRedirect bool
	MaxRedirects   int
	Insecure       bool
	Proxy          string
	DefaultHeaders map[string]string
	Bail           bool
	Logger         logrus.FieldLogger
	Recorder       Recorder
}

// NewRunner builds a runner backed by the package http client.
func NewRunner(cfg *Config) *Runner {
	if cfg == nil {
		cfg = &Config{}
	}

	clientOpts := []http.ClientOption{}
	if cfg.Timeout > 0 {
		clientOpts = append(clientOpts, http.WithTimeout(cfg.Timeout))
	}
	if cfg.MaxRedirects > 0 {
		clientOpts = append(clientOpts, http.WithMaxRedirects(cfg.MaxRedirects))
	}
	if cfg.Proxy != "" {
		clientOpts = append(clientOpts, http.WithProxy(cfg.Proxy))
	}
	if len(cfg.DefaultHeaders) > 0 {
		clientOpts = append(clientOpts, http.WithDefaultHeaders(cfg.DefaultHeaders))
	}
	clientOpts = append(clientOpts,
		http.WithFollowRedirects(cfg.FollowRedirect),
		http.WithValidateSSL(!cfg.Insecure),
	)

	return NewRunnerWithClient(http.NewClient(clientOpts...), cfg)
}

func NewRunnerWithClient(client Client, cfg *Config) *Runner {
	if cfg == nil {
		cfg = &Config{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Runner{
		client:   client,
		config:   cfg,
		logger:   logger,
		recorder: cfg.Recorder,
		now:      time.Now,
	}
}

// Run parses reqline and, when it is valid, executes it.
// Parse failures return before any outbound call is made.
func (r *Runner) Run(ctx context.Context, reqline string) (*Report, error) {
	d, err := parser.Parse(reqline)
	if err != nil {
		return nil, err
	}
	return r.Execute(ctx, d)
}

// Execute dispatches the request described by d and assembles its report.
func (r *Runner) Execute(ctx context.Context, d *parser.Descriptor) (*Report, error) {
	req, err := http.BuildRequest(d)
	if err != nil {
		return nil, apperr.Execution(err, "error processing reqline statement")
	}

	log := r.logger.WithFields(logrus.Fields{
		"method":   req.Method,
		"full_url": req.URL,
	})

	timing := Timing{Start: r.now()}
	resp, err := r.dispatch(ctx, req)
	timing.End = r.now()

	if err != nil {
		log.WithError(err).WithField("duration_ms", timing.Duration().Milliseconds()).Error("outbound request failed")
		return nil, apperr.Execution(err, "error processing reqline statement: outbound request failed")
	}

	report := Assemble(d, req.URL, resp, timing)
	log.WithFields(logrus.Fields{
		"http_status": report.Response.HTTPStatus,
		"duration_ms": report.Response.Duration,
	}).Debug("outbound request completed")

	if r.recorder != nil {
		if err := r.recorder.Record(ctx, d, report); err != nil {
			log.WithError(err).Warn("recording report failed")
		}
	}

	return report, nil
}

func (r *Runner) dispatch(ctx context.Context, req *http.Request) (*http.Response, error) {
	if req.Method == string(parser.MethodPost) {
		return r.client.Post(ctx, req.URL, req.Body, req.Headers)
	}
	return r.client.Get(ctx, req.URL, req.Headers)
}

// RunResult summarises a batch of reqlines
type RunResult struct {
	File     string
	Results  []*LineResult
	Duration time.Duration
	Passed   int
	Failed   int
	Skipped  int
}

type LineResult struct {
	Line    int
	Reqline string
	Report  *Report
	Error   error
	Skipped bool
}

// Passed reports whether the line executed without error
func (l *LineResult) Passed() bool {
	return !l.Skipped && l.Error == nil
}

// RunFile executes every reqline in path in order
func (r *Runner) RunFile(ctx context.Context, path string) (*RunResult, error) {
	lines, err := parser.ReadFile(path)
	if err != nil {
		return nil, err
	}
	result := r.RunLines(ctx, lines)
	result.File = path
	return result, nil
}

// RunLines executes lines sequentially. With Bail set, lines after the first
// failure are reported as skipped.
func (r *Runner) RunLines(ctx context.Context, lines []*parser.Line) *RunResult {
	start := time.Now()
	result := &RunResult{}

	failed := false
	for _, line := range lines {
		if (failed && r.config.Bail) || ctx.Err() != nil {
			result.Results = append(result.Results, &LineResult{
				Line:    line.Number,
				Reqline: line.Text,
				Skipped: true,
			})
			result.Skipped++
			continue
		}

		report, err := r.Run(ctx, line.Text)
		result.Results = append(result.Results, &LineResult{
			Line:    line.Number,
			Reqline: line.Text,
			Report:  report,
			Error:   err,
		})
		if err != nil {
			failed = true
			result.Failed++
		} else {
			result.Passed++
		}
	}

	result.Duration = time.Since(start)
	return result
}
