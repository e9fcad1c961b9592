package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/reqline/packages/core/apperr"
	"github.com/abdul-hamid-achik/reqline/packages/core/config"
	"github.com/abdul-hamid-achik/reqline/packages/core/parser"
	"github.com/abdul-hamid-achik/reqline/packages/core/runner"
	"github.com/abdul-hamid-achik/reqline/packages/logging"
)

func withConfig(t *testing.T, cfg *config.Config) {
	t.Helper()
	prevCfg, prevLogger := appConfig, logger
	appConfig = cfg
	logger = logging.Discard()
	t.Cleanup(func() {
		appConfig, logger = prevCfg, prevLogger
	})
}

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"malformed", apperr.Malformed("bad"), ExitParseError},
		{"outer validation", apperr.Validation("bad"), ExitParseError},
		{"execution", apperr.Execution(errors.New("refused"), "failed"), ExitNetworkError},
		{"config", configError(errors.New("bad yaml")), ExitConfigError},
		{"failure", failure(errors.New("2 failed")), ExitFailure},
		{"plain", errors.New("unknown flag"), ExitUsageError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCodeFor(tt.err))
		})
	}
}

func TestClientFlags_RunnerConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Proxy = "http://proxy:3128"
	cfg.Headers = map[string]string{"User-Agent": "test"}
	withConfig(t, cfg)

	f := &clientFlags{}
	rc, err := f.runnerConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, rc.Timeout)
	assert.Equal(t, "http://proxy:3128", rc.Proxy)
	assert.False(t, rc.Insecure)
	assert.True(t, rc.FollowRedirect)
	assert.Equal(t, map[string]string{"User-Agent": "test"}, rc.DefaultHeaders)
	assert.Nil(t, rc.Recorder)

	f = &clientFlags{timeout: "2s", insecure: true, proxy: "http://other:8080"}
	rc, err = f.runnerConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, rc.Timeout)
	assert.Equal(t, "http://other:8080", rc.Proxy)
	assert.True(t, rc.Insecure)

	f = &clientFlags{timeout: "soon"}
	_, err = f.runnerConfig(nil)
	assert.Error(t, err)
}

func TestCollectLines(t *testing.T) {
	cmd := &cobra.Command{}

	lines, err := collectLines(cmd, "", []string{"HTTP GET | URL https://a.b", "HTTP POST | URL https://a.b"})
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, 2, lines[1].Number)

	cmd.SetIn(strings.NewReader("# comment\n\nHTTP GET | URL https://a.b\n"))
	lines, err = collectLines(cmd, "", []string{"-"})
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Number)

	path := filepath.Join(t.TempDir(), "requests.reqline")
	require.NoError(t, os.WriteFile(path, []byte("HTTP GET | URL https://a.b\n"), 0644))
	lines, err = collectLines(cmd, path, nil)
	require.NoError(t, err)
	assert.Len(t, lines, 1)

	_, err = collectLines(cmd, path, []string{"HTTP GET | URL https://a.b"})
	assert.Equal(t, ExitUsageError, exitCodeFor(err))

	_, err = collectLines(cmd, "", nil)
	assert.Equal(t, ExitUsageError, exitCodeFor(err))
}

func TestResultError(t *testing.T) {
	assert.NoError(t, resultError(&runner.RunResult{Passed: 2}))

	single := apperr.Malformed("invalid HTTP method: 'PUT'")
	err := resultError(&runner.RunResult{
		Failed:  1,
		Results: []*runner.LineResult{{Line: 1, Error: single}},
	})
	assert.Equal(t, ExitParseError, exitCodeFor(err))

	err = resultError(&runner.RunResult{
		Failed:  1,
		Passed:  1,
		Results: []*runner.LineResult{{Line: 1}, {Line: 2, Error: single}},
	})
	assert.Equal(t, ExitFailure, exitCodeFor(err))
	assert.Contains(t, err.Error(), "1 of 2 reqlines failed")
}

func TestValidateCommand(t *testing.T) {
	withConfig(t, config.DefaultConfig())

	var out bytes.Buffer
	validateCmd.SetOut(&out)
	noColorFlag = true
	defer func() { noColorFlag = false }()

	err := validateCommand(validateCmd, []string{"HTTP GET | URL https://example.com"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "#1 valid")

	out.Reset()
	err = validateCommand(validateCmd, []string{"HTTP GET | URL ftp://example.com"})
	require.Error(t, err)
	assert.Equal(t, ExitParseError, exitCodeFor(err))
	assert.Contains(t, out.String(), "invalid URL format: 'ftp://example.com'")
}

func TestInitProject(t *testing.T) {
	dir := t.TempDir()
	cmd := &cobra.Command{}
	cmd.SetOut(&bytes.Buffer{})

	require.NoError(t, initProject(cmd, dir))

	cfg, err := config.FindAndLoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Listen)
	assert.NotEmpty(t, cfg.History.Path)

	lines, err := parser.ReadFile(filepath.Join(dir, "example.reqline"))
	require.NoError(t, err)
	require.Len(t, lines, 3)
	for _, line := range lines {
		_, err := parser.Parse(line.Text)
		assert.NoError(t, err, line.Text)
	}

	assert.Error(t, initProject(cmd, dir), "existing files are not overwritten")
}
