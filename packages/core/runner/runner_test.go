package runner

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/reqline/packages/core/apperr"
	"github.com/abdul-hamid-achik/reqline/packages/core/parser"
	reqhttp "github.com/abdul-hamid-achik/reqline/packages/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	method  string
	url     string
	body    []byte
	headers map[string]string
}

type fakeClient struct {
	calls []call
	resp  *reqhttp.Response
	err   error
}

func (f *fakeClient) Get(_ context.Context, url string, headers map[string]string) (*reqhttp.Response, error) {
	f.calls = append(f.calls, call{method: "GET", url: url, headers: headers})
	return f.resp, f.err
}

func (f *fakeClient) Post(_ context.Context, url string, body []byte, headers map[string]string) (*reqhttp.Response, error) {
	f.calls = append(f.calls, call{method: "POST", url: url, body: body, headers: headers})
	return f.resp, f.err
}

type fakeRecorder struct {
	reports []*Report
	err     error
}

func (f *fakeRecorder) Record(_ context.Context, _ *parser.Descriptor, report *Report) error {
	f.reports = append(f.reports, report)
	return f.err
}

func TestNewRunner(t *testing.T) {
	t.Run("with nil config", func(t *testing.T) {
		r := NewRunner(nil)
		assert.NotNil(t, r)
		assert.NotNil(t, r.client)
		assert.NotNil(t, r.logger)
	})

	t.Run("with custom config", func(t *testing.T) {
		r := NewRunner(&Config{Timeout: time.Second, Bail: true})
		assert.True(t, r.config.Bail)
	})
}

func TestRunner_Run_POST(t *testing.T) {
	client := &fakeClient{resp: &reqhttp.Response{StatusCode: 201, Body: []byte(`{"x":1}`)}}
	r := NewRunnerWithClient(client, nil)

	report, err := r.Run(context.Background(), `HTTP POST | URL https://api.test/echo | BODY {"x":1}`)
	require.NoError(t, err)

	require.Len(t, client.calls, 1)
	assert.Equal(t, "POST", client.calls[0].method)
	assert.Equal(t, "https://api.test/echo", client.calls[0].url)
	assert.Equal(t, `{"x":1}`, string(client.calls[0].body))
	assert.Equal(t, map[string]string{"Content-Type": "application/json"}, client.calls[0].headers)

	assert.Equal(t, 201, report.Response.HTTPStatus)
	assert.GreaterOrEqual(t, report.Response.Duration, int64(0))
	assert.Equal(t, "https://api.test/echo", report.Request.FullURL)
	assert.Equal(t, 0, report.Request.Headers.Len())
}

func TestRunner_Run_GETWithQuery(t *testing.T) {
	client := &fakeClient{resp: &reqhttp.Response{StatusCode: 200, Body: []byte(`ok`)}}
	r := NewRunnerWithClient(client, nil)

	report, err := r.Run(context.Background(), `HTTP GET | URL https://api.test/items | QUERY {"a":"1","b":"2"} | HEADERS {"X-Key":"k"}`)
	require.NoError(t, err)

	require.Len(t, client.calls, 1)
	assert.Equal(t, "GET", client.calls[0].method)
	assert.Equal(t, "https://api.test/items?a=1&b=2", client.calls[0].url)
	assert.Nil(t, client.calls[0].body)
	assert.Equal(t, map[string]string{"X-Key": "k"}, client.calls[0].headers)

	assert.Equal(t, "https://api.test/items?a=1&b=2", report.Request.FullURL)
	assert.Equal(t, "ok", report.Response.ResponseData)
}

func TestRunner_Run_ParseErrorSkipsCall(t *testing.T) {
	client := &fakeClient{}
	r := NewRunnerWithClient(client, nil)

	_, err := r.Run(context.Background(), "HTTP GET | URL http://x.test | HTTP POST")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindMalformedInput))
	assert.Empty(t, client.calls)
}

func TestRunner_Run_TransportFailure(t *testing.T) {
	transportErr := errors.New("dial tcp: connection refused")
	client := &fakeClient{err: transportErr}
	recorder := &fakeRecorder{}
	r := NewRunnerWithClient(client, &Config{Recorder: recorder})

	_, err := r.Run(context.Background(), "HTTP GET | URL http://x.test")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindExecutionFailure))
	assert.ErrorIs(t, err, transportErr)
	assert.NotContains(t, err.Error(), "connection refused")
	assert.Empty(t, recorder.reports)
}

func TestRunner_Execute_Timing(t *testing.T) {
	client := &fakeClient{resp: &reqhttp.Response{StatusCode: 200}}
	r := NewRunnerWithClient(client, nil)

	start := time.UnixMilli(1_700_000_000_123).Add(400 * time.Microsecond)
	ticks := []time.Time{start, start.Add(1500 * time.Microsecond)}
	r.now = func() time.Time {
		next := ticks[0]
		ticks = ticks[1:]
		return next
	}

	d, err := parser.Parse("HTTP GET | URL http://x.test")
	require.NoError(t, err)

	report, err := r.Execute(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, int64(1), report.Response.Duration)
	assert.Equal(t, int64(1_700_000_000_123), report.Response.RequestStartTimestamp)
	assert.Equal(t, int64(1_700_000_000_124), report.Response.RequestStopTimestamp)
}

func TestRunner_Execute_RecorderErrorIgnored(t *testing.T) {
	client := &fakeClient{resp: &reqhttp.Response{StatusCode: 204}}
	recorder := &fakeRecorder{err: errors.New("disk full")}
	r := NewRunnerWithClient(client, &Config{Recorder: recorder})

	report, err := r.Run(context.Background(), "HTTP GET | URL http://x.test")
	require.NoError(t, err)
	assert.Equal(t, 204, report.Response.HTTPStatus)
	assert.Len(t, recorder.reports, 1)
}

func TestTiming_NeverNegative(t *testing.T) {
	now := time.Now()
	assert.Equal(t, time.Duration(0), Timing{Start: now, End: now.Add(-time.Second)}.Duration())
}

func TestReport_JSONShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"echo":` + string(body) + `,"q":"` + r.URL.RawQuery + `"}`))
	}))
	defer server.Close()

	r := NewRunner(&Config{Timeout: 5 * time.Second})
	report, err := r.Run(context.Background(), `HTTP POST | URL `+server.URL+`/echo | QUERY {"a":"1"} | BODY {"x":1}`)
	require.NoError(t, err)

	data, err := json.Marshal(report)
	require.NoError(t, err)

	var shape map[string]map[string]any
	require.NoError(t, json.Unmarshal(data, &shape))

	assert.Equal(t, server.URL+"/echo?a=1", shape["request"]["full_url"])
	assert.Equal(t, map[string]any{"a": "1"}, shape["request"]["query"])
	assert.Equal(t, map[string]any{"x": float64(1)}, shape["request"]["body"])
	assert.Equal(t, map[string]any{}, shape["request"]["headers"])

	assert.Equal(t, float64(200), shape["response"]["http_status"])
	assert.Contains(t, shape["response"], "duration")
	assert.Contains(t, shape["response"], "request_start_timestamp")
	assert.Contains(t, shape["response"], "request_stop_timestamp")
	assert.Equal(t, map[string]any{"echo": map[string]any{"x": float64(1)}, "q": "a=1"}, shape["response"]["response_data"])
}

func TestRunner_RunFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	content := "# batch\nHTTP GET | URL " + server.URL + "/a\nhttp GET | URL " + server.URL + "\nHTTP GET | URL " + server.URL + "/c\n"
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "batch.reqline")
	require.NoError(t, os.WriteFile(testFile, []byte(content), 0644))

	t.Run("runs every line", func(t *testing.T) {
		r := NewRunner(&Config{})
		result, err := r.RunFile(context.Background(), testFile)
		require.NoError(t, err)
		assert.Equal(t, testFile, result.File)
		assert.Equal(t, 2, result.Passed)
		assert.Equal(t, 1, result.Failed)
		require.Len(t, result.Results, 3)
		assert.Equal(t, 3, result.Results[1].Line)
		assert.False(t, result.Results[1].Passed())
	})

	t.Run("bail skips the rest", func(t *testing.T) {
		r := NewRunner(&Config{Bail: true})
		result, err := r.RunFile(context.Background(), testFile)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Passed)
		assert.Equal(t, 1, result.Failed)
		assert.Equal(t, 1, result.Skipped)
		assert.True(t, result.Results[2].Skipped)
	})
}
