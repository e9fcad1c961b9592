package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/reqline/packages/core/apperr"
	"github.com/abdul-hamid-achik/reqline/packages/core/parser"
	"github.com/abdul-hamid-achik/reqline/packages/core/runner"
)

type fakeExecutor struct {
	calls  []string
	report *runner.Report
	err    error
}

func (f *fakeExecutor) Run(_ context.Context, reqline string) (*runner.Report, error) {
	f.calls = append(f.calls, reqline)
	if f.err != nil {
		return nil, f.err
	}
	if _, err := parser.Parse(reqline); err != nil {
		return nil, err
	}
	return f.report, nil
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestServer_Run(t *testing.T) {
	exec := &fakeExecutor{report: &runner.Report{
		Request:  runner.RequestInfo{FullURL: "https://example.com"},
		Response: runner.ResponseInfo{HTTPStatus: 200, ResponseData: "ok"},
	}}
	s := NewServer(exec)

	rec := doRequest(t, s, http.MethodPost, "/", `{"reqline":"HTTP GET | URL https://example.com","caller":"x"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	body := decodeBody(t, rec)
	response := body["response"].(map[string]any)
	assert.Equal(t, float64(200), response["http_status"])
	assert.Equal(t, []string{"HTTP GET | URL https://example.com"}, exec.calls)
}

func TestServer_RunErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "missing reqline",
			body:       `{"other":1}`,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "reqline",
		},
		{
			name:       "reqline not a string",
			body:       `{"reqline":42}`,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "reqline",
		},
		{
			name:       "invalid json",
			body:       `{"reqline":`,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "request body must be valid JSON",
		},
		{
			name:       "not an object",
			body:       `["HTTP GET | URL https://a"]`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed reqline",
			body:       `{"reqline":"HTTP PUT | URL https://example.com"}`,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "invalid HTTP method: 'PUT'",
		},
		{
			name:       "execution failure",
			body:       `{"reqline":"HTTP GET | URL https://example.com"}`,
			err:        apperr.Execution(errors.New("dial tcp: refused"), "error processing reqline statement: outbound request failed"),
			wantStatus: http.StatusBadGateway,
			wantMsg:    "outbound request failed",
		},
		{
			name:       "unclassified",
			body:       `{"reqline":"HTTP GET | URL https://example.com"}`,
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewServer(&fakeExecutor{err: tt.err})
			rec := doRequest(t, s, http.MethodPost, "/", tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, true, body["error"])
			assert.Contains(t, body["message"], tt.wantMsg)
		})
	}
}

func TestServer_ExecutionFailureStatus(t *testing.T) {
	exec := &fakeExecutor{err: apperr.Execution(errors.New("timeout"), "outbound request failed")}
	s := NewServer(exec, WithExecutionFailureStatus(http.StatusBadRequest))

	rec := doRequest(t, s, http.MethodPost, "/", `{"reqline":"HTTP GET | URL https://example.com"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_OuterValidationSkipsExecution(t *testing.T) {
	exec := &fakeExecutor{}
	s := NewServer(exec)

	rec := doRequest(t, s, http.MethodPost, "/", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, exec.calls)
}

func TestServer_Parse(t *testing.T) {
	s := NewServer(&fakeExecutor{})

	rec := doRequest(t, s, http.MethodPost, "/parse",
		`{"reqline":"HTTP GET | URL https://example.com/items | QUERY {\"b\":\"2\",\"a\":1}"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.JSONEq(t, `{
		"method": "GET",
		"url": "https://example.com/items",
		"headers": {},
		"query": {"b": "2", "a": 1},
		"body": {},
		"full_url": "https://example.com/items?b=2&a=1"
	}`, rec.Body.String())
}

func TestServer_ParseMalformed(t *testing.T) {
	s := NewServer(&fakeExecutor{})

	rec := doRequest(t, s, http.MethodPost, "/parse", `{"reqline":"URL https://example.com | HTTP GET"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "first segment must start with HTTP", decodeBody(t, rec)["message"])
}

func TestServer_Health(t *testing.T) {
	s := NewServer(&fakeExecutor{})

	rec := doRequest(t, s, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServer_RequestIDEchoed(t *testing.T) {
	s := NewServer(&fakeExecutor{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestServer_MethodNotAllowed(t *testing.T) {
	s := NewServer(&fakeExecutor{})

	rec := doRequest(t, s, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestDecodeInput(t *testing.T) {
	reqline, err := DecodeInput([]byte(`{"reqline":"HTTP GET | URL https://a.b","meta":{"user":1}}`))
	require.NoError(t, err)
	assert.Equal(t, "HTTP GET | URL https://a.b", reqline)

	_, err = DecodeInput([]byte(`{"reqline":null}`))
	assert.True(t, apperr.Is(err, apperr.KindOuterValidation))
}
