package parser

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/abdul-hamid-achik/reqline/packages/core/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_SimpleGET(t *testing.T) {
	d, err := Parse("HTTP GET | URL https://api.example.com/users/1")
	require.NoError(t, err)

	assert.Equal(t, MethodGet, d.Method)
	assert.Equal(t, "https://api.example.com/users/1", d.URL)
	assert.Equal(t, 0, d.Headers.Len())
	assert.Equal(t, 0, d.Query.Len())
	assert.Equal(t, 0, d.Body.Len())

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `{"method":"GET","url":"https://api.example.com/users/1","headers":{},"query":{},"body":{}}`, string(data))
}

func TestParse_AllSegments(t *testing.T) {
	input := `HTTP POST | URL https://api.example.com/users | HEADERS {"Content-Type":"application/json","X-Trace":"abc"} | QUERY {"a":"1","b":"2"} | BODY {"name":"Ada","age":36}`

	d, err := Parse(input)
	require.NoError(t, err)

	assert.Equal(t, MethodPost, d.Method)
	assert.Equal(t, []string{"Content-Type", "X-Trace"}, d.Headers.Keys())
	assert.Equal(t, []string{"a", "b"}, d.Query.Keys())
	assert.Equal(t, []string{"name", "age"}, d.Body.Keys())
}

func TestParse_OptionalSegmentsAnyOrder(t *testing.T) {
	d, err := Parse(`HTTP GET | URL http://x.test | BODY {"x":1} | QUERY {"q":"v"} | HEADERS {"h":"1"}`)
	require.NoError(t, err)
	assert.Equal(t, 1, d.Body.Len())
	assert.Equal(t, 1, d.Query.Len())
	assert.Equal(t, 1, d.Headers.Len())
}

func TestParse_NoSpacesAroundPipes(t *testing.T) {
	d, err := Parse("HTTP GET|URL http://x.test")
	require.NoError(t, err)
	assert.Equal(t, "http://x.test", d.URL)
}

func TestParse_URLKeptVerbatim(t *testing.T) {
	d, err := Parse("HTTP GET | URL https://x.test/a b?c=d#frag")
	require.NoError(t, err)
	assert.Equal(t, "https://x.test/a b?c=d#frag", d.URL)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		message string
	}{
		{"leading whitespace", " HTTP GET | URL http://x.test", "input must be trimmed"},
		{"trailing whitespace", "HTTP GET | URL http://x.test ", "input must be trimmed"},
		{"trailing newline", "HTTP GET | URL http://x.test\n", "input must be trimmed"},
		{"empty", "", "missing required HTTP and URL segments"},
		{"single segment", "HTTP GET", "missing required HTTP and URL segments"},
		{"first not HTTP", "URL http://x.test | HTTP GET", "first segment must start with HTTP"},
		{"second not URL", "HTTP GET | QUERY {}", "second segment must start with URL"},
		{"duplicate keyword", "HTTP GET | URL http://x.test | HTTP POST", "duplicate segment type"},
		{"duplicate optional keyword", `HTTP GET | URL http://x.test | QUERY {} | QUERY {}`, "duplicate segment type"},
		{"lowercase keyword", "http GET | URL http://x.test", "keyword must be uppercase: 'http'"},
		{"mixed case keyword", "HTTP GET | Url http://x.test", "keyword must be uppercase: 'Url'"},
		{"unknown keyword", "HTTP GET | URL http://x.test | COOKIES {}", "unknown keyword: 'COOKIES'"},
		{"segment without value", "HTTP GET | URL", "invalid segment format: 'URL'"},
		{"lowercase method", "HTTP get | URL http://x.test", "invalid HTTP method: 'get'"},
		{"unsupported method", "HTTP PUT | URL http://x.test", "invalid HTTP method: 'PUT'"},
		{"bad scheme", "HTTP GET | URL ftp://x.test", "invalid URL format"},
		{"scheme only", "HTTP GET | URL https://", "invalid URL format"},
		{"bad query json", "HTTP GET | URL http://x.test | QUERY {bad json}", "invalid JSON for QUERY"},
		{"bad headers json", `HTTP GET | URL http://x.test | HEADERS {"a":}`, "invalid JSON for HEADERS"},
		{"body not an object", `HTTP POST | URL http://x.test | BODY [1,2]`, "invalid JSON for BODY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Parse(tt.input)
			require.Error(t, err)
			assert.Nil(t, d)
			assert.True(t, apperr.Is(err, apperr.KindMalformedInput), "expected MalformedInput, got %v", err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestParse_Idempotent(t *testing.T) {
	input := `HTTP POST | URL https://x.test | HEADERS {"b":"2","a":"1"} | QUERY {"z":1,"y":[1,2]} | BODY {"n":{"k":null}}`

	first, err := Parse(input)
	require.NoError(t, err)
	second, err := Parse(input)
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestSplit_Segments(t *testing.T) {
	segments, err := Split(`HTTP GET | URL http://x.test |  QUERY   {"a": "b c"}`)
	require.NoError(t, err)
	require.Len(t, segments, 3)

	assert.Equal(t, KeywordHTTP, segments[0].Keyword)
	assert.Equal(t, "GET", segments[0].RawValue)
	assert.Equal(t, KeywordQuery, segments[2].Keyword)
	assert.Equal(t, `{"a": "b c"}`, segments[2].RawValue)
	assert.Equal(t, 2, segments[2].Index)
}

func TestInterpret_RequiresHTTPAndURL(t *testing.T) {
	_, err := Interpret([]Segment{{Keyword: KeywordURL, RawValue: "http://x.test"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing HTTP segment")

	_, err = Interpret([]Segment{{Keyword: KeywordHTTP, RawValue: "GET"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing URL segment")
}

func TestReadLines(t *testing.T) {
	input := `# smoke checks
HTTP GET | URL http://x.test

  HTTP POST | URL http://x.test/items | BODY {"a":1}
`
	lines, err := ReadLines(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, 2, lines[0].Number)
	assert.Equal(t, 4, lines[1].Number)
	assert.Equal(t, `HTTP POST | URL http://x.test/items | BODY {"a":1}`, lines[1].Text)
}
