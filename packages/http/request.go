package http

import (
	"strings"

	"github.com/abdul-hamid-achik/reqline/packages/core/parser"
	"github.com/abdul-hamid-achik/reqline/packages/core/value"
)

const contentTypeJSON = "application/json"

type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
}

func NewRequest(method, requestURL string) *Request {
	return &Request{
		Method:  method,
		URL:     requestURL,
		Headers: make(map[string]string),
	}
}

func (r *Request) SetHeader(key, value string) *Request {
	r.Headers[key] = value
	return r
}

func (r *Request) SetBody(body []byte) *Request {
	r.Body = body
	return r
}

// HasHeader matches key case-insensitively
func (r *Request) HasHeader(key string) bool {
	for k := range r.Headers {
		if strings.EqualFold(k, key) {
			return true
		}
	}
	return false
}

// BuildQueryString joins key=value pairs in insertion order with '&'.
// Keys and values are used literally, without percent-encoding.
func BuildQueryString(query *value.Map) string {
	if query.Len() == 0 {
		return ""
	}
	pairs := make([]string, 0, query.Len())
	for _, m := range query.Members() {
		pairs = append(pairs, m.Key+"="+m.Value.String())
	}
	return strings.Join(pairs, "&")
}

// BuildURL appends the query string to base. base is returned unchanged
// when query is empty.
func BuildURL(base string, query *value.Map) string {
	qs := BuildQueryString(query)
	if qs == "" {
		return base
	}
	return base + "?" + qs
}

// BuildRequest turns a descriptor into a ready-to-send request.
// Only POST requests carry a body.
func BuildRequest(d *parser.Descriptor) (*Request, error) {
	r := NewRequest(string(d.Method), BuildURL(d.URL, d.Query))

	for _, h := range d.Headers.Members() {
		r.SetHeader(h.Key, h.Value.String())
	}

	if d.Method == parser.MethodPost {
		body, err := d.Body.MarshalJSON()
		if err != nil {
			return nil, err
		}
		r.SetBody(body)
		if !r.HasHeader("Content-Type") {
			r.SetHeader("Content-Type", contentTypeJSON)
		}
	}

	return r, nil
}
