package runner

import (
	"time"

	"github.com/abdul-hamid-achik/reqline/packages/core/parser"
	"github.com/abdul-hamid-achik/reqline/packages/core/value"
	"github.com/abdul-hamid-achik/reqline/packages/http"
)

// Report is returned for every executed reqline
type Report struct {
	Request  RequestInfo  `json:"request"`
	Response ResponseInfo `json:"response"`
}

type RequestInfo struct {
	Query   *value.Map `json:"query"`
	Body    *value.Map `json:"body"`
	Headers *value.Map `json:"headers"`
	FullURL string     `json:"full_url"`
}

// ResponseInfo times are in milliseconds; timestamps are Unix epoch based.
type ResponseInfo struct {
	HTTPStatus            int   `json:"http_status"`
	Duration              int64 `json:"duration"`
	RequestStartTimestamp int64 `json:"request_start_timestamp"`
	RequestStopTimestamp  int64 `json:"request_stop_timestamp"`
	ResponseData          any   `json:"response_data"`
}

// Timing brackets one outbound call
type Timing struct {
	Start time.Time
	End   time.Time
}

func (t Timing) Duration() time.Duration {
	if d := t.End.Sub(t.Start); d > 0 {
		return d
	}
	return 0
}

// Assemble packages a descriptor and the outcome of its call into a Report.
func Assemble(d *parser.Descriptor, fullURL string, resp *http.Response, timing Timing) *Report {
	return &Report{
		Request: RequestInfo{
			Query:   d.Query,
			Body:    d.Body,
			Headers: d.Headers,
			FullURL: fullURL,
		},
		Response: ResponseInfo{
			HTTPStatus:            resp.StatusCode,
			Duration:              timing.Duration().Milliseconds(),
			RequestStartTimestamp: timing.Start.UnixMilli(),
			RequestStopTimestamp:  timing.End.UnixMilli(),
			ResponseData:          resp.Data(),
		},
	}
}
