package parser

import (
	"github.com/abdul-hamid-achik/reqline/packages/core/value"
)

type Keyword string

const (
	KeywordHTTP    Keyword = "HTTP"
	KeywordURL     Keyword = "URL"
	KeywordHeaders Keyword = "HEADERS"
	KeywordQuery   Keyword = "QUERY"
	KeywordBody    Keyword = "BODY"
)

// Keywords lists every keyword a segment may start with
var Keywords = []Keyword{KeywordHTTP, KeywordURL, KeywordHeaders, KeywordQuery, KeywordBody}

func (k Keyword) Known() bool {
	for _, known := range Keywords {
		if k == known {
			return true
		}
	}
	return false
}

type Method string

const (
	MethodGet  Method = "GET"
	MethodPost Method = "POST"
)

// Segment is one "KEYWORD value" unit between pipes
type Segment struct {
	Keyword  Keyword
	RawValue string
	Index    int
}

// Descriptor is the canonical result of parsing a reqline.
// Headers, Query and Body are never nil.
type Descriptor struct {
	Method  Method     `json:"method"`
	URL     string     `json:"url"`
	Headers *value.Map `json:"headers"`
	Query   *value.Map `json:"query"`
	Body    *value.Map `json:"body"`
}

func newDescriptor() *Descriptor {
	return &Descriptor{
		Headers: value.NewMap(),
		Query:   value.NewMap(),
		Body:    value.NewMap(),
	}
}
