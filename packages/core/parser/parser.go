package parser

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/abdul-hamid-achik/reqline/packages/core/apperr"
	"github.com/abdul-hamid-achik/reqline/packages/core/value"
)

var urlSchemes = []string{"http://", "https://"}

// Parse splits and interprets a reqline string
func Parse(input string) (*Descriptor, error) {
	segments, err := Split(input)
	if err != nil {
		return nil, err
	}
	return Interpret(segments)
}

// Interpret builds a Descriptor from structurally valid segments.
func Interpret(segments []Segment) (*Descriptor, error) {
	d := newDescriptor()

	for _, seg := range segments {
		switch seg.Keyword {
		case KeywordHTTP:
			method, err := parseMethod(seg.RawValue)
			if err != nil {
				return nil, err
			}
			d.Method = method
		case KeywordURL:
			if err := validateURL(seg.RawValue); err != nil {
				return nil, err
			}
			d.URL = seg.RawValue
		case KeywordHeaders, KeywordQuery, KeywordBody:
			obj, err := value.DecodeObject(seg.RawValue)
			if err != nil {
				return nil, &apperr.Error{
					Kind:    apperr.KindMalformedInput,
					Message: "invalid JSON for " + string(seg.Keyword),
					Err:     err,
				}
			}
			switch seg.Keyword {
			case KeywordHeaders:
				d.Headers = obj
			case KeywordQuery:
				d.Query = obj
			default:
				d.Body = obj
			}
		default:
			return nil, apperr.Malformed("unhandled keyword: '%s'", seg.Keyword)
		}
	}

	if d.Method == "" {
		return nil, apperr.Malformed("missing HTTP segment")
	}
	if d.URL == "" {
		return nil, apperr.Malformed("missing URL segment")
	}

	return d, nil
}

func parseMethod(raw string) (Method, error) {
	switch Method(raw) {
	case MethodGet, MethodPost:
		return Method(raw), nil
	default:
		return "", apperr.Malformed("invalid HTTP method: '%s'", raw)
	}
}

// validateURL only checks the scheme prefix and that something follows it.
// The URL is otherwise used verbatim.
func validateURL(raw string) error {
	for _, scheme := range urlSchemes {
		if rest, ok := strings.CutPrefix(raw, scheme); ok && rest != "" {
			return nil
		}
	}
	return apperr.Malformed("invalid URL format: '%s'", raw)
}

// Line is one reqline read from a file
type Line struct {
	Number int
	Text   string
}

// ReadFile reads reqlines from path, one per line
func ReadFile(path string) ([]*Line, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadLines(f)
}

// ReadLines collects non-empty lines that are not # comments.
// Each line is trimmed before it is returned.
func ReadLines(r io.Reader) ([]*Line, error) {
	var lines []*Line
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	n := 0
	for scanner.Scan() {
		n++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		lines = append(lines, &Line{Number: n, Text: text})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
