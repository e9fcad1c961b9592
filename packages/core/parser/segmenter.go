package parser

import (
	"strings"

	"github.com/abdul-hamid-achik/reqline/packages/core/apperr"
)

const (
	// Delimiter separates segments
	Delimiter = "|"
	// MinSegments is the HTTP and URL pair every reqline starts with
	MinSegments = 2
)

// Split validates the structure of input and returns its segments in order.
// It does not look at segment values beyond separating them from keywords.
func Split(input string) ([]Segment, error) {
	if strings.TrimSpace(input) != input {
		return nil, apperr.Malformed("invalid format: input must be trimmed")
	}

	parts := strings.Split(input, Delimiter)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	if len(parts) < MinSegments {
		return nil, apperr.Malformed("missing required HTTP and URL segments")
	}
	if !strings.EqualFold(leadingToken(parts[0]), string(KeywordHTTP)) {
		return nil, apperr.Malformed("first segment must start with HTTP")
	}
	if !strings.EqualFold(leadingToken(parts[1]), string(KeywordURL)) {
		return nil, apperr.Malformed("second segment must start with URL")
	}

	seen := make(map[string]bool, len(parts))
	for _, part := range parts {
		token := leadingToken(part)
		if seen[token] {
			return nil, apperr.Malformed("duplicate segment type detected: '%s'", token)
		}
		seen[token] = true
	}

	segments := make([]Segment, 0, len(parts))
	for i, part := range parts {
		seg, err := splitSegment(part, i)
		if err != nil {
			return nil, err
		}
		segments = append(segments, seg)
	}

	return segments, nil
}

func splitSegment(part string, index int) (Segment, error) {
	spaceIdx := strings.Index(part, " ")
	if spaceIdx == -1 {
		return Segment{}, apperr.Malformed("invalid segment format: '%s'", part)
	}

	keyword := part[:spaceIdx]
	if keyword != strings.ToUpper(keyword) {
		return Segment{}, apperr.Malformed("keyword must be uppercase: '%s'", keyword)
	}
	if !Keyword(keyword).Known() {
		return Segment{}, apperr.Malformed("unknown keyword: '%s'", keyword)
	}

	return Segment{
		Keyword:  Keyword(keyword),
		RawValue: strings.TrimSpace(part[spaceIdx+1:]),
		Index:    index,
	}, nil
}

// leadingToken is everything before the first space
func leadingToken(part string) string {
	token, _, _ := strings.Cut(part, " ")
	return token
}
