// Package parser turns a reqline string into a request Descriptor.
//
// A reqline is a single line of pipe-delimited segments:
//
//	HTTP GET | URL https://api.example.com/users | QUERY {"page":"2"}
//
// Parsing happens in two passes:
//   - Split enforces the structure (trimming, segment count, HTTP first,
//     URL second, no duplicate keywords, uppercase known keywords)
//   - Interpret applies per-keyword rules (method whitelist, URL shape,
//     JSON object decoding for HEADERS, QUERY and BODY)
//
// Every failure is an apperr.Error of kind MalformedInput.
package parser
