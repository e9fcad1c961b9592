// Package http builds and sends the outbound request described by a reqline.
//
// It wraps the standard library's http package with additional features:
//   - Target URL assembly from a base URL and an ordered query map
//   - JSON body encoding that keeps key order
//   - Configurable timeouts, redirect policy, TLS verification and proxy
//   - Default headers applied beneath caller headers
//   - Response payload decoding for reports
package http
