// Package runner executes reqlines and assembles their reports.
//
// It provides functionality for:
//   - Parsing a reqline and dispatching the outbound GET or POST
//   - Wall-clock timing strictly around the outbound call
//   - Assembling the request/response report
//   - Classifying transport failures as ExecutionFailure
//   - Running a batch of reqlines read from a file
//   - Recording executed reports to an optional history store
//
// A Runner holds no per-call state and is safe for concurrent use.
package runner
