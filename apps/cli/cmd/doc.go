// Package cmd implements the reqline CLI commands using Cobra.
//
// Available commands:
//   - exec: Execute reqline statements and print their reports
//   - parse: Show the request a reqline describes without sending it
//   - validate: Check reqline syntax without executing
//   - bench: Repeat one reqline and report latency percentiles
//   - serve: Expose the pipeline over HTTP
//   - history: Inspect previously executed reports
//   - init: Create a starter config and example file
//   - version: Show reqline version information
package cmd
