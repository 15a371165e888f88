// Package cli is responsible for parsing command-line arguments, validating
// user input, and handling process-level concerns like exit codes. It
// translates cobra flags, with PATHSCRIPT_ environment defaults, into the
// application's configuration.
package cli
