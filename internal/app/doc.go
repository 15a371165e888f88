// Package app contains the core application logic. It wires a description
// loader, an editing session and the output sinks into one generation run,
// decoupled from any specific entrypoint like a CLI.
package app
