// Package app contains the core application logic. It wires configuration,
// the rule registry, the dispatcher and the compile pass into one App,
// decoupled from any specific entrypoint like a CLI or server.
package app
