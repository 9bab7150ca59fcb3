// Package app wires configuration, the credential store, the API
// client, the pollers, and the UI into a runnable application.
package app
