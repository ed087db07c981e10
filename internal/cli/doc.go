// Package cli translates command-line arguments into an app.Config.
// It owns flag definitions, usage output, and argument validation, and
// reports unrecoverable parse failures through ExitError so the binary
// entrypoint can map them onto process exit codes.
package cli
