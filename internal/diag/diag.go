// Package diag accumulates severity-tagged diagnostics across a whole
// compile run and turns them into console output and an exit status.
package diag

import "log/slog"

// Severity labels used by both backends. The remote service may report
// additional labels; they are preserved as-is and routed to the info channel.
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// Logs maps a severity label to an ordered sequence of message lines.
// Insertion order within a severity is preserved across merges.
type Logs struct {
	entries map[string][]string
	order   []string
}

// NewLogs creates an empty log aggregate.
func NewLogs() *Logs {
	return &Logs{entries: make(map[string][]string)}
}

// Add appends a single message under the given severity.
func (l *Logs) Add(severity, message string) {
	if _, ok := l.entries[severity]; !ok {
		l.order = append(l.order, severity)
	}
	l.entries[severity] = append(l.entries[severity], message)
}

// Merge appends every entry of other into l, severity by severity,
// preserving other's insertion order.
func (l *Logs) Merge(other *Logs) {
	if other == nil {
		return
	}
	for _, severity := range other.order {
		for _, msg := range other.entries[severity] {
			l.Add(severity, msg)
		}
	}
}

// Entries returns the messages recorded under a severity.
func (l *Logs) Entries(severity string) []string {
	return l.entries[severity]
}

// Failed reports whether the run must be considered failed: true iff at
// least one error-severity entry was recorded.
func (l *Logs) Failed() bool {
	return len(l.entries[SeverityError]) > 0
}

// ExitCode derives the coarse numeric status callers must treat as the
// authoritative result: 0 on success, 1 when any error was recorded.
func (l *Logs) ExitCode() int {
	if l.Failed() {
		return 1
	}
	return 0
}

// Report routes every accumulated line to the logger by severity. Unknown
// severities reported by the remote service go to the info channel under
// their original label.
func (l *Logs) Report(logger *slog.Logger) {
	for _, severity := range l.order {
		for _, msg := range l.entries[severity] {
			switch severity {
			case SeverityError:
				logger.Error(msg)
			case SeverityWarning:
				logger.Warn(msg)
			default:
				logger.Info(msg, "severity", severity)
			}
		}
	}
	if l.Failed() {
		logger.Error("Compilation failed.", "errors", len(l.entries[SeverityError]))
	} else {
		logger.Info("Compilation succeeded.")
	}
}
