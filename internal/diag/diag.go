package diag

import "log/slog"

// Reporter surfaces a transport-level failure of the named operation. The call
// is fire-and-forget: reporters must not block and must not panic, as they are
// invoked straight from accept and session loops.
type Reporter func(op string, err error)

// Log is the default reporter.
func Log(op string, err error) {
	slog.Error("transport failure", "op", op, "err", err)
}

// Discard drops all reports. Used by tests.
func Discard(string, error) {}
