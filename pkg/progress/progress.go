// Package progress provides reusable progress-reporting helpers for the
// commit workflow.
package progress

// Callback receives stage progress updates. Stage names follow the commit
// state machine and are intended for user-facing output.
type Callback func(stage string, processed, total int)

// Emit calls cb with a stage label and clamped processed/total values.
// It is a no-op when cb is nil or total is non-positive.
func Emit(cb Callback, stage string, processed, total int) {
	if cb == nil || total <= 0 {
		return
	}

	if processed < 0 {
		processed = 0
	}
	if processed > total {
		processed = total
	}

	cb(stage, processed, total)
}
