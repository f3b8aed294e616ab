// Package decision defines the closed set of review decisions for a frame.
package decision

import (
	"fmt"
	"time"
)

// Decision is a reviewer's verdict on a single frame. The zero value is
// Cleared, meaning no decision is on record and the frame defaults to keep
// at commit time.
type Decision int

const (
	// Cleared means no standing decision.
	Cleared Decision = iota
	// Keep marks the frame for renumbering into the library.
	Keep
	// Delete marks the frame for removal.
	Delete
)

// String returns the stable wire name of the decision.
func (d Decision) String() string {
	switch d {
	case Keep:
		return "keep"
	case Delete:
		return "delete"
	default:
		return "cleared"
	}
}

// Parse converts a wire name back into a Decision.
func Parse(s string) (Decision, error) {
	switch s {
	case "keep":
		return Keep, nil
	case "delete":
		return Delete, nil
	case "cleared", "":
		return Cleared, nil
	default:
		return Cleared, fmt.Errorf("invalid decision %q", s)
	}
}

// Record is one decision with its timestamp, ordered by decision time.
type Record struct {
	Filename  string
	Decision  Decision
	DecidedAt time.Time
}
