// Package stager turns a computed original→final rename mapping into
// filesystem state using only rename and unlink primitives, with no partial,
// lost, or duplicated files even on mid-run failure.
//
// Every affected file is first renamed to a unique temporary name in the same
// directory (the stage), then renamed from temp to its final name. Any
// failure triggers a rollback that renames every staged or finalized file
// back to its original name. Sub-groups run in a fixed order because their
// final names can overlap; a file still sitting on another group's
// destination is staged out of the way before that destination is taken.
package stager

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"framekeep/pkg/safepath"
)

var (
	// ErrTempRename indicates a failure while staging a file to its
	// temporary name. The commit must be rolled back.
	ErrTempRename = errors.New("temp rename failed")
	// ErrFinalRename indicates a failure while renaming a staged file to
	// its final name, after fallback exhaustion. The commit must be rolled
	// back.
	ErrFinalRename = errors.New("final rename failed")
)

// tempInfix marks staging names: "<original>.renametmp.<token>".
const tempInfix = ".renametmp."

// maxFallbackAttempts bounds the search for a free disambiguated name.
const maxFallbackAttempts = 100

// Group identifies a finalization sub-group.
type Group int

const (
	// GroupA holds files with an explicit keep decision.
	GroupA Group = iota
	// GroupB holds undecided files whose current name does not collide
	// with any GroupA destination.
	GroupB
	// GroupC holds undecided files whose current name is a GroupA
	// destination; they are staged before that destination is taken.
	GroupC
)

// Item is one planned rename.
type Item struct {
	Original string // current filename, relative to the directory
	Final    string // destination filename
	// Fallback produces a disambiguated destination embedding
	// season/episode/counter for the given attempt, used when the
	// preferred destination cannot be vacated. Optional.
	Fallback func(attempt int) string
}

type recordState int

const (
	statePending recordState = iota
	stateStaged
	stateFinalized
)

type record struct {
	item    Item
	group   Group
	temp    string
	current string // name the file holds on disk right now
	state   recordState
}

// RenameFunc renames a file between two absolute paths.
type RenameFunc func(oldPath, newPath string) error

// RemoveFunc unlinks the file at an absolute path.
type RemoveFunc func(path string) error

// Executor owns the rename plan for a single commit. It is not safe for
// concurrent use; a commit is single-threaded by design.
type Executor struct {
	dir      string
	logger   *slog.Logger
	renameFn RenameFunc
	removeFn RemoveFunc

	records   []*record
	byCurrent map[string]*record // pending records keyed by original name

	// Observe, when set, receives every executed rename as (op, from, to)
	// with op one of "stage", "finalize", "rollback".
	Observe func(op, from, to string)
}

// New creates an executor for renames inside dir, validated against the
// given path validator.
func New(dir string, validator *safepath.Validator, logger *slog.Logger) *Executor {
	return NewWithFS(dir, logger, validator.SafeRename, validator.SafeRemove)
}

// NewWithFS allows injecting the rename and remove primitives (used in
// failure-injection tests).
func NewWithFS(dir string, logger *slog.Logger, rename RenameFunc, remove RemoveFunc) *Executor {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Executor{
		dir:       dir,
		logger:    logger.With(slog.String("component", "stager")),
		renameFn:  rename,
		removeFn:  remove,
		byCurrent: make(map[string]*record),
	}
}

// Add registers items under a sub-group. Items whose final name equals their
// original name are unaffected by the commit and are skipped.
func (e *Executor) Add(group Group, items []Item) {
	for _, item := range items {
		if item.Original == item.Final {
			continue
		}

		rec := &record{
			item:    item,
			group:   group,
			temp:    tempName(item.Original),
			current: item.Original,
		}
		e.records = append(e.records, rec)
		e.byCurrent[item.Original] = rec
	}
}

// StageGroup renames every pending file of the group to its temporary name.
// On the first failure it stops and returns ErrTempRename; the caller is
// expected to roll back the whole commit.
func (e *Executor) StageGroup(group Group) error {
	for _, rec := range e.records {
		if rec.group != group || rec.state != statePending {
			continue
		}

		if err := e.stage(rec); err != nil {
			return err
		}
	}

	return nil
}

// FinalizeGroup renames every staged file of the group from its temporary
// name to its final name. An occupied destination held by another pending
// file of this commit is staged out of the way first; one held by an outside
// file is removed, falling back to a disambiguated name when removal fails.
func (e *Executor) FinalizeGroup(group Group) error {
	for _, rec := range e.records {
		if rec.group != group || rec.state != stateStaged {
			continue
		}

		dest, err := e.clearDestination(rec)
		if err != nil {
			return err
		}

		if err := e.rename(rec.temp, dest); err != nil {
			return fmt.Errorf("%w: %s -> %s: %w", ErrFinalRename, rec.item.Original, dest, err)
		}

		e.observe("finalize", rec.temp, dest)
		rec.current = dest
		rec.state = stateFinalized
	}

	return nil
}

// Rollback renames every staged or finalized file back to its original name.
// It is best-effort: a failure on one entry does not stop attempts on the
// rest. The returned slice holds one error per file that could not be
// restored.
//
// Finalized files may sit on other entries' original names (counters shift
// during renumbering, and two files can even swap names), so the rollback
// runs in two passes: first every moved file returns to its unique temporary
// name, then every temporary goes back to its original. After the first pass
// all original names are free again.
func (e *Executor) Rollback() []error {
	var errs []error

	for i := len(e.records) - 1; i >= 0; i-- {
		rec := e.records[i]
		if rec.state != stateFinalized {
			continue
		}

		if err := e.rename(rec.current, rec.temp); err != nil {
			e.logger.Warn("rollback could not re-stage file",
				slog.String("current", rec.current),
				slog.Any("error", err))
			errs = append(errs, fmt.Errorf("restore %s: %w", rec.item.Original, err))
			continue
		}

		e.observe("rollback", rec.current, rec.temp)
		rec.current = rec.temp
		rec.state = stateStaged
	}

	for i := len(e.records) - 1; i >= 0; i-- {
		rec := e.records[i]
		if rec.state != stateStaged {
			continue
		}

		if err := e.rename(rec.temp, rec.item.Original); err != nil {
			e.logger.Warn("rollback failed for file",
				slog.String("temp", rec.temp),
				slog.String("original", rec.item.Original),
				slog.Any("error", err))
			errs = append(errs, fmt.Errorf("restore %s: %w", rec.item.Original, err))
			continue
		}

		e.observe("rollback", rec.temp, rec.item.Original)
		rec.current = rec.item.Original
		rec.state = statePending
		e.byCurrent[rec.item.Original] = rec
	}

	return errs
}

// FinalNames maps each affected original filename to the name it holds after
// finalization, including fallback destinations.
func (e *Executor) FinalNames() map[string]string {
	names := make(map[string]string, len(e.records))
	for _, rec := range e.records {
		if rec.state == stateFinalized {
			names[rec.item.Original] = rec.current
		}
	}

	return names
}

func (e *Executor) stage(rec *record) error {
	if err := e.rename(rec.current, rec.temp); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrTempRename, rec.item.Original, err)
	}

	e.observe("stage", rec.current, rec.temp)
	delete(e.byCurrent, rec.current)
	rec.current = rec.temp
	rec.state = stateStaged

	return nil
}

// clearDestination returns a destination name for rec that is free to take,
// vacating or removing the occupant of the preferred name when possible.
func (e *Executor) clearDestination(rec *record) (string, error) {
	dest := rec.item.Final

	occupant, occupied := e.byCurrent[dest]
	if occupied {
		// The destination is held by a later sub-group member of this
		// commit. Stage it now so the name is vacated without data loss.
		if err := e.stage(occupant); err != nil {
			return "", err
		}
		return dest, nil
	}

	if !e.exists(dest) {
		return dest, nil
	}

	if err := e.removeFn(filepath.Join(e.dir, dest)); err == nil {
		e.logger.Debug("removed stale destination", slog.String("name", dest))
		return dest, nil
	}

	// Removal failed: the occupant stays, and the file lands on a
	// disambiguated name instead.
	if rec.item.Fallback == nil {
		return "", fmt.Errorf("%w: destination occupied: %s", ErrFinalRename, dest)
	}

	for attempt := 1; attempt <= maxFallbackAttempts; attempt++ {
		candidate := rec.item.Fallback(attempt)
		if candidate == "" || e.exists(candidate) || e.planned(candidate) {
			continue
		}

		e.logger.Info("destination occupied, using fallback name",
			slog.String("wanted", dest),
			slog.String("fallback", candidate))
		return candidate, nil
	}

	return "", fmt.Errorf("%w: no free fallback name for %s", ErrFinalRename, dest)
}

func (e *Executor) rename(from, to string) error {
	return e.renameFn(filepath.Join(e.dir, from), filepath.Join(e.dir, to))
}

func (e *Executor) exists(name string) bool {
	_, err := os.Lstat(filepath.Join(e.dir, name))
	return err == nil
}

// planned reports whether name is the destination of any record, so a
// fallback never shadows a name another file is about to take.
func (e *Executor) planned(name string) bool {
	for _, rec := range e.records {
		if rec.item.Final == name {
			return true
		}
		if rec.state == stateFinalized && rec.current == name {
			return true
		}
	}

	return false
}

func (e *Executor) observe(op, from, to string) {
	if e.Observe != nil {
		e.Observe(op, from, to)
	}
}

func tempName(original string) string {
	return original + tempInfix + uuid.NewString()[:8]
}
