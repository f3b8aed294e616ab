// Package commit sequences a folder commit: deleting rejected frames,
// assigning counters to kept frames, and applying the renames through the
// staged executor with full rollback on failure.
//
// The engine owns no decision storage. Decisions arrive as an ordered list
// and the engine reports back through the narrow Records interface, touched
// only after every rename has landed.
package commit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"framekeep/pkg/decision"
	"framekeep/pkg/episode"
	"framekeep/pkg/filelock"
	"framekeep/pkg/folder"
	"framekeep/pkg/journal"
	"framekeep/pkg/numbering"
	"framekeep/pkg/progress"
	"framekeep/pkg/safepath"
	"framekeep/pkg/stager"
)

// journalFileName is created inside the folder when journaling is enabled.
// Hidden, so listings never pick it up.
const journalFileName = ".framekeep.journal"

// maxUniqueAttempts bounds the post-plan search for a collision-free name.
const maxUniqueAttempts = 100

// Category classifies a commit failure.
type Category string

const (
	CategoryInvalidFolder    Category = "invalid_folder"
	CategoryNotFound         Category = "not_found"
	CategoryPermissionDenied Category = "permission_denied"
	CategoryFolderLocked     Category = "folder_locked"
	CategoryTempRenameFailed Category = "temp_rename_failed"
	CategoryRenameFailed     Category = "rename_failed"
	CategoryInternal         Category = "internal"
)

// Error is a commit failure with its category.
type Error struct {
	Category Category
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Category, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func failf(category Category, format string, args ...any) *Error {
	return &Error{Category: category, Err: fmt.Errorf(format, args...)}
}

// Outcome summarizes a commit attempt.
type Outcome struct {
	Ok           bool
	DeletedCount int
	KeptCount    int
	DeleteErrors []error
	RenameErrors []error
}

// Resume is the externally persisted progress anchor for a folder.
type Resume struct {
	AnchorName     string // anchor under its committed name
	AnchorOriginal string // anchor under its pre-commit name
	KeepCount      int
}

// Records is the external store of decisions and resume progress. The engine
// calls it only after a fully successful commit.
type Records interface {
	Resume(ctx context.Context, folderName string) (Resume, bool, error)
	SaveResume(ctx context.Context, folderName string, r Resume) error
	ClearDecisions(ctx context.Context, folderName string) error
}

// Config wires an Engine's collaborators.
type Config struct {
	Root    string // library root holding the frame folders
	Pattern string // naming template for kept frames
	Logger  *slog.Logger
	Records Records // optional
	Journal bool    // write a mutation journal inside the folder
	// OnProgress, when set, receives stage progress updates.
	OnProgress progress.Callback
}

// Engine applies keep/delete decisions to frame folders.
type Engine struct {
	cfg    Config
	logger *slog.Logger

	// Injectable rename/unlink primitives for failure-injection tests.
	// When nil, the folder's safepath validator is used.
	renameFn stager.RenameFunc
	removeFn stager.RemoveFunc
}

// New creates an Engine.
func New(cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Engine{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "commit")),
	}
}

// NewWithFS creates an Engine with injected rename and remove primitives.
func NewWithFS(cfg Config, rename stager.RenameFunc, remove stager.RemoveFunc) *Engine {
	e := New(cfg)
	e.renameFn = rename
	e.removeFn = remove

	return e
}

// PlannedRename is one kept frame and the name it will receive.
type PlannedRename struct {
	Name      string
	FinalName string
	Counter   int
	Section   string // human-readable bucket title
	Decided   bool   // explicit keep decision, as opposed to undecided default
}

// Plan is the dry-run view of a commit: what would be deleted and how kept
// frames would be renamed.
type Plan struct {
	Folder  string
	Title   string
	Year    int
	Deletes []string
	Renames []PlannedRename
}

// plan is the internal commit plan, grouped for the stager.
type plan struct {
	folderName   string
	dir          string
	title        string
	year         int
	deletes      []string
	keeps        []numbering.Assignment // decided keeps first, then undecided
	decidedKeeps int                    // length of the decided-keep prefix
	groupB       []int                  // keeps indexes: undecided, destination free
	groupC       []int                  // keeps indexes: undecided sitting on a group-A destination
}

// Preview computes the commit plan for a folder without mutating anything.
// It takes the folder lock briefly so it never observes a half-applied
// commit.
func (e *Engine) Preview(ctx context.Context, folderName string, decisions []decision.Record) (*Plan, error) {
	dir, cerr := e.resolve(folderName)
	if cerr != nil {
		return nil, cerr
	}

	lock, err := filelock.Acquire(dir)
	if err != nil {
		return nil, failf(CategoryFolderLocked, "preview %s: %w", folderName, err)
	}
	defer lock.Release()

	p, cerr := e.buildPlan(dir, folderName, decisions)
	if cerr != nil {
		return nil, cerr
	}

	view := &Plan{
		Folder:  folderName,
		Title:   p.title,
		Year:    p.year,
		Deletes: p.deletes,
		Renames: make([]PlannedRename, 0, len(p.keeps)),
	}

	// Presentation order: bucket order, then counter. The commit itself
	// keeps the assignment order; this only shapes the dry-run view.
	order := make([]int, len(p.keeps))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(x, y int) bool {
		a, b := p.keeps[order[x]], p.keeps[order[y]]
		if a.Key != b.Key {
			return a.Key.Less(b.Key)
		}
		return a.Counter < b.Counter
	})

	for _, i := range order {
		a := p.keeps[i]
		view.Renames = append(view.Renames, PlannedRename{
			Name:      a.Name,
			FinalName: a.FinalName,
			Counter:   a.Counter,
			Section:   episode.SectionTitle(a.Key.Season, a.Key.Episode),
			Decided:   i < p.decidedKeeps,
		})
	}

	return view, nil
}

// Commit applies the decisions to the folder as one all-or-nothing rename
// commit. Deletions happen first and are irreversible; any rename failure
// rolls every staged file back to its original name. On full success the
// Records collaborator is told to clear decisions and advance the resume
// anchor.
func (e *Engine) Commit(ctx context.Context, folderName string, decisions []decision.Record) (outcome Outcome, err error) {
	var exec *stager.Executor

	defer func() {
		r := recover()
		if r == nil {
			return
		}

		if exec != nil {
			for _, rbErr := range exec.Rollback() {
				outcome.RenameErrors = append(outcome.RenameErrors, rbErr)
			}
		}

		outcome.Ok = false
		err = failf(CategoryInternal, "commit %s: unexpected panic: %v", folderName, r)
		e.logger.Error("commit panicked", slog.String("folder", folderName), slog.Any("panic", r))
	}()

	dir, cerr := e.resolve(folderName)
	if cerr != nil {
		return outcome, cerr
	}

	lock, lockErr := filelock.Acquire(dir)
	if lockErr != nil {
		return outcome, failf(CategoryFolderLocked, "commit %s: %w", folderName, lockErr)
	}
	defer lock.Release()

	progress.Emit(e.cfg.OnProgress, "validating", 1, 1)

	p, cerr := e.buildPlan(dir, folderName, decisions)
	if cerr != nil {
		return outcome, cerr
	}

	validator, vErr := safepath.New(dir)
	if vErr != nil {
		return outcome, failf(CategoryNotFound, "commit %s: %w", folderName, vErr)
	}

	rename := e.renameFn
	remove := e.removeFn
	if rename == nil {
		rename = validator.SafeRename
	}
	if remove == nil {
		remove = validator.SafeRemove
	}

	jw := e.openJournal(dir)
	if jw != nil {
		defer jw.Close()
	}

	// Deleting. Per-file failures are collected and the file stays on disk,
	// outside the keep set. Deletion is irreversible, so one locked file
	// must not abort an otherwise good run.
	for i, name := range p.deletes {
		if rmErr := remove(filepath.Join(dir, name)); rmErr != nil {
			e.logger.Warn("delete failed, file retained",
				slog.String("folder", folderName),
				slog.String("file", name),
				slog.Any("error", rmErr))
			outcome.DeleteErrors = append(outcome.DeleteErrors, fmt.Errorf("delete %s: %w", name, rmErr))
		} else {
			outcome.DeletedCount++
			e.journalMutation(jw, folderName, "delete", name, "")
		}

		progress.Emit(e.cfg.OnProgress, "deleting", i+1, len(p.deletes))
	}

	exec = stager.NewWithFS(dir, e.logger, rename, remove)

	renameTotal := 0
	for _, a := range p.keeps {
		if a.Name != a.FinalName {
			renameTotal++
		}
	}
	renamesDone := 0
	exec.Observe = func(op, from, to string) {
		e.journalMutation(jw, folderName, op, from, to)
		if op == "stage" || op == "finalize" {
			renamesDone++
			progress.Emit(e.cfg.OnProgress, op, renamesDone, renameTotal*2)
		}
	}

	exec.Add(stager.GroupA, p.items(nil, p.decidedKeeps))
	exec.Add(stager.GroupB, p.items(p.groupB, 0))
	exec.Add(stager.GroupC, p.items(p.groupC, 0))

	steps := []func() error{
		func() error { return exec.StageGroup(stager.GroupA) },
		func() error { return exec.FinalizeGroup(stager.GroupA) },
		func() error { return exec.StageGroup(stager.GroupB) },
		func() error { return exec.FinalizeGroup(stager.GroupB) },
		func() error { return exec.StageGroup(stager.GroupC) },
		func() error { return exec.FinalizeGroup(stager.GroupC) },
	}
	for _, step := range steps {
		if stepErr := step(); stepErr != nil {
			outcome.RenameErrors = append(outcome.RenameErrors, stepErr)
			for _, rbErr := range exec.Rollback() {
				outcome.RenameErrors = append(outcome.RenameErrors, rbErr)
			}

			category := CategoryRenameFailed
			if errors.Is(stepErr, stager.ErrTempRename) {
				category = CategoryTempRenameFailed
			}

			e.logger.Error("commit rolled back",
				slog.String("folder", folderName),
				slog.String("category", string(category)),
				slog.Any("error", stepErr))

			return outcome, failf(category, "commit %s: %w", folderName, stepErr)
		}
	}

	outcome.KeptCount = len(p.keeps)

	progress.Emit(e.cfg.OnProgress, "committing", 1, 1)

	if cerr := e.commitRecords(ctx, p, exec.FinalNames()); cerr != nil {
		// The filesystem commit already landed; there is nothing to roll
		// back. The stale records surface as an error so the caller knows
		// the store needs attention.
		return outcome, cerr
	}

	outcome.Ok = true
	e.logger.Info("commit done",
		slog.String("folder", folderName),
		slog.Int("deleted", outcome.DeletedCount),
		slog.Int("kept", outcome.KeptCount))

	return outcome, nil
}

// resolve validates the folder name and locates it under the root.
func (e *Engine) resolve(folderName string) (string, *Error) {
	dir, err := folder.Resolve(e.cfg.Root, folderName)
	switch {
	case errors.Is(err, folder.ErrInvalidName):
		return "", failf(CategoryInvalidFolder, "%w", err)
	case errors.Is(err, folder.ErrNotFound):
		return "", failf(CategoryNotFound, "%w", err)
	case err != nil:
		return "", failf(CategoryInternal, "resolve %s: %w", folderName, err)
	}

	return dir, nil
}

// buildPlan lists the folder, splits files by decision, assigns counters,
// enforces final-name uniqueness, and classifies undecided files against the
// decided-keep destinations. Nothing is mutated.
func (e *Engine) buildPlan(dir, folderName string, decisions []decision.Record) (*plan, *Error) {
	images, err := folder.ListImages(dir)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return nil, failf(CategoryPermissionDenied, "list %s: %w", folderName, err)
		}
		return nil, failf(CategoryNotFound, "list %s: %w", folderName, err)
	}

	present := make(map[string]bool, len(images))
	for _, name := range images {
		present[name] = true
	}

	decided := make(map[string]decision.Decision)
	var keepOrder, deletes []string
	for _, rec := range decisions {
		if !present[rec.Filename] {
			continue // stale record for a file no longer on disk
		}
		if _, dup := decided[rec.Filename]; dup {
			continue
		}

		switch rec.Decision {
		case decision.Keep:
			decided[rec.Filename] = decision.Keep
			keepOrder = append(keepOrder, rec.Filename)
		case decision.Delete:
			decided[rec.Filename] = decision.Delete
			deletes = append(deletes, rec.Filename)
		}
	}

	// Undecided files default to keep, after the decided keeps in listing
	// order.
	names := make([]string, 0, len(images))
	names = append(names, keepOrder...)
	for _, name := range images {
		if _, ok := decided[name]; !ok {
			names = append(names, name)
		}
	}

	rawTitle, year := folder.ParseTitleYear(folderName)
	title := strings.TrimSpace(episode.StripMarkers(rawTitle))
	if title == "" {
		title = rawTitle
	}

	keeps, err := numbering.Assign(names, numbering.Options{
		Pattern: e.cfg.Pattern,
		Title:   title,
		Year:    year,
	})
	if err != nil {
		return nil, failf(CategoryInternal, "assign counters for %s: %w", folderName, err)
	}

	if uErr := ensureUniqueFinals(keeps); uErr != nil {
		return nil, failf(CategoryInternal, "plan for %s: %w", folderName, uErr)
	}

	p := &plan{
		folderName:   folderName,
		dir:          dir,
		title:        title,
		year:         year,
		deletes:      deletes,
		keeps:        keeps,
		decidedKeeps: len(keepOrder),
	}

	// Undecided files whose current name is a decided-keep destination must
	// wait until that destination has been vacated and taken; everything
	// else finalizes earlier.
	aDest := make(map[string]bool, p.decidedKeeps)
	for _, a := range keeps[:p.decidedKeeps] {
		aDest[a.FinalName] = true
	}
	for i := p.decidedKeeps; i < len(keeps); i++ {
		if aDest[keeps[i].Name] {
			p.groupC = append(p.groupC, i)
		} else {
			p.groupB = append(p.groupB, i)
		}
	}

	return p, nil
}

// items builds stager items either from an index list or, when indexes is
// nil, from the first prefixLen assignments.
func (p *plan) items(indexes []int, prefixLen int) []stager.Item {
	if indexes == nil {
		indexes = make([]int, prefixLen)
		for i := range indexes {
			indexes[i] = i
		}
	}

	items := make([]stager.Item, 0, len(indexes))
	for _, i := range indexes {
		a := p.keeps[i]
		items = append(items, stager.Item{
			Original: a.Name,
			Final:    a.FinalName,
			Fallback: a.FallbackName,
		})
	}

	return items
}

// ensureUniqueFinals reroutes any duplicated final name through the
// disambiguating fallback before a single rename runs. The three-group split
// catches decided-vs-undecided collisions; this pass catches the rest, such
// as a junk-suffixed file whose base collapses onto a sibling's name.
func ensureUniqueFinals(assignments []numbering.Assignment) error {
	seen := make(map[string]bool, len(assignments))

	for i := range assignments {
		a := &assignments[i]
		if !seen[a.FinalName] {
			seen[a.FinalName] = true
			continue
		}

		rerouted := false
		for attempt := 1; attempt <= maxUniqueAttempts; attempt++ {
			candidate := a.FallbackName(attempt)
			if seen[candidate] {
				continue
			}

			seen[candidate] = true
			a.FinalName = candidate
			rerouted = true
			break
		}
		if !rerouted {
			return fmt.Errorf("no unique name for %s", a.Name)
		}
	}

	return nil
}

// commitRecords clears decisions and advances the resume anchor after a
// fully successful filesystem commit.
func (e *Engine) commitRecords(ctx context.Context, p *plan, finalNames map[string]string) *Error {
	if e.cfg.Records == nil {
		return nil
	}

	if err := e.cfg.Records.ClearDecisions(ctx, p.folderName); err != nil {
		return failf(CategoryInternal, "clear decisions for %s: %w", p.folderName, err)
	}

	prev, _, err := e.cfg.Records.Resume(ctx, p.folderName)
	if err != nil {
		return failf(CategoryInternal, "load resume for %s: %w", p.folderName, err)
	}

	next := prev
	next.KeepCount = prev.KeepCount + p.decidedKeeps
	if next.KeepCount > len(p.keeps) {
		next.KeepCount = len(p.keeps)
	}

	if p.decidedKeeps > 0 {
		last := p.keeps[p.decidedKeeps-1]
		next.AnchorOriginal = last.Name
		next.AnchorName = last.FinalName
		if actual, ok := finalNames[last.Name]; ok {
			next.AnchorName = actual
		}
	}

	if err := e.cfg.Records.SaveResume(ctx, p.folderName, next); err != nil {
		return failf(CategoryInternal, "save resume for %s: %w", p.folderName, err)
	}

	return nil
}

func (e *Engine) openJournal(dir string) *journal.Writer {
	if !e.cfg.Journal {
		return nil
	}

	jw, err := journal.NewWriter(filepath.Join(dir, journalFileName))
	if err != nil {
		e.logger.Warn("journal unavailable", slog.Any("error", err))
		return nil
	}

	return jw
}

func (e *Engine) journalMutation(jw *journal.Writer, folderName, op, src, dst string) {
	if jw == nil {
		return
	}

	if err := jw.Log(journal.Entry{Op: op, Source: src, Dest: dst, Folder: folderName}); err != nil {
		e.logger.Warn("journal write failed", slog.Any("error", err))
	}
}
