package pathstore

import (
	"errors"
	"strings"
)

// Options configures a Store. Filename and Entries are required; the zero
// value of everything else selects the defaults.
type Options struct {
	// Filename is the path of the backing JSON file. The file does not have
	// to exist yet; a missing file loads as an empty document.
	Filename string

	// Entries declares the shape of every addressable top-level path. The
	// table is fixed for the lifetime of the store; dispatch decisions key
	// off it, never off the stored content.
	Entries map[string]Shape

	// SaveOnPush flushes the document to disk after every mutation. When
	// false, mutations stay in memory until an explicit Save.
	SaveOnPush bool

	// HumanReadable pretty-prints the JSON file on save.
	HumanReadable bool

	// Separator is the path segment delimiter. Defaults to "/".
	Separator string

	// ErrorOnMissing makes Get fail with CodeNotFound when the addressed
	// data does not exist, instead of returning nil.
	ErrorOnMissing bool
}

// Store is a path-addressed JSON document store backed by a single file.
// It is not safe for concurrent use; see the package documentation.
type Store struct {
	filename       string
	entries        map[string]Shape
	sep            string
	saveOnPush     bool
	humanReadable  bool
	errorOnMissing bool

	doc    *document
	loaded bool
	dirty  bool
}

// New creates a Store for the given backing file and entry declarations.
// The file is not read until the first operation or an explicit Load.
func New(opts Options) (*Store, error) {
	if opts.Filename == "" {
		return nil, errors.New("filename is required")
	}
	sep := opts.Separator
	if sep == "" {
		sep = "/"
	}
	if strings.ContainsAny(sep, "[]") {
		return nil, storeErrorf(CodeInvalidKey, "separator %q must not contain bracket characters", sep)
	}
	entries := make(map[string]Shape, len(opts.Entries))
	for path, shape := range opts.Entries {
		if !shape.Valid() {
			return nil, storeErrorf(CodeUnknownPath, "entry %q has invalid shape %q", path, shape)
		}
		if strings.ContainsAny(path, "[]") {
			return nil, storeErrorf(CodeInvalidKey, "entry path %q must not contain bracket characters", path)
		}
		norm := normalizePath(path, sep)
		if norm == "" || norm == sep {
			return nil, storeErrorf(CodeUnknownPath, "entry path %q is empty", path)
		}
		entries[norm] = shape
	}
	return &Store{
		filename:       opts.Filename,
		entries:        entries,
		sep:            sep,
		saveOnPush:     opts.SaveOnPush,
		humanReadable:  opts.HumanReadable,
		errorOnMissing: opts.ErrorOnMissing,
	}, nil
}

// Filename returns the path of the backing file.
func (s *Store) Filename() string {
	return s.filename
}

// Loaded reports whether the document has been read into memory.
func (s *Store) Loaded() bool {
	return s.loaded
}

// Dirty reports whether in-memory mutations are pending a save.
func (s *Store) Dirty() bool {
	return s.dirty
}

// Get returns the data at path: the whole entry when the locator is omitted,
// or one element/value when an Index or Key is supplied. Missing data yields
// nil, or a CodeNotFound error when Options.ErrorOnMissing is set.
func (s *Store) Get(path string, loc ...Locator) (any, error) {
	cp, err := s.resolveOp(path, loc)
	if err != nil {
		return nil, err
	}
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	v, found, err := s.doc.get(cp, s.sep)
	if err != nil {
		return nil, err
	}
	if !found {
		if s.errorOnMissing {
			return nil, storeErrorf(CodeNotFound, "no data at %q", cp)
		}
		return nil, nil
	}
	return v, nil
}

// Set writes data at path with overwrite semantics, replacing the whole
// entry or, with a locator, one element/value.
func (s *Store) Set(path string, data any, loc ...Locator) error {
	cp, err := s.resolveOp(path, loc)
	if err != nil {
		return err
	}
	if err := s.ensureLoaded(); err != nil {
		return err
	}
	if err := s.doc.set(cp, s.sep, data); err != nil {
		return err
	}
	return s.mutated()
}

// Push appends to an Array entry when the locator is omitted, or writes at
// the given index. A Dictionary entry requires a Key locator. A Single entry
// behaves like Set.
func (s *Store) Push(path string, data any, loc ...Locator) error {
	shape, base, l, err := s.dispatch(path, loc)
	if err != nil {
		return err
	}
	if shape == ShapeDictionary && l == nil {
		return storeErrorf(CodeMissingKey, "push to dictionary %q requires a key locator", base)
	}
	cp, err := resolve(base, s.sep, shape, l, true)
	if err != nil {
		return err
	}
	if err := s.ensureLoaded(); err != nil {
		return err
	}
	if err := s.doc.set(cp, s.sep, data); err != nil {
		return err
	}
	return s.mutated()
}

// Merge shallow-combines data into the existing node at path. Merging where
// nothing exists yet fails with CodeMergeTargetMissing; an Array entry
// requires an Index locator.
func (s *Store) Merge(path string, data any, loc ...Locator) error {
	shape, base, l, err := s.dispatch(path, loc)
	if err != nil {
		return err
	}
	if shape == ShapeArray && l == nil {
		return storeErrorf(CodeMissingIndex, "merge into array %q requires an index locator", base)
	}
	cp, err := resolve(base, s.sep, shape, l, false)
	if err != nil {
		return err
	}
	if err := s.ensureLoaded(); err != nil {
		return err
	}
	if err := s.doc.merge(cp, s.sep, data); err != nil {
		return err
	}
	return s.mutated()
}

// Delete removes the data at path. Deleting missing data is a no-op.
func (s *Store) Delete(path string, loc ...Locator) error {
	cp, err := s.resolveOp(path, loc)
	if err != nil {
		return err
	}
	if err := s.ensureLoaded(); err != nil {
		return err
	}
	removed, err := s.doc.delete(cp, s.sep)
	if err != nil {
		return err
	}
	if !removed {
		return nil
	}
	return s.mutated()
}

// Exists reports whether data exists at path.
func (s *Store) Exists(path string, loc ...Locator) (bool, error) {
	cp, err := s.resolveOp(path, loc)
	if err != nil {
		return false, err
	}
	if err := s.ensureLoaded(); err != nil {
		return false, err
	}
	return s.doc.exists(cp, s.sep)
}

// PushIfNotExists writes initial at path only when nothing exists there yet.
// Used for idempotent first-time initialization.
func (s *Store) PushIfNotExists(path string, initial any) error {
	found, err := s.Exists(path)
	if err != nil {
		return err
	}
	if found {
		return nil
	}
	return s.Set(path, initial)
}

// dispatch looks up the entry declaration for path and validates the
// optional locator.
func (s *Store) dispatch(path string, loc []Locator) (Shape, string, *Locator, error) {
	base := normalizePath(path, s.sep)
	shape, ok := s.entries[base]
	if !ok {
		return "", "", nil, storeErrorf(CodeUnknownPath, "path %q has no declared entry", path)
	}
	switch len(loc) {
	case 0:
		return shape, base, nil, nil
	case 1:
		l := loc[0]
		return shape, base, &l, nil
	}
	return "", "", nil, storeErrorf(CodeInvalidLocator, "at most one locator may be supplied, got %d", len(loc))
}

// resolveOp is the common dispatch-then-resolve step for operations without
// push semantics: an omitted locator addresses the whole entry.
func (s *Store) resolveOp(path string, loc []Locator) (string, error) {
	shape, base, l, err := s.dispatch(path, loc)
	if err != nil {
		return "", err
	}
	return resolve(base, s.sep, shape, l, false)
}

// mutated marks pending changes and flushes eagerly when configured. A
// failed eager save keeps the mutation in memory and the dirty flag set, so
// a later Save can retry.
func (s *Store) mutated() error {
	s.dirty = true
	if s.saveOnPush {
		return s.Save(false)
	}
	return nil
}

// normalizePath strips trailing separators so declared entries and call-time
// paths compare on the same form.
func normalizePath(p, sep string) string {
	for len(p) > len(sep) && strings.HasSuffix(p, sep) {
		p = p[:len(p)-len(sep)]
	}
	return p
}
