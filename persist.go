package pathstore

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// Load reads the document into memory if it is not loaded yet. A missing
// backing file loads as an empty document.
func (s *Store) Load() error {
	return s.ensureLoaded()
}

// Reload discards the in-memory document, including any unsaved mutations,
// and reads it again from disk.
func (s *Store) Reload() error {
	return s.loadFromFile()
}

// Save writes the document to the backing file. Without force it is a no-op
// when no mutations are pending. The write goes to a temporary file that is
// renamed over the target, so a crash mid-write cannot corrupt the previous
// document. On failure the pending mutations stay in memory and remain
// eligible for a later Save.
func (s *Store) Save(force bool) error {
	if !s.loaded {
		if !force {
			return nil
		}
		if err := s.loadFromFile(); err != nil {
			return err
		}
	}
	if !s.dirty && !force {
		return nil
	}
	var data []byte
	var err error
	if s.humanReadable {
		data, err = json.MarshalIndent(s.doc.root, "", "  ")
		data = append(data, '\n')
	} else {
		data, err = json.Marshal(s.doc.root)
	}
	if err != nil {
		return ioFailure("failed to marshal document", err)
	}
	if err := writeFileAtomic(s.filename, data); err != nil {
		return err
	}
	s.dirty = false
	return nil
}

func (s *Store) ensureLoaded() error {
	if s.loaded {
		return nil
	}
	return s.loadFromFile()
}

// loadFromFile replaces the in-memory document wholesale with the file's
// content.
func (s *Store) loadFromFile() error {
	data, err := os.ReadFile(s.filename)
	if err != nil {
		if os.IsNotExist(err) {
			s.doc = newDocument()
			s.loaded = true
			s.dirty = false
			return nil
		}
		return ioFailure("failed to read document file", err)
	}
	root := map[string]any{}
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &root); err != nil {
			return ioFailure("failed to parse document file", err)
		}
	}
	s.doc = &document{root: root}
	s.loaded = true
	s.dirty = false
	return nil
}

// writeFileAtomic writes data to a temporary file in the target's directory
// and renames it over the target.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ioFailure("failed to create document directory", err)
	}
	f, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return ioFailure("failed to create temp file", err)
	}
	tmpPath := f.Name()
	if _, err := f.Write(data); err != nil {
		return ioFailure("failed to write document", errors.Join(err, f.Close(), os.Remove(tmpPath)))
	}
	if err := f.Close(); err != nil {
		return ioFailure("failed to close temp file", errors.Join(err, os.Remove(tmpPath)))
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return ioFailure("failed to replace document file", errors.Join(err, os.Remove(tmpPath)))
	}
	return nil
}
