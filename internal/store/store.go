// Package store persists processing records as uniquely named JSON files.
// Records are serialized to a sibling temporary file first and then published
// atomically, so a reader never observes a partially written record and two
// concurrent writers can never both win the same name.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/daniel/docinsight/internal/types"
)

// timestampFormat names records to the second: 20240904_143052
const timestampFormat = "20060102_150405"

const (
	// maxWriteAttempts bounds I/O retries before surfacing WriteFailure
	maxWriteAttempts = 3
	// maxCollisionSuffix bounds the numeric disambiguation suffix
	maxCollisionSuffix = 9
)

// ErrorKind classifies persistence failures
type ErrorKind string

// Persistence failure kinds
const (
	// KindNameCollision means every candidate name was already taken
	KindNameCollision ErrorKind = "name_collision"
	// KindWriteFailure means I/O kept failing after bounded retries
	KindWriteFailure ErrorKind = "write_failure"
)

// PersistenceError represents a failure to durably store a record
type PersistenceError struct {
	Kind    ErrorKind
	Path    string
	Message string
	Cause   error
}

func (e *PersistenceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("persistence failed (%s) for %s: %s: %v", e.Kind, e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("persistence failed (%s) for %s: %s", e.Kind, e.Path, e.Message)
}

func (e *PersistenceError) Unwrap() error {
	return e.Cause
}

// Store writes processing records into a single output directory.
// The directory is append-only from the store's point of view: new unique
// files only, never mutated or deleted.
type Store struct {
	dir string
}

// New creates a Store over an existing output directory
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Persist serializes a record and writes it under
// <YYYYMMDD_HHMMSS>_<source-base-name>.json, disambiguating collisions with
// a numeric suffix. I/O failures are retried a bounded number of times with
// the same atomic discipline.
func (s *Store) Persist(rec *types.ProcessingRecord) (string, error) {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", &PersistenceError{
			Kind:    KindWriteFailure,
			Path:    s.dir,
			Message: "cannot serialize record",
			Cause:   err,
		}
	}

	base := rec.Timestamp.Format(timestampFormat) + "_" + rec.BaseName()

	var lastErr error
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		path, err := s.writeOnce(base, data)
		if err == nil {
			return path, nil
		}
		var pe *PersistenceError
		if errors.As(err, &pe) && pe.Kind == KindNameCollision {
			// Suffix space exhausted; more attempts cannot help.
			return "", err
		}
		lastErr = err
	}

	return "", &PersistenceError{
		Kind:    KindWriteFailure,
		Path:    filepath.Join(s.dir, base+".json"),
		Message: fmt.Sprintf("write kept failing after %d attempts", maxWriteAttempts),
		Cause:   lastErr,
	}
}

// writeOnce performs one full temp-write-then-atomic-publish cycle.
// Publishing uses a no-overwrite hard link so at most one writer wins a
// given name; an existing file means collision, never silent overwrite.
func (s *Store) writeOnce(base string, data []byte) (string, error) {
	tmp := filepath.Join(s.dir, ".tmp-"+uuid.NewString())
	if err := writeFileSync(tmp, data); err != nil {
		_ = os.Remove(tmp)
		return "", &PersistenceError{
			Kind:    KindWriteFailure,
			Path:    tmp,
			Message: "cannot write temporary file",
			Cause:   err,
		}
	}
	defer func() { _ = os.Remove(tmp) }()

	for i := 0; i <= maxCollisionSuffix; i++ {
		name := base
		if i > 0 {
			name = fmt.Sprintf("%s_%d", base, i)
		}
		final := filepath.Join(s.dir, name+".json")

		err := os.Link(tmp, final)
		if err == nil {
			return final, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", &PersistenceError{
				Kind:    KindWriteFailure,
				Path:    final,
				Message: "cannot publish record",
				Cause:   err,
			}
		}
	}

	return "", &PersistenceError{
		Kind:    KindNameCollision,
		Path:    filepath.Join(s.dir, base+".json"),
		Message: fmt.Sprintf("all %d disambiguation suffixes taken", maxCollisionSuffix),
	}
}

// writeFileSync writes data and fsyncs before closing, so the subsequent
// publish cannot expose a file whose contents are still in flight.
func writeFileSync(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
