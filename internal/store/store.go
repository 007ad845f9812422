// Package store persists the scout documents through a pluggable backend.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spigell/job-scout/internal/jobs"
	"github.com/spigell/job-scout/internal/journal"
	"github.com/spigell/job-scout/internal/outreach"
	"github.com/spigell/job-scout/internal/stats"
)

// Document names.
const (
	JobsDocument     = "jobs.json"
	OutreachDocument = "outreach.json"
	StatsDocument    = "stats.json"
	JournalDocument  = "log.json"
	ExcludedDocument = "excluded.json"

	// TailoredPrefix holds the tailored resume artifacts.
	TailoredPrefix = "tailored/"
)

var (
	// ErrCorrupt is returned when a stored document cannot be parsed.
	ErrCorrupt = errors.New("corrupt document")
	// ErrLocked is returned when the store lock could not be taken in time.
	ErrLocked = errors.New("store is locked")
)

// Backend reads and writes whole documents by name.
type Backend interface {
	Read(ctx context.Context, name string) ([]byte, bool, error)
	// Write replaces the document atomically.
	Write(ctx context.Context, name string, data []byte) error
	// Lock takes the exclusive store lock, waiting until ctx is done.
	Lock(ctx context.Context) (func() error, error)
	// Count returns the number of .json artifacts under prefix.
	Count(ctx context.Context, prefix string) (int, error)
	Close() error
}

// Store gives typed access to the documents.
type Store struct {
	backend   Backend
	retention int
}

// New wraps backend. retention bounds the journal, zero means journal.DefaultRetention.
func New(backend Backend, retention int) *Store {
	if retention <= 0 {
		retention = journal.DefaultRetention
	}
	return &Store{backend: backend, retention: retention}
}

// Lock takes the exclusive store lock around a read-modify-write cycle.
func (s *Store) Lock(ctx context.Context) (func() error, error) {
	return s.backend.Lock(ctx)
}

func (s *Store) Close() error {
	return s.backend.Close()
}

func (s *Store) LoadJobs(ctx context.Context) (*jobs.Document, bool, error) {
	doc := &jobs.Document{}
	found, err := s.load(ctx, JobsDocument, doc)
	if err != nil || !found {
		return nil, found, err
	}
	return doc, true, nil
}

func (s *Store) SaveJobs(ctx context.Context, doc *jobs.Document) error {
	return s.save(ctx, JobsDocument, doc)
}

func (s *Store) LoadOutreach(ctx context.Context) (*outreach.Document, bool, error) {
	doc := &outreach.Document{}
	found, err := s.load(ctx, OutreachDocument, doc)
	if err != nil || !found {
		return nil, found, err
	}
	return doc, true, nil
}

func (s *Store) SaveOutreach(ctx context.Context, doc *outreach.Document) error {
	return s.save(ctx, OutreachDocument, doc)
}

func (s *Store) LoadStats(ctx context.Context) (*stats.Snapshot, bool, error) {
	doc := &stats.Snapshot{}
	found, err := s.load(ctx, StatsDocument, doc)
	if err != nil || !found {
		return nil, found, err
	}
	return doc, true, nil
}

func (s *Store) SaveStats(ctx context.Context, doc *stats.Snapshot) error {
	return s.save(ctx, StatsDocument, doc)
}

func (s *Store) LoadExcluded(ctx context.Context) (*jobs.ExcludedJobs, bool, error) {
	doc := &jobs.ExcludedJobs{}
	found, err := s.load(ctx, ExcludedDocument, doc)
	if err != nil || !found {
		return nil, found, err
	}
	return doc, true, nil
}

func (s *Store) SaveExcluded(ctx context.Context, doc *jobs.ExcludedJobs) error {
	return s.save(ctx, ExcludedDocument, doc)
}

func (s *Store) LoadJournal(ctx context.Context) (*journal.Document, bool, error) {
	doc := &journal.Document{}
	found, err := s.load(ctx, JournalDocument, doc)
	if err != nil || !found {
		return nil, found, err
	}
	return doc, true, nil
}

// AppendJournal adds entries to log.json. A corrupt journal is started over.
func (s *Store) AppendJournal(ctx context.Context, entries ...journal.Entry) error {
	doc, _, err := s.LoadJournal(ctx)
	if err != nil && !errors.Is(err, ErrCorrupt) {
		return err
	}
	if doc == nil {
		doc = &journal.Document{}
	}
	doc.Append(s.retention, entries...)
	return s.save(ctx, JournalDocument, doc)
}

// CountTailored returns the number of tailored resume artifacts.
func (s *Store) CountTailored(ctx context.Context) (int, error) {
	n, err := s.backend.Count(ctx, TailoredPrefix)
	if err != nil {
		return 0, fmt.Errorf("counting tailored artifacts: %w", err)
	}
	return n, nil
}

func (s *Store) load(ctx context.Context, name string, v any) (bool, error) {
	data, found, err := s.backend.Read(ctx, name)
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", name, err)
	}
	if !found {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return true, fmt.Errorf("decoding %s: %w: %w", name, ErrCorrupt, err)
	}
	return true, nil
}

func (s *Store) save(ctx context.Context, name string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	if err := s.backend.Write(ctx, name, buf.Bytes()); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}
