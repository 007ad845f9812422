// Package journal keeps the operational log that the dashboard reads from log.json.
package journal

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/spigell/job-scout/internal/jobs"
)

// DefaultRetention is the number of entries kept in log.json.
const DefaultRetention = 500

const syncTimeout = 5 * time.Second

// Entry is one line of the journal.
type Entry struct {
	Timestamp string         `json:"timestamp"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// Document is the on-disk shape of log.json.
type Document struct {
	Entries []Entry `json:"entries"`
}

// Append adds entries and keeps only the newest retention of them.
func (d *Document) Append(retention int, entries ...Entry) {
	if retention <= 0 {
		retention = DefaultRetention
	}
	d.Entries = append(d.Entries, entries...)
	if extra := len(d.Entries) - retention; extra > 0 {
		d.Entries = append([]Entry(nil), d.Entries[extra:]...)
	}
}

// Sink persists journal entries.
type Sink interface {
	AppendJournal(ctx context.Context, entries ...Entry) error
}

type buffer struct {
	mu      sync.Mutex
	entries []Entry
}

func (b *buffer) add(e Entry) {
	b.mu.Lock()
	b.entries = append(b.entries, e)
	b.mu.Unlock()
}

func (b *buffer) drain() []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.entries
	b.entries = nil
	return out
}

// Core is a zapcore.Core collecting entries in memory and handing them to
// the sink on Sync.
type Core struct {
	zapcore.LevelEnabler

	sink   Sink
	fields []zapcore.Field
	buf    *buffer
}

// NewCore returns a core recording entries at level and above.
func NewCore(sink Sink, level zapcore.LevelEnabler) *Core {
	return &Core{LevelEnabler: level, sink: sink, buf: &buffer{}}
}

func (c *Core) With(fields []zapcore.Field) zapcore.Core {
	clone := *c
	clone.fields = append(append([]zapcore.Field(nil), c.fields...), fields...)
	return &clone
}

func (c *Core) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *Core) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range c.fields {
		f.AddTo(enc)
	}
	for _, f := range fields {
		f.AddTo(enc)
	}

	e := Entry{
		Timestamp: ent.Time.UTC().Format(jobs.TimestampLayout),
		Level:     ent.Level.String(),
		Message:   ent.Message,
	}
	if len(enc.Fields) > 0 {
		e.Fields = enc.Fields
	}
	c.buf.add(e)

	if ent.Level > zapcore.ErrorLevel {
		return c.Sync()
	}
	return nil
}

// Sync flushes buffered entries to the sink.
func (c *Core) Sync() error {
	entries := c.buf.drain()
	if len(entries) == 0 || c.sink == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
	defer cancel()
	return c.sink.AppendJournal(ctx, entries...)
}
