package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/job-scout/internal/jobs"
	"github.com/spigell/job-scout/internal/journal"
	"github.com/spigell/job-scout/internal/outreach"
	"github.com/spigell/job-scout/internal/stats"
)

type backendCase struct {
	name string
	new  func(t *testing.T) Backend
}

func fileBackend(t *testing.T) Backend {
	t.Helper()
	b, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })
	return b
}

func redisBackend(t *testing.T) Backend {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	b := NewRedisBackendWithClient(client, "", time.Second)
	t.Cleanup(func() { b.Close() })
	return b
}

var backends = []backendCase{
	{name: "file", new: fileBackend},
	{name: "redis", new: redisBackend},
}

func TestBackendReadWrite(t *testing.T) {
	for _, tc := range backends {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			b := tc.new(t)

			_, found, err := b.Read(ctx, "missing.json")
			require.NoError(t, err)
			assert.False(t, found)

			require.NoError(t, b.Write(ctx, "doc.json", []byte(`{"a":1}`)))
			require.NoError(t, b.Write(ctx, "doc.json", []byte(`{"a":2}`)))

			data, found, err := b.Read(ctx, "doc.json")
			require.NoError(t, err)
			assert.True(t, found)
			assert.JSONEq(t, `{"a":2}`, string(data))
		})
	}
}

func TestBackendLockExclusive(t *testing.T) {
	for _, tc := range backends {
		t.Run(tc.name, func(t *testing.T) {
			b := tc.new(t)

			unlock, err := b.Lock(context.Background())
			require.NoError(t, err)

			ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
			defer cancel()
			_, err = secondHolder(t, b).Lock(ctx)
			require.ErrorIs(t, err, ErrLocked)

			require.NoError(t, unlock())

			unlock, err = secondHolder(t, b).Lock(context.Background())
			require.NoError(t, err)
			require.NoError(t, unlock())
		})
	}
}

func TestFileLockExclusiveWithinStore(t *testing.T) {
	b, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)
	st := New(b, 0)
	t.Cleanup(func() { st.Close() })

	unlock, err := st.Lock(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	_, err = st.Lock(ctx)
	require.ErrorIs(t, err, ErrLocked)

	require.NoError(t, unlock())

	unlock, err = st.Lock(context.Background())
	require.NoError(t, err)
	require.NoError(t, unlock())
}

// secondHolder returns a backend sharing storage with b but holding its own lock handle.
func secondHolder(t *testing.T, b Backend) Backend {
	t.Helper()
	switch v := b.(type) {
	case *FileBackend:
		other, err := NewFileBackend(v.dir)
		require.NoError(t, err)
		t.Cleanup(func() { other.Close() })
		return other
	default:
		return b
	}
}

func TestRedisUnlockKeepsForeignLock(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	b := NewRedisBackendWithClient(client, "test:", time.Minute)
	ctx := context.Background()

	unlock, err := b.Lock(ctx)
	require.NoError(t, err)

	// Someone else took over after our lease ran out.
	srv.Set("test:lock", "other-token")

	require.NoError(t, unlock())
	got, err := srv.Get("test:lock")
	require.NoError(t, err)
	assert.Equal(t, "other-token", got)
}

func TestRedisLockExpires(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	b := NewRedisBackendWithClient(client, "test:", time.Second)
	ctx := context.Background()

	// A holder that crashed leaves its key behind without renewing it.
	require.NoError(t, srv.Set("test:lock", "crashed-token"))
	srv.SetTTL("test:lock", time.Second)
	srv.FastForward(2 * time.Second)

	unlock, err := b.Lock(ctx)
	require.NoError(t, err)
	require.NoError(t, unlock())
}

func TestRedisLockRenewedWhileHeld(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	b := NewRedisBackendWithClient(client, "test:", 300*time.Millisecond)
	ctx := context.Background()

	unlock, err := b.Lock(ctx)
	require.NoError(t, err)

	srv.FastForward(250 * time.Millisecond)
	require.Eventually(t, func() bool {
		return srv.TTL("test:lock") > 100*time.Millisecond
	}, time.Second, 10*time.Millisecond)
	assert.True(t, srv.Exists("test:lock"))

	require.NoError(t, unlock())
	assert.False(t, srv.Exists("test:lock"))
}

func TestCountTailored(t *testing.T) {
	ctx := context.Background()

	dir := t.TempDir()
	fb, err := NewFileBackend(dir)
	require.NoError(t, err)
	for _, name := range []string{"a.json", "b.json", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "tailored", name), []byte("{}"), 0o644))
	}
	n, err := New(fb, 0).CountTailored(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rb := redisBackend(t)
	for _, name := range []string{"tailored/a.json", "tailored/b.json", "tailored/c.json", "jobs.json"} {
		require.NoError(t, rb.Write(ctx, name, []byte("{}")))
	}
	n, err = New(rb, 0).CountTailored(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestJobsRoundTripKeepsUnknownFields(t *testing.T) {
	for _, tc := range backends {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			b := tc.new(t)
			s := New(b, 0)

			doc, found, err := s.LoadJobs(ctx)
			require.NoError(t, err)
			assert.False(t, found)
			assert.Nil(t, doc)

			raw := `{"last_updated":"2026-10-16T00:00:00Z","total_jobs":1,"new_today":1,"jobs":[
				{"_id":"abc","title":"Head of Growth","company":"Swiggy","_relevance_score":80,"_status":"applied","_interview_notes":{"round":2}}
			]}`
			require.NoError(t, b.Write(ctx, JobsDocument, []byte(raw)))

			doc, found, err = s.LoadJobs(ctx)
			require.NoError(t, err)
			require.True(t, found)
			require.Len(t, doc.Jobs, 1)
			assert.Equal(t, jobs.StatusApplied, doc.Jobs[0].Status)

			require.NoError(t, s.SaveJobs(ctx, doc))

			data, _, err := b.Read(ctx, JobsDocument)
			require.NoError(t, err)
			var saved struct {
				Jobs []map[string]json.RawMessage `json:"jobs"`
			}
			require.NoError(t, json.Unmarshal(data, &saved))
			require.Len(t, saved.Jobs, 1)
			assert.JSONEq(t, `{"round":2}`, string(saved.Jobs[0]["_interview_notes"]))
		})
	}
}

func TestLoadCorrupt(t *testing.T) {
	ctx := context.Background()
	b := fileBackend(t)
	s := New(b, 0)

	require.NoError(t, b.Write(ctx, JobsDocument, []byte(`{"jobs": [`)))
	_, found, err := s.LoadJobs(ctx)
	assert.True(t, found)
	require.ErrorIs(t, err, ErrCorrupt)

	require.NoError(t, b.Write(ctx, OutreachDocument, []byte(`not json`)))
	_, _, err = s.LoadOutreach(ctx)
	require.ErrorIs(t, err, ErrCorrupt)
}

func TestTypedDocuments(t *testing.T) {
	ctx := context.Background()
	s := New(fileBackend(t), 0)

	drafts := &outreach.Document{Drafts: []*outreach.Draft{{JobID: "a", Messages: []*outreach.Message{{Type: "email", Status: outreach.StatusPendingApproval}}}}}
	drafts.Touch(time.Now())
	require.NoError(t, s.SaveOutreach(ctx, drafts))
	gotDrafts, found, err := s.LoadOutreach(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 1, gotDrafts.TotalDrafts)
	assert.Len(t, gotDrafts.Pending(), 1)

	snap := stats.Aggregate(stats.Input{Now: time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, s.SaveStats(ctx, snap))
	gotSnap, found, err := s.LoadStats(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, snap.LastUpdated, gotSnap.LastUpdated)
	assert.Len(t, gotSnap.DailyActivity, 14)

	excluded := jobs.ToExcluded(time.Now(), &jobs.JobRecord{ID: "x", Company: "Acme"})
	require.NoError(t, s.SaveExcluded(ctx, excluded))
	gotExcluded, found, err := s.LoadExcluded(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Contains(t, gotExcluded.IDs(), "x")
}

func TestAppendJournal(t *testing.T) {
	ctx := context.Background()
	b := fileBackend(t)
	s := New(b, 3)

	for i := 0; i < 5; i++ {
		require.NoError(t, s.AppendJournal(ctx, journal.Entry{Level: "info", Message: fmt.Sprint(i)}))
	}

	doc, found, err := s.LoadJournal(ctx)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, doc.Entries, 3)
	assert.Equal(t, "2", doc.Entries[0].Message)

	// A broken journal is replaced instead of blocking logging.
	require.NoError(t, b.Write(ctx, JournalDocument, []byte("{")))
	require.NoError(t, s.AppendJournal(ctx, journal.Entry{Level: "warn", Message: "fresh"}))
	doc, _, err = s.LoadJournal(ctx)
	require.NoError(t, err)
	require.Len(t, doc.Entries, 1)
}

func TestFileWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	b, err := NewFileBackend(dir)
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, New(b, 0).SaveJobs(context.Background(), jobs.NewDocument(jobs.Collection{}, 0, time.Now())))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"jobs.json", "tailored"}, names)
}
