package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/kaizen/internal/document"
	ferrors "git.home.luguber.info/inful/kaizen/internal/foundation/errors"
	"git.home.luguber.info/inful/kaizen/internal/ids"
	"git.home.luguber.info/inful/kaizen/internal/localstore"
)

var fixedNow = time.Date(2025, 4, 2, 8, 0, 0, 0, time.UTC)

func newStore(t *testing.T, kv localstore.KV) *Store {
	t.Helper()
	return New(kv, WithClock(func() time.Time { return fixedNow }), WithIDSource(ids.Fixed("s")))
}

func loaded(t *testing.T, kv localstore.KV) *Store {
	t.Helper()
	s := newStore(t, kv)
	_, err := s.Load(t.Context())
	require.NoError(t, err)
	return s
}

func stored(t *testing.T, kv localstore.KV) *document.Document {
	t.Helper()
	raw, ok, err := kv.Get(t.Context(), localstore.KeyState)
	require.NoError(t, err)
	require.True(t, ok)
	d, err := document.Unmarshal([]byte(raw))
	require.NoError(t, err)
	return d
}

func TestLoadGeneratesDefaultsWithoutSaving(t *testing.T) {
	kv := localstore.NewMemory()
	s := newStore(t, kv)

	doc, err := s.Load(t.Context())
	require.NoError(t, err)
	require.Len(t, doc.Roadmap, 60)
	require.Equal(t, fixedNow, doc.Meta.CreatedAt)

	_, ok, err := kv.Get(t.Context(), localstore.KeyState)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestLoadRegeneratesCorruptState(t *testing.T) {
	for name, raw := range map[string]string{
		"garbage": "{{{",
		"array":   `[1,2]`,
	} {
		t.Run(name, func(t *testing.T) {
			kv := localstore.NewMemory()
			require.NoError(t, kv.Set(t.Context(), localstore.KeyState, raw))

			doc, err := newStore(t, kv).Load(t.Context())
			require.NoError(t, err)
			require.Equal(t, document.DefaultProjectName, doc.Meta.ProjectName)
			require.Len(t, doc.Roadmap, 60)
		})
	}
}

func TestLoadKeepsNewerSchemaUntouched(t *testing.T) {
	kv := localstore.NewMemory()
	raw := `{"schemaVersion": "9.0.0", "meta": {"projectName": "Future"}}`
	require.NoError(t, kv.Set(t.Context(), localstore.KeyState, raw))
	s := newStore(t, kv)

	_, err := s.Load(t.Context())
	require.ErrorIs(t, err, document.ErrNewerSchema)
	require.True(t, ferrors.HasCategory(err, ferrors.CategorySchema))
	classified, ok := ferrors.AsClassified(err)
	require.True(t, ok)
	require.NotEmpty(t, classified.Hint())

	require.ErrorIs(t, s.Save(t.Context()), ErrNotLoaded)
	require.ErrorIs(t, s.StartAutosave(t.Context()), ErrNotLoaded)
	got, _, err := kv.Get(t.Context(), localstore.KeyState)
	require.NoError(t, err)
	require.Equal(t, raw, got)
}

func TestLoadKeepsLegacyStateWithFractionalWorkers(t *testing.T) {
	kv := localstore.NewMemory()
	require.NoError(t, kv.Set(t.Context(), localstore.KeyState, `{
	  "meta": {"projectName": "My Rollout", "createdAt": "2024-05-01T10:00:00.000Z", "lastSaved": null},
	  "tools": [{"id": "crm-1", "name": "CRM", "daily": 4, "purchase": 0, "enabled": true}],
	  "costs": {"numWorkers": 2.5, "perWorker": 80, "miscDaily": 10},
	  "roadmap": [],
	  "diary": [{"id": "n-1", "title": "Kickoff", "content": "Kickoff call", "pinned": false, "createdAt": "2024-05-01T11:00:00.000Z", "archived": false}],
	  "settings": {"autoSaveInterval": 10000}
	}`))
	s := newStore(t, kv)

	doc, err := s.Load(t.Context())
	require.NoError(t, err)
	require.Equal(t, "My Rollout", doc.Meta.ProjectName)
	require.Len(t, doc.Tools, 1)
	require.Equal(t, "CRM", doc.Tools[0].Name)
	require.Len(t, doc.Diary, 1)
	require.Equal(t, "Kickoff call", doc.Diary[0].Content)
	require.Equal(t, 3, doc.Costs.WorkerCount)
	require.Len(t, doc.Roadmap, 60)

	require.NoError(t, s.Save(t.Context()))
	require.Equal(t, "My Rollout", stored(t, kv).Meta.ProjectName)
}

func TestLoadReturnsStorageErrors(t *testing.T) {
	kv := localstore.NewMemory()
	require.NoError(t, kv.Close())

	_, err := newStore(t, kv).Load(t.Context())
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryStorage))
}

func TestSaveRoundTrip(t *testing.T) {
	kv := localstore.NewMemory()
	s := loaded(t, kv)
	require.NoError(t, s.Save(t.Context()))

	d := stored(t, kv)
	require.NotNil(t, d.Meta.LastSaved)
	require.Equal(t, fixedNow, *d.Meta.LastSaved)

	again, err := newStore(t, kv).Load(t.Context())
	require.NoError(t, err)
	same, err := document.EqualContent(s.Snapshot(), again)
	require.NoError(t, err)
	require.True(t, same)
}

func TestMutatePersistsOnSuccessOnly(t *testing.T) {
	kv := localstore.NewMemory()
	s := loaded(t, kv)
	ctx := t.Context()

	require.NoError(t, s.Mutate(ctx, func(d *document.Document) error {
		return d.SetProjectName("Persisted")
	}))
	require.Equal(t, "Persisted", stored(t, kv).Meta.ProjectName)

	boom := errors.New("boom")
	err := s.Mutate(ctx, func(d *document.Document) error {
		d.Meta.ProjectName = "Memory only"
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.Equal(t, "Memory only", s.Snapshot().Meta.ProjectName)
	require.Equal(t, "Persisted", stored(t, kv).Meta.ProjectName)
}

func TestOperationsBeforeLoad(t *testing.T) {
	s := newStore(t, localstore.NewMemory())
	require.ErrorIs(t, s.Save(t.Context()), ErrNotLoaded)
	require.ErrorIs(t, s.Mutate(t.Context(), func(*document.Document) error { return nil }), ErrNotLoaded)
	require.Nil(t, s.Snapshot())
	_, err := s.Export()
	require.ErrorIs(t, err, ErrNotLoaded)
	require.ErrorIs(t, s.StartAutosave(t.Context()), ErrNotLoaded)
}

func TestImport(t *testing.T) {
	kv := localstore.NewMemory()
	s := loaded(t, kv)
	ctx := t.Context()

	other, err := document.New(fixedNow, ids.Fixed("o"))
	require.NoError(t, err)
	require.NoError(t, other.SetProjectName("Imported"))
	data, err := document.Marshal(other)
	require.NoError(t, err)

	_, err = s.Import(ctx, data)
	require.NoError(t, err)
	require.Equal(t, "Imported", s.Snapshot().Meta.ProjectName)
	require.Equal(t, "Imported", stored(t, kv).Meta.ProjectName)

	_, err = s.Import(ctx, []byte(`{"meta": 5}`))
	require.True(t, ferrors.HasCategory(err, ferrors.CategorySchema))
	require.Equal(t, "Imported", s.Snapshot().Meta.ProjectName)
}

func TestExportIsPrettyJSON(t *testing.T) {
	s := loaded(t, localstore.NewMemory())
	data, err := s.Export()
	require.NoError(t, err)
	require.True(t, json.Valid(data))
	require.Contains(t, string(data), "\n  \"meta\": {")
}

func TestRemoteConfig(t *testing.T) {
	s := loaded(t, localstore.NewMemory())
	ctx := t.Context()

	rc, err := s.RemoteConfig(ctx)
	require.NoError(t, err)
	require.False(t, rc.Configured())

	require.NoError(t, s.SetRemoteURL(ctx, " https://example.test/ "))
	require.NoError(t, s.SetAPIKey(ctx, "k"))
	rc, err = s.RemoteConfig(ctx)
	require.NoError(t, err)
	require.Equal(t, RemoteConfig{URL: "https://example.test/", APIKey: "k"}, rc)
	require.True(t, rc.Configured())
}

// countingKV counts state writes.
type countingKV struct {
	*localstore.Memory
	writes atomic.Int32
}

func (c *countingKV) Set(ctx context.Context, key, value string) error {
	if key == localstore.KeyState {
		c.writes.Add(1)
	}
	return c.Memory.Set(ctx, key, value)
}

func TestAutosave(t *testing.T) {
	kv := &countingKV{Memory: localstore.NewMemory()}
	s := loaded(t, kv)
	ctx := t.Context()

	require.NoError(t, s.Mutate(ctx, func(d *document.Document) error {
		return d.SetAutoSaveInterval(20)
	}))
	base := kv.writes.Load()

	require.NoError(t, s.StartAutosave(ctx))
	require.NoError(t, s.StartAutosave(ctx))
	require.Equal(t, 20*time.Millisecond, s.AutosaveInterval())
	require.Eventually(t, func() bool { return kv.writes.Load() >= base+2 }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, s.Mutate(ctx, func(d *document.Document) error {
		return d.SetAutoSaveInterval(30)
	}))
	require.Equal(t, 30*time.Millisecond, s.AutosaveInterval())

	require.NoError(t, s.StopAutosave())
	require.Zero(t, s.AutosaveInterval())
	stopped := kv.writes.Load()
	time.Sleep(100 * time.Millisecond)
	require.Equal(t, stopped, kv.writes.Load())
}

func TestConcurrentMutations(t *testing.T) {
	s := loaded(t, localstore.NewMemory())
	ctx := t.Context()
	doc := s.Snapshot()

	var wg sync.WaitGroup
	for _, plan := range doc.Roadmap[:10] {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			assertNoErr(t, s.Mutate(ctx, func(d *document.Document) error {
				_, err := d.ToggleTask(id, fixedNow)
				return err
			}))
		}(plan.Tasks[0].ID)
	}
	wg.Wait()
	require.Equal(t, 10, s.Snapshot().Progress().Done)
}

func assertNoErr(t *testing.T, err error) {
	if err != nil {
		t.Error(err)
	}
}
