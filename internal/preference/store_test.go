package preference

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/notifier/internal/model"
	"github.com/jwalitptl/notifier/pkg/logger"
	"github.com/jwalitptl/notifier/pkg/storage"
)

type fakeClient struct {
	mu         sync.Mutex
	credential bool
	fetchPatch *model.PreferencesPatch
	fetchErr   error
	pushErr    error
	fetches    int
	pushes     []*model.PreferencesPatch
}

func (c *fakeClient) HasCredential() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.credential
}

func (c *fakeClient) Fetch(_ context.Context) (*model.PreferencesPatch, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetches++
	if c.fetchErr != nil {
		return nil, c.fetchErr
	}
	return c.fetchPatch, nil
}

func (c *fakeClient) Push(_ context.Context, patch *model.PreferencesPatch) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pushErr != nil {
		return c.pushErr
	}
	c.pushes = append(c.pushes, patch)
	return nil
}

func (c *fakeClient) pushCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pushes)
}

func (c *fakeClient) fetchCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetches
}

func testLogger() *logger.Logger {
	return logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
}

func newTestStore(t *testing.T, client Client, debounce time.Duration) (*Store, storage.Store) {
	t.Helper()
	cache := storage.NewMemoryStore()
	s := NewStore(Config{Debounce: debounce}, cache, client, testLogger(), nil)
	t.Cleanup(s.Close)
	return s, cache
}

func TestGetReturnsDefaultsBeforeLoad(t *testing.T) {
	s, _ := newTestStore(t, &fakeClient{}, time.Second)
	assert.Equal(t, model.DefaultNotificationPreferences(), s.Get())
}

func TestLoadMergesLocalCacheOntoDefaults(t *testing.T) {
	cache := storage.NewMemoryStore()
	require.NoError(t, cache.SetItem("notification_preferences", `{"show_desktop_badge":false,"sound":{"enabled":false,"volume":25,"priorities":["urgent"]}}`))

	s := NewStore(Config{}, cache, &fakeClient{}, testLogger(), nil)
	t.Cleanup(s.Close)
	s.Load(context.Background())

	p := s.Get()
	assert.False(t, p.ShowDesktopBadge)
	assert.False(t, p.Sound.Enabled)
	assert.Equal(t, 25, p.Sound.Volume)
	// Fields absent from the cache keep defaults.
	assert.True(t, p.Toast.Enabled)
	assert.Equal(t, 5000, p.Toast.DurationMS)
}

func TestLoadDiscardsCorruptCache(t *testing.T) {
	cache := storage.NewMemoryStore()
	require.NoError(t, cache.SetItem("notification_preferences", "{not json"))

	s := NewStore(Config{}, cache, &fakeClient{}, testLogger(), nil)
	t.Cleanup(s.Close)
	s.Load(context.Background())

	assert.Equal(t, model.DefaultNotificationPreferences(), s.Get())
}

func TestLoadSkipsFetchWithoutCredential(t *testing.T) {
	client := &fakeClient{credential: false}
	s, _ := newTestStore(t, client, time.Second)

	s.Load(context.Background())
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, 0, client.fetchCount())
}

func TestLoadMergesRemoteFieldsOverLocal(t *testing.T) {
	enabled := true
	client := &fakeClient{
		credential: true,
		fetchPatch: &model.PreferencesPatch{BrowserNotificationsEnabled: &enabled},
	}
	s, _ := newTestStore(t, client, time.Second)

	changed := make(chan *model.NotificationPreferences, 1)
	s.Subscribe(func(p *model.NotificationPreferences) { changed <- p })

	s.Load(context.Background())

	select {
	case p := <-changed:
		assert.True(t, p.BrowserNotificationsEnabled)
		// Remote-absent fields stay local.
		assert.True(t, p.Sound.Enabled)
	case <-time.After(time.Second):
		t.Fatal("remote merge never arrived")
	}
}

func TestLoadFetchesOncePerSession(t *testing.T) {
	client := &fakeClient{credential: true, fetchPatch: &model.PreferencesPatch{}}
	s, _ := newTestStore(t, client, time.Second)

	s.Load(context.Background())
	s.Load(context.Background())
	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, 1, client.fetchCount())
}

func TestLoadSurvivesFetchFailure(t *testing.T) {
	client := &fakeClient{credential: true, fetchErr: assert.AnError}
	s, _ := newTestStore(t, client, time.Second)

	s.Load(context.Background())
	time.Sleep(100 * time.Millisecond)

	// Local record remains authoritative.
	assert.Equal(t, model.DefaultNotificationPreferences(), s.Get())
}

func TestUpdatePersistsWholeMergedRecordSynchronously(t *testing.T) {
	s, cache := newTestStore(t, &fakeClient{}, time.Hour)

	on := true
	require.NoError(t, s.Update(&model.PreferencesPatch{BrowserNotificationsEnabled: &on}))

	raw, ok := cache.GetItem("notification_preferences")
	require.True(t, ok)

	var persisted model.NotificationPreferences
	require.NoError(t, json.Unmarshal([]byte(raw), &persisted))
	assert.True(t, persisted.BrowserNotificationsEnabled)
	// The entire record is persisted, not just the patch.
	assert.Equal(t, 70, persisted.Sound.Volume)
}

func TestUpdateRejectsInvalidPatch(t *testing.T) {
	s, _ := newTestStore(t, &fakeClient{}, time.Hour)

	err := s.Update(&model.PreferencesPatch{
		Sound: &model.SoundPreferences{Enabled: true, Volume: 250},
	})
	require.Error(t, err)

	err = s.Update(&model.PreferencesPatch{
		DND: &model.DNDPreferences{Schedule: model.DNDSchedule{Start: "25:99", End: "08:00"}},
	})
	require.Error(t, err)

	// The record is untouched on rejection.
	assert.Equal(t, model.DefaultNotificationPreferences(), s.Get())
}

func TestDebouncedSyncSendsLastPartialOnly(t *testing.T) {
	client := &fakeClient{credential: true}
	s, _ := newTestStore(t, client, 50*time.Millisecond)

	sound := &model.SoundPreferences{Enabled: false, Volume: 30, Priorities: []model.Priority{model.PriorityUrgent}}
	require.NoError(t, s.Update(&model.PreferencesPatch{Sound: sound}))

	badge := false
	require.NoError(t, s.Update(&model.PreferencesPatch{ShowDesktopBadge: &badge}))

	time.Sleep(200 * time.Millisecond)

	// Exactly one push, carrying only the most recent partial: the sound
	// update is coalesced away, not merged in.
	require.Equal(t, 1, client.pushCount())
	pushed := client.pushes[0]
	assert.Nil(t, pushed.Sound)
	require.NotNil(t, pushed.ShowDesktopBadge)
	assert.False(t, *pushed.ShowDesktopBadge)
}

func TestDebounceRestartsOnEachUpdate(t *testing.T) {
	client := &fakeClient{credential: true}
	s, _ := newTestStore(t, client, 80*time.Millisecond)

	on := true
	require.NoError(t, s.Update(&model.PreferencesPatch{GroupSimilar: &on}))
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, 0, client.pushCount())

	require.NoError(t, s.Update(&model.PreferencesPatch{GroupSimilar: &on}))
	time.Sleep(40 * time.Millisecond)
	// Second update restarted the window; still nothing pushed.
	assert.Equal(t, 0, client.pushCount())

	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, 1, client.pushCount())
}

func TestSyncFailureIsSwallowed(t *testing.T) {
	client := &fakeClient{credential: true, pushErr: assert.AnError}
	s, _ := newTestStore(t, client, 30*time.Millisecond)

	on := true
	require.NoError(t, s.Update(&model.PreferencesPatch{GroupSimilar: &on}))
	time.Sleep(100 * time.Millisecond)

	// No retry, no error surfaced, local record keeps the change.
	assert.True(t, s.Get().GroupSimilar)
	assert.Equal(t, 0, client.pushCount())
}

func TestSubscribeAndUnsubscribe(t *testing.T) {
	s, _ := newTestStore(t, &fakeClient{}, time.Hour)

	var mu sync.Mutex
	calls := 0
	unsub := s.Subscribe(func(*model.NotificationPreferences) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	on := true
	require.NoError(t, s.Update(&model.PreferencesPatch{GroupSimilar: &on}))
	unsub()
	require.NoError(t, s.Update(&model.PreferencesPatch{GroupSimilar: &on}))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls)
}

func TestCloseCancelsPendingSync(t *testing.T) {
	client := &fakeClient{credential: true}
	s, _ := newTestStore(t, client, 30*time.Millisecond)

	on := true
	require.NoError(t, s.Update(&model.PreferencesPatch{GroupSimilar: &on}))
	s.Close()
	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, 0, client.pushCount())
}
