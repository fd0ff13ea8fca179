// Package preference owns the layered notification-preference record:
// defaults, the locally cached copy, and the remote copy. The store is the
// single writer; everything else reads snapshots.
package preference

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jwalitptl/notifier/internal/dnd"
	"github.com/jwalitptl/notifier/internal/model"
	"github.com/jwalitptl/notifier/pkg/errors"
	"github.com/jwalitptl/notifier/pkg/logger"
	"github.com/jwalitptl/notifier/pkg/metrics"
	"github.com/jwalitptl/notifier/pkg/storage"
)

var errClosed = fmt.Errorf("preference store is closed")

const (
	defaultCacheKey = "notification_preferences"
	defaultDebounce = time.Second
	pushTimeout     = 10 * time.Second
)

// Config tunes the store. Zero values get defaults.
type Config struct {
	CacheKey string
	Debounce time.Duration
}

// Store holds the current preference record. Local cache and remote record
// are replicas; the remote copy is last-writer-wins from this client's
// perspective.
type Store struct {
	cfg      Config
	cache    storage.Store
	client   Client
	logger   *logger.Logger
	metrics  *metrics.Metrics
	validate *validator.Validate

	mu          sync.Mutex
	prefs       *model.NotificationPreferences
	pending     *model.PreferencesPatch
	timer       *time.Timer
	fetched     bool
	closed      bool
	subscribers map[int]func(*model.NotificationPreferences)
	nextSub     int
}

func NewStore(cfg Config, cache storage.Store, client Client, log *logger.Logger, m *metrics.Metrics) *Store {
	if cfg.CacheKey == "" {
		cfg.CacheKey = defaultCacheKey
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = defaultDebounce
	}

	v := validator.New()
	// Schedule boundaries are HH:MM strings.
	v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		_, ok := dnd.ParseMinutes(fl.Field().String())
		return ok
	})

	return &Store{
		cfg:         cfg,
		cache:       cache,
		client:      client,
		logger:      log,
		metrics:     m,
		validate:    v,
		prefs:       model.DefaultNotificationPreferences(),
		subscribers: make(map[int]func(*model.NotificationPreferences)),
	}
}

// Load merges the locally cached record onto defaults, then kicks off a
// one-per-session remote fetch that merges remote-present fields over the
// in-memory record. The fetch is fire-and-forget; failures are logged and
// the local record stays authoritative. Load never blocks on the network.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	if raw, ok := s.cache.GetItem(s.cfg.CacheKey); ok {
		prefs := model.DefaultNotificationPreferences()
		if err := json.Unmarshal([]byte(raw), prefs); err != nil {
			s.logger.Error(err, "discarding corrupt preference cache")
		} else {
			s.prefs = prefs
		}
	}
	if s.fetched || s.closed {
		s.mu.Unlock()
		return
	}
	if s.client == nil || !s.client.HasCredential() {
		s.mu.Unlock()
		s.logger.Debug("no credential, skipping remote preference fetch")
		return
	}
	s.fetched = true
	s.mu.Unlock()

	go s.fetchRemote(ctx)
}

func (s *Store) fetchRemote(ctx context.Context) {
	patch, err := s.client.Fetch(ctx)
	if err != nil {
		if s.metrics != nil {
			s.metrics.PreferenceFetches.WithLabelValues("error").Inc()
		}
		s.logger.Error(err, "remote preference fetch failed, keeping local record")
		return
	}
	if s.metrics != nil {
		s.metrics.PreferenceFetches.WithLabelValues("success").Inc()
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	patch.ApplyTo(s.prefs)
	snapshot := s.prefs.Clone()
	subs := s.snapshotSubscribers()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}

// Get returns a snapshot of the current record.
func (s *Store) Get() *model.NotificationPreferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs.Clone()
}

// Update merges the patch onto the record, persists the entire merged record
// to the local cache synchronously, and schedules a remote sync of only the
// fields in this patch after the debounce delay. A second Update inside the
// window cancels the pending sync and replaces its payload wholesale: the
// last partial wins, earlier partials are never merged into the push.
func (s *Store) Update(patch *model.PreferencesPatch) error {
	if patch.IsEmpty() {
		return nil
	}
	if err := s.validatePatch(patch); err != nil {
		return errors.BadRequest("invalid preference update", err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errors.Internal(errClosed)
	}

	patch.ApplyTo(s.prefs)
	snapshot := s.prefs.Clone()

	raw, err := json.Marshal(snapshot)
	if err == nil {
		err = s.cache.SetItem(s.cfg.CacheKey, string(raw))
	}
	if err != nil {
		s.logger.Error(err, "failed to persist preference cache")
	}

	s.pending = patch
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.cfg.Debounce, s.flush)

	subs := s.snapshotSubscribers()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
	return nil
}

// Subscribe registers a change callback and returns its unregister function.
// Callbacks receive record snapshots and run outside the store lock.
func (s *Store) Subscribe(fn func(*model.NotificationPreferences)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// Close stops the debounce timer and drops subscribers. A pending remote
// sync that has not fired yet is abandoned.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.pending = nil
	s.subscribers = make(map[int]func(*model.NotificationPreferences))
}

func (s *Store) flush() {
	s.mu.Lock()
	patch := s.pending
	s.pending = nil
	closed := s.closed
	s.mu.Unlock()

	if closed || patch == nil {
		return
	}
	if s.client == nil || !s.client.HasCredential() {
		s.logger.Debug("no credential, skipping remote preference sync")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
	defer cancel()

	if err := s.client.Push(ctx, patch); err != nil {
		if s.metrics != nil {
			s.metrics.PreferenceSyncs.WithLabelValues("error").Inc()
		}
		// Best effort: logged, not retried, no user-visible error.
		s.logger.Error(err, "remote preference sync failed")
		return
	}
	if s.metrics != nil {
		s.metrics.PreferenceSyncs.WithLabelValues("success").Inc()
	}
}

func (s *Store) validatePatch(patch *model.PreferencesPatch) error {
	if patch.Sound != nil {
		if err := s.validate.Struct(patch.Sound); err != nil {
			return err
		}
	}
	if patch.Toast != nil {
		if err := s.validate.Struct(patch.Toast); err != nil {
			return err
		}
	}
	if patch.DND != nil {
		if err := s.validate.Struct(patch.DND); err != nil {
			return err
		}
	}
	return nil
}

// caller must hold s.mu
func (s *Store) snapshotSubscribers() []func(*model.NotificationPreferences) {
	subs := make([]func(*model.NotificationPreferences), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	return subs
}
