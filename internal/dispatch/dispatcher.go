// Package dispatch fans one inbound push event out to the delivery channels:
// sound, desktop notification, toast and tab badge. Channel checks are
// independent; one event can fire all four or none. Dispatch never blocks on
// the network.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/jwalitptl/notifier/internal/dnd"
	"github.com/jwalitptl/notifier/internal/list"
	"github.com/jwalitptl/notifier/internal/model"
	"github.com/jwalitptl/notifier/internal/preference"
	"github.com/jwalitptl/notifier/internal/toast"
	"github.com/jwalitptl/notifier/pkg/logger"
	"github.com/jwalitptl/notifier/pkg/metrics"
	"github.com/jwalitptl/notifier/pkg/surface"
	"github.com/jwalitptl/notifier/pkg/transport"
)

// EventType is the single transport subscription the engine consumes.
const EventType = "notifications"

const refreshTimeout = 15 * time.Second

// Config tunes the dispatcher. Zero values get defaults.
type Config struct {
	// RefreshRate caps broadcast-triggered list refreshes.
	RefreshRate  rate.Limit
	RefreshBurst int
}

// Dispatcher routes push payloads to channels per preferences and DND state.
type Dispatcher struct {
	prefs   *preference.Store
	toasts  *toast.Manager
	list    list.List
	audio   surface.AudioPlayer
	desktop surface.DesktopNotifier
	nav     surface.Navigator
	title   surface.TitleSurface
	logger  *logger.Logger
	metrics *metrics.Metrics
	limiter *rate.Limiter
	clock   func() time.Time

	unsubscribe func()
	unsubPrefs  func()
}

func NewDispatcher(
	cfg Config,
	prefs *preference.Store,
	toasts *toast.Manager,
	l list.List,
	audio surface.AudioPlayer,
	desktop surface.DesktopNotifier,
	nav surface.Navigator,
	title surface.TitleSurface,
	log *logger.Logger,
	m *metrics.Metrics,
) *Dispatcher {
	if cfg.RefreshRate <= 0 {
		cfg.RefreshRate = rate.Every(5 * time.Second)
	}
	if cfg.RefreshBurst <= 0 {
		cfg.RefreshBurst = 2
	}

	d := &Dispatcher{
		prefs:   prefs,
		toasts:  toasts,
		list:    l,
		audio:   audio,
		desktop: desktop,
		nav:     nav,
		title:   title,
		logger:  log,
		metrics: m,
		limiter: rate.NewLimiter(cfg.RefreshRate, cfg.RefreshBurst),
		clock:   time.Now,
	}

	// Turning desktop notifications on is the moment to ask the OS for
	// permission, if the user has never been asked.
	d.unsubPrefs = prefs.Subscribe(d.onPreferencesChanged)

	return d
}

// WithClock overrides the clock, for tests.
func (d *Dispatcher) WithClock(clock func() time.Time) *Dispatcher {
	d.clock = clock
	return d
}

// Start subscribes to the realtime transport. It returns after the
// subscription is established; payloads arrive on the transport's goroutine.
func (d *Dispatcher) Start(ctx context.Context, tr transport.Transport) error {
	unsub, err := tr.Subscribe(ctx, EventType, func(payload []byte) error {
		var p model.PushPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("malformed push payload: %w", err)
		}
		d.HandlePayload(ctx, &p)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", EventType, err)
	}
	d.unsubscribe = unsub
	return nil
}

// HandlePayload processes one transport payload: a broadcast triggers a
// rate-limited list refresh, a notification fans out to the channels.
func (d *Dispatcher) HandlePayload(ctx context.Context, payload *model.PushPayload) {
	if payload.Broadcast {
		d.handleBroadcast(ctx)
		return
	}
	if payload.Notification == nil {
		return
	}
	d.OnEvent(ctx, payload.Notification)
}

// OnEvent runs the four independent channel checks for one event.
func (d *Dispatcher) OnEvent(ctx context.Context, event *model.Event) {
	if d.metrics != nil {
		d.metrics.EventsReceived.Inc()
	}

	if err := d.list.AddNotification(ctx, event); err != nil {
		d.logger.Error(err, "failed to append notification to list",
			"notification_id", event.ID.String())
	}

	prefs := d.prefs.Get()
	now := d.clock()

	d.deliverSound(prefs, event, now)
	d.deliverDesktop(prefs, event, now)
	d.deliverToast(prefs, event, now)
	d.deliverBadge(prefs)
}

func (d *Dispatcher) deliverSound(prefs *model.NotificationPreferences, event *model.Event, now time.Time) {
	if !ShouldPlaySound(prefs, event, now) {
		d.suppressed("sound", prefs, event, now)
		return
	}
	d.audio.SetVolume(float64(prefs.Sound.Volume) / 100)
	d.audio.Restart()
	if err := d.audio.Play(); err != nil {
		// Autoplay policy and friends: swallowed.
		d.logger.Debug("audio cue failed", "error", err.Error())
	}
	d.delivered("sound")
}

func (d *Dispatcher) deliverDesktop(prefs *model.NotificationPreferences, event *model.Event, now time.Time) {
	if !ShouldNotifyDesktop(prefs, d.desktop.Permission(), now) {
		d.suppressed("desktop", prefs, event, now)
		return
	}

	actionURL := event.ActionURL
	n := surface.DesktopNotification{
		Title:              event.Title,
		Body:               event.Message,
		Tag:                "notification-" + event.ID.String(),
		RequireInteraction: event.Priority == model.PriorityUrgent,
		OnClick: func() {
			d.nav.Focus()
			if actionURL != "" {
				d.nav.Navigate(actionURL)
			}
		},
	}
	if err := d.desktop.Show(n); err != nil {
		d.logger.Debug("desktop notification failed", "error", err.Error())
		return
	}
	d.delivered("desktop")
}

func (d *Dispatcher) deliverToast(prefs *model.NotificationPreferences, event *model.Event, now time.Time) {
	if !ShouldToast(prefs, event, now) {
		d.suppressed("toast", prefs, event, now)
		return
	}
	d.toasts.Create(*event, time.Duration(prefs.Toast.DurationMS)*time.Millisecond)
	d.delivered("toast")
}

func (d *Dispatcher) deliverBadge(prefs *model.NotificationPreferences) {
	if !ShouldBadge(prefs) {
		return
	}
	surface.Badge(d.title, d.list.UnreadCount())
	d.delivered("badge")
}

func (d *Dispatcher) handleBroadcast(ctx context.Context) {
	if d.metrics != nil {
		d.metrics.BroadcastsReceived.Inc()
	}
	if !d.limiter.Allow() {
		if d.metrics != nil {
			d.metrics.RefreshThrottled.Inc()
		}
		d.logger.Debug("broadcast refresh throttled")
		return
	}

	go func() {
		rctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()
		if err := d.list.Refresh(rctx); err != nil {
			d.logger.Error(err, "list refresh failed")
			return
		}
		d.deliverBadge(d.prefs.Get())
	}()
}

func (d *Dispatcher) onPreferencesChanged(prefs *model.NotificationPreferences) {
	if !prefs.BrowserNotificationsEnabled {
		return
	}
	if d.desktop.Permission() != surface.PermissionDefault {
		return
	}
	d.desktop.RequestPermission(func(p surface.Permission) {
		d.logger.Info("notification permission resolved", "permission", string(p))
	})
}

// Close tears down the transport and preference subscriptions.
func (d *Dispatcher) Close() {
	if d.unsubscribe != nil {
		d.unsubscribe()
	}
	if d.unsubPrefs != nil {
		d.unsubPrefs()
	}
}

func (d *Dispatcher) delivered(channel string) {
	if d.metrics != nil {
		d.metrics.ChannelDeliveries.WithLabelValues(channel).Inc()
	}
}

func (d *Dispatcher) suppressed(channel string, prefs *model.NotificationPreferences, event *model.Event, now time.Time) {
	if d.metrics == nil {
		return
	}
	d.metrics.ChannelSuppressed.WithLabelValues(channel, suppressReason(channel, prefs, event, now)).Inc()
}

func suppressReason(channel string, prefs *model.NotificationPreferences, event *model.Event, now time.Time) string {
	switch {
	case channel == "sound" && !prefs.Sound.Enabled,
		channel == "toast" && !prefs.Toast.Enabled,
		channel == "desktop" && !prefs.BrowserNotificationsEnabled:
		return "disabled"
	case dndGates(channel) && dnd.IsActive(prefs, now):
		return "dnd"
	case channel == "toast" && prefs.IsMuted(event.Category):
		return "muted"
	case channel == "sound" && !prefs.SoundCoversPriority(event.Priority):
		return "priority"
	default:
		return "other"
	}
}

func dndGates(channel string) bool {
	return channel == "sound" || channel == "toast" || channel == "desktop"
}
