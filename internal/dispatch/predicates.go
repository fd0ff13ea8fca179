package dispatch

import (
	"time"

	"github.com/jwalitptl/notifier/internal/dnd"
	"github.com/jwalitptl/notifier/internal/model"
	"github.com/jwalitptl/notifier/pkg/surface"
)

// Channel gating, one predicate per channel so each condition tests alone.

// ShouldPlaySound gates the audio cue: sound on, not in DND, and the event
// priority is one the user chose to hear.
func ShouldPlaySound(prefs *model.NotificationPreferences, event *model.Event, now time.Time) bool {
	return prefs.Sound.Enabled &&
		!dnd.IsActive(prefs, now) &&
		prefs.SoundCoversPriority(event.Priority)
}

// ShouldNotifyDesktop gates the native notification: enabled, not in DND, and
// OS permission granted. Muted categories are NOT consulted here; mute only
// silences the toast. That asymmetry is intentional.
func ShouldNotifyDesktop(prefs *model.NotificationPreferences, permission surface.Permission, now time.Time) bool {
	return prefs.BrowserNotificationsEnabled &&
		!dnd.IsActive(prefs, now) &&
		permission == surface.PermissionGranted
}

// ShouldToast gates the in-app toast: enabled, not in DND, category not muted.
func ShouldToast(prefs *model.NotificationPreferences, event *model.Event, now time.Time) bool {
	return prefs.Toast.Enabled &&
		!dnd.IsActive(prefs, now) &&
		!prefs.IsMuted(event.Category)
}

// ShouldBadge gates the tab-title badge. The badge reflects true unread state
// at all times: neither DND nor mute suppresses it.
func ShouldBadge(prefs *model.NotificationPreferences) bool {
	return prefs.ShowDesktopBadge
}
