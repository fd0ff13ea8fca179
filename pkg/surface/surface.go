// Package surface holds the OS-facing primitives the delivery engine drives:
// the audio cue, native desktop notifications, window focus/navigation, and
// the tab title. The engine only ever talks to these interfaces; real
// integrations live with the embedding shell.
package surface

// AudioPlayer plays the single fixed notification cue.
type AudioPlayer interface {
	// SetVolume takes 0.0–1.0.
	SetVolume(volume float64)
	// Restart rewinds to time zero, interrupting any playback in progress.
	Restart()
	// Play starts playback. Failures (autoplay policy and the like) are
	// returned so the caller can log them; they are never fatal.
	Play() error
}

// Permission is the OS notification permission state.
type Permission string

const (
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
	PermissionDefault Permission = "default"
)

// DesktopNotification carries what the engine hands to the OS surface.
type DesktopNotification struct {
	Title string
	Body  string
	// Tag deduplicates: a second notification with the same tag replaces
	// the first.
	Tag string
	// RequireInteraction keeps the notification on screen until the user
	// dismisses it.
	RequireInteraction bool
	// OnClick runs when the user activates the notification.
	OnClick func()
}

// DesktopNotifier is the OS notification permission and display surface.
type DesktopNotifier interface {
	Permission() Permission
	// RequestPermission asks the user; fire-and-forget, the result arrives
	// via the callback.
	RequestPermission(done func(Permission))
	Show(n DesktopNotification) error
}

// Navigator focuses the application window and routes to in-app URLs.
type Navigator interface {
	Focus()
	Navigate(url string)
}

// TitleSurface is the mutable tab/window title.
type TitleSurface interface {
	Title() string
	SetTitle(title string)
}
