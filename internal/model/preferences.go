package model

type ToastCorner string

const (
	CornerTopLeft     ToastCorner = "top-left"
	CornerTopRight    ToastCorner = "top-right"
	CornerBottomLeft  ToastCorner = "bottom-left"
	CornerBottomRight ToastCorner = "bottom-right"
)

type SoundPreferences struct {
	Enabled    bool       `json:"enabled"`
	Volume     int        `json:"volume" validate:"min=0,max=100"`
	Priorities []Priority `json:"priorities" validate:"dive,oneof=low normal high urgent"`
}

type ToastPreferences struct {
	Enabled    bool        `json:"enabled"`
	DurationMS int         `json:"duration_ms" validate:"min=1000,max=60000"`
	Corner     ToastCorner `json:"corner" validate:"oneof=top-left top-right bottom-left bottom-right"`
}

type DNDSchedule struct {
	Enabled bool   `json:"enabled"`
	Start   string `json:"start" validate:"hhmm"`
	End     string `json:"end" validate:"hhmm"`
	Days    []int  `json:"days" validate:"dive,min=0,max=6"`
}

type DNDPreferences struct {
	Enabled  bool        `json:"enabled"`
	Schedule DNDSchedule `json:"schedule"`
}

// NotificationPreferences is the per-user preference record. The in-memory
// copy held by the preference store is always fully populated: every field
// carries a default and partial updates replace whole named fields.
type NotificationPreferences struct {
	Sound                       SoundPreferences `json:"sound"`
	Toast                       ToastPreferences `json:"toast"`
	BrowserNotificationsEnabled bool             `json:"browser_notifications_enabled"`
	DND                         DNDPreferences   `json:"dnd"`
	MutedCategories             []Category       `json:"muted_categories"`
	GroupSimilar                bool             `json:"group_similar"`
	ShowDesktopBadge            bool             `json:"show_desktop_badge"`

	// Email flags are opaque to the delivery engine; they ride along so the
	// remote record round-trips without loss.
	EmailEnabled *bool   `json:"email_enabled,omitempty"`
	EmailDigest  *string `json:"email_digest,omitempty"`
}

func DefaultNotificationPreferences() *NotificationPreferences {
	return &NotificationPreferences{
		Sound: SoundPreferences{
			Enabled:    true,
			Volume:     70,
			Priorities: []Priority{PriorityHigh, PriorityUrgent},
		},
		Toast: ToastPreferences{
			Enabled:    true,
			DurationMS: 5000,
			Corner:     CornerBottomRight,
		},
		BrowserNotificationsEnabled: false,
		DND: DNDPreferences{
			Enabled: false,
			Schedule: DNDSchedule{
				Enabled: false,
				Start:   "22:00",
				End:     "08:00",
				Days:    []int{0, 1, 2, 3, 4, 5, 6},
			},
		},
		MutedCategories:  []Category{},
		GroupSimilar:     true,
		ShowDesktopBadge: true,
	}
}

// Clone returns a deep copy so callers can hand out snapshots without
// exposing the store's record to mutation.
func (p *NotificationPreferences) Clone() *NotificationPreferences {
	out := *p
	if p.Sound.Priorities != nil {
		out.Sound.Priorities = append([]Priority{}, p.Sound.Priorities...)
	}
	if p.DND.Schedule.Days != nil {
		out.DND.Schedule.Days = append([]int{}, p.DND.Schedule.Days...)
	}
	if p.MutedCategories != nil {
		out.MutedCategories = append([]Category{}, p.MutedCategories...)
	}
	if p.EmailEnabled != nil {
		v := *p.EmailEnabled
		out.EmailEnabled = &v
	}
	if p.EmailDigest != nil {
		v := *p.EmailDigest
		out.EmailDigest = &v
	}
	return &out
}

// IsMuted reports whether a category is in the muted set. Mute gates the
// toast channel only; desktop notifications and the badge ignore it.
func (p *NotificationPreferences) IsMuted(c Category) bool {
	for _, m := range p.MutedCategories {
		if m == c {
			return true
		}
	}
	return false
}

// SoundCoversPriority reports whether the given priority is configured to
// trigger the audio cue.
func (p *NotificationPreferences) SoundCoversPriority(pr Priority) bool {
	for _, sp := range p.Sound.Priorities {
		if sp == pr {
			return true
		}
	}
	return false
}

// PreferencesPatch is a partial update: nil fields are untouched, non-nil
// fields replace the corresponding record field wholesale. The same shape is
// used for remote GET responses (only remote-present fields merge over the
// local record) and for the debounced remote PUT body.
type PreferencesPatch struct {
	Sound                       *SoundPreferences `json:"sound,omitempty"`
	Toast                       *ToastPreferences `json:"toast,omitempty"`
	BrowserNotificationsEnabled *bool             `json:"browser_notifications_enabled,omitempty"`
	DND                         *DNDPreferences   `json:"dnd,omitempty"`
	MutedCategories             *[]Category       `json:"muted_categories,omitempty"`
	GroupSimilar                *bool             `json:"group_similar,omitempty"`
	ShowDesktopBadge            *bool             `json:"show_desktop_badge,omitempty"`
	EmailEnabled                *bool             `json:"email_enabled,omitempty"`
	EmailDigest                 *string           `json:"email_digest,omitempty"`
}

func (p *PreferencesPatch) IsEmpty() bool {
	return p == nil || (p.Sound == nil && p.Toast == nil &&
		p.BrowserNotificationsEnabled == nil && p.DND == nil &&
		p.MutedCategories == nil && p.GroupSimilar == nil &&
		p.ShowDesktopBadge == nil && p.EmailEnabled == nil && p.EmailDigest == nil)
}

// ApplyTo merges the patch onto prefs, replacing named fields only.
func (p *PreferencesPatch) ApplyTo(prefs *NotificationPreferences) {
	if p == nil {
		return
	}
	if p.Sound != nil {
		prefs.Sound = *p.Sound
	}
	if p.Toast != nil {
		prefs.Toast = *p.Toast
	}
	if p.BrowserNotificationsEnabled != nil {
		prefs.BrowserNotificationsEnabled = *p.BrowserNotificationsEnabled
	}
	if p.DND != nil {
		prefs.DND = *p.DND
	}
	if p.MutedCategories != nil {
		prefs.MutedCategories = *p.MutedCategories
	}
	if p.GroupSimilar != nil {
		prefs.GroupSimilar = *p.GroupSimilar
	}
	if p.ShowDesktopBadge != nil {
		prefs.ShowDesktopBadge = *p.ShowDesktopBadge
	}
	if p.EmailEnabled != nil {
		prefs.EmailEnabled = p.EmailEnabled
	}
	if p.EmailDigest != nil {
		prefs.EmailDigest = p.EmailDigest
	}
}
