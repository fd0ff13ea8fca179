package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreFullyPopulated(t *testing.T) {
	p := DefaultNotificationPreferences()

	assert.True(t, p.Sound.Enabled)
	assert.Equal(t, 70, p.Sound.Volume)
	assert.NotEmpty(t, p.Sound.Priorities)
	assert.True(t, p.Toast.Enabled)
	assert.Equal(t, 5000, p.Toast.DurationMS)
	assert.Equal(t, CornerBottomRight, p.Toast.Corner)
	assert.False(t, p.DND.Enabled)
	assert.Len(t, p.DND.Schedule.Days, 7)
	assert.NotNil(t, p.MutedCategories)
	assert.True(t, p.ShowDesktopBadge)
}

func TestPatchReplacesOnlyNamedFields(t *testing.T) {
	p := DefaultNotificationPreferences()
	muted := []Category{CategoryPrescription}
	enabled := true

	patch := &PreferencesPatch{
		MutedCategories:             &muted,
		BrowserNotificationsEnabled: &enabled,
	}
	patch.ApplyTo(p)

	assert.Equal(t, muted, p.MutedCategories)
	assert.True(t, p.BrowserNotificationsEnabled)
	// Untouched fields keep their values.
	assert.True(t, p.Sound.Enabled)
	assert.Equal(t, 5000, p.Toast.DurationMS)
}

func TestPatchReplacesWholeSubRecord(t *testing.T) {
	p := DefaultNotificationPreferences()
	patch := &PreferencesPatch{
		Sound: &SoundPreferences{Enabled: false, Volume: 10, Priorities: []Priority{PriorityUrgent}},
	}
	patch.ApplyTo(p)

	assert.False(t, p.Sound.Enabled)
	assert.Equal(t, 10, p.Sound.Volume)
	assert.Equal(t, []Priority{PriorityUrgent}, p.Sound.Priorities)
}

func TestPatchJSONOmitsAbsentFields(t *testing.T) {
	enabled := false
	patch := &PreferencesPatch{GroupSimilar: &enabled}

	raw, err := json.Marshal(patch)
	require.NoError(t, err)
	assert.JSONEq(t, `{"group_similar":false}`, string(raw))
}

func TestPatchIsEmpty(t *testing.T) {
	assert.True(t, (&PreferencesPatch{}).IsEmpty())
	assert.True(t, (*PreferencesPatch)(nil).IsEmpty())

	on := true
	assert.False(t, (&PreferencesPatch{ShowDesktopBadge: &on}).IsEmpty())
}

func TestCloneIsDeep(t *testing.T) {
	p := DefaultNotificationPreferences()
	c := p.Clone()

	c.Sound.Priorities[0] = PriorityLow
	c.MutedCategories = append(c.MutedCategories, CategoryOrder)
	c.DND.Schedule.Days[0] = 5

	assert.Equal(t, PriorityHigh, p.Sound.Priorities[0])
	assert.Empty(t, p.MutedCategories)
	assert.Equal(t, 0, p.DND.Schedule.Days[0])
}

func TestIsMutedAndSoundCoversPriority(t *testing.T) {
	p := DefaultNotificationPreferences()
	p.MutedCategories = []Category{CategoryPrescription}

	assert.True(t, p.IsMuted(CategoryPrescription))
	assert.False(t, p.IsMuted(CategoryOrder))
	assert.True(t, p.SoundCoversPriority(PriorityUrgent))
	assert.False(t, p.SoundCoversPriority(PriorityLow))
}
