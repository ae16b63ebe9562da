package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupPreset(t *testing.T) {
	preset, ok := LookupPreset("video-standard")
	require.True(t, ok)
	assert.Equal(t, FormatMP4, preset.Format)
	assert.Equal(t, VideoQuality("720p"), preset.VideoQuality)
	assert.Equal(t, AudioQuality("192k"), preset.AudioQuality)

	_, ok = LookupPreset("nonexistent")
	assert.False(t, ok)
}

func TestPresets_AllValid(t *testing.T) {
	all := Presets()
	require.Len(t, all, 6)

	for _, p := range all {
		assert.True(t, ValidateFormat(p.Format), "preset %s", p.Name)
		assert.True(t, ValidateVideoQuality(p.VideoQuality), "preset %s", p.Name)
		assert.True(t, ValidateAudioQuality(p.AudioQuality), "preset %s", p.Name)
	}
}

func TestPresets_ReturnsCopy(t *testing.T) {
	all := Presets()
	all[0].Name = "mutated"

	fresh := Presets()
	assert.Equal(t, "video-high", fresh[0].Name)
}
