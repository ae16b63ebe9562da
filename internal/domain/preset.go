package domain

// Preset is a named bundle of format/quality defaults
type Preset struct {
	Name         string       `json:"name"`
	Format       OutputFormat `json:"format"`
	VideoQuality VideoQuality `json:"video_quality"`
	AudioQuality AudioQuality `json:"audio_quality"`
}

// presets is the fixed preset table; order matters for listing
var presets = []Preset{
	{Name: "video-high", Format: FormatMP4, VideoQuality: QualityBest, AudioQuality: QualityBest},
	{Name: "video-standard", Format: FormatMP4, VideoQuality: "720p", AudioQuality: "192k"},
	{Name: "video-low", Format: FormatMP4, VideoQuality: "240p", AudioQuality: "64k"},
	{Name: "audio-high", Format: FormatMP3, VideoQuality: QualityBest, AudioQuality: QualityBest},
	{Name: "audio-standard", Format: FormatMP3, VideoQuality: QualityBest, AudioQuality: "192k"},
	{Name: "audio-low", Format: FormatMP3, VideoQuality: QualityBest, AudioQuality: "64k"},
}

// LookupPreset finds a preset by name
func LookupPreset(name string) (Preset, bool) {
	for _, p := range presets {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}

// Presets returns the available presets
func Presets() []Preset {
	out := make([]Preset, len(presets))
	copy(out, presets)
	return out
}
