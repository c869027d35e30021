package profile

// Built-in profile names.
const (
	LowQualityAudio  = "low-quality-audio"
	HighQualityAudio = "high-quality-audio"
	LowQualityVideo  = "low-quality-video"
	HighQualityVideo = "high-quality-video"
	VideoOnly        = "video-only"
	AV1              = "av1"
)

// Builtins returns the profiles every catalog starts with.
func Builtins() []Profile {
	return []Profile{
		{
			Name:         LowQualityAudio,
			Description:  "64 kbps AAC audio",
			ExpectsAudio: true,
			Container:    "ipod",
			Extension:    ".m4a",
			AudioCodec:   "aac",
			AudioBitrate: "64k",
			SampleRate:   22050,
		},
		{
			Name:         HighQualityAudio,
			Description:  "192 kbps AAC audio",
			ExpectsAudio: true,
			Container:    "ipod",
			Extension:    ".m4a",
			AudioCodec:   "aac",
			AudioBitrate: "192k",
			SampleRate:   48000,
		},
		{
			Name:         LowQualityVideo,
			Description:  "H.264 video with AAC audio for previews",
			ExpectsAudio: true,
			ExpectsVideo: true,
			Container:    "mp4",
			Extension:    ".mp4",
			VideoCodec:   "libx264",
			VideoBitrate: "500k",
			AudioCodec:   "aac",
			AudioBitrate: "64k",
			Quality:      30,
			SampleRate:   44100,
		},
		{
			Name:         HighQualityVideo,
			Description:  "H.264 video with AAC audio",
			ExpectsAudio: true,
			ExpectsVideo: true,
			Container:    "mp4",
			Extension:    ".mp4",
			VideoCodec:   "libx264",
			VideoBitrate: "4M",
			AudioCodec:   "aac",
			AudioBitrate: "192k",
			Quality:      20,
			SampleRate:   48000,
		},
		{
			Name:         VideoOnly,
			Description:  "H.264 video without audio",
			ExpectsVideo: true,
			Container:    "mp4",
			Extension:    ".mp4",
			VideoCodec:   "libx264",
			Quality:      23,
		},
		{
			Name:         AV1,
			Description:  "AV1 video with Opus audio via drapto",
			ExpectsAudio: true,
			ExpectsVideo: true,
			Encoder:      EncoderDrapto,
			Container:    "matroska",
			Extension:    ".mkv",
			VideoCodec:   "ffv1",
			AudioCodec:   "flac",
		},
	}
}
