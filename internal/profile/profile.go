package profile

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"splicer/internal/timeline"
)

// Encoders understood by the renderer wiring.
const (
	EncoderFFmpeg = "ffmpeg"
	EncoderDrapto = "drapto"
)

// Profile declares what content an output target expects and how it is
// encoded. Encoding fields are opaque to the renderer and interpreted by the
// backend.
type Profile struct {
	Name         string
	Description  string
	ExpectsAudio bool
	ExpectsVideo bool
	Encoder      string
	Container    string
	Extension    string
	VideoCodec   string
	AudioCodec   string
	VideoBitrate string
	AudioBitrate string
	Quality      int
	SampleRate   int
	Extra        map[string]string
}

// Expects reports whether the profile consumes the given media kind.
func (p Profile) Expects(kind timeline.MediaKind) bool {
	switch kind {
	case timeline.Audio:
		return p.ExpectsAudio
	case timeline.Video:
		return p.ExpectsVideo
	default:
		return false
	}
}

// Kinds returns the consumed media kinds, video first.
func (p Profile) Kinds() []timeline.MediaKind {
	var kinds []timeline.MediaKind
	if p.ExpectsVideo {
		kinds = append(kinds, timeline.Video)
	}
	if p.ExpectsAudio {
		kinds = append(kinds, timeline.Audio)
	}
	return kinds
}

// EncoderName returns the encoder, defaulting to ffmpeg.
func (p Profile) EncoderName() string {
	if e := strings.ToLower(strings.TrimSpace(p.Encoder)); e != "" {
		return e
	}
	return EncoderFFmpeg
}

// Validate checks the profile is usable.
func (p Profile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("profile name must be set")
	}
	if !p.ExpectsAudio && !p.ExpectsVideo {
		return fmt.Errorf("profile %q must expect audio, video, or both", p.Name)
	}
	switch p.EncoderName() {
	case EncoderFFmpeg:
	case EncoderDrapto:
		if !p.ExpectsVideo {
			return fmt.Errorf("profile %q: drapto encoder requires video", p.Name)
		}
	default:
		return fmt.Errorf("profile %q: unknown encoder %q", p.Name, p.Encoder)
	}
	if p.Quality < 0 {
		return fmt.Errorf("profile %q: quality must not be negative", p.Name)
	}
	if p.SampleRate < 0 {
		return fmt.Errorf("profile %q: sample rate must not be negative", p.Name)
	}
	return nil
}

// Catalog is a name-indexed set of profiles.
type Catalog struct {
	profiles map[string]Profile
}

// NewCatalog returns a catalog seeded with the built-in profiles.
func NewCatalog() *Catalog {
	c := &Catalog{profiles: make(map[string]Profile)}
	for _, p := range Builtins() {
		c.profiles[p.Name] = p
	}
	return c
}

// Register adds or replaces a profile after validating it.
func (c *Catalog) Register(p Profile) error {
	p.Name = normalizeName(p.Name)
	if err := p.Validate(); err != nil {
		return err
	}
	p.Extra = maps.Clone(p.Extra)
	c.profiles[p.Name] = p
	return nil
}

// Lookup finds a profile by name (case-insensitive).
func (c *Catalog) Lookup(name string) (Profile, bool) {
	p, ok := c.profiles[normalizeName(name)]
	return p, ok
}

// Names returns the registered profile names sorted.
func (c *Catalog) Names() []string {
	return slices.Sorted(maps.Keys(c.profiles))
}

// Profiles returns every profile sorted by name.
func (c *Catalog) Profiles() []Profile {
	names := c.Names()
	out := make([]Profile, 0, len(names))
	for _, name := range names {
		out = append(out, c.profiles[name])
	}
	return out
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
