package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"splicer/internal/profile"
)

type profileView struct {
	Name         string            `json:"name"`
	Label        string            `json:"label"`
	Description  string            `json:"description,omitempty"`
	Expects      []string          `json:"expects"`
	Encoder      string            `json:"encoder"`
	Container    string            `json:"container,omitempty"`
	Extension    string            `json:"extension,omitempty"`
	VideoCodec   string            `json:"video_codec,omitempty"`
	AudioCodec   string            `json:"audio_codec,omitempty"`
	VideoBitrate string            `json:"video_bitrate,omitempty"`
	AudioBitrate string            `json:"audio_bitrate,omitempty"`
	Quality      int               `json:"quality,omitempty"`
	SampleRate   int               `json:"sample_rate,omitempty"`
	Extra        map[string]string `json:"extra,omitempty"`
	Default      bool              `json:"default"`
}

// profileLabel turns "high-quality-video" into "High Quality Video".
func profileLabel(name string) string {
	return cases.Title(language.English).String(strings.NewReplacer("-", " ", "_", " ").Replace(name))
}

func newProfilesCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List available render profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			catalog, err := cfg.Catalog()
			if err != nil {
				return err
			}
			views := make([]profileView, 0, len(catalog.Names()))
			for _, p := range catalog.Profiles() {
				views = append(views, newProfileView(p, p.Name == cfg.Render.DefaultProfile))
			}
			if jsonOutput {
				return writeJSON(cmd, views)
			}

			headers := []string{"Name", "Label", "Expects", "Encoder", "Container", "Codecs", "Description"}
			rows := make([][]string, 0, len(views))
			for _, v := range views {
				name := v.Name
				if v.Default {
					name += " *"
				}
				rows = append(rows, []string{
					name,
					v.Label,
					strings.Join(v.Expects, "+"),
					v.Encoder,
					v.Container,
					codecSummary(v),
					v.Description,
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(headers, rows, nil))
			fmt.Fprintln(out, "* default profile")
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output profiles as JSON")
	return cmd
}

func newProfileView(p profile.Profile, isDefault bool) profileView {
	expects := make([]string, 0, 2)
	for _, kind := range p.Kinds() {
		expects = append(expects, kind.String())
	}
	return profileView{
		Name:         p.Name,
		Label:        profileLabel(p.Name),
		Description:  p.Description,
		Expects:      expects,
		Encoder:      p.EncoderName(),
		Container:    p.Container,
		Extension:    p.Extension,
		VideoCodec:   p.VideoCodec,
		AudioCodec:   p.AudioCodec,
		VideoBitrate: p.VideoBitrate,
		AudioBitrate: p.AudioBitrate,
		Quality:      p.Quality,
		SampleRate:   p.SampleRate,
		Extra:        p.Extra,
		Default:      isDefault,
	}
}

func codecSummary(v profileView) string {
	var parts []string
	if v.VideoCodec != "" {
		part := v.VideoCodec
		switch {
		case v.Quality > 0:
			part += " crf " + strconv.Itoa(v.Quality)
		case v.VideoBitrate != "":
			part += " " + v.VideoBitrate
		}
		parts = append(parts, part)
	}
	if v.AudioCodec != "" {
		part := v.AudioCodec
		if v.AudioBitrate != "" {
			part += " " + v.AudioBitrate
		}
		if v.SampleRate > 0 {
			part += fmt.Sprintf(" %d Hz", v.SampleRate)
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, ", ")
}
