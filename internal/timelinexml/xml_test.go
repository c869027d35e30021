package timelinexml_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"splicer/internal/services"
	"splicer/internal/timeline"
	"splicer/internal/timelinexml"
)

func TestWriteAudioTimeline(t *testing.T) {
	ctx := context.Background()
	tl := timeline.New()
	if _, err := tl.AddAudioGroup().AddTrack().AddClip("testinput.mp3", timeline.Audio, timeline.PlaceAbsolute, 0, 0, 2*time.Second); err != nil {
		t.Fatalf("AddClip: %v", err)
	}

	var buf bytes.Buffer
	if err := timelinexml.Write(ctx, &buf, tl); err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := `<timeline framerate="30.0000000">
	<group type="audio" framerate="30.0000000" previewmode="0">
		<track>
			<clip start="0" stop="2" src="testinput.mp3" mstart="0"></clip>
		</track>
	</group>
</timeline>
`
	if buf.String() != want {
		t.Fatalf("unexpected XML:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestWriteVideoGroupCarriesFormat(t *testing.T) {
	ctx := context.Background()
	tl := timeline.New()
	video, err := tl.AddVideoGroup(32, 320, 240)
	if err != nil {
		t.Fatalf("AddVideoGroup: %v", err)
	}
	track := video.AddTrack()
	a, _ := track.AddClip("a.wmv", timeline.Video, timeline.PlaceAbsolute, 0, 0, 4*time.Second)
	b, _ := track.AddClip("b.wmv", timeline.Video, timeline.PlaceAbsolute, 3*time.Second, time.Second, 5*time.Second)
	var params timeline.Parameters
	_ = params.Set(timeline.ParamKeyType, "luma")
	if _, err := track.AddTransition(ctx, a, b, "key", 3*time.Second, 500*time.Millisecond, params); err != nil {
		t.Fatalf("AddTransition: %v", err)
	}

	var buf bytes.Buffer
	if err := timelinexml.Write(ctx, &buf, tl); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`<group type="video" bitdepth="32" width="320" height="240" framerate="30.0000000" previewmode="0">`,
		`<clip start="3" stop="7" src="b.wmv" mstart="1"></clip>`,
		`<transition effect="key" start="3" stop="3.5" from="0" to="1">`,
		`<param name="KeyType" value="luma"></param>`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}
}

func TestReadRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := `<timeline framerate="25.0000000">
	<group type="video" bitdepth="24" width="100" height="100" framerate="25.0000000" previewmode="1">
		<track>
			<clip start="0" stop="4" src="a.wmv" mstart="0"/>
			<clip start="3" stop="7" src="b.wmv" mstart="1"/>
			<transition effect="fade" start="3" stop="4" from="0" to="1">
				<param name="Invert" value="true"/>
			</transition>
		</track>
		<track>
			<clip start="2" stop="6" src="logo.png" mstart="0" mstop="4"/>
		</track>
		<transition effect="key" start="2" stop="5" from="0" to="1"/>
	</group>
	<group type="audio" framerate="25.0000000" previewmode="0">
		<track>
			<clip start="0" stop="2" src="testinput.mp3" mstart="0"/>
		</track>
	</group>
</timeline>`
	tl, err := timelinexml.Read(ctx, strings.NewReader(src))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if tl.FrameRate() != 25 {
		t.Fatalf("unexpected frame rate %v", tl.FrameRate())
	}
	groups := tl.Groups()
	if len(groups) != 2 || groups[0].Kind() != timeline.Video || groups[0].PreviewMode() != 1 || groups[0].BitDepth() != 24 {
		t.Fatalf("unexpected groups %#v", groups)
	}
	clips := groups[0].Tracks()[0].Clips()
	if clips[1].SourceIn() != time.Second || clips[1].SourceOut() != 5*time.Second {
		t.Fatalf("unexpected source bounds in=%s out=%s", clips[1].SourceIn(), clips[1].SourceOut())
	}
	transitions := groups[0].Tracks()[0].Transitions()
	if len(transitions) != 1 {
		t.Fatalf("expected 1 track transition, got %d", len(transitions))
	}
	if v, _ := transitions[0].Params().Get(timeline.ParamInvert); v != "true" {
		t.Fatalf("expected Invert param, got %q", v)
	}
	if len(groups[0].Transitions()) != 1 {
		t.Fatal("expected group transition")
	}

	var buf bytes.Buffer
	if err := timelinexml.Write(ctx, &buf, tl); err != nil {
		t.Fatalf("Write: %v", err)
	}
	again, err := timelinexml.Read(ctx, &buf)
	if err != nil {
		t.Fatalf("Read after Write: %v", err)
	}
	d1, _ := tl.Duration(ctx)
	d2, _ := again.Duration(ctx)
	if d1 != 7*time.Second || d1 != d2 {
		t.Fatalf("durations differ after round trip: %s vs %s", d1, d2)
	}
}

func TestReadLazyClipUsesInspector(t *testing.T) {
	ctx := context.Background()
	inspector := timeline.InspectorFunc(func(context.Context, string) (timeline.SourceInfo, error) {
		return timeline.SourceInfo{Duration: 3 * time.Second, HasAudio: true}, nil
	})
	src := `<timeline><group type="audio"><track><clip start="1" src="song.flac" mstart="0"/></track></group></timeline>`
	tl, err := timelinexml.Read(ctx, strings.NewReader(src), timeline.WithInspector(inspector))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	d, err := tl.Duration(ctx)
	if err != nil || d != 4*time.Second {
		t.Fatalf("expected 4s, got %s (%v)", d, err)
	}
}

func TestReadRejectsInvalidDocuments(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{name: "malformed", src: `<timeline>`, want: services.ErrInvalidArgument},
		{name: "unknown group type", src: `<timeline><group type="subtitle"/></timeline>`, want: services.ErrInvalidArgument},
		{name: "bad clip start", src: `<timeline><group type="audio"><track><clip start="x" stop="1" src="a.mp3"/></track></group></timeline>`, want: services.ErrInvalidArgument},
		{name: "stop beyond duration range", src: `<timeline><group type="audio"><track><clip start="0.5" stop="1e12" src="a.mp3" mstart="0"/></track></group></timeline>`, want: services.ErrInvalidArgument},
		{name: "huge negative start", src: `<timeline><group type="audio"><track><clip start="-1e12" stop="1" src="a.mp3" mstart="0"/></track></group></timeline>`, want: services.ErrInvalidArgument},
		{name: "stop before start", src: `<timeline><group type="audio"><track><clip start="3" stop="1" src="a.mp3" mstart="0"/></track></group></timeline>`, want: services.ErrInvalidArgument},
		{name: "source range overflows", src: `<timeline><group type="audio"><track><clip start="0" stop="9000000000" src="a.mp3" mstart="9000000000"/></track></group></timeline>`, want: services.ErrInvalidArgument},
		{name: "negative frame rate", src: `<timeline framerate="-1"/>`, want: services.ErrInvalidArgument},
		{name: "zero bit depth", src: `<timeline><group type="video" bitdepth="0"/></timeline>`, want: services.ErrInvalidArgument},
		{
			name: "transition outside overlap",
			src: `<timeline><group type="audio"><track>
				<clip start="0" stop="2" src="a.mp3" mstart="0"/>
				<clip start="1" stop="3" src="b.mp3" mstart="0"/>
				<transition effect="fade" start="0" stop="1" from="0" to="1"/>
			</track></group></timeline>`,
			want: services.ErrInvalidTransitionRange,
		},
		{
			name: "transition anchor out of range",
			src:  `<timeline><group type="audio"><track><clip start="0" stop="2" src="a.mp3" mstart="0"/><transition effect="fade" start="0" stop="1" from="0" to="3"/></track></group></timeline>`,
			want: services.ErrInvalidArgument,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := timelinexml.Read(context.Background(), strings.NewReader(tc.src))
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestReadKeepsOptionFrameRateWhenDocumentOmitsIt(t *testing.T) {
	ctx := context.Background()
	src := `<timeline><group type="audio"/></timeline>`
	tl, err := timelinexml.Read(ctx, strings.NewReader(src), timeline.WithFrameRate(24))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if tl.FrameRate() != 24 || tl.Groups()[0].FrameRate() != 24 {
		t.Fatalf("expected 24 fps from options, got %v / %v", tl.FrameRate(), tl.Groups()[0].FrameRate())
	}

	tl, err = timelinexml.Read(ctx, strings.NewReader(`<timeline framerate="50"/>`), timeline.WithFrameRate(24))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if tl.FrameRate() != 50 {
		t.Fatalf("expected document frame rate to win, got %v", tl.FrameRate())
	}
}
