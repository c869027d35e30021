package drapto

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	draptolib "github.com/five82/drapto"

	"splicer/internal/profile"
	"splicer/internal/render"
	"splicer/internal/services"
	"splicer/internal/timeline"
)

type fakeEncoder struct {
	input string
	err   error
}

func (f *fakeEncoder) Encode(_ context.Context, inputPath, outputDir string, progress func(render.Progress)) (string, error) {
	f.input = inputPath
	if f.err != nil {
		return "", f.err
	}
	progress(render.Progress{Stage: stageEncode, Percent: 100})
	out := encodedPath(inputPath, outputDir)
	if err := os.WriteFile(out, []byte("av1"), 0o644); err != nil {
		return "", err
	}
	return out, nil
}

func draptoJob(t *testing.T, out string, progress func(render.Progress)) render.Job {
	t.Helper()
	tl := timeline.New()
	group, err := tl.AddVideoGroup(32, 320, 240)
	if err != nil {
		t.Fatalf("AddVideoGroup: %v", err)
	}
	if _, err := group.AddTrack().AddClip("transitions.wmv", timeline.Video, timeline.PlaceAbsolute, 0, 0, 2*time.Second); err != nil {
		t.Fatalf("AddClip: %v", err)
	}
	desc, err := tl.Describe(context.Background())
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	p, _ := profile.NewCatalog().Lookup(profile.AV1)
	return render.Job{Description: desc, OutputPath: out, Profile: p, Progress: progress}
}

func TestBackendComposesThenEncodes(t *testing.T) {
	dir := t.TempDir()
	work := filepath.Join(dir, "work")
	out := filepath.Join(dir, "out.mkv")
	var composed render.Job
	inner := render.BackendFunc(func(_ context.Context, job render.Job) error {
		composed = job
		job.Report(render.Progress{Stage: "encode", Percent: 50})
		return os.WriteFile(job.OutputPath, []byte("ffv1"), 0o644)
	})
	encoder := &fakeEncoder{}
	var stages []string
	backend := NewBackend(inner, WithEncoder(encoder), WithWorkDir(work))

	if err := backend.Render(context.Background(), draptoJob(t, out, func(p render.Progress) {
		stages = append(stages, p.Stage)
	})); err != nil {
		t.Fatalf("Render: %v", err)
	}

	if composed.Profile.Container != "matroska" || composed.Profile.VideoCodec != "ffv1" || composed.Profile.Encoder != profile.EncoderFFmpeg {
		t.Fatalf("unexpected intermediate profile %#v", composed.Profile)
	}
	if encoder.input != composed.OutputPath {
		t.Fatalf("expected encoder to read the intermediate, got %q want %q", encoder.input, composed.OutputPath)
	}
	data, err := os.ReadFile(out)
	if err != nil || string(data) != "av1" {
		t.Fatalf("expected encoded output at %s: %q %v", out, data, err)
	}
	if len(stages) != 2 || stages[0] != stageCompose || stages[1] != stageEncode {
		t.Fatalf("unexpected progress stages %v", stages)
	}
	entries, _ := os.ReadDir(work)
	if len(entries) != 0 {
		t.Fatalf("expected scratch dir to be removed, found %d entries", len(entries))
	}
}

func TestBackendFailures(t *testing.T) {
	innerErr := errors.New("ffmpeg exploded")
	tests := []struct {
		name    string
		inner   render.Backend
		encoder *fakeEncoder
		check   func(error) bool
	}{
		{
			name:    "inner backend fails",
			inner:   render.BackendFunc(func(context.Context, render.Job) error { return innerErr }),
			encoder: &fakeEncoder{},
			check:   func(err error) bool { return errors.Is(err, innerErr) },
		},
		{
			name: "encoder fails",
			inner: render.BackendFunc(func(_ context.Context, job render.Job) error {
				return os.WriteFile(job.OutputPath, []byte("ffv1"), 0o644)
			}),
			encoder: &fakeEncoder{err: errors.New("svt-av1 crashed")},
			check:   func(err error) bool { return errors.Is(err, services.ErrExternalTool) },
		},
		{
			name:    "missing inner backend",
			encoder: &fakeEncoder{},
			check:   func(err error) bool { return errors.Is(err, services.ErrInvalidArgument) },
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			out := filepath.Join(dir, "out.mkv")
			backend := NewBackend(tc.inner, WithEncoder(tc.encoder))
			err := backend.Render(context.Background(), draptoJob(t, out, nil))
			if !tc.check(err) {
				t.Fatalf("unexpected error %v", err)
			}
			if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
				t.Fatal("expected no output on failure")
			}
			entries, _ := os.ReadDir(dir)
			if len(entries) != 0 {
				t.Fatalf("expected scratch cleanup, found %v", entries)
			}
		})
	}
}

func TestIntermediateProfileKeepsExpectations(t *testing.T) {
	p, _ := profile.NewCatalog().Lookup(profile.HighQualityVideo)
	got := IntermediateProfile(p)
	if !got.ExpectsAudio || !got.ExpectsVideo || got.Quality != 0 || got.Extension != ".mkv" {
		t.Fatalf("unexpected intermediate %#v", got)
	}
	if p.Container != "mp4" {
		t.Fatal("expected source profile to be untouched")
	}
}

func TestProgressReporterMapsEvents(t *testing.T) {
	var updates []render.Progress
	rep := newProgressReporter(func(p render.Progress) { updates = append(updates, p) }, nil)
	rep.StageProgress(draptolib.StageProgress{Stage: "analysis", Percent: 40, Message: "detecting crop"})
	rep.EncodingStarted(240)
	rep.EncodingProgress(draptolib.ProgressSnapshot{Percent: 50, Speed: 2, FPS: 48, ETA: 90 * time.Second})
	rep.Warning("grain table missing")
	rep.EncodingComplete(draptolib.EncodingOutcome{})

	if len(updates) != 4 {
		t.Fatalf("expected 4 updates, got %#v", updates)
	}
	if updates[0].Stage != "analysis" || updates[0].Percent != 40 {
		t.Fatalf("unexpected stage update %#v", updates[0])
	}
	if updates[2].Stage != stageEncode || updates[2].Message != "2.0x, 48 fps, eta 1m30s" {
		t.Fatalf("unexpected encode update %#v", updates[2])
	}
	if updates[3].Percent != 100 {
		t.Fatalf("expected completion at 100%%, got %#v", updates[3])
	}
}
