package drapto

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"splicer/internal/render"
	"splicer/internal/services"
)

// fakeDrapto routes drapto invocations to TestHelperProcess and returns a
// pointer to the captured argv.
func fakeDrapto(t *testing.T, mode string) *[]string {
	t.Helper()
	var argv []string
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		argv = append([]string{name}, args...)
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "DRAPTO_HELPER_MODE="+mode)
		return cmd
	}
	t.Cleanup(func() { commandContext = original })
	return &argv
}

func TestCLIEncodeRequiresPaths(t *testing.T) {
	for _, tc := range []struct{ input, dir string }{{"", "/tmp"}, {"/work/intermediate.mkv", " "}} {
		if _, err := NewCLI().Encode(context.Background(), tc.input, tc.dir, nil); err == nil {
			t.Fatalf("expected error for input=%q dir=%q", tc.input, tc.dir)
		}
	}
}

func TestCLIEncodeStreamsProgress(t *testing.T) {
	argv := fakeDrapto(t, "success")
	dir := t.TempDir()
	input := filepath.Join(dir, "intermediate.mkv")
	outDir := filepath.Join(dir, "encoded")

	var updates []render.Progress
	path, err := NewCLI(WithBinary(" /opt/drapto ")).Encode(context.Background(), input, outDir, func(p render.Progress) {
		updates = append(updates, p)
	})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if path != filepath.Join(outDir, "intermediate.mkv") {
		t.Fatalf("unexpected output path %q", path)
	}
	want := []string{"/opt/drapto", "encode", "--input", input, "--output", outDir, "--responsive", "--progress-json"}
	if !slices.Equal(*argv, want) {
		t.Fatalf("argv = %v, want %v", *argv, want)
	}
	if len(updates) != 3 || updates[2].Percent != 100 {
		t.Fatalf("unexpected updates %#v", updates)
	}
	if mid := updates[1]; mid.Stage != stageEncode || mid.Message != "3.0x, 72 fps, eta 5m0s" {
		t.Fatalf("unexpected encode update %#v", mid)
	}
}

func TestCLIEncodeFailureCarriesStderr(t *testing.T) {
	fakeDrapto(t, "failure")
	dir := t.TempDir()
	_, err := NewCLI().Encode(context.Background(), filepath.Join(dir, "movie.mkv"), dir, nil)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if !strings.Contains(err.Error(), "svt-av1 rejected crf") {
		t.Fatalf("expected last stderr line in error, got %v", err)
	}
}

func TestCLIEncodeSkipsNonJSONLines(t *testing.T) {
	fakeDrapto(t, "noisy")
	dir := t.TempDir()
	var updates []render.Progress
	_, err := NewCLI().Encode(context.Background(), filepath.Join(dir, "clip.mkv"), dir, func(p render.Progress) {
		updates = append(updates, p)
	})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(updates) != 1 || updates[0].Percent != 75 {
		t.Fatalf("expected one update from the JSON line, got %#v", updates)
	}
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	switch os.Getenv("DRAPTO_HELPER_MODE") {
	case "success":
		fmt.Println(`{"type":"stage_progress","percent":0,"stage":"start","message":"begin"}`)
		fmt.Println(`{"type":"encoding_progress","percent":50,"stage":"encoding","eta_seconds":300,"speed":3.0,"fps":72.0}`)
		fmt.Println(`{"type":"stage_progress","percent":100,"stage":"complete","message":"done"}`)
	case "failure":
		fmt.Fprintln(os.Stderr, "probing input")
		fmt.Fprintln(os.Stderr, "svt-av1 rejected crf")
		os.Exit(1)
	case "noisy":
		fmt.Println("drapto 0.9")
		fmt.Println(`{"type":"encoding_progress","percent":75,"eta_seconds":120}`)
	}
	os.Exit(0)
}
