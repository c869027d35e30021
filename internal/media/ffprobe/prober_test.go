package ffprobe

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func helperCommand(t *testing.T, mode string) string {
	t.Helper()
	countFile := filepath.Join(t.TempDir(), "calls")
	orig := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		cs := []string{"-test.run=TestHelperProcess", "--", name}
		cs = append(cs, args...)
		cmd := exec.CommandContext(ctx, os.Args[0], cs...)
		cmd.Env = append(os.Environ(),
			"GO_WANT_HELPER_PROCESS=1",
			"FFPROBE_HELPER_MODE="+mode,
			"FFPROBE_HELPER_CALLS="+countFile,
		)
		return cmd
	}
	t.Cleanup(func() { commandContext = orig })
	return countFile
}

func TestProberInspectSource(t *testing.T) {
	calls := helperCommand(t, "mp3")
	prober := NewProber("")
	ctx := context.Background()

	for range 2 {
		info, err := prober.InspectSource(ctx, "testinput.mp3")
		if err != nil {
			t.Fatalf("InspectSource: %v", err)
		}
		if info.Duration != 2500*time.Millisecond {
			t.Fatalf("unexpected duration %s", info.Duration)
		}
		if !info.HasAudio || info.HasVideo {
			t.Fatalf("expected audio with cover art ignored, got %#v", info)
		}
	}
	data, _ := os.ReadFile(calls)
	if n := strings.Count(string(data), "x"); n != 1 {
		t.Fatalf("expected cached second lookup, got %d ffprobe calls", n)
	}
}

func TestProberProbeDuration(t *testing.T) {
	helperCommand(t, "video")
	d, err := NewProber("ffprobe").ProbeDuration(context.Background(), "out.mp4")
	if err != nil {
		t.Fatalf("ProbeDuration: %v", err)
	}
	if d != 4*time.Second {
		t.Fatalf("unexpected duration %s", d)
	}
}

func TestProberErrors(t *testing.T) {
	tests := []struct {
		mode string
		want string
	}{
		{mode: "fail", want: "No such file"},
		{mode: "badjson", want: "ffprobe parse"},
		{mode: "badduration", want: "invalid duration"},
	}
	for _, tc := range tests {
		t.Run(tc.mode, func(t *testing.T) {
			helperCommand(t, tc.mode)
			_, err := NewProber("").InspectSource(context.Background(), "missing.mp3")
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	if path := os.Getenv("FFPROBE_HELPER_CALLS"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err == nil {
			_, _ = f.WriteString("x")
			_ = f.Close()
		}
	}
	switch os.Getenv("FFPROBE_HELPER_MODE") {
	case "mp3":
		fmt.Println(`{"streams":[{"index":0,"codec_type":"audio"},{"index":1,"codec_type":"video","disposition":{"attached_pic":1}}],"format":{"duration":"2.500000"}}`)
		os.Exit(0)
	case "video":
		fmt.Println(`{"streams":[{"index":0,"codec_type":"video"}],"format":{"duration":"4.000000"}}`)
		os.Exit(0)
	case "fail":
		fmt.Fprintln(os.Stderr, "missing.mp3: No such file or directory")
		os.Exit(1)
	case "badjson":
		fmt.Println("not json")
		os.Exit(0)
	case "badduration":
		fmt.Println(`{"streams":[],"format":{"duration":"N/A"}}`)
		os.Exit(0)
	default:
		os.Exit(2)
	}
}
