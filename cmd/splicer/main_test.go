package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"splicer/internal/services"
)

const fakeFFmpeg = `#!/bin/sh
if [ "$2" = "-encoders" ]; then
	printf 'Encoders:\n V..... = Video\n ------\n A....D aac                  AAC\n V....D libx264              H.264\n'
	exit 0
fi
if [ -n "$FAKE_FFMPEG_FAIL" ]; then
	echo "Invalid data found when processing input" >&2
	exit 1
fi
for last; do :; done
printf 'out_time_us=1000000\nprogress=continue\n'
printf 'rendered' > "$last"
printf 'out_time_us=2000000\nprogress=end\n'
`

const fakeFFprobe = `#!/bin/sh
printf '{"streams":[{"index":0,"codec_type":"audio","codec_name":"aac","duration":"2.000000"}],"format":{"nb_streams":1,"duration":"2.000000"}}'
`

const audioTimeline = `<timeline framerate="30.0000000">
	<group type="audio" framerate="30.0000000" previewmode="0">
		<track>
			<clip start="0" stop="2" src="testinput.mp3" mstart="0"/>
		</track>
	</group>
</timeline>
`

type cliTestEnv struct {
	baseDir    string
	configPath string
	outputDir  string
	historyDB  string
	timeline   string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	binDir := filepath.Join(base, "bin")
	outputDir := filepath.Join(base, "out")
	for _, dir := range []string{homeDir, binDir, outputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("SPLICER_FFMPEG", "")
	t.Setenv("SPLICER_FFPROBE", "")

	ffmpegPath := writeScript(t, binDir, "ffmpeg", fakeFFmpeg)
	ffprobePath := writeScript(t, binDir, "ffprobe", fakeFFprobe)

	env := &cliTestEnv{
		baseDir:    base,
		configPath: filepath.Join(base, "splicer.toml"),
		outputDir:  outputDir,
		historyDB:  filepath.Join(base, "state", "history.db"),
		timeline:   filepath.Join(base, "project.xml"),
	}
	content := fmt.Sprintf(`[paths]
output_dir = %q
work_dir = %q
log_dir = %q

[ffmpeg]
binary = %q
ffprobe_binary = %q

[render]
default_profile = "low-quality-audio"

[history]
path = %q

[logging]
level = "error"
`, outputDir, filepath.Join(base, "work"), filepath.Join(base, "logs"), ffmpegPath, ffprobePath, env.historyDB)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := os.WriteFile(env.timeline, []byte(audioTimeline), 0o644); err != nil {
		t.Fatalf("write timeline: %v", err)
	}
	return env
}

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected %q in output:\n%s", needle, haystack)
	}
}

func TestRenderWritesOutputAndJournal(t *testing.T) {
	env := setupCLITestEnv(t)

	out, stderr, err := runCLI(t, []string{"render", env.timeline}, env.configPath)
	if err != nil {
		t.Fatalf("render: %v\nstderr: %s", err, stderr)
	}
	want := filepath.Join(env.outputDir, "project.m4a")
	requireContains(t, out, "Rendered "+want)
	requireContains(t, stderr, "encode")
	data, err := os.ReadFile(want)
	if err != nil || string(data) != "rendered" {
		t.Fatalf("expected rendered output at %s: %v", want, err)
	}

	out, _, err = runCLI(t, []string{"history", "list", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("history list: %v", err)
	}
	var runs []runView
	if err := json.Unmarshal([]byte(out), &runs); err != nil {
		t.Fatalf("decode history: %v\n%s", err, out)
	}
	if len(runs) != 1 || runs[0].State != "completed" || runs[0].Output != want || runs[0].Segments != 1 {
		t.Fatalf("unexpected history %#v", runs)
	}

	out, _, err = runCLI(t, []string{"history", "show", runs[0].ID[:8]}, env.configPath)
	if err != nil {
		t.Fatalf("history show: %v", err)
	}
	requireContains(t, out, runs[0].ID)
	requireContains(t, out, "low-quality-audio")
}

func TestRenderJSONReportsProfileMismatch(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"render", env.timeline, "--profile", "video-only", "--json"}, env.configPath)
	if !errors.Is(err, services.ErrProfileContentMismatch) {
		t.Fatalf("expected profile content mismatch, got %v", err)
	}
	if !isSilent(err) {
		t.Fatal("expected JSON failures to skip stderr printing")
	}
	if exitCode(err) != 2 {
		t.Fatalf("expected exit code 2, got %d", exitCode(err))
	}
	var result renderResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode result: %v\n%s", err, out)
	}
	if result.State != "failed" || result.ErrorKind != services.KindProfileContentMismatch.String() {
		t.Fatalf("unexpected result %#v", result)
	}
	if _, statErr := os.Stat(filepath.Join(env.outputDir, "project.mp4")); !os.IsNotExist(statErr) {
		t.Fatalf("expected no output file, stat err %v", statErr)
	}
}

func TestRenderBackendFailureLeavesNoOutput(t *testing.T) {
	env := setupCLITestEnv(t)
	t.Setenv("FAKE_FFMPEG_FAIL", "1")

	target := filepath.Join(env.outputDir, "broken.m4a")
	_, _, err := runCLI(t, []string{"render", env.timeline, "-o", "broken.m4a", "-q"}, env.configPath)
	if !errors.Is(err, services.ErrBackend) {
		t.Fatalf("expected backend error, got %v", err)
	}
	if exitCode(err) != 3 {
		t.Fatalf("expected exit code 3, got %d", exitCode(err))
	}
	requireContains(t, err.Error(), "Invalid data found")
	entries, _ := os.ReadDir(env.outputDir)
	for _, e := range entries {
		if e.Name() != ".broken.m4a.lock" {
			t.Fatalf("expected only the output lock after failure, found %s", e.Name())
		}
	}
	if _, statErr := os.Stat(target); !os.IsNotExist(statErr) {
		t.Fatalf("unexpected output file: %v", statErr)
	}
}

func TestValidateCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"validate", env.timeline}, env.configPath)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	requireContains(t, out, "Timeline is valid for profile low-quality-audio")
	requireContains(t, out, "audio")

	_, _, err = runCLI(t, []string{"validate", env.timeline, "-p", "high-quality-video"}, env.configPath)
	if !errors.Is(err, services.ErrProfileContentMismatch) {
		t.Fatalf("expected mismatch for video profile, got %v", err)
	}
}

func TestValidateRejectsBadTimeline(t *testing.T) {
	env := setupCLITestEnv(t)
	bad := filepath.Join(env.baseDir, "bad.xml")
	if err := os.WriteFile(bad, []byte(`<timeline><group type="subtitle"/></timeline>`), 0o644); err != nil {
		t.Fatal(err)
	}
	_, _, err := runCLI(t, []string{"validate", bad}, env.configPath)
	if !errors.Is(err, services.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

func TestProfilesCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"profiles"}, env.configPath)
	if err != nil {
		t.Fatalf("profiles: %v", err)
	}
	requireContains(t, out, "High Quality Video")
	requireContains(t, out, "low-quality-audio *")

	out, _, err = runCLI(t, []string{"profiles", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("profiles --json: %v", err)
	}
	var views []profileView
	if err := json.Unmarshal([]byte(out), &views); err != nil {
		t.Fatalf("decode: %v", err)
	}
	found := false
	for _, v := range views {
		if v.Name == "av1" {
			found = true
			if v.Encoder != "drapto" || len(v.Expects) != 2 {
				t.Fatalf("unexpected av1 view %#v", v)
			}
		}
	}
	if !found {
		t.Fatal("expected av1 profile")
	}
}

func TestStatusCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"status", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	var report statusReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if !report.ConfigExists || report.ConfigPath != env.configPath {
		t.Fatalf("unexpected config report %q %v", report.ConfigPath, report.ConfigExists)
	}
	for _, dep := range report.Dependencies {
		if !dep.Available {
			t.Fatalf("expected %s available: %s", dep.Name, dep.Detail)
		}
	}
	passed := map[string]bool{}
	for _, p := range report.Profiles {
		passed[p.Name] = p.Passed
	}
	if !passed["low-quality-audio"] || !passed["video-only"] || passed["av1"] {
		t.Fatalf("unexpected profile encoder results %#v", report.Profiles)
	}

	out, _, err = runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "== Dependencies ==")
	requireContains(t, out, "missing encoders: ffv1, flac")
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse overwriting")
	}

	out, _, err = runCLI(t, []string{"config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "[render]")
	requireContains(t, out, "low-quality-audio")
}

func TestHistoryPruneRequiresPositiveCutoff(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"history", "prune", "--older-than", "0s"}, env.configPath); err == nil {
		t.Fatal("expected zero cutoff to fail")
	}
	out, _, err := runCLI(t, []string{"history", "prune"}, env.configPath)
	if err != nil {
		t.Fatalf("history prune: %v", err)
	}
	requireContains(t, out, "Pruned 0 run(s)")
}
