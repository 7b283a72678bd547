package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"audiovert/internal/config"
)

func TestLoadDefaultConfigWithoutFile(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if resolved != filepath.Join(tempHome, ".config", "audiovert", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if cfg.Encoder.FFmpeg != "ffmpeg" || cfg.Encoder.PartExt != "part" {
		t.Fatalf("unexpected encoder defaults: %+v", cfg.Encoder)
	}
	if cfg.Paths.TrashDir != filepath.Join(tempHome, "trash") {
		t.Fatalf("unexpected trash dir %q", cfg.Paths.TrashDir)
	}
	if cfg.Logging.Level != "warn" || cfg.Output.Color != "auto" {
		t.Fatalf("unexpected logging/output defaults: %+v %+v", cfg.Logging, cfg.Output)
	}
	if !cfg.Paths.Lock {
		t.Fatal("expected lock enabled by default")
	}
}

func TestDefaultTrashDirPrefersExistingCapitalized(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	if err := os.Mkdir(filepath.Join(tempHome, "Trash"), 0o755); err != nil {
		t.Fatal(err)
	}
	dir, err := config.DefaultTrashDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != filepath.Join(tempHome, "Trash") {
		t.Fatalf("unexpected trash dir %q", dir)
	}
}

func TestLoadExplicitFile(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	path := filepath.Join(t.TempDir(), "audiovert.toml")
	content := `
[encoder]
ffmpeg = "nice -n 10 ffmpeg"
part_ext = ".tmp"

[convert]
conversions = ["flac=ogg", " lossy=same "]
bitrates = ["ogg=256"]
meta_backend = "FFprobe"

[paths]
trash_dir = "~/bin"

[output]
color = "never"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("unexpected resolution %q %v", resolved, exists)
	}
	if cfg.Encoder.PartExt != "tmp" {
		t.Fatalf("expected leading dot stripped, got %q", cfg.Encoder.PartExt)
	}
	if cfg.Convert.MetaBackend != config.MetaBackendFFprobe {
		t.Fatalf("unexpected backend %q", cfg.Convert.MetaBackend)
	}
	if cfg.Paths.TrashDir != filepath.Join(tempHome, "bin") {
		t.Fatalf("unexpected trash dir %q", cfg.Paths.TrashDir)
	}
	conds, err := cfg.Conditions()
	if err != nil || len(conds) != 2 {
		t.Fatalf("unexpected conditions %v %v", conds, err)
	}
	rules, err := cfg.BitrateRules()
	if err != nil || len(rules) != 1 || rules[0].Kbps != 256 {
		t.Fatalf("unexpected bitrate rules %v %v", rules, err)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	tests := map[string]string{
		"bad rule":        "[convert]\nconversions = [\"flac=opus\"]\n",
		"bad bitrate":     "[convert]\nbitrates = [\"mp3\"]\n",
		"bad backend":     "[convert]\nmeta_backend = \"lofty\"\n",
		"bad color":       "[output]\ncolor = \"rainbow\"\n",
		"bad level":       "[logging]\nlevel = \"loud\"\n",
		"bad partext":     "[encoder]\npart_ext = \"a/b\"\n",
		"audio partext":   "[encoder]\npart_ext = \".MP3\"\n",
		"archive partext": "[encoder]\npart_ext = \"zip\"\n",
		"unknown key":     "[encoder]\nffmpeg_bin = \"x\"\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, _, _, err := config.Load(path); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var decoded config.Config
	if err := toml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("sample is not valid TOML: %v", err)
	}
	if !strings.Contains(string(data), "[convert]") {
		t.Fatal("sample lacks convert section")
	}
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample does not load: %v", err)
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	got, err := config.ExpandPath("~/music")
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(home, "music") {
		t.Fatalf("unexpected expansion %q", got)
	}
	if got, _ := config.ExpandPath(""); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}
