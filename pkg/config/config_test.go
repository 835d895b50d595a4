package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/falk/nvhr-go/pkg/nvhr"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func lookupMap(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Preview != 500 {
		t.Errorf("Preview = %d, want 500", cfg.Preview)
	}
	if cfg.TextModeValue() != nvhr.TextDrop {
		t.Errorf("TextMode = %q, want drop", cfg.TextMode)
	}
	if int64(cfg.MaxPayloadSize) != nvhr.DefaultMaxPayloadSize {
		t.Errorf("MaxPayloadSize = %d", cfg.MaxPayloadSize)
	}
	if cfg.Analyze {
		t.Error("Analyze should default to false")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() failed: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "nvhr.yaml", `
log_level: debug
preview: 80
text_mode: replace
max_payload_size: 64MiB
analyze: true
color: false
`)

	cfg := Default()
	if err := LoadFile(path, cfg); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.LogLevel != "debug" || cfg.Preview != 80 || !cfg.Analyze || cfg.Color {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.TextModeValue() != nvhr.TextReplace {
		t.Errorf("TextMode = %q, want replace", cfg.TextMode)
	}
	if cfg.MaxPayloadSize != 64<<20 {
		t.Errorf("MaxPayloadSize = %d, want %d", cfg.MaxPayloadSize, 64<<20)
	}
}

func TestLoadFilePlainIntegerSize(t *testing.T) {
	path := writeFile(t, t.TempDir(), "c.yaml", "max_payload_size: 1048576\n")
	cfg := Default()
	if err := LoadFile(path, cfg); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.MaxPayloadSize != 1<<20 {
		t.Errorf("MaxPayloadSize = %d, want %d", cfg.MaxPayloadSize, 1<<20)
	}
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"unknown key", "offsets: [20]\n"},
		{"bad size", "max_payload_size: lots\n"},
		{"bad yaml", "preview: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, strings.ReplaceAll(tt.name, " ", "_")+".yaml", tt.content)
			if err := LoadFile(path, Default()); err == nil {
				t.Errorf("LoadFile(%q) should fail", tt.content)
			}
		})
	}

	t.Run("missing", func(t *testing.T) {
		if err := LoadFile(filepath.Join(dir, "nope.yaml"), Default()); err == nil {
			t.Error("LoadFile on missing file should fail")
		}
	})
}

func TestLoadFileEmpty(t *testing.T) {
	path := writeFile(t, t.TempDir(), "empty.yaml", "")
	cfg := Default()
	if err := LoadFile(path, cfg); err != nil {
		t.Fatalf("LoadFile on empty file failed: %v", err)
	}
	if cfg.Preview != DefaultPreview {
		t.Errorf("empty file changed Preview to %d", cfg.Preview)
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := ApplyEnv(cfg, lookupMap(map[string]string{
		EnvLogLevel:   "error",
		EnvPreview:    "42",
		EnvTextMode:   "replace",
		EnvMaxPayload: "1 MB",
		EnvAnalyze:    "true",
		EnvNoColor:    "1",
	}))
	if err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}
	if cfg.LogLevel != "error" || cfg.Preview != 42 || cfg.TextMode != "replace" || !cfg.Analyze || cfg.Color {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.MaxPayloadSize != 1000000 {
		t.Errorf("MaxPayloadSize = %d, want 1000000", cfg.MaxPayloadSize)
	}
}

func TestApplyEnvInvalid(t *testing.T) {
	for _, env := range []map[string]string{
		{EnvPreview: "many"},
		{EnvAnalyze: "perhaps"},
		{EnvMaxPayload: "-5"},
	} {
		if err := ApplyEnv(Default(), lookupMap(env)); err == nil {
			t.Errorf("ApplyEnv(%v) should fail", env)
		}
	}
}

func TestApplyEnvEmptyValuesIgnored(t *testing.T) {
	cfg := Default()
	if err := ApplyEnv(cfg, lookupMap(map[string]string{EnvPreview: "", EnvNoColor: ""})); err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}
	if cfg.Preview != DefaultPreview || !cfg.Color {
		t.Errorf("empty variables changed config: %+v", cfg)
	}
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "nvhr.yaml", "preview: 100\nlog_level: debug\n")

	t.Setenv(EnvConfig, "")
	t.Setenv(EnvPreview, "7")
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvTextMode, "")
	t.Setenv(EnvMaxPayload, "")
	t.Setenv(EnvAnalyze, "")
	t.Setenv(EnvNoColor, "")

	cfg, used, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if used != path {
		t.Errorf("used config %q, want %q", used, path)
	}
	if cfg.Preview != 7 {
		t.Errorf("Preview = %d, want env value 7", cfg.Preview)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want file value debug", cfg.LogLevel)
	}
}

func TestLoadFromEnvPath(t *testing.T) {
	path := writeFile(t, t.TempDir(), "env.yaml", "text_mode: replace\n")
	t.Setenv(EnvConfig, path)
	t.Setenv(EnvTextMode, "")

	cfg, used, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if used != path || cfg.TextMode != "replace" {
		t.Errorf("Load() = %+v from %q", cfg, used)
	}
}

func TestLoadInvalid(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.yaml", "text_mode: strict\n")
	t.Setenv(EnvTextMode, "")
	if _, _, err := Load(path); err == nil {
		t.Error("Load with text_mode strict should fail validation")
	}
	if _, _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load with explicit missing file should fail")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, ".env", EnvPreview+"=123\n")

	t.Setenv(EnvPreview, "")
	os.Unsetenv(EnvPreview)

	if err := LoadDotEnv(filepath.Join(dir, "missing.env"), path); err != nil {
		t.Fatalf("LoadDotEnv failed: %v", err)
	}
	if got := os.Getenv(EnvPreview); got != "123" {
		t.Errorf("%s = %q, want 123", EnvPreview, got)
	}
}

func TestByteSize(t *testing.T) {
	var b ByteSize
	if err := b.Set("2KiB"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if b != 2048 {
		t.Errorf("ByteSize = %d, want 2048", b)
	}
	if b.String() != "2.0 KiB" {
		t.Errorf("String() = %q, want %q", b.String(), "2.0 KiB")
	}
	if b.Type() != "bytes" {
		t.Errorf("Type() = %q", b.Type())
	}
}
