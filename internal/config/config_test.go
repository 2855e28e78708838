package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestModeLevel(t *testing.T) {
	tests := []struct {
		mode  Mode
		level int
	}{
		{ModeViewer, 0},
		{ModeEditor, 1},
	}

	for _, tt := range tests {
		if got := tt.mode.Level(); got != tt.level {
			t.Errorf("Mode(%s).Level() = %d, want %d", tt.mode, got, tt.level)
		}
	}
}

func TestModeAllows(t *testing.T) {
	tests := []struct {
		current  Mode
		required Mode
		allowed  bool
	}{
		{ModeEditor, ModeViewer, true},
		{ModeEditor, ModeEditor, true},
		{ModeViewer, ModeViewer, true},
		{ModeViewer, ModeEditor, false},
	}

	for _, tt := range tests {
		if got := tt.current.Allows(tt.required); got != tt.allowed {
			t.Errorf("Mode(%s).Allows(%s) = %v, want %v",
				tt.current, tt.required, got, tt.allowed)
		}
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		input string
		want  Mode
	}{
		{"viewer", ModeViewer},
		{"editor", ModeEditor},
		{"edit", ModeEditor},
		{"invalid", ModeViewer}, // Default
	}

	for _, tt := range tests {
		if got := ParseMode(tt.input); got != tt.want {
			t.Errorf("ParseMode(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestFeelGetProfile(t *testing.T) {
	snappy := FeelSnappy.GetProfile()
	standard := FeelStandard.GetProfile()
	smooth := FeelSmooth.GetProfile()

	if !(snappy.Friction < standard.Friction && standard.Friction < smooth.Friction) {
		t.Errorf("friction should grow from snappy to smooth: %v %v %v",
			snappy.Friction, standard.Friction, smooth.Friction)
	}
	if standard.Friction != 0.95 || standard.StopThreshold != 0.1 || standard.Interval != 16*time.Millisecond {
		t.Errorf("standard profile = %+v", standard)
	}
	if ParseFeel("bogus") != FeelStandard {
		t.Error("unknown feel should default to standard")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Version)
	}
	if cfg.Mode != ModeViewer {
		t.Errorf("Mode = %s, want viewer", cfg.Mode)
	}
	if cfg.Database.Path != "./storeplan.db" {
		t.Errorf("Database.Path = %s", cfg.Database.Path)
	}
	if cfg.World.Width != 1000 || cfg.World.Height != 700 {
		t.Errorf("World = %+v", cfg.World)
	}
	if cfg.Viewport.MinZoom != 0.5 || cfg.Viewport.MaxZoom != 3 {
		t.Errorf("Viewport = %+v", cfg.Viewport)
	}
}

func TestEffectiveMomentum(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Momentum.Feel = FeelSmooth

	friction := 0.9
	interval := Duration(8 * time.Millisecond)
	cfg.Momentum.Friction = &friction
	cfg.Momentum.Interval = &interval

	m := cfg.EffectiveMomentum()
	if m.Friction != 0.9 {
		t.Errorf("Friction = %v, want override 0.9", m.Friction)
	}
	if m.Interval != 8*time.Millisecond {
		t.Errorf("Interval = %s, want 8ms", m.Interval)
	}
	if m.StopThreshold != FeelSmooth.GetProfile().StopThreshold {
		t.Errorf("StopThreshold = %v, want the smooth profile value", m.StopThreshold)
	}
}

func TestEngineOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.World = WorldConfig{Width: 1200, Height: 800}
	cfg.Viewport.MaxZoom = 4

	opts := cfg.EngineOptions()
	if opts.World.Width != 1200 || opts.World.Height != 800 {
		t.Errorf("World = %+v", opts.World)
	}
	if opts.Limits.MaxZoom != 4 {
		t.Errorf("MaxZoom = %v, want 4", opts.Limits.MaxZoom)
	}
	if opts.Momentum.Friction != 0.95 {
		t.Errorf("Friction = %v", opts.Momentum.Friction)
	}
	if opts.MaxVelocityAge != 100*time.Millisecond {
		t.Errorf("MaxVelocityAge = %s", opts.MaxVelocityAge)
	}
	if opts.Manipulation.MoveSensitivity != 1.5 {
		t.Errorf("MoveSensitivity = %v", opts.Manipulation.MoveSensitivity)
	}
}

func TestSaveAndLoad(t *testing.T) {
	// Create temp directory
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	// Create and save config
	cfg := DefaultConfig()
	cfg.Mode = ModeEditor
	cfg.Momentum.Feel = FeelSnappy
	cfg.Layout.File = "plan.yaml"
	cfg.Layout.Watch = true

	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	// Load config
	loaded, path, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if path != configPath {
		t.Errorf("path = %s, want %s", path, configPath)
	}

	// Verify values
	if loaded.Mode != ModeEditor {
		t.Errorf("Mode = %s, want editor", loaded.Mode)
	}
	if loaded.Momentum.Feel != FeelSnappy {
		t.Errorf("Feel = %s, want snappy", loaded.Momentum.Feel)
	}
	if loaded.Layout.File != "plan.yaml" || !loaded.Layout.Watch {
		t.Errorf("Layout = %+v", loaded.Layout)
	}
	if loaded.Gesture.MaxVelocityAge.Duration() != 100*time.Millisecond {
		t.Errorf("MaxVelocityAge = %s", loaded.Gesture.MaxVelocityAge.Duration())
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("server:\n  addr: \":8080\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, _, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Addr = %s", cfg.Server.Addr)
	}
	if cfg.Database.Path != "./storeplan.db" || cfg.World.Width != 1000 {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if cfg.Mode != ModeViewer || cfg.Momentum.Feel != FeelStandard {
		t.Errorf("Mode = %s, Feel = %s", cfg.Mode, cfg.Momentum.Feel)
	}
}

func TestFindConfigPath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ConfigFileName)

	if err := DefaultConfig().Save(configPath); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	oldWd, _ := os.Getwd()
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(oldWd)

	if found := FindConfigPath(); found == "" {
		t.Error("FindConfigPath() should find config in working directory")
	}

	// A missing explicit path falls through to the working directory
	t.Setenv(EnvConfigPath, "/nonexistent/path.yaml")
	if found := FindConfigPath(); found == "" {
		t.Error("FindConfigPath() should fall back when env path doesn't exist")
	}

	explicit := filepath.Join(t.TempDir(), "explicit.yaml")
	if err := DefaultConfig().Save(explicit); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvConfigPath, explicit)
	if found := FindConfigPath(); found != explicit {
		t.Errorf("FindConfigPath() = %q, want %q", found, explicit)
	}
}

func TestSearchPathsOrder(t *testing.T) {
	t.Setenv(EnvConfigPath, "/explicit.yaml")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	t.Setenv("HOME", "/home/clerk")

	paths := SearchPaths()
	want := []string{
		"/explicit.yaml",
		"", // working directory, checked by suffix
		"/xdg/storeplan/config.yaml",
		"/home/clerk/.config/storeplan/config.yaml",
		"/etc/storeplan/config.yaml",
	}
	if len(paths) != len(want) {
		t.Fatalf("SearchPaths() = %v", paths)
	}
	for i, w := range want {
		if w == "" {
			if filepath.Base(paths[i]) != ConfigFileName {
				t.Errorf("paths[%d] = %q, want the working directory file", i, paths[i])
			}
			continue
		}
		if paths[i] != w {
			t.Errorf("paths[%d] = %q, want %q", i, paths[i], w)
		}
	}

	t.Setenv(EnvConfigPath, "")
	t.Setenv("XDG_CONFIG_HOME", "")
	if got := SearchPaths(); len(got) != 3 {
		t.Errorf("SearchPaths() without env = %v", got)
	}
}

func TestDuration(t *testing.T) {
	d := Duration(5 * time.Minute)

	if d.Duration() != 5*time.Minute {
		t.Errorf("Duration() = %s, want 5m", d.Duration())
	}

	// Test YAML marshaling
	marshaled, err := d.MarshalYAML()
	if err != nil {
		t.Fatalf("MarshalYAML() error: %v", err)
	}
	if marshaled != "5m0s" {
		t.Errorf("MarshalYAML() = %v, want 5m0s", marshaled)
	}
}
