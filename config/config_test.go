package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// fakeFS is a FileSystem over a fixed set of paths.
type fakeFS struct {
	files map[string]bool
}

func (f *fakeFS) Exists(path string) bool   { return f.files[path] }
func (f *fakeFS) LoadEnv(path string) error { return nil }

func TestConfigApplyDefaults(t *testing.T) {
	t.Run("empty config gets full defaults", func(t *testing.T) {
		var cfg Config
		cfg.ApplyDefaults()
		if cfg.Name != "imageflow" {
			t.Errorf("expected name 'imageflow', got %q", cfg.Name)
		}
		if cfg.Environment != "development" {
			t.Errorf("expected 'development', got %q", cfg.Environment)
		}
		if !cfg.Debug {
			t.Error("expected debug=true for development")
		}
		if cfg.Workflows.Dir != "workflows" {
			t.Errorf("expected workflows dir 'workflows', got %q", cfg.Workflows.Dir)
		}
		if cfg.Logging.Level != "info" {
			t.Errorf("expected log level 'info', got %q", cfg.Logging.Level)
		}
		if cfg.Telemetry.SampleRate != 1.0 {
			t.Errorf("expected sample rate 1.0, got %g", cfg.Telemetry.SampleRate)
		}
	})

	t.Run("production environment keeps debug false", func(t *testing.T) {
		cfg := Config{Environment: "production"}
		cfg.ApplyDefaults()
		if cfg.Debug {
			t.Error("expected debug=false for production")
		}
	})
}

func TestConfigValidate(t *testing.T) {
	valid := func() Config {
		var cfg Config
		cfg.ApplyDefaults()
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
		errMsg  string
	}{
		{"defaults are valid", func(c *Config) {}, false, ""},
		{"staging is valid", func(c *Config) { c.Environment = "staging" }, false, ""},
		{"invalid environment", func(c *Config) { c.Environment = "qa" }, true, "config.environment must be one of"},
		{"negative workers", func(c *Config) { c.Batch.Workers = -1 }, true, "config.batch.workers"},
		{"sample rate above one", func(c *Config) { c.Telemetry.SampleRate = 1.5 }, true, "config.telemetry.sample_rate"},
		{"invalid log level", func(c *Config) { c.Logging.Level = "loud" }, true, "config.logging"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !strings.Contains(err.Error(), tc.errMsg) {
					t.Fatalf("expected error containing %q, got %q", tc.errMsg, err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestLoadFromConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "imageflow.yml")
	content := `environment: production
logging:
  level: debug
  format: json
workflows:
  dir: /data/workflows
batch:
  workers: 8
  output_dir: /data/out
telemetry:
  enabled: true
  endpoint: collector:4318
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(WithConfigFile(path))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Environment != "production" {
		t.Errorf("expected 'production', got %q", cfg.Environment)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("unexpected logging config: %+v", cfg.Logging)
	}
	if cfg.Workflows.Dir != "/data/workflows" {
		t.Errorf("expected workflows dir '/data/workflows', got %q", cfg.Workflows.Dir)
	}
	if cfg.Batch.Workers != 8 || cfg.Batch.OutputDir != "/data/out" {
		t.Errorf("unexpected batch config: %+v", cfg.Batch)
	}
	if !cfg.Telemetry.Enabled || cfg.Telemetry.Endpoint != "collector:4318" {
		t.Errorf("unexpected telemetry config: %+v", cfg.Telemetry)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "imageflow.yml")
	if err := os.WriteFile(path, []byte("batch:\n  workers: 2\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("IMAGEFLOW_BATCH_WORKERS", "6")
	t.Setenv("IMAGEFLOW_BATCH_OUTPUT_DIR", "/env/out")

	cfg, err := Load(WithConfigFile(path))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Batch.Workers != 6 {
		t.Errorf("expected env to win with 6 workers, got %d", cfg.Batch.Workers)
	}
	if cfg.Batch.OutputDir != "/env/out" {
		t.Errorf("expected '/env/out', got %q", cfg.Batch.OutputDir)
	}
}

func TestLoadWithoutAnyFiles(t *testing.T) {
	cfg, err := Load(WithFileSystem(&fakeFS{}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Name != "imageflow" {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestResolverPrefersExplicitPaths(t *testing.T) {
	fs := &fakeFS{files: map[string]bool{"./imageflow.yml": true}}
	r := &Resolver{FileSystem: fs}

	resolved := r.ResolveFiles(LoaderConfig{ConfigFile: "/explicit/conf.yml"})
	if resolved.ConfigFile != "/explicit/conf.yml" {
		t.Errorf("expected explicit path to win, got %q", resolved.ConfigFile)
	}

	resolved = r.ResolveFiles(LoaderConfig{})
	if resolved.ConfigFile != "./imageflow.yml" {
		t.Errorf("expected search hit, got %q", resolved.ConfigFile)
	}
}

func TestEnvKeyVariants(t *testing.T) {
	variants := envKeyVariants("BATCH_OUTPUT_DIR")
	want := map[string]bool{
		"batch_output_dir": false,
		"batch.output.dir": false,
		"batch.output_dir": false,
	}
	for _, v := range variants {
		if _, ok := want[v]; ok {
			want[v] = true
		}
	}
	for k, found := range want {
		if !found {
			t.Errorf("expected variant %q in %v", k, variants)
		}
	}
}
