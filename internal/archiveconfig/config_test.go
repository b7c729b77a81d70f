package archiveconfig

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default max depth", func(t *testing.T) {
		t.Parallel()
		if cfg.Crawling.MaxDepth != DefaultMaxDepth {
			t.Errorf("expected MaxDepth %d, got %d", DefaultMaxDepth, cfg.Crawling.MaxDepth)
		}
	})

	t.Run("default max pages", func(t *testing.T) {
		t.Parallel()
		if cfg.Crawling.MaxPages != DefaultMaxPages {
			t.Errorf("expected MaxPages %d, got %d", DefaultMaxPages, cfg.Crawling.MaxPages)
		}
	})

	t.Run("default navigation policy is limited", func(t *testing.T) {
		t.Parallel()
		if cfg.PathScoping.AllowNavigation != NavLimited {
			t.Errorf("expected NavLimited, got %s", cfg.PathScoping.AllowNavigation)
		}
	})

	t.Run("default blocked patterns cover admin and login paths", func(t *testing.T) {
		t.Parallel()
		if len(cfg.PathScoping.BlockedPatterns) == 0 {
			t.Fatal("expected NewConfig to populate a default blocked-pattern list")
		}
		want := []string{"/admin/*", "/login/*", "/xmlrpc.php"}
		for _, w := range want {
			found := false
			for _, p := range cfg.PathScoping.BlockedPatterns {
				if p == w {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("expected default blocked patterns to include %q", w)
			}
		}
	})

	t.Run("default session timeout is 24 hours", func(t *testing.T) {
		t.Parallel()
		if cfg.Cache.SessionTimeoutHours != 24 {
			t.Errorf("expected 24, got %d", cfg.Cache.SessionTimeoutHours)
		}
	})

	t.Run("default chunk size parses", func(t *testing.T) {
		t.Parallel()
		if _, err := ParseSize(cfg.Chunking.DefaultMaxSize); err != nil {
			t.Errorf("default chunk size %q does not parse: %v", cfg.Chunking.DefaultMaxSize, err)
		}
	})
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	t.Run("default config is valid", func(t *testing.T) {
		t.Parallel()
		if err := NewConfig().Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("negative max depth", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.Crawling.MaxDepth = -1
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidMaxDepth) {
			t.Errorf("expected ErrInvalidMaxDepth, got %v", err)
		}
	})

	t.Run("negative request delay", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.Crawling.RequestDelay = -1 * time.Second
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidRequestDelay) {
			t.Errorf("expected ErrInvalidRequestDelay, got %v", err)
		}
	})

	t.Run("invalid navigation policy", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.PathScoping.AllowNavigation = "strict"
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidNavigationPolicy) {
			t.Errorf("expected ErrInvalidNavigationPolicy, got %v", err)
		}
	})

	t.Run("valid navigation policies", func(t *testing.T) {
		t.Parallel()
		for _, p := range []NavigationPolicy{NavNone, NavLimited, NavAll} {
			cfg := NewConfig()
			cfg.PathScoping.AllowNavigation = p
			if err := cfg.Validate(); err != nil {
				t.Errorf("policy %s: expected no error, got %v", p, err)
			}
		}
	})

	t.Run("compression level out of range", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.Cache.CompressionLevel = 0
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidCompressionLevel) {
			t.Errorf("expected ErrInvalidCompressionLevel, got %v", err)
		}

		cfg.Cache.CompressionLevel = 10
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidCompressionLevel) {
			t.Errorf("expected ErrInvalidCompressionLevel, got %v", err)
		}
	})

	t.Run("unparseable chunk size", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.Chunking.DefaultMaxSize = "not-a-size"
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidChunkSize) {
			t.Errorf("expected ErrInvalidChunkSize, got %v", err)
		}
	})

	t.Run("invalid pdf orientation", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.PDF.Orientation = "sideways"
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidOrientation) {
			t.Errorf("expected ErrInvalidOrientation, got %v", err)
		}
	})
}

func TestFileForHost(t *testing.T) {
	t.Parallel()

	t.Run("returns defaults when host not found", func(t *testing.T) {
		t.Parallel()

		f := &File{
			Defaults: HostOverride{MaxDepth: 3, Cookie: "default=abc"},
			Hosts:    map[string]HostOverride{},
		}

		o := f.ForHost("unknown.example.org")
		if o.MaxDepth != 3 || o.Cookie != "default=abc" {
			t.Errorf("expected defaults, got %+v", o)
		}
	})

	t.Run("host entry overrides defaults", func(t *testing.T) {
		t.Parallel()

		f := &File{
			Defaults: HostOverride{MaxDepth: 3, Cookie: "default=abc"},
			Hosts: map[string]HostOverride{
				"docs.example.org": {MaxDepth: 7, Cookie: "session=xyz"},
			},
		}

		o := f.ForHost("docs.example.org")
		if o.MaxDepth != 7 || o.Cookie != "session=xyz" {
			t.Errorf("expected host override, got %+v", o)
		}
	})

	t.Run("headers merge with host winning on collision", func(t *testing.T) {
		t.Parallel()

		f := &File{
			Defaults: HostOverride{Headers: map[string]string{"X-Default": "v1", "X-Shared": "default"}},
			Hosts: map[string]HostOverride{
				"docs.example.org": {Headers: map[string]string{"X-Shared": "host", "X-Host": "v2"}},
			},
		}

		o := f.ForHost("docs.example.org")
		if o.Headers["X-Default"] != "v1" {
			t.Errorf("expected default header preserved, got %v", o.Headers)
		}
		if o.Headers["X-Host"] != "v2" {
			t.Errorf("expected host header, got %v", o.Headers)
		}
		if o.Headers["X-Shared"] != "host" {
			t.Errorf("expected host header to win, got %v", o.Headers)
		}
	})

	t.Run("zero max depth falls back to default", func(t *testing.T) {
		t.Parallel()

		f := &File{
			Defaults: HostOverride{MaxDepth: 4},
			Hosts: map[string]HostOverride{
				"docs.example.org": {Cookie: "session=abc"},
			},
		}

		o := f.ForHost("docs.example.org")
		if o.MaxDepth != 4 {
			t.Errorf("expected default max depth 4, got %d", o.MaxDepth)
		}
	})
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for missing file", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfig("/nonexistent/path/archivist.yaml")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got %v", err)
		}
		if cfg != nil {
			t.Error("expected nil config")
		}
	})

	t.Run("loads and overlays a partial YAML file onto defaults", func(t *testing.T) {
		t.Parallel()

		tmpDir := t.TempDir()
		path := filepath.Join(tmpDir, "archivist.yaml")
		content := `
crawling:
  max_depth: 9
path_scoping:
  allow_navigation: all
`
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Crawling.MaxDepth != 9 {
			t.Errorf("expected overridden MaxDepth 9, got %d", cfg.Crawling.MaxDepth)
		}
		if cfg.PathScoping.AllowNavigation != NavAll {
			t.Errorf("expected NavAll, got %s", cfg.PathScoping.AllowNavigation)
		}
		// Untouched sections keep their defaults.
		if cfg.Crawling.MaxPages != DefaultMaxPages {
			t.Errorf("expected default MaxPages preserved, got %d", cfg.Crawling.MaxPages)
		}
		if cfg.ConfigFilePath != path {
			t.Errorf("expected ConfigFilePath set to %q, got %q", path, cfg.ConfigFilePath)
		}
	})

	t.Run("invalid yaml returns error", func(t *testing.T) {
		t.Parallel()

		tmpDir := t.TempDir()
		path := filepath.Join(tmpDir, "archivist.yaml")
		if err := os.WriteFile(path, []byte("crawling: [}"), 0o600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfig(path); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})
}

func TestFindConfigFile(t *testing.T) {
	t.Run("returns explicit path if it exists", func(t *testing.T) {
		tmpDir := t.TempDir()
		path := filepath.Join(tmpDir, "custom.yaml")
		if err := os.WriteFile(path, []byte("crawling: {}"), 0o600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if got := FindConfigFile(path); got != path {
			t.Errorf("expected %q, got %q", path, got)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		if got := FindConfigFile("/nonexistent/path/config.yaml"); got != "" {
			t.Errorf("expected empty string, got %q", got)
		}
	})
}

func TestXDGDirs(t *testing.T) {
	t.Parallel()

	for name, fn := range map[string]func() string{
		"data":   XDGDataDir,
		"config": XDGConfigDir,
		"cache":  XDGCacheDir,
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if fn() == "" {
				t.Error("expected non-empty path")
			}
		})
	}
}

func TestFormatSize(t *testing.T) {
	t.Parallel()

	if got := FormatSize(0); got == "" {
		t.Error("expected non-empty formatted size")
	}
}
