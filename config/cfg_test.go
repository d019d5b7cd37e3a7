package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rupor-github/gencfg"

	"ldtools/common"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfiguration_NoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() with empty path error = %v", err)
	}
	if cfg == nil {
		t.Fatal("LoadConfiguration() returned nil config")
	}
	if cfg.Version != 1 {
		t.Errorf("Default config version = %d, want 1", cfg.Version)
	}
}

func TestLoadConfiguration_Defaults(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if cfg.Document.Format != common.CodeFormatFull {
		t.Errorf("Format = %s, want full", cfg.Document.Format)
	}
	if cfg.Document.DefaultCulling != common.CullingModeNotset {
		t.Errorf("DefaultCulling = %s, want notset", cfg.Document.DefaultCulling)
	}
	if !cfg.Document.KeepLineEndings {
		t.Error("KeepLineEndings should be on by default")
	}
	if cfg.Check.Missing != MissingPolicyWarn {
		t.Errorf("Missing = %s, want warn", cfg.Check.Missing)
	}
	if !cfg.Library.Trusted {
		t.Error("Library roots should be trusted by default")
	}
	if cfg.Library.CacheCapacity != 2048 {
		t.Errorf("CacheCapacity = %d, want 2048", cfg.Library.CacheCapacity)
	}
	if len(cfg.Library.Roots) != 0 {
		t.Errorf("Roots = %v, want none", cfg.Library.Roots)
	}
	if len(cfg.Document.OutputNameTemplate) != 0 {
		t.Errorf("OutputNameTemplate = %q, want empty", cfg.Document.OutputNameTemplate)
	}
}

func TestLoadConfiguration_WithFile(t *testing.T) {
	tmpDir := t.TempDir()
	libDir := filepath.Join(tmpDir, "ldraw")
	if err := os.MkdirAll(libDir, 0755); err != nil {
		t.Fatal(err)
	}

	configPath := writeConfig(t, `version: 1
library:
  roots:
    - path: `+libDir+`
      kind: directory
    - path: `+filepath.Join(tmpDir, "complete.zip")+`
      kind: archive
  trusted: false
  cache_capacity: 16
document:
  format: repository
  default_culling: ccw
  output_name_template: "{{ .Name }}"
check:
  missing_references: fail
  warn_singular_matrix: false
logging:
  console:
    level: normal
  file:
    level: debug
    destination: `+filepath.Join(tmpDir, "test.log")+`
    mode: append
reporting:
  destination: `+filepath.Join(tmpDir, "test-report.zip")+`
`)

	cfg, err := LoadConfiguration(configPath)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if len(cfg.Library.Roots) != 2 {
		t.Fatalf("Roots length = %d, want 2", len(cfg.Library.Roots))
	}
	if cfg.Library.Roots[0].Kind != RootKindDirectory || cfg.Library.Roots[1].Kind != RootKindArchive {
		t.Errorf("Root kinds = %s, %s", cfg.Library.Roots[0].Kind, cfg.Library.Roots[1].Kind)
	}
	if cfg.Library.Trusted {
		t.Error("Expected Trusted to be false")
	}
	if cfg.Library.CacheCapacity != 16 {
		t.Errorf("CacheCapacity = %d, want 16", cfg.Library.CacheCapacity)
	}
	if cfg.Document.Format != common.CodeFormatRepository {
		t.Errorf("Format = %s, want repository", cfg.Document.Format)
	}
	if cfg.Document.DefaultCulling != common.CullingModeCcw {
		t.Errorf("DefaultCulling = %s, want ccw", cfg.Document.DefaultCulling)
	}
	if cfg.Document.OutputNameTemplate != "{{ .Name }}" {
		t.Errorf("OutputNameTemplate = %q", cfg.Document.OutputNameTemplate)
	}
	if cfg.Check.Missing != MissingPolicyFail {
		t.Errorf("Missing = %s, want fail", cfg.Check.Missing)
	}
	if cfg.Check.SingularWarns {
		t.Error("Expected SingularWarns to be false")
	}
	if cfg.Logging.FileLogger.Mode != "append" {
		t.Errorf("FileLogger.Mode = %q, want append", cfg.Logging.FileLogger.Mode)
	}
}

func TestLoadConfiguration_MergeWithDefaults(t *testing.T) {
	configPath := writeConfig(t, `version: 1
check:
  missing_references: ignore
`)

	cfg, err := LoadConfiguration(configPath)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if cfg.Check.Missing != MissingPolicyIgnore {
		t.Errorf("Missing = %s, want ignore", cfg.Check.Missing)
	}
	if !cfg.Check.SingularWarns {
		t.Error("SingularWarns should keep its default")
	}
	if cfg.Library.CacheCapacity != 2048 {
		t.Errorf("CacheCapacity = %d, want default 2048", cfg.Library.CacheCapacity)
	}
}

func TestLoadConfiguration_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid yaml", "version: 1\ndocument:\n  format: full\n  invalid indent\n"},
		{"unknown field", "version: 1\nunknown_field: value\n"},
		{"bad version", "version: 2\n"},
		{"bad format", "version: 1\ndocument:\n  format: pretty\n"},
		{"bad culling", "version: 1\ndocument:\n  default_culling: both\n"},
		{"bad policy", "version: 1\ncheck:\n  missing_references: panic\n"},
		{"bad root kind", "version: 1\nlibrary:\n  roots:\n    - path: /tmp\n      kind: cloud\n"},
		{"negative capacity", "version: 1\nlibrary:\n  cache_capacity: -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfiguration(writeConfig(t, tt.content)); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestLoadConfiguration_NonExistentFile(t *testing.T) {
	if _, err := LoadConfiguration("/nonexistent/config.yaml"); err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestLoadConfiguration_WithOptions(t *testing.T) {
	option := func(opts *gencfg.ProcessingOptions) {}

	cfg, err := LoadConfiguration("", option)
	if err != nil {
		t.Fatalf("LoadConfiguration() with options error = %v", err)
	}
	if cfg == nil {
		t.Fatal("LoadConfiguration() returned nil config")
	}
}

func TestUnmarshalConfig(t *testing.T) {
	t.Run("valid config without processing", func(t *testing.T) {
		result, err := unmarshalConfig([]byte(`version: 1`), &Config{}, false)
		if err != nil {
			t.Fatalf("unmarshalConfig() error = %v", err)
		}
		if result.Version != 1 {
			t.Errorf("Version = %d, want 1", result.Version)
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		if _, err := unmarshalConfig([]byte(`invalid: [yaml`), &Config{}, false); err == nil {
			t.Error("Expected error for invalid YAML")
		}
	})

	t.Run("validation error is wrapped", func(t *testing.T) {
		_, err := unmarshalConfig([]byte("version: 3\nreporting:\n  destination: r.zip\nlogging:\n  console:\n    level: none\n  file:\n    level: none\n"), &Config{}, true)
		if err == nil {
			t.Fatal("Expected validation error")
		}
		if !strings.Contains(err.Error(), "validate") {
			t.Errorf("error %q does not mention validation", err)
		}
		if errors.Unwrap(err) == nil {
			t.Error("validation error is not wrapped")
		}
	})
}

func TestPrepare(t *testing.T) {
	data, err := Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Prepare() returned empty data")
	}
	if !strings.Contains(string(data), string(OutputNameTemplateFieldName)) {
		t.Errorf("Prepared config has no %s field", OutputNameTemplateFieldName)
	}
	if _, err := unmarshalConfig(data, &Config{}, true); err != nil {
		t.Errorf("Prepared config is not valid: %v", err)
	}
}

func TestDump(t *testing.T) {
	cfg := &Config{
		Version: 1,
		Library: LibraryConfig{
			Roots:         []RootConfig{{Path: "/usr/share/ldraw", Kind: RootKindDirectory}},
			CacheCapacity: 10,
		},
		Document: DocumentConfig{
			Format:         common.CodeFormatLibrary,
			DefaultCulling: common.CullingModeCw,
		},
		Check: CheckConfig{Missing: MissingPolicyFail},
	}

	data, err := Dump(cfg)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	for _, want := range []string{"format: library", "default_culling: cw", "missing_references: fail", "kind: directory"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("Dump() output has no %q:\n%s", want, data)
		}
	}

	cfg2, err := unmarshalConfig(data, &Config{}, false)
	if err != nil {
		t.Fatalf("Dumped config cannot be loaded: %v", err)
	}
	if cfg2.Document.Format != cfg.Document.Format || cfg2.Check.Missing != cfg.Check.Missing {
		t.Errorf("Mismatch after dump/load: %+v", cfg2)
	}
	if len(cfg2.Library.Roots) != 1 || cfg2.Library.Roots[0].Path != "/usr/share/ldraw" {
		t.Errorf("Roots mismatch after dump/load: %+v", cfg2.Library.Roots)
	}
}

func TestEnums(t *testing.T) {
	t.Run("root kind", func(t *testing.T) {
		if got := RootKindNames(); strings.Join(got, ",") != "auto,directory,archive" {
			t.Errorf("RootKindNames() = %v", got)
		}
		if RootKind(42).IsValid() {
			t.Error("RootKind(42) must not be valid")
		}
		if got := RootKind(42).String(); got != "RootKind(42)" {
			t.Errorf("String() = %q", got)
		}
		if _, err := ParseRootKind("cloud"); !errors.Is(err, ErrInvalidRootKind) {
			t.Errorf("ParseRootKind() error = %v", err)
		}
	})
	t.Run("missing policy", func(t *testing.T) {
		var p MissingPolicy
		if err := p.UnmarshalText([]byte("fail")); err != nil || p != MissingPolicyFail {
			t.Errorf("UnmarshalText() = %s, %v", p, err)
		}
		if err := p.UnmarshalText([]byte("explode")); !errors.Is(err, ErrInvalidMissingPolicy) {
			t.Errorf("UnmarshalText() error = %v", err)
		}
	})
}

func TestCleanFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"car.ldr", "car.ldr"},
		{"", "_bad_file_name_"},
		{"a" + string(os.PathSeparator) + "b", "ab"},
		{`s\axle.dat`, "saxle.dat"},
		{"..hidden.ldr", "hidden.ldr"},
		{"car\x00\t.ldr", "car.ldr"},
		{"...", "_bad_file_name_"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := CleanFileName(tt.in); got != tt.want {
				t.Errorf("CleanFileName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
