package convert

import (
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"ldtools/common"
	"ldtools/config"
	"ldtools/content"
	"ldtools/dom"
	"ldtools/state"
)

func setupTestEnvForOutputPath(t *testing.T, noDirs bool, transliterate bool, template string) *state.LocalEnv {
	t.Helper()
	logger := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	cfg.Document.FileNameTransliterate = transliterate
	cfg.Document.OutputNameTemplate = template

	return &state.LocalEnv{
		Log:    logger,
		Cfg:    cfg,
		NoDirs: noDirs,
		Format: common.CodeFormatFull,
	}
}

func TestBuildOutputPath(t *testing.T) {
	c := setupTestContent(t, testMPD, "models/town/car.mpd")

	tests := []struct {
		name     string
		noDirs   bool
		template string
		page     int
		want     string
	}{
		{"document no dirs", true, "", -1, filepath.Join("/output", "car.mpd")},
		{"document with dirs", false, "", -1, filepath.Join("/output", "models", "town", "car.mpd")},
		{"page no dirs", true, "", 1, filepath.Join("/output", "wheel.ldr")},
		{"page with dirs", false, "", 0, filepath.Join("/output", "models", "town", "Car.ldr")},
		{"library page", true, "", 2, filepath.Join("/output", "s", "axle.dat")},
		{"template", true, "{{ .Name }}/{{ .PageIndex }}-{{ .Page }}", 1, filepath.Join("/output", "car", "2-wheel.ldr")},
		{"template for document", true, "{{ .Author }}/{{ .Title }}", -1, filepath.Join("/output", "Jane Doe", "Red Car.mpd")},
		{"broken template", true, "{{ .Nothing }}", 1, filepath.Join("/output", "wheel.ldr")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestEnvForOutputPath(t, tt.noDirs, false, tt.template)
			var page *dom.Page
			index := 0
			if tt.page >= 0 {
				page, index = c.Doc.PageAt(tt.page), tt.page
			}
			if got := buildOutputPath(c, page, index, "/output", env); got != tt.want {
				t.Errorf("buildOutputPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildOutputPath_UnnamedPage(t *testing.T) {
	doc := dom.NewDocument("sketch.ldr")
	for _, name := range []string{"wheel.ldr", ""} {
		if err := doc.AddPage(dom.NewPage(name)); err != nil {
			t.Fatalf("AddPage(%q) error = %v", name, err)
		}
	}
	c := &content.Content{Doc: doc, SrcName: "sketch.ldr"}
	env := setupTestEnvForOutputPath(t, true, false, "")

	for i, want := range []string{"wheel.ldr", "sketch-2.ldr"} {
		if got := buildOutputPath(c, doc.PageAt(i), i, "/output", env); got != filepath.Join("/output", want) {
			t.Errorf("buildOutputPath(page %d) = %q, want %q", i, got, filepath.Join("/output", want))
		}
	}
}

func TestDetermineOutputDir(t *testing.T) {
	tests := []struct {
		name   string
		noDirs bool
		want   string
	}{
		{"no dirs", true, "/output"},
		{"with dirs", false, filepath.Join("/output", "models", "town")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestEnvForOutputPath(t, tt.noDirs, false, "")
			if got := determineOutputDir(filepath.Join("models", "town", "car.ldr"), "/output", env); got != tt.want {
				t.Errorf("determineOutputDir() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMakeDefaultFileName(t *testing.T) {
	tests := []struct {
		name          string
		src           string
		transliterate bool
		expected      string
	}{
		{"simple", "car.ldr", false, "car.ldr"},
		{"with path", "path/to/car.ldr", false, "car.ldr"},
		{"transliterate", "Машина.ldr", true, "mashina.ldr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestEnvForOutputPath(t, true, tt.transliterate, "")
			if got := makeDefaultFileName(tt.src, filepath.Ext(tt.src), env); got != tt.expected {
				t.Errorf("makeDefaultFileName() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestSplitPathSegments(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected []string
	}{
		{"simple path", filepath.Join("author", "car"), []string{"author", "car"}},
		{"single segment", "car", []string{"car"}},
		{"with trailing separator", filepath.Join("author", "car") + string(filepath.Separator), []string{"author", "car"}},
		{"three levels", filepath.Join("town", "author", "car"), []string{"town", "author", "car"}},
		{"empty path", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := splitPathSegments(tt.path)
			if len(result) != len(tt.expected) {
				t.Fatalf("splitPathSegments() = %v, want %v", result, tt.expected)
			}
			for i := range result {
				if result[i] != tt.expected[i] {
					t.Errorf("splitPathSegments()[%d] = %q, want %q", i, result[i], tt.expected[i])
				}
			}
		})
	}
}

func TestCleanPathSegment(t *testing.T) {
	tests := []struct {
		name          string
		segment       string
		transliterate bool
		expected      string
	}{
		{"simple segment", "author", false, "author"},
		{"with spaces", "Red Car", false, "Red Car"},
		{"transliterate cyrillic", "Автор", true, "avtor"},
		{"special chars", "car:red", false, "carred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestEnvForOutputPath(t, true, tt.transliterate, "")
			if got := cleanPathSegment(tt.segment, env); got != tt.expected {
				t.Errorf("cleanPathSegment() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestMakeFullPath(t *testing.T) {
	env := setupTestEnvForOutputPath(t, true, false, "")
	if got, want := makeFullPath("/output", filepath.Join("author", "car"), ".ldr", env), filepath.Join("/output", "author", "car.ldr"); got != want {
		t.Errorf("makeFullPath() = %q, want %q", got, want)
	}
	if got := makeFullPath("/output", "", ".ldr", env); got != "/output" {
		t.Errorf("makeFullPath() with empty path = %q", got)
	}
}
