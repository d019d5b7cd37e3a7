package content

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"golang.org/x/text/encoding/charmap"
)

type collector struct {
	mu      sync.Mutex
	sources []string
	data    map[string]string
	fail    string
}

func (c *collector) handle(ctx context.Context, r io.Reader, src string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data == nil {
		c.data = make(map[string]string)
	}
	c.sources = append(c.sources, filepath.ToSlash(src))
	c.data[filepath.ToSlash(src)] = string(data)
	if src == c.fail {
		return errors.New("handler failure")
	}
	return nil
}

func (c *collector) sorted() []string {
	out := slices.Clone(c.sources)
	slices.Sort(out)
	return out
}

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestWalk_NonExistentPath(t *testing.T) {
	ctx, env := setupTestEnv(t)
	var c collector
	err := Walk(ctx, "/nonexistent/path/file.ldr", c.handle, env.Log)
	if err == nil || !strings.Contains(err.Error(), "input source was not found") {
		t.Errorf("Walk() error = %v", err)
	}
}

func TestWalk_CancelledContext(t *testing.T) {
	ctx, env := setupTestEnv(t)
	cancelCtx, cancel := context.WithCancel(ctx)
	cancel()

	var c collector
	if err := Walk(cancelCtx, t.TempDir(), c.handle, env.Log); !errors.Is(err, context.Canceled) {
		t.Errorf("Walk() error = %v, want context.Canceled", err)
	}
}

func TestWalk_SingleFile(t *testing.T) {
	ctx, env := setupTestEnv(t)
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"car.ldr": "\xEF\xBB\xBF0 Car\n"})

	var c collector
	if err := Walk(ctx, filepath.Join(dir, "car.ldr"), c.handle, env.Log); err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	if !slices.Equal(c.sources, []string{"car.ldr"}) {
		t.Errorf("sources = %v", c.sources)
	}
	if c.data["car.ldr"] != "0 Car\n" {
		t.Errorf("content = %q, byte order mark must be consumed", c.data["car.ldr"])
	}

	t.Run("not LDraw", func(t *testing.T) {
		writeFiles(t, dir, map[string]string{"notes.txt": "notes"})
		if err := Walk(ctx, filepath.Join(dir, "notes.txt"), c.handle, env.Log); err == nil {
			t.Error("Expected error for unrecognized file")
		}
	})

	t.Run("file with tail", func(t *testing.T) {
		if err := Walk(ctx, filepath.Join(dir, "car.ldr", "inner.ldr"), c.handle, env.Log); err == nil {
			t.Error("Expected error for path below a file")
		}
	})
}

func TestWalk_Directory(t *testing.T) {
	ctx, env := setupTestEnv(t)
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"car.ldr":          "0 Car\n",
		"parts/3001.dat":   "0 Brick  2 x  4\n",
		"parts/readme.txt": "0 This is not a part\n",
		"parts/fake.dat":   "not LDraw\n",
	})
	if err := os.MkdirAll(filepath.Join(dir, "sets"), 0755); err != nil {
		t.Fatal(err)
	}
	writeZip(t, filepath.Join(dir, "sets", "town.zip"), map[string]string{
		"models/house.mpd": "0 House\n",
		"images/house.png": "PNG",
	})

	c := collector{fail: "car.ldr"}
	if err := Walk(ctx, dir, c.handle, env.Log); err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	want := []string{"car.ldr", "parts/3001.dat", "sets/models/house.mpd"}
	if got := c.sorted(); !slices.Equal(got, want) {
		t.Errorf("sources = %v, want %v", got, want)
	}

	t.Run("directory with tail", func(t *testing.T) {
		if err := Walk(ctx, filepath.Join(dir, "parts", "nonexistent.dat"), c.handle, env.Log); err == nil {
			t.Error("Expected error for directory with tail")
		}
	})
}

func TestWalk_Archive(t *testing.T) {
	ctx, env := setupTestEnv(t)
	path := filepath.Join(t.TempDir(), "library.zip")
	writeZip(t, path, map[string]string{
		"ldraw/parts/3001.dat":      "0 Brick  2 x  4\n",
		"ldraw/parts/s/3001s01.dat": "0 ~Brick  2 x  4 without Front Face\n",
		"ldraw/p/4-4edge.dat":       "0 Circle 1.0\n",
	})

	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"whole archive", path, []string{"ldraw/p/4-4edge.dat", "ldraw/parts/3001.dat", "ldraw/parts/s/3001s01.dat"}},
		{"path inside", filepath.Join(path, "ldraw", "parts"), []string{"ldraw/parts/3001.dat", "ldraw/parts/s/3001s01.dat"}},
		{"single entry", filepath.Join(path, "ldraw", "p", "4-4edge.dat"), []string{"ldraw/p/4-4edge.dat"}},
		{"nothing inside", filepath.Join(path, "models"), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c collector
			if err := Walk(ctx, tt.src, c.handle, env.Log); err != nil {
				t.Fatalf("Walk() error = %v", err)
			}
			if got := c.sorted(); !slices.Equal(got, tt.want) {
				t.Errorf("sources = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWalk_ArchiveCodePage(t *testing.T) {
	ctx, env := setupTestEnv(t)
	env.CodePage = charmap.CodePage866

	name, err := charmap.CodePage866.NewEncoder().String("Машина.ldr")
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "old.zip")
	writeZip(t, path, map[string]string{name: "0 Car\n"})

	var c collector
	if err := Walk(ctx, path, c.handle, env.Log); err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	if !slices.Equal(c.sources, []string{"Машина.ldr"}) {
		t.Errorf("sources = %v", c.sources)
	}
}

func TestCall_Panic(t *testing.T) {
	err := call(context.Background(), func(context.Context, io.Reader, string) error {
		panic("broken handler")
	}, strings.NewReader(""), "car.ldr")
	if err == nil || !strings.Contains(err.Error(), "broken handler") {
		t.Errorf("call() error = %v", err)
	}
}
