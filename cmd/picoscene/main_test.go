package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadScene(t *testing.T) {
	scene, shapes, err := loadScene(filepath.Join("testdata", "scene.hcl"))
	if err != nil {
		t.Fatalf("loadScene failed: %v", err)
	}

	if scene.Width != 320 || scene.Height != 240 {
		t.Errorf("size = %dx%d, want 320x240", scene.Width, scene.Height)
	}
	if len(shapes.Circles) != 2 || len(shapes.Rects) != 1 {
		t.Fatalf("got %d circles and %d rects, want 2 and 1",
			len(shapes.Circles), len(shapes.Rects))
	}

	// Expressions may refer to the canvas size.
	if got := shapes.Circles[0].Center; got[0] != 160 || got[1] != 120 {
		t.Errorf("first circle center = %v, want [160 120]", got)
	}
	if got := shapes.Circles[1].Center[0]; got != 260 {
		t.Errorf("second circle center.x = %v, want 260", got)
	}
	if got := shapes.Rects[0].Min[1]; got != 150 {
		t.Errorf("rect min.y = %v, want 150", got)
	}
	if shapes.Circles[1].Feather != 4 {
		t.Errorf("feather = %v, want 4", shapes.Circles[1].Feather)
	}
}

func TestLoadSceneErrors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, src string) string {
		t.Helper()
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	tests := []struct {
		name string
		src  string
	}{
		{"syntax error", "scene {\n  width = \n}\n"},
		{"missing size", "scene {\n  width = 64\n}\n"},
		{"zero size", "scene {\n  width = 0\n  height = 64\n}\n"},
		{"unknown block", "scene {\n  width = 64\n  height = 64\n  blob {}\n}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := write("bad.hcl", tt.src)
			if _, _, err := loadScene(path); err == nil {
				t.Error("bad scene accepted")
			}
		})
	}
}

func TestRunWritesPNG(t *testing.T) {
	out := filepath.Join(t.TempDir(), "scene.png")
	if err := run(filepath.Join("testdata", "scene.hcl"), out, 2); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	info, err := os.Stat(out)
	if err != nil {
		t.Fatalf("output missing: %v", err)
	}
	if info.Size() == 0 {
		t.Error("output PNG is empty")
	}
}
