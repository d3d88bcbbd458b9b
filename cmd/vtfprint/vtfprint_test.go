package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/panzi/pixbufloader-vtf/paths"
	"github.com/panzi/pixbufloader-vtf/ttesting"
	"github.com/panzi/pixbufloader-vtf/vtf"
	"github.com/panzi/pixbufloader-vtf/vtf/vtftest"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	b := vtftest.New(16, 8)
	b.Frames = 3
	b.ThumbnailFormat = vtf.IMAGE_FORMAT_DXT1
	b.ThumbnailWidth = 4
	b.ThumbnailHeight = 4
	if err := os.WriteFile(filepath.Join(dir, "anim.vtf"), b.Build(), 0644); err != nil {
		t.Fatal(err)
	}
	paths.SetSearchPath([]string{dir})
	defer paths.SetSearchPath(nil)

	defer func(f int, th bool) { *frame, *thumbnail = f, th }(*frame, *thumbnail)

	img, attrs, err := load("anim")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	ttesting.AssertEqualInt(t, "still width", img.Bounds().Dx(), 16)
	ttesting.AssertEqualString(t, "frames attribute", attrs["Frames"], "3")

	*frame = 1
	img, _, err = load("anim")
	if err != nil {
		t.Fatalf("load frame: %v", err)
	}
	ttesting.AssertEqualInt(t, "frame height", img.Bounds().Dy(), 8)

	*frame = 3
	if _, _, err := load("anim"); err == nil {
		t.Errorf("out of range frame accepted")
	}

	*frame = -1
	*thumbnail = true
	img, _, err = load("anim")
	if err != nil {
		t.Fatalf("load thumbnail: %v", err)
	}
	ttesting.AssertEqualInt(t, "thumbnail width", img.Bounds().Dx(), 4)
}
