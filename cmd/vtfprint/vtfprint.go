// Command vtfprint prints Valve textures on the terminal.
//
//	vtfprint [flags] texture...
//
// Textures are looked up in --texture_path and may be gzip or zstd
// compressed, or http(s) URLs.
package main

import (
	"flag"
	"fmt"
	"image"
	"os"
	"sort"

	"badc0de.net/pkg/flagutil/v1"
	"github.com/golang/glog"
	"github.com/nfnt/resize"
	"github.com/pkg/errors"

	"github.com/panzi/pixbufloader-vtf/export"
	"github.com/panzi/pixbufloader-vtf/imageprint"
	"github.com/panzi/pixbufloader-vtf/loader"
	"github.com/panzi/pixbufloader-vtf/paths"
)

var (
	mode      = flag.String("mode", "24bit", "how to draw pixels: 24bit, 256, none, iterm or rasterm")
	blanks    = flag.Bool("blanks", true, "whether to just use colored blanks instead of some bad ascii art")
	downsize  = flag.Bool("downsize", true, "whether to shrink textures to fit the terminal")
	frame     = flag.Int("frame", -1, "animation frame to print, counted from the start frame; -1 prints the still (last frame)")
	thumbnail = flag.Bool("thumbnail", false, "print the embedded thumbnail instead of the texture")
	info      = flag.Bool("info", false, "print the texture's attributes")
	dataURL   = flag.Bool("dataurl", false, "print the image as a PNG data URL instead of drawing it")
)

func fit(img image.Image, m imageprint.Mode) image.Image {
	if !*downsize {
		return img
	}
	ts, err := GetTermSize()
	if err != nil {
		glog.V(2).Infof("terminal size unknown: %v", err)
		return img
	}
	if ts.XPixel != 0 && ts.YPixel != 0 && (m == imageprint.MODE_RASTERM || m == imageprint.MODE_ITERM) {
		// Real images can use the pixel size of the window.
		return resize.Thumbnail(ts.XPixel/2, ts.YPixel/2, img, resize.Lanczos3)
	}
	// Every pixel is two cells wide.
	return resize.Thumbnail(ts.Cols/2, ts.Rows, img, resize.Lanczos3)
}

func load(name string) (image.Image, map[string]string, error) {
	b, err := paths.ReadAll(name)
	if err != nil {
		return nil, nil, err
	}
	t, attrs, err := loader.Inspect(b)
	if err != nil {
		return nil, nil, err
	}
	if *thumbnail {
		thumb, err := t.Thumbnail()
		if err == nil && thumb == nil {
			err = errors.Errorf("%s has no thumbnail", name)
		}
		return thumb, attrs, err
	}
	if *frame < 0 {
		still, err := loader.Decode(b)
		if err != nil {
			return nil, nil, err
		}
		return still.Image, attrs, nil
	}
	anim, err := loader.DecodeAnimated(b)
	if err != nil {
		return nil, nil, err
	}
	if *frame >= len(anim.Frames) {
		return nil, nil, errors.Errorf("%s: frame %d out of range, animation has %d frames", name, *frame, len(anim.Frames))
	}
	return anim.Frames[*frame], attrs, nil
}

func printAttributes(attrs map[string]string) {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("%-26s %s\n", k+":", attrs[k])
	}
}

func main() {
	paths.SetupSearchPathFlag()
	loader.SetupLimitFlags()
	flagutil.Parse()
	flag.Set("logtostderr", "true")
	loader.ApplyLimitFlags()

	m, err := imageprint.ParseMode(*mode)
	if err != nil {
		glog.Exitf("%v", err)
	}
	p := &imageprint.Printer{W: os.Stdout, Mode: m, Blanks: *blanks}

	failed := false
	for _, name := range flag.Args() {
		img, attrs, err := load(name)
		if err != nil {
			glog.Errorf("%s: %v", name, err)
			failed = true
			continue
		}
		if *info {
			printAttributes(attrs)
		}
		if *dataURL {
			s, err := export.DataURL(img)
			if err != nil {
				glog.Errorf("%s: %v", name, err)
				failed = true
				continue
			}
			fmt.Println(s)
			continue
		}
		p.Name = name + ".png"
		if err := p.Print(fit(img, m)); err != nil {
			glog.Errorf("%s: %v", name, err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}
