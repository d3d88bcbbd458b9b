// Command vtfconv converts Valve textures to PNG, or to GIF when the
// texture is animated.
//
//	vtfconv --out_dir=out metal/floor01 sky/day01.vtf.gz ...
package main

import (
	"bytes"
	"context"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"

	"badc0de.net/pkg/flagutil/v1"
	"github.com/golang/glog"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/panzi/pixbufloader-vtf/export"
	"github.com/panzi/pixbufloader-vtf/loader"
	"github.com/panzi/pixbufloader-vtf/paths"
)

var (
	outDir    = flag.String("out_dir", ".", "directory converted images are written to")
	jobs      = flag.Int("jobs", 4, "how many textures to read and encode at once")
	chunkSize = flag.Int("chunk_size", 64<<10, "bytes read per append to the decoding session")
	quantizer = flag.String("quantizer", "mediancut", "GIF palette generator: mediancut or gogif")
	still     = flag.Bool("still", false, "always write a PNG of the last frame, even for animations")
)

// outName maps a texture name to its output file name without extension.
func outName(name string) string {
	base := filepath.Base(name)
	for _, s := range []string{".gz", ".zst", ".vtf"} {
		base = strings.TrimSuffix(base, s)
	}
	return base
}

// decode streams the named texture into a loader session.
func decode(ctx context.Context, name string, size int, stillOnly bool) (*loader.Still, *loader.Animation, error) {
	r, err := paths.Open(name)
	if err != nil {
		return nil, nil, err
	}
	defer r.Close()

	var st *loader.Still
	var anim *loader.Animation
	s := loader.Open(loader.Callbacks{
		Size: func(w, h int) { glog.V(2).Infof("%s: %dx%d", name, w, h) },
		Prepared: func(s *loader.Still, a *loader.Animation) {
			st, anim = s, a
		},
		StillOnly: stillOnly,
	})
	buf := make([]byte, size)
	for {
		if err := ctx.Err(); err != nil {
			s.Abort()
			return nil, nil, err
		}
		n, err := r.Read(buf)
		if n > 0 {
			if err := s.Append(buf[:n]); err != nil {
				return nil, nil, err
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			s.Abort()
			return nil, nil, errors.Wrapf(err, "reading %s", name)
		}
	}
	if err := s.Finalize(); err != nil {
		return nil, nil, err
	}
	return st, anim, nil
}

func convert(ctx context.Context, name string, q export.Quantizer) error {
	st, anim, err := decode(ctx, name, *chunkSize, *still)
	if err != nil {
		return errors.Wrap(err, name)
	}
	buf := &bytes.Buffer{}
	mime, err := export.Encode(buf, st, anim, q)
	if err != nil {
		return errors.Wrap(err, name)
	}
	ext := ".png"
	if mime == "image/gif" {
		ext = ".gif"
	}
	out := filepath.Join(*outDir, outName(name)+ext)
	if err := os.WriteFile(out, buf.Bytes(), 0644); err != nil {
		return errors.Wrap(err, name)
	}
	glog.Infof("%s -> %s", name, out)
	return nil
}

func main() {
	paths.SetupSearchPathFlag()
	loader.SetupLimitFlags()
	flagutil.Parse()
	flag.Set("logtostderr", "true")
	loader.ApplyLimitFlags()

	q, err := export.ParseQuantizer(*quantizer)
	if err != nil {
		glog.Exitf("%v", err)
	}
	if *chunkSize <= 0 {
		glog.Exitf("--chunk_size must be positive")
	}
	if err := os.MkdirAll(*outDir, 0755); err != nil {
		glog.Exitf("%v", err)
	}

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(*jobs)
	for _, name := range flag.Args() {
		name := name
		g.Go(func() error {
			return convert(ctx, name, q)
		})
	}
	if err := g.Wait(); err != nil {
		glog.Exitf("%v", err)
	}
}
