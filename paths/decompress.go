package paths

import (
	"bufio"
	"bytes"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

type compression int

const (
	COMPRESSION_NONE compression = iota
	COMPRESSION_GZIP
	COMPRESSION_ZSTD
)

// sniff picks the compression from the name's extension, falling back to
// the stream's magic bytes.
func sniff(name string, head []byte) compression {
	switch {
	case strings.HasSuffix(name, ".gz"), bytes.HasPrefix(head, gzipMagic):
		return COMPRESSION_GZIP
	case strings.HasSuffix(name, ".zst"), bytes.HasPrefix(head, zstdMagic):
		return COMPRESSION_ZSTD
	}
	return COMPRESSION_NONE
}

type readCloser struct {
	io.Reader
	close func() error
}

func (r readCloser) Close() error { return r.close() }

// decompress wraps rc so reads yield the decompressed stream. Closing the
// result closes rc.
func decompress(name string, rc io.ReadCloser) (io.ReadCloser, error) {
	br := bufio.NewReader(rc)
	head, _ := br.Peek(len(zstdMagic))

	switch sniff(name, head) {
	case COMPRESSION_GZIP:
		zr, err := gzip.NewReader(br)
		if err != nil {
			rc.Close()
			return nil, errors.Wrapf(err, "paths: opening gzip stream %q", name)
		}
		return readCloser{zr, func() error {
			zr.Close()
			return rc.Close()
		}}, nil
	case COMPRESSION_ZSTD:
		zr, err := zstd.NewReader(br)
		if err != nil {
			rc.Close()
			return nil, errors.Wrapf(err, "paths: opening zstd stream %q", name)
		}
		return readCloser{zr, func() error {
			zr.Close()
			return rc.Close()
		}}, nil
	}
	return readCloser{br, rc.Close}, nil
}
