package loader

import (
	"flag"
)

var (
	maxBufferBytesFlag int
	maxRasterBytesFlag int64
)

// SetupLimitFlags registers --max_buffer_bytes and --max_raster_bytes on
// the default flag set. Call ApplyLimitFlags once flags are parsed.
func SetupLimitFlags() {
	flag.IntVar(&maxBufferBytesFlag, "max_buffer_bytes", DefaultLimits.MaxBufferBytes, "Largest buffer a streaming decode may grow to")
	flag.Int64Var(&maxRasterBytesFlag, "max_raster_bytes", DefaultLimits.MaxRasterBytes, "Largest RGBA raster a single frame may decode to")
}

// ApplyLimitFlags passes the limit flags given on the command line to
// SetLimits. Limits whose flag was not given keep their current value, so a
// config file may be applied first.
func ApplyLimitFlags() {
	l := currentLimits()
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "max_buffer_bytes":
			l.MaxBufferBytes = maxBufferBytesFlag
		case "max_raster_bytes":
			l.MaxRasterBytes = maxRasterBytesFlag
		}
	})
	SetLimits(l)
}
