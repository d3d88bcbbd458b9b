package loader

import (
	"fmt"
	"strconv"
)

// Attributes renders the container's properties as display strings, keyed
// by their human readable names. Thumbnail keys are only present when the
// container has a thumbnail.
func Attributes(t *DecodedTexture) map[string]string {
	major, minor := t.Version()
	refl := t.Reflectivity()
	info := t.Format().Info()

	attrs := map[string]string{
		"Version":        fmt.Sprintf("%d.%d", major, minor),
		"Format":         t.Format().String(),
		"Depth":          strconv.Itoa(t.Depth()),
		"Bumpmap Scale":  fmt.Sprintf("%g", t.BumpmapScale()),
		"Reflectivity":   fmt.Sprintf("%g, %g, %g", refl[0], refl[1], refl[2]),
		"Faces":          strconv.Itoa(t.Faces()),
		"Mipmaps":        strconv.Itoa(t.Mipmaps()),
		"Frames":         strconv.Itoa(t.Frames()),
		"Start Frame":    strconv.Itoa(t.StartFrame()),
		"Flags":          t.Flags().String(),
		"Bits Per Pixel": strconv.Itoa(int(info.BitsPerPixel)),
		"Alpha Channel":  boolString(info.AlphaBitsPerPixel > 0),
		"Compressed":     boolString(info.IsCompressed),
	}

	if t.HasThumbnail() {
		thumb := t.ThumbnailFormat().Info()
		attrs["Thumbnail Format"] = t.ThumbnailFormat().String()
		attrs["Thumbnail Size"] = fmt.Sprintf("%dx%d", t.ThumbnailWidth(), t.ThumbnailHeight())
		attrs["Thumbnail Bits Per Pixel"] = strconv.Itoa(int(thumb.BitsPerPixel))
		attrs["Thumbnail Alpha Channel"] = boolString(thumb.AlphaBitsPerPixel > 0)
		attrs["Thumbnail Compressed"] = boolString(thumb.IsCompressed)
	}
	return attrs
}

func boolString(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
