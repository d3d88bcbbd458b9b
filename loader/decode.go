package loader

import (
	"image"

	"github.com/golang/glog"

	"github.com/panzi/pixbufloader-vtf/vtf"
)

// DecodedTexture is a read-only view of a parsed container. It aliases the
// buffer it was decoded from.
type DecodedTexture struct {
	f *vtf.File
}

// decodeContainer parses b. A rejected container yields a CorruptContainer
// error carrying the parser's last error text verbatim.
//
// Must be called with decodeMu held.
func decodeContainer(b []byte) (*DecodedTexture, error) {
	f, err := vtf.Load(b)
	if err != nil {
		glog.V(2).Infof("loader: container rejected: %v", err)
		return nil, &Error{Kind: CorruptContainer, Msg: vtf.LastError(), Err: err}
	}
	return &DecodedTexture{f: f}, nil
}

func (t *DecodedTexture) Width() int { return t.f.Width() }
func (t *DecodedTexture) Height() int { return t.f.Height() }
func (t *DecodedTexture) Depth() int { return t.f.Depth() }
func (t *DecodedTexture) Frames() int { return t.f.FrameCount() }
func (t *DecodedTexture) StartFrame() int { return t.f.StartFrame() }
func (t *DecodedTexture) Faces() int { return t.f.FaceCount() }
func (t *DecodedTexture) Mipmaps() int { return t.f.MipmapCount() }
func (t *DecodedTexture) Format() vtf.ImageFormat { return t.f.Format() }
func (t *DecodedTexture) Flags() vtf.TextureFlags { return t.f.Flags() }
func (t *DecodedTexture) Reflectivity() [3]float32 { return t.f.Reflectivity() }
func (t *DecodedTexture) BumpmapScale() float32 { return t.f.BumpmapScale() }
func (t *DecodedTexture) HasThumbnail() bool { return t.f.HasThumbnail() }
func (t *DecodedTexture) ThumbnailWidth() int { return t.f.ThumbnailWidth() }
func (t *DecodedTexture) ThumbnailHeight() int { return t.f.ThumbnailHeight() }
func (t *DecodedTexture) ThumbnailFormat() vtf.ImageFormat { return t.f.ThumbnailFormat() }

// Version returns the container's major and minor version.
func (t *DecodedTexture) Version() (major, minor int) {
	return t.f.MajorVersion(), t.f.MinorVersion()
}

// FrameData returns the encoded bytes of one frame's face, mipmap level and
// volume slice.
func (t *DecodedTexture) FrameData(frame, face, mipmap, slice int) ([]byte, error) {
	return t.f.Data(frame, face, slice, mipmap)
}

// Thumbnail converts the embedded low resolution image. It returns nil and
// no error when the container has none.
func (t *DecodedTexture) Thumbnail() (*image.NRGBA, error) {
	if !t.HasThumbnail() {
		return nil, nil
	}
	m := image.NewNRGBA(image.Rect(0, 0, t.ThumbnailWidth(), t.ThumbnailHeight()))
	if err := vtf.ConvertToRGBA8888(t.f.ThumbnailData(), m.Pix, t.ThumbnailWidth(), t.ThumbnailHeight(), t.ThumbnailFormat()); err != nil {
		return nil, &Error{Kind: ConversionFailure, Msg: "Thumbnail data conversion failed", Err: err}
	}
	return m, nil
}

// convertFrame writes mipmap 0, face 0, slice 0 of the passed frame into
// dst, which must be a Width x Height raster.
func convertFrame(t *DecodedTexture, frame int, dst *image.NRGBA) error {
	data, err := t.FrameData(frame, 0, 0, 0)
	if err != nil {
		return &Error{Kind: ConversionFailure, Msg: "Image data conversion failed", Err: err}
	}
	if err := vtf.ConvertToRGBA8888(data, dst.Pix, t.Width(), t.Height(), t.Format()); err != nil {
		return &Error{Kind: ConversionFailure, Msg: "Image data conversion failed", Err: err}
	}
	return nil
}
