package media

import (
	"image"
	"io"

	"github.com/HugoSmits86/nativewebp"
)

// Encoder writes an image in the variant format.
type Encoder interface {
	Encode(w io.Writer, img image.Image) error
}

// WebPEncoder encodes lossless webp without cgo.
type WebPEncoder struct{}

func (WebPEncoder) Encode(w io.Writer, img image.Image) error {
	return nativewebp.Encode(w, img, &nativewebp.Options{})
}
