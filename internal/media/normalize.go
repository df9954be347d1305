// Package media normalizes uploaded images and persists them to local disk or
// S3-compatible object storage.
package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	_ "image/png" // Register PNG decoder
	"io"

	_ "golang.org/x/image/bmp" // Register BMP decoder
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder

	"github.com/yukikurage/geoblog/internal/constants"
)

// ErrUnsupportedImage is returned when the upload is not a decodable image.
var ErrUnsupportedImage = errors.New("unsupported or corrupt image")

// Box is the bounding box an image is downscaled to fit.
type Box struct {
	Width  int
	Height int
}

var (
	PostBox   = Box{Width: constants.PostImageMaxWidth, Height: constants.PostImageMaxHeight}
	AvatarBox = Box{Width: constants.AvatarMaxWidth, Height: constants.AvatarMaxHeight}
	EmojiBox  = Box{Width: constants.EmojiMaxWidth, Height: constants.EmojiMaxHeight}
)

// Normalized is a re-encoded JPEG ready to be stored.
type Normalized struct {
	Data   []byte
	Width  int
	Height int
}

// Normalize decodes r, flattens it onto an opaque white canvas, downscales
// it to fit box preserving aspect ratio, and encodes it as JPEG.
func Normalize(r io.Reader, box Box, quality int) (*Normalized, error) {
	raw, err := io.ReadAll(io.LimitReader(r, constants.MaxUploadSizeBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if len(raw) > constants.MaxUploadSizeBytes {
		return nil, fmt.Errorf("%w: larger than %d bytes", ErrUnsupportedImage, constants.MaxUploadSizeBytes)
	}

	decoded, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	resized := resizeToFit(flatten(decoded), box.Width, box.Height)
	data, err := encodeJPEG(resized, quality)
	if err != nil {
		return nil, err
	}

	b := resized.Bounds()
	imagesNormalized.Inc()
	return &Normalized{Data: data, Width: b.Dx(), Height: b.Dy()}, nil
}

// flatten composites src over white so transparent regions do not turn black
// in the JPEG output.
func flatten(src image.Image) image.Image {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)
	return dst
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scale := min(float64(maxWidth)/float64(w), float64(maxHeight)/float64(h))
	newW := max(int(float64(w)*scale), 1)
	newH := max(int(float64(h)*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
