package testutil

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
)

// PNG returns an encoded opaque PNG of the given size.
func PNG(width, height int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// TinyPNG is a 1x1 PNG.
var TinyPNG = PNG(1, 1)
