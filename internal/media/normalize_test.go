package media

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func solid(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestNormalize_DownscalesPreservingAspect(t *testing.T) {
	src := encodePNG(t, solid(2560, 1920, color.NRGBA{R: 200, G: 10, B: 10, A: 255}))

	out, err := Normalize(bytes.NewReader(src), PostBox, 75)
	require.NoError(t, err)

	assert.Equal(t, 960, out.Width)
	assert.Equal(t, 720, out.Height)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(out.Data))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 960, cfg.Width)
	assert.Equal(t, 720, cfg.Height)
}

func TestNormalize_WideImageLimitedByWidth(t *testing.T) {
	src := encodePNG(t, solid(400, 100, color.White))

	out, err := Normalize(bytes.NewReader(src), AvatarBox, 75)
	require.NoError(t, err)
	assert.Equal(t, 50, out.Width)
	assert.Equal(t, 12, out.Height)
}

func TestNormalize_DoesNotUpscale(t *testing.T) {
	src := encodePNG(t, solid(20, 10, color.Black))

	out, err := Normalize(bytes.NewReader(src), PostBox, 75)
	require.NoError(t, err)
	assert.Equal(t, 20, out.Width)
	assert.Equal(t, 10, out.Height)
}

func TestNormalize_TransparencyBecomesWhite(t *testing.T) {
	src := encodePNG(t, solid(16, 16, color.NRGBA{}))

	out, err := Normalize(bytes.NewReader(src), PostBox, 75)
	require.NoError(t, err)

	decoded, err := jpeg.Decode(bytes.NewReader(out.Data))
	require.NoError(t, err)
	r, g, b, _ := decoded.At(8, 8).RGBA()
	assert.Greater(t, r>>8, uint32(240))
	assert.Greater(t, g>>8, uint32(240))
	assert.Greater(t, b>>8, uint32(240))
}

func TestNormalize_RejectsGarbage(t *testing.T) {
	_, err := Normalize(strings.NewReader("definitely not an image"), PostBox, 75)
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}
