package thumbnail

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestResizeWidth_PreservesAspectRatio(t *testing.T) {
	src := encodePNG(t, 800, 400)

	out, err := ResizeWidth(src, 100)
	require.NoError(t, err)

	thumb, format, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	require.Equal(t, "png", format)
	require.Equal(t, 100, thumb.Bounds().Dx())
	require.Equal(t, 50, thumb.Bounds().Dy())
}

func TestResizeWidth_Deterministic(t *testing.T) {
	src := encodePNG(t, 300, 200)

	a, err := ResizeWidth(src, 250)
	require.NoError(t, err)
	b, err := ResizeWidth(src, 250)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestResizeWidth_KeepsSourceFormat(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 400, 300))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))

	out, err := ResizeWidth(buf.Bytes(), 100)
	require.NoError(t, err)

	_, format, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	require.Equal(t, "jpeg", format)
}

func TestResizeWidth_RejectsGarbage(t *testing.T) {
	_, err := ResizeWidth([]byte("definitely not an image"), 100)
	require.Error(t, err)
}
