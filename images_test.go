package guidepress

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestProcessImageScalesWideImages(t *testing.T) {
	src := pngBytes(t, 2400, 1600, color.NRGBA{R: 200, A: 255})

	img, data, err := processImage(bytes.NewReader(src), "Tram 28.PNG")
	require.NoError(t, err)

	assert.Equal(t, "tram-28.jpg", img.Filename)
	assert.Equal(t, 1200, img.Width)
	assert.Equal(t, 800, img.Height)
	assert.Equal(t, len(data), img.Size)

	decoded, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 1200, decoded.Bounds().Dx())
}

func TestProcessImageKeepsNarrowImagesAndFlattensAlpha(t *testing.T) {
	src := pngBytes(t, 40, 20, color.NRGBA{})

	img, data, err := processImage(bytes.NewReader(src), "clear.png")
	require.NoError(t, err)
	assert.Equal(t, 40, img.Width)
	assert.Equal(t, 20, img.Height)

	decoded, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	r, g, b, _ := decoded.At(10, 10).RGBA()
	assert.Greater(t, r>>8, uint32(240))
	assert.Greater(t, g>>8, uint32(240))
	assert.Greater(t, b>>8, uint32(240))
}

func TestProcessImageRejectsGarbage(t *testing.T) {
	_, _, err := processImage(bytes.NewReader([]byte("not an image")), "x.png")
	assert.Error(t, err)
}

func TestEnsureUniqueFilename(t *testing.T) {
	a := newTestApp(t)
	dir := filepath.Join(a.Config.StaticDir, uploadsSubdir)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tram.jpg"), []byte("x"), 0o644))
	require.NoError(t, a.Store.SaveImage(Image{Filename: "tram-2.jpg", OriginalName: "tram.png", UploadedAt: "2024-01-01T00:00:00Z"}))

	img := Image{Filename: "tram.jpg"}
	require.NoError(t, a.ensureUniqueFilename(&img))
	assert.Equal(t, "tram-3.jpg", img.Filename)
	assert.Equal(t, "/public/uploads/tram-3.jpg", UploadPath(img.Filename))
}
