package classifier

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kritlunkad/krishi-drishti-backend/pkg/apperrors"
)

func TestTensor_SolidColorNormalization(t *testing.T) {
	img, err := Decode(pngBytes(t, 300, 200, color.RGBA{R: 255, G: 0, B: 51, A: 255}), DefaultMaxPixels)
	require.NoError(t, err)

	p := DefaultPreprocess()
	out := p.Tensor(img)
	require.Len(t, out, 3*224*224)

	plane := 224 * 224
	// (v/255 - 0.5) / 0.5
	assert.InDelta(t, 1.0, out[0], 1e-3)
	assert.InDelta(t, -1.0, out[plane], 1e-3)
	assert.InDelta(t, -0.6, out[2*plane+plane/2], 1e-3)
}

func TestTensor_SmallImageIsUpscaled(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	out := DefaultPreprocess().Tensor(img)
	assert.Len(t, out, 3*224*224)
}

func TestResizeShortestEdge(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 400, 200))
	r := resizeShortestEdge(img, 256)
	assert.Equal(t, 512, r.Bounds().Dx())
	assert.Equal(t, 256, r.Bounds().Dy())

	c := centerCrop(r, 224, 224)
	assert.Equal(t, image.Rect(0, 0, 224, 224), c.Bounds())
}

func TestLoadPreprocess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preprocessor_config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"crop_size": {"height": 192, "width": 192},
		"do_center_crop": true, "do_normalize": true, "do_rescale": true, "do_resize": true,
		"image_mean": [0.485, 0.456, 0.406], "image_std": [0.229, 0.224, 0.225],
		"rescale_factor": 0.00392156862745098,
		"size": {"shortest_edge": 220}
	}`), 0o600))

	p, err := LoadPreprocess(path)
	require.NoError(t, err)
	assert.Equal(t, 220, p.ShortestEdge)
	assert.Equal(t, []int64{1, 3, 192, 192}, p.Shape())
	assert.InDelta(t, 0.229, p.ImageStd[0], 1e-9)

	p, err = LoadPreprocess("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPreprocess(), p)
}

func TestDecode_Invalid(t *testing.T) {
	_, err := Decode([]byte{0x00, 0x01}, DefaultMaxPixels)
	assert.ErrorIs(t, err, apperrors.ErrInvalidFormat)
}

// pngHeader returns a PNG whose IHDR declares w x h grayscale pixels but
// carries no image data.
func pngHeader(w, h uint32) []byte {
	chunk := func(typ string, data []byte) []byte {
		var b bytes.Buffer
		_ = binary.Write(&b, binary.BigEndian, uint32(len(data)))
		b.WriteString(typ)
		b.Write(data)
		_ = binary.Write(&b, binary.BigEndian, crc32.ChecksumIEEE(append([]byte(typ), data...)))
		return b.Bytes()
	}
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:], w)
	binary.BigEndian.PutUint32(ihdr[4:], h)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 0 // grayscale

	out := []byte("\x89PNG\r\n\x1a\n")
	out = append(out, chunk("IHDR", ihdr)...)
	return append(out, chunk("IEND", nil)...)
}

func TestDecode_RejectsOversizedHeader(t *testing.T) {
	_, err := Decode(pngHeader(16000, 16000), DefaultMaxPixels)
	require.ErrorIs(t, err, apperrors.ErrInvalidFormat)
	assert.Contains(t, err.Error(), "exceeds")
}

func TestDecode_PixelLimit(t *testing.T) {
	data := pngBytes(t, 300, 200, color.RGBA{G: 128, A: 255})

	_, err := Decode(data, 300*200-1)
	assert.ErrorIs(t, err, apperrors.ErrInvalidFormat)

	img, err := Decode(data, 300*200)
	require.NoError(t, err)
	assert.Equal(t, 300, img.Bounds().Dx())

	_, err = Decode(data, 0)
	assert.NoError(t, err)
}
