package classifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"golang.org/x/image/draw"

	"github.com/kritlunkad/krishi-drishti-backend/pkg/apperrors"
)

// Preprocess mirrors a Hugging Face image processor config.
type Preprocess struct {
	ShortestEdge  int        `json:"-"`
	CropHeight    int        `json:"-"`
	CropWidth     int        `json:"-"`
	DoResize      bool       `json:"do_resize"`
	DoCenterCrop  bool       `json:"do_center_crop"`
	DoRescale     bool       `json:"do_rescale"`
	DoNormalize   bool       `json:"do_normalize"`
	RescaleFactor float64    `json:"rescale_factor"`
	ImageMean     [3]float64 `json:"image_mean"`
	ImageStd      [3]float64 `json:"image_std"`
}

// DefaultPreprocess matches the MobileNetV2 plant-disease processor.
func DefaultPreprocess() Preprocess {
	return Preprocess{
		ShortestEdge:  256,
		CropHeight:    224,
		CropWidth:     224,
		DoResize:      true,
		DoCenterCrop:  true,
		DoRescale:     true,
		DoNormalize:   true,
		RescaleFactor: 1.0 / 255,
		ImageMean:     [3]float64{0.5, 0.5, 0.5},
		ImageStd:      [3]float64{0.5, 0.5, 0.5},
	}
}

// LoadPreprocess reads preprocessor_config.json. Missing keys keep defaults.
func LoadPreprocess(path string) (Preprocess, error) {
	p := DefaultPreprocess()
	if path == "" {
		return p, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return p, err
	}
	if err := json.Unmarshal(b, &p); err != nil {
		return p, fmt.Errorf("preprocessor %s: %w", path, err)
	}
	var sizes struct {
		Size struct {
			ShortestEdge int `json:"shortest_edge"`
		} `json:"size"`
		CropSize struct {
			Height int `json:"height"`
			Width  int `json:"width"`
		} `json:"crop_size"`
	}
	if err := json.Unmarshal(b, &sizes); err != nil {
		return p, fmt.Errorf("preprocessor %s: %w", path, err)
	}
	if sizes.Size.ShortestEdge > 0 {
		p.ShortestEdge = sizes.Size.ShortestEdge
	}
	if sizes.CropSize.Height > 0 && sizes.CropSize.Width > 0 {
		p.CropHeight, p.CropWidth = sizes.CropSize.Height, sizes.CropSize.Width
	}
	return p, nil
}

// Shape is the NCHW input shape the model expects.
func (p Preprocess) Shape() []int64 {
	return []int64{1, 3, int64(p.CropHeight), int64(p.CropWidth)}
}

// DefaultMaxPixels bounds decoded images to about 40 megapixels.
const DefaultMaxPixels = 40_000_000

// Decode reads a PNG or JPEG. Images whose header declares more than maxPixels
// pixels are rejected before any pixel data is allocated; maxPixels <= 0
// disables the check.
func Decode(data []byte, maxPixels int) (image.Image, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %v: %w", err, apperrors.ErrInvalidFormat)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("decode image: empty %dx%d: %w", cfg.Width, cfg.Height, apperrors.ErrInvalidFormat)
	}
	if maxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > int64(maxPixels) {
		return nil, fmt.Errorf("image %dx%d exceeds %d pixels: %w", cfg.Width, cfg.Height, maxPixels, apperrors.ErrInvalidFormat)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %v: %w", err, apperrors.ErrInvalidFormat)
	}
	return img, nil
}

// Tensor converts img to a normalized NCHW float32 tensor.
func (p Preprocess) Tensor(img image.Image) []float32 {
	src := img
	if p.DoResize && p.ShortestEdge > 0 {
		src = resizeShortestEdge(src, p.ShortestEdge)
	}
	if p.DoCenterCrop {
		src = centerCrop(src, p.CropWidth, p.CropHeight)
	}
	// always land on the model's input size
	b := src.Bounds()
	if b.Dx() != p.CropWidth || b.Dy() != p.CropHeight {
		src = scale(src, p.CropWidth, p.CropHeight)
	}

	w, h := p.CropWidth, p.CropHeight
	plane := w * h
	out := make([]float32, 3*plane)
	b = src.Bounds()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, _ := src.At(b.Min.X+x, b.Min.Y+y).RGBA()
			px := [3]float64{float64(r >> 8), float64(g >> 8), float64(bl >> 8)}
			for c := 0; c < 3; c++ {
				v := px[c]
				if p.DoRescale {
					v *= p.RescaleFactor
				}
				if p.DoNormalize && p.ImageStd[c] != 0 {
					v = (v - p.ImageMean[c]) / p.ImageStd[c]
				}
				out[c*plane+y*w+x] = float32(v)
			}
		}
	}
	return out
}

func resizeShortestEdge(img image.Image, edge int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return img
	}
	var nw, nh int
	if w <= h {
		nw, nh = edge, int(float64(h)*float64(edge)/float64(w))
	} else {
		nw, nh = int(float64(w)*float64(edge)/float64(h)), edge
	}
	return scale(img, nw, nh)
}

func centerCrop(img image.Image, cw, ch int) image.Image {
	b := img.Bounds()
	if b.Dx() < cw || b.Dy() < ch {
		return img
	}
	x0 := b.Min.X + (b.Dx()-cw)/2
	y0 := b.Min.Y + (b.Dy()-ch)/2
	dst := image.NewRGBA(image.Rect(0, 0, cw, ch))
	draw.Draw(dst, dst.Bounds(), img, image.Pt(x0, y0), draw.Src)
	return dst
}

func scale(img image.Image, w, h int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}
