package ocr

import (
	"image"
	"image/color"
	"testing"

	"go.uber.org/zap"

	"github.com/carelink/carelink-ai/config"
)

func testOCRConfig() config.OCRConfig {
	return config.OCRConfig{
		Languages:          []string{"fra", "eng"},
		MaxWidth:           2500,
		ContrastFactor:     1.5,
		SharpnessFactor:    1.3,
		ThresholdBlockSize: 11,
		ThresholdConstant:  2,
		DeskewMinAngle:     0.5,
		MinReadableChars:   10,
	}
}

// drawPage builds a light page with a dark horizontal band, enough ink for
// the deskew estimator to see structure.
func drawPage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if y > h/2-5 && y < h/2+5 {
				img.Set(x, y, color.Black)
			} else {
				img.Set(x, y, color.White)
			}
		}
	}
	return img
}

func TestProcessPreservesContent(t *testing.T) {
	p := NewPreprocessor(testOCRConfig(), zap.NewNop())

	out := p.Process(drawPage(200, 100))
	if out == nil {
		t.Fatal("nil output")
	}
	if out.Bounds().Empty() {
		t.Fatal("empty output bounds")
	}
}

func TestProcessResizesWideScans(t *testing.T) {
	cfg := testOCRConfig()
	cfg.MaxWidth = 100
	p := NewPreprocessor(cfg, zap.NewNop())

	out := p.Process(drawPage(300, 150))
	if out.Bounds().Dx() > 100 {
		t.Errorf("width = %d, want at most 100", out.Bounds().Dx())
	}
}

func TestProcessNilAndEmpty(t *testing.T) {
	p := NewPreprocessor(testOCRConfig(), zap.NewNop())

	if out := p.Process(nil); out != nil {
		t.Error("nil input should pass through")
	}

	empty := image.NewRGBA(image.Rect(0, 0, 0, 0))
	if out := p.Process(empty); out != empty {
		t.Error("empty input should pass through")
	}
}

func TestBinarizeProducesBlackAndWhite(t *testing.T) {
	p := NewPreprocessor(testOCRConfig(), zap.NewNop())

	out, err := p.binarize(drawPage(60, 40))
	if err != nil {
		t.Fatal(err)
	}

	bounds := out.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if v := out.GrayAt(x, y).Y; v != 0 && v != 255 {
				t.Fatalf("pixel (%d,%d) = %d, want 0 or 255", x, y, v)
			}
		}
	}
}

func TestDeskewSkipsSmallAngles(t *testing.T) {
	p := NewPreprocessor(testOCRConfig(), zap.NewNop())

	// A perfectly horizontal band has no skew to correct; the input must
	// come back unrotated.
	binary, err := p.binarize(drawPage(200, 100))
	if err != nil {
		t.Fatal(err)
	}

	out, err := p.deskew(binary)
	if err != nil {
		t.Fatal(err)
	}
	if out != image.Image(binary) {
		t.Error("horizontal page should not be rotated")
	}
}
