package ocr

import (
	"context"
	"image"

	"github.com/carelink/carelink-ai/internal/domain/prescription"
)

// Recognizer is the opaque text-recognition capability consumed by the
// extraction pipeline. Implementations return one fragment per recognized
// word with a confidence in [0,1]; the overall confidence is the fragment
// mean scaled to 0-100.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) (*prescription.RecognizedText, error)
}
