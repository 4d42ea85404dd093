package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/otiai10/gosseract/v2"
	"go.uber.org/zap"

	"github.com/carelink/carelink-ai/config"
	"github.com/carelink/carelink-ai/internal/domain/prescription"
)

// TesseractRecognizer runs OCR through a local Tesseract installation.
// A fresh client is created per call; gosseract clients are not safe for
// concurrent use.
type TesseractRecognizer struct {
	cfg config.OCRConfig
	log *zap.Logger
}

func NewTesseractRecognizer(cfg config.OCRConfig, log *zap.Logger) *TesseractRecognizer {
	return &TesseractRecognizer{cfg: cfg, log: log}
}

func (r *TesseractRecognizer) Recognize(ctx context.Context, img image.Image) (*prescription.RecognizedText, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding image for recognition: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(r.cfg.Languages...); err != nil {
		return nil, fmt.Errorf("setting OCR languages: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("loading image into OCR engine: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("running OCR: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("reading OCR word boxes: %w", err)
	}

	fragments := make([]prescription.Fragment, 0, len(boxes))
	var confSum float64
	for _, b := range boxes {
		// Tesseract reports word confidence on a 0-100 scale.
		conf := b.Confidence / 100
		fragments = append(fragments, prescription.Fragment{
			Text:       b.Word,
			Confidence: conf,
			Box: prescription.BoundingBox{
				X0: b.Box.Min.X, Y0: b.Box.Min.Y,
				X1: b.Box.Max.X, Y1: b.Box.Max.Y,
			},
		})
		confSum += conf
	}

	overall := 0.0
	if len(fragments) > 0 {
		overall = confSum / float64(len(fragments)) * 100
	}

	r.log.Info("recognition completed",
		zap.Int("fragments", len(fragments)),
		zap.Float64("confidence", overall),
	)

	return &prescription.RecognizedText{
		Text:       text,
		Confidence: overall,
		Fragments:  fragments,
	}, nil
}
