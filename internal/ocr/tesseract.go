package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract implements Engine using the gosseract client.
type Tesseract struct {
	clientFactory func() *gosseract.Client
}

// NewTesseract constructs a Tesseract-backed OCR engine.
func NewTesseract() *Tesseract {
	return &Tesseract{clientFactory: gosseract.NewClient}
}

// Name returns the engine identifier.
func (t *Tesseract) Name() string { return "tesseract" }

// Recognize performs OCR on a single image input. A fresh client is
// created per call so concurrent recognitions do not share state.
func (t *Tesseract) Recognize(ctx context.Context, in Input) (Result, error) {
	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	default:
	}

	c := t.clientFactory()
	defer c.Close()

	if err := c.SetImageFromBytes(in.Image); err != nil {
		return Result{}, fmt.Errorf("set image: %w", err)
	}
	if len(in.Languages) > 0 {
		if err := c.SetLanguage(in.Languages...); err != nil {
			return Result{}, fmt.Errorf("set languages: %w", err)
		}
	}
	if err := c.SetPageSegMode(pageSegMode(in.DetectOrientation)); err != nil {
		return Result{}, fmt.Errorf("set page segmentation mode: %w", err)
	}
	if in.DPI > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), fmt.Sprint(in.DPI)); err != nil {
			return Result{}, fmt.Errorf("set dpi: %w", err)
		}
	}

	text, err := c.Text()
	if err != nil {
		return Result{}, classifyEngineError(err, in.Languages)
	}

	return Result{
		InputID:        in.ID,
		Text:           strings.TrimSpace(text),
		MeanConfidence: meanConfidence(c),
	}, nil
}

// pageSegMode maps the orientation flag to a tesseract segmentation
// mode. Orientation and script detection handles rotated scans but
// costs extra processing and needs the osd trained data.
func pageSegMode(detectOrientation bool) gosseract.PageSegMode {
	if detectOrientation {
		return gosseract.PSM_AUTO_OSD
	}
	return gosseract.PSM_AUTO
}

// meanConfidence averages the per-word confidences reported by the
// engine, rescaled to [0, 1]. Engines without word boxes yield zero.
func meanConfidence(c *gosseract.Client) float64 {
	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return 0
	}
	var sum float64
	for _, b := range boxes {
		sum += b.Confidence / 100.0
	}
	return sum / float64(len(boxes))
}

// classifyEngineError turns tesseract initialization failures into
// ErrEngineUnavailable with an installation hint. Missing trained data
// is the most common failure on a fresh host.
func classifyEngineError(err error, langs []string) error {
	msg := err.Error()
	if strings.Contains(msg, "Failed loading language") ||
		strings.Contains(msg, "tessdata") ||
		strings.Contains(msg, "Could not initialize tesseract") {
		lang := "eng"
		if len(langs) > 0 {
			lang = langs[0]
		}
		return fmt.Errorf("%w: %v (install the tesseract language data, e.g. apt install tesseract-ocr-%s)",
			ErrEngineUnavailable, err, lang)
	}
	return fmt.Errorf("recognize text: %w", err)
}
