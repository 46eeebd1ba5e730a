package extract

import (
	"bytes"
	"fmt"
	"image"
	"os"

	// Register decoders so image.DecodeConfig can identify the formats
	// the OCR engine accepts.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	exif "github.com/dsoprea/go-exif/v3"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/louvel/scantext/internal/model"
)

// ReadImage loads an image file for OCR. The extension is checked up
// front so unsupported formats fail before the engine is invoked.
func ReadImage(path string) ([]byte, error) {
	if !model.IsImageFile(path) {
		return nil, fmt.Errorf("read image %s: %w", path, model.ErrUnsupportedFormat)
	}
	data, err := os.ReadFile(path) //nolint:gosec // User-provided input path is intentional
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return data, nil
}

// ProbeImage gathers metadata about an image file for reporting.
// Dimensions come from decoding the header; camera fields come from
// EXIF. Both are best effort: an image without EXIF, or in a format the
// registered decoders do not know, still yields a partial result.
func ProbeImage(path string) (*model.ImageMetadata, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided input path is intentional
	if err != nil {
		return nil, fmt.Errorf("probe image: %w", err)
	}

	meta := &model.ImageMetadata{}
	if cfg, format, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		meta.Format = format
		meta.Width = cfg.Width
		meta.Height = cfg.Height
	}
	fillEXIF(meta, data)
	return meta, nil
}

// fillEXIF copies the camera-related EXIF tags into meta. Images without
// EXIF segments are common and leave the fields empty.
func fillEXIF(meta *model.ImageMetadata, data []byte) {
	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil || rawExif == nil {
		return
	}

	entries, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return
	}

	for _, entry := range entries {
		value := entry.Formatted

		switch entry.TagName {
		case "Make":
			meta.CameraMake = value
		case "Model":
			meta.CameraModel = value
		case "Software":
			meta.Software = value
		case "DateTimeOriginal":
			meta.CapturedAt = value
		case "DateTime":
			// DateTimeOriginal is the capture time; DateTime is the last
			// modification and only used when the former is absent.
			if meta.CapturedAt == "" {
				meta.CapturedAt = value
			}
		case "Orientation":
			meta.Orientation = value
		}
	}
}
