package extract

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/louvel/scantext/internal/model"
)

// writeTestPNG writes a small solid-color PNG and returns its path.
func writeTestPNG(t *testing.T, width, height int) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.White)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test png: %v", err)
	}

	path := filepath.Join(t.TempDir(), "test.png")
	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		t.Fatalf("failed to write test png: %v", err)
	}
	return path
}

func TestReadImage(t *testing.T) {
	t.Parallel()

	t.Run("reads a supported image file", func(t *testing.T) {
		t.Parallel()
		path := writeTestPNG(t, 4, 4)

		data, err := ReadImage(path)
		if err != nil {
			t.Fatalf("ReadImage() error = %v, want nil", err)
		}
		if len(data) == 0 {
			t.Error("ReadImage() returned no data")
		}
	})

	t.Run("rejects unsupported extensions", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "document.docx")
		if err := os.WriteFile(path, []byte("content"), 0600); err != nil {
			t.Fatal(err)
		}

		_, err := ReadImage(path)
		if !errors.Is(err, model.ErrUnsupportedFormat) {
			t.Errorf("ReadImage() error = %v, want %v", err, model.ErrUnsupportedFormat)
		}
	})

	t.Run("missing file returns an error", func(t *testing.T) {
		t.Parallel()
		if _, err := ReadImage(filepath.Join(t.TempDir(), "missing.png")); err == nil {
			t.Error("ReadImage() error = nil, want error")
		}
	})
}

func TestProbeImage(t *testing.T) {
	t.Parallel()

	t.Run("reports format and dimensions for a png", func(t *testing.T) {
		t.Parallel()
		path := writeTestPNG(t, 32, 16)

		meta, err := ProbeImage(path)
		if err != nil {
			t.Fatalf("ProbeImage() error = %v, want nil", err)
		}
		if meta.Format != "png" {
			t.Errorf("Format = %q, want %q", meta.Format, "png")
		}
		if meta.Width != 32 {
			t.Errorf("Width = %d, want 32", meta.Width)
		}
		if meta.Height != 16 {
			t.Errorf("Height = %d, want 16", meta.Height)
		}
	})

	t.Run("images without exif leave camera fields empty", func(t *testing.T) {
		t.Parallel()
		path := writeTestPNG(t, 4, 4)

		meta, err := ProbeImage(path)
		if err != nil {
			t.Fatalf("ProbeImage() error = %v, want nil", err)
		}
		if meta.CameraMake != "" || meta.CameraModel != "" || meta.Software != "" {
			t.Errorf("camera fields = %q/%q/%q, want all empty",
				meta.CameraMake, meta.CameraModel, meta.Software)
		}
		if meta.CapturedAt != "" {
			t.Errorf("CapturedAt = %q, want empty", meta.CapturedAt)
		}
	})

	t.Run("undecodable content yields a partial result", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "garbage.png")
		if err := os.WriteFile(path, []byte("not an image at all"), 0600); err != nil {
			t.Fatal(err)
		}

		meta, err := ProbeImage(path)
		if err != nil {
			t.Fatalf("ProbeImage() error = %v, want nil", err)
		}
		if meta.Format != "" {
			t.Errorf("Format = %q, want empty", meta.Format)
		}
		if meta.Width != 0 || meta.Height != 0 {
			t.Errorf("dimensions = %dx%d, want 0x0", meta.Width, meta.Height)
		}
	})

	t.Run("missing file returns an error", func(t *testing.T) {
		t.Parallel()
		if _, err := ProbeImage(filepath.Join(t.TempDir(), "missing.jpg")); err == nil {
			t.Error("ProbeImage() error = nil, want error")
		}
	})
}
