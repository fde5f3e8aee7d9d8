package qr

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"  // GIF decoding
	_ "image/jpeg" // JPEG decoding
	_ "image/png"  // PNG decoding
	"log/slog"
	"os"

	"github.com/Veraticus/qrpay/internal/common"
	"github.com/makiuchi-d/gozxing"
	multiqr "github.com/makiuchi-d/gozxing/multi/qrcode"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// ImageDecoder reads QR codes from image files.
type ImageDecoder struct {
	logger *slog.Logger
}

// NewImageDecoder creates an image decoder.
func NewImageDecoder(logger *slog.Logger) *ImageDecoder {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImageDecoder{logger: logger}
}

// DecodeFile returns the QR payloads found in the image at path. An image that
// decodes but holds no readable QR code yields no payloads and no error.
func (d *ImageDecoder) DecodeFile(ctx context.Context, path string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrUnreadableImage, err)
	}
	defer func() { _ = f.Close() }()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", common.ErrUnreadableImage, path, err)
	}

	return d.DecodeImage(img, format), nil
}

// DecodeImage scans an in-memory image and returns every distinct payload in
// detection order.
func (d *ImageDecoder) DecodeImage(img image.Image, format string) []string {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		d.logger.Debug("could not binarize image", "format", format, "error", err)
		return nil
	}

	results, err := multiqr.NewQRCodeMultiReader().DecodeMultiple(bmp, nil)
	if err != nil {
		d.logger.Debug("multi-code detection failed", "format", format, "error", err)
	}
	if payloads := collectText(results); len(payloads) > 0 {
		return payloads
	}

	// Single-code pass for images where finder pattern grouping found nothing.
	result, err := qrcode.NewQRCodeReader().Decode(bmp, nil)
	if err != nil {
		d.logger.Debug("no QR code detected", "format", format, "error", err)
		return nil
	}
	return collectText([]*gozxing.Result{result})
}

func collectText(results []*gozxing.Result) []string {
	seen := make(map[string]struct{}, len(results))
	payloads := make([]string, 0, len(results))
	for _, r := range results {
		if r == nil {
			continue
		}
		text := r.GetText()
		if text == "" {
			continue
		}
		if _, dup := seen[text]; dup {
			continue
		}
		seen[text] = struct{}{}
		payloads = append(payloads, text)
	}
	return payloads
}
