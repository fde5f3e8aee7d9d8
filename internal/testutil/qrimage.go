package testutil

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// QRCodeSize is the edge length in pixels of each code drawn by WriteQRImage.
const QRCodeSize = 200

// WriteQRImage renders each payload as a QR code, lays the codes out left to
// right on a white canvas and writes the result as a PNG under t.TempDir().
func WriteQRImage(t *testing.T, payloads ...string) string {
	t.Helper()

	const gap = 40
	width := len(payloads) * (QRCodeSize + gap)
	height := QRCodeSize + gap
	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	for i, payload := range payloads {
		matrix, err := qrcode.NewQRCodeWriter().Encode(payload, gozxing.BarcodeFormat_QR_CODE, QRCodeSize, QRCodeSize, nil)
		if err != nil {
			t.Fatalf("failed to encode %q: %v", payload, err)
		}
		origin := image.Pt(gap/2+i*(QRCodeSize+gap), gap/2)
		draw.Draw(canvas, image.Rectangle{Min: origin, Max: origin.Add(image.Pt(QRCodeSize, QRCodeSize))}, matrix, image.Point{}, draw.Src)
	}

	path := filepath.Join(t.TempDir(), "codes.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create image: %v", err)
	}
	defer func() { _ = f.Close() }()
	if err := png.Encode(f, canvas); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}
