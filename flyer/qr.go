package flyer

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"

	"github.com/lvillar/flyerpdf/raster"
)

// qrPixels is the edge length of the encoded QR image. The node is drawn
// smaller, so the code stays sharp at canvas scale 2.
const qrPixels = 320

// qrCode encodes content as a PNG data URI.
func qrCode(content string) (string, error) {
	code, err := qr.Encode(content, qr.M, qr.Auto)
	if err != nil {
		return "", fmt.Errorf("flyer: encoding QR code: %w", err)
	}
	code, err = barcode.Scale(code, qrPixels, qrPixels)
	if err != nil {
		return "", fmt.Errorf("flyer: scaling QR code: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, code); err != nil {
		return "", fmt.Errorf("flyer: encoding QR image: %w", err)
	}
	return raster.DataURI("image/png", buf.Bytes()), nil
}
