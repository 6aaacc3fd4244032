// Package qr renders wallet addresses and transport pages as QR images.
package qr

import (
	"encoding/base64"
	"fmt"

	"github.com/skip2/go-qrcode"
)

// DefaultSize is the PNG edge length in pixels
const DefaultSize = 256

// PNG renders text as a QR code PNG of size x size pixels.
// Pages are rendered with low error correction to keep the symbol version down.
func PNG(text string, size int) ([]byte, error) {
	return render(text, qrcode.Low, size)
}

// Base64PNG renders text with medium error correction and returns the PNG
// encoded as standard base64, the form stored in keystore files
func Base64PNG(text string, size int) (string, error) {
	png, err := render(text, qrcode.Medium, size)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(png), nil
}

// Pages renders every page text of a chunked message, in order
func Pages(pages []string, size int) ([][]byte, error) {
	out := make([][]byte, 0, len(pages))
	for i, p := range pages {
		png, err := PNG(p, size)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
		out = append(out, png)
	}
	return out, nil
}

func render(text string, level qrcode.RecoveryLevel, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultSize
	}
	code, err := qrcode.New(text, level)
	if err != nil {
		return nil, fmt.Errorf("failed to create QR code: %w", err)
	}
	png, err := code.PNG(size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PNG: %w", err)
	}
	return png, nil
}
