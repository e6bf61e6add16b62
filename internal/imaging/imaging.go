// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging normalises uploaded avatars: any supported input
// (JPEG, PNG, GIF, WebP) is center-cropped to a square and scaled to a
// fixed size, then re-encoded as PNG. Re-encoding also strips metadata.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // register decoder
	_ "image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	// AvatarSize is the edge length of stored avatars in pixels.
	AvatarSize = 256

	// ContentType is the MIME type of every processed avatar.
	ContentType = "image/png"

	// maxSourcePixels guards against decompression bombs.
	maxSourcePixels = 40_000_000
)

// ErrUnsupported is returned for inputs that are not a known image format.
var ErrUnsupported = errors.New("imaging: unsupported image format")

// Avatar decodes src and returns a square PNG of AvatarSize pixels.
// Smaller sources are scaled up so every avatar renders the same.
func Avatar(src []byte) ([]byte, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(src))
	if err != nil {
		return nil, ErrUnsupported
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width*cfg.Height > maxSourcePixels {
		return nil, fmt.Errorf("imaging: image too large (%dx%d)", cfg.Width, cfg.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("imaging: decode failed: %w", err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, AvatarSize, AvatarSize))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, squareCrop(img.Bounds()), draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("imaging: encode failed: %w", err)
	}
	return buf.Bytes(), nil
}

// squareCrop returns the largest centered square inside b.
func squareCrop(b image.Rectangle) image.Rectangle {
	w, h := b.Dx(), b.Dy()
	side := min(w, h)
	x0 := b.Min.X + (w-side)/2
	y0 := b.Min.Y + (h-side)/2
	return image.Rect(x0, y0, x0+side, y0+side)
}
