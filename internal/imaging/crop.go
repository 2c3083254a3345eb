package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
)

// CropResult carries a normalized streak rendered as PNG, as returned by
// the streak_profile tool. Width and Height are the pixel size after any
// display scaling.
type CropResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"` // standard base64 of the PNG bytes
	MimeType    string `json:"mime_type"`    // always image/png
}

// CropFrame extracts the rectangle (x1,y1)-(x2,y2) from a frame.
// The rectangle must lie inside the frame and be non-empty.
func CropFrame(f *Frame, x1, y1, x2, y2 int) (*Frame, error) {
	if x1 < 0 || y1 < 0 || x2 > f.Width || y2 > f.Height {
		return nil, fmt.Errorf("crop region (%d,%d)-(%d,%d) outside frame bounds (0,0)-(%d,%d)",
			x1, y1, x2, y2, f.Width, f.Height)
	}
	if x1 >= x2 || y1 >= y2 {
		return nil, fmt.Errorf("invalid crop region: x1 must be < x2, y1 must be < y2")
	}
	return f.SubFrame(image.Rect(x1, y1, x2, y2))
}

// EncodePNG encodes an image as base64 PNG, optionally scaled.
// Scaling uses nearest-neighbor so individual samples stay visible.
func EncodePNG(img image.Image, scale float64) (*CropResult, error) {
	if scale != 1.0 && scale > 0 {
		newWidth := int(float64(img.Bounds().Dx()) * scale)
		newHeight := int(float64(img.Bounds().Dy()) * scale)
		if newWidth > 0 && newHeight > 0 {
			img = imaging.Resize(img, newWidth, newHeight, imaging.NearestNeighbor)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &CropResult{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
