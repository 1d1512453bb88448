package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"
)

// ErrEmptyCrop is returned when the crop area does not overlap the image.
var ErrEmptyCrop = errors.New("crop area is outside the image")

// CropArea is a rectangle in source pixels.
type CropArea struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// JPEGQuality matches the client's 0.9 compression.
const JPEGQuality = 90

// Crop cuts area out of src, scales it down to at most maxWidth pixels wide
// (0 keeps the size) and returns it as a JPEG data URL. A zero area keeps the
// whole image.
func Crop(src DataURL, area CropArea, maxWidth uint) (DataURL, error) {
	img, _, err := image.Decode(bytes.NewReader(src.Data))
	if err != nil {
		return DataURL{}, fmt.Errorf("failed to decode image: %w", err)
	}

	rect := img.Bounds()
	if area != (CropArea{}) {
		rect = image.Rect(area.X, area.Y, area.X+area.Width, area.Y+area.Height).
			Add(img.Bounds().Min).
			Intersect(img.Bounds())
	}
	if rect.Empty() {
		return DataURL{}, ErrEmptyCrop
	}

	cropped := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(cropped, cropped.Bounds(), img, rect.Min, draw.Src)

	var out image.Image = cropped
	if maxWidth > 0 && uint(rect.Dx()) > maxWidth {
		out = resize.Resize(maxWidth, 0, cropped, resize.Lanczos3)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return DataURL{}, fmt.Errorf("failed to encode image: %w", err)
	}
	return DataURL{MIMEType: "image/jpeg", Data: buf.Bytes()}, nil
}
