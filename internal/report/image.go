package report

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	// Decoders for the photo formats Notion serves.
	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"
)

const (
	maxPhotoWidth  = 800
	maxPhotoHeight = 600
	jpegQuality    = 85
)

// preparePhoto decodes the uploaded photo, downscales it to at most
// 800x600 (aspect preserved), and re-encodes it as JPEG for embedding.
// Phone photos are routinely 10MB+; embedding them raw would make the
// report larger than the photo itself.
func preparePhoto(data []byte) (jpg []byte, w, h int, err error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("decoding photo: %w", err)
	}

	bounds := img.Bounds()
	w, h = bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return nil, 0, 0, fmt.Errorf("photo has empty bounds")
	}

	if w > maxPhotoWidth || h > maxPhotoHeight {
		scale := float64(maxPhotoWidth) / float64(w)
		if s := float64(maxPhotoHeight) / float64(h); s < scale {
			scale = s
		}
		nw := int(float64(w) * scale)
		nh := int(float64(h) * scale)
		if nw < 1 {
			nw = 1
		}
		if nh < 1 {
			nh = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
		w, h = nw, nh
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, 0, 0, fmt.Errorf("encoding photo: %w", err)
	}
	return buf.Bytes(), w, h, nil
}

// fitInBox scales (w, h) to fit inside (boxW, boxH) preserving aspect
// ratio, never upscaling.
func fitInBox(w, h, boxW, boxH float64) (float64, float64) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	scale := 1.0
	if s := boxW / w; s < scale {
		scale = s
	}
	if s := boxH / h; s < scale {
		scale = s
	}
	return w * scale, h * scale
}
