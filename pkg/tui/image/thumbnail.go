// ABOUTME: Preview thumbnail derivation for image attachments
// ABOUTME: CatmullRom downscale, PNG first, JPEG at falling quality when PNG is too big

package image

import (
	"bytes"
	"errors"
	"fmt"
	goimage "image"
	_ "image/gif"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

var jpegQualities = []int{85, 70, 55, 40}

// Thumbnail scales data to fit within maxDim on both edges and, where it can,
// within maxBytes. Images already inside both bounds are returned unchanged.
func Thumbnail(data []byte, maxDim, maxBytes int) ([]byte, Dimensions, string, error) {
	if len(data) == 0 {
		return nil, Dimensions{}, "", errors.New("empty image data")
	}
	dim, mime, err := Probe(data)
	if err != nil {
		return nil, Dimensions{}, "", fmt.Errorf("reading dimensions: %w", err)
	}
	if dim.Width <= maxDim && dim.Height <= maxDim && len(data) <= maxBytes {
		return data, dim, mime, nil
	}

	src, _, err := goimage.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, Dimensions{}, "", fmt.Errorf("decoding image: %w", err)
	}
	target := Fit(dim, maxDim)
	out, mime, err := encodeSmall(scale(src, target), maxBytes)
	if err != nil {
		return nil, Dimensions{}, "", err
	}
	return out, target, mime, nil
}

// Fit shrinks d to fit a maxDim square, keeping the aspect ratio.
func Fit(d Dimensions, maxDim int) Dimensions {
	if d.Width <= maxDim && d.Height <= maxDim {
		return d
	}
	if d.Width >= d.Height {
		return Dimensions{Width: maxDim, Height: max(1, d.Height*maxDim/d.Width)}
	}
	return Dimensions{Width: max(1, d.Width*maxDim/d.Height), Height: maxDim}
}

func scale(src goimage.Image, d Dimensions) goimage.Image {
	dst := goimage.NewRGBA(goimage.Rect(0, 0, d.Width, d.Height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}

func encodeSmall(img goimage.Image, maxBytes int) ([]byte, string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, "", fmt.Errorf("encoding PNG: %w", err)
	}
	if buf.Len() <= maxBytes {
		return buf.Bytes(), PNG.MIME(), nil
	}
	for _, q := range jpegQualities {
		buf.Reset()
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: q}); err != nil {
			return nil, "", fmt.Errorf("encoding JPEG: %w", err)
		}
		if buf.Len() <= maxBytes {
			break
		}
	}
	return buf.Bytes(), JPEG.MIME(), nil
}
