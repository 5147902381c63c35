// ABOUTME: Image format sniffing and natural-size extraction from header bytes
// ABOUTME: PNG, JPEG, GIF and WebP are recognized without decoding pixel data

package image

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// Dimensions is a pixel size.
type Dimensions struct {
	Width  int
	Height int
}

// Format is a recognized container.
type Format int

const (
	Unknown Format = iota
	PNG
	JPEG
	GIF
	WebP
)

// MIME returns the media type of the format.
func (f Format) MIME() string {
	switch f {
	case PNG:
		return "image/png"
	case JPEG:
		return "image/jpeg"
	case GIF:
		return "image/gif"
	case WebP:
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}

// Ext returns the file extension of the format, including the dot.
func (f Format) Ext() string {
	switch f {
	case PNG:
		return ".png"
	case JPEG:
		return ".jpg"
	case GIF:
		return ".gif"
	case WebP:
		return ".webp"
	default:
		return ".bin"
	}
}

var (
	pngMagic = []byte{0x89, 'P', 'N', 'G'}
	jpegMagic = []byte{0xFF, 0xD8}
	gifMagic  = []byte("GIF")
)

// ErrUnknownFormat is returned for data no parser recognizes.
var ErrUnknownFormat = errors.New("unrecognized image format")

// Sniff identifies the format from the leading bytes.
func Sniff(data []byte) Format {
	switch {
	case bytes.HasPrefix(data, pngMagic):
		return PNG
	case bytes.HasPrefix(data, jpegMagic):
		return JPEG
	case bytes.HasPrefix(data, gifMagic):
		return GIF
	case len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WEBP":
		return WebP
	}
	return Unknown
}

// Probe returns the natural size and MIME type of an encoded image.
func Probe(data []byte) (Dimensions, string, error) {
	if len(data) < 8 {
		return Dimensions{}, "", fmt.Errorf("image data too short (%d bytes)", len(data))
	}
	f := Sniff(data)
	var (
		d   Dimensions
		err error
	)
	switch f {
	case PNG:
		d, err = pngSize(data)
	case JPEG:
		d, err = jpegSize(data)
	case GIF:
		d, err = gifSize(data)
	case WebP:
		d, err = webpSize(data)
	default:
		return Dimensions{}, "", ErrUnknownFormat
	}
	if err != nil {
		return Dimensions{}, "", err
	}
	return d, f.MIME(), nil
}

// pngSize reads the IHDR chunk that always follows the signature.
func pngSize(data []byte) (Dimensions, error) {
	if len(data) < 24 {
		return Dimensions{}, errors.New("png: truncated IHDR")
	}
	return Dimensions{
		Width:  int(binary.BigEndian.Uint32(data[16:20])),
		Height: int(binary.BigEndian.Uint32(data[20:24])),
	}, nil
}

// jpegSize walks marker segments until a baseline, extended or progressive
// start-of-frame.
func jpegSize(data []byte) (Dimensions, error) {
	for i := 2; i+3 < len(data); {
		if data[i] != 0xFF {
			i++
			continue
		}
		marker := data[i+1]
		if marker >= 0xC0 && marker <= 0xC2 {
			if i+9 > len(data) {
				return Dimensions{}, errors.New("jpeg: truncated SOF")
			}
			return Dimensions{
				Height: int(binary.BigEndian.Uint16(data[i+5 : i+7])),
				Width:  int(binary.BigEndian.Uint16(data[i+7 : i+9])),
			}, nil
		}
		seg := int(binary.BigEndian.Uint16(data[i+2 : i+4]))
		if seg < 2 {
			break
		}
		i += 2 + seg
	}
	return Dimensions{}, errors.New("jpeg: no SOF marker")
}

// gifSize reads the logical screen descriptor.
func gifSize(data []byte) (Dimensions, error) {
	if len(data) < 10 {
		return Dimensions{}, errors.New("gif: truncated header")
	}
	return Dimensions{
		Width:  int(binary.LittleEndian.Uint16(data[6:8])),
		Height: int(binary.LittleEndian.Uint16(data[8:10])),
	}, nil
}

// webpSize handles the lossy, lossless and extended chunk layouts.
func webpSize(data []byte) (Dimensions, error) {
	if len(data) < 30 {
		return Dimensions{}, errors.New("webp: truncated header")
	}
	switch chunk := string(data[12:16]); chunk {
	case "VP8 ":
		return Dimensions{
			Width:  int(binary.LittleEndian.Uint16(data[26:28]) & 0x3FFF),
			Height: int(binary.LittleEndian.Uint16(data[28:30]) & 0x3FFF),
		}, nil
	case "VP8L":
		bits := binary.LittleEndian.Uint32(data[21:25])
		return Dimensions{
			Width:  int(bits&0x3FFF) + 1,
			Height: int((bits>>14)&0x3FFF) + 1,
		}, nil
	case "VP8X":
		return Dimensions{
			Width:  int(uint24(data[24:27])) + 1,
			Height: int(uint24(data[27:30])) + 1,
		}, nil
	default:
		return Dimensions{}, fmt.Errorf("webp: unknown chunk %q", chunk)
	}
}

func uint24(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
}
