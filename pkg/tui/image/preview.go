// ABOUTME: Half-block ANSI preview of attachment thumbnails inside the composer
// ABOUTME: Each output line packs two pixel rows: background = top, foreground = bottom

package image

import (
	"bytes"
	"fmt"
	goimage "image"
	"strings"
)

// Preview decodes data and renders it maxCols wide. Undecodable data yields
// nil so callers can fall back to a text label.
func Preview(data []byte, maxCols int) []string {
	if len(data) == 0 || maxCols <= 0 {
		return nil
	}
	img, _, err := goimage.Decode(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	return HalfBlock(img, maxCols)
}

// HalfBlock renders img with the lower-half block character.
func HalfBlock(img goimage.Image, maxCols int) []string {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 || maxCols <= 0 {
		return nil
	}
	target := Dimensions{Width: b.Dx(), Height: b.Dy()}
	if target.Width > maxCols {
		target = Dimensions{Width: maxCols, Height: max(1, target.Height*maxCols/target.Width)}
	}
	src := img
	if target.Width != b.Dx() || target.Height != b.Dy() {
		src = scale(img, target)
	}
	sb := src.Bounds()

	lines := make([]string, 0, (target.Height+1)/2)
	for y := 0; y < target.Height; y += 2 {
		var line strings.Builder
		for x := range target.Width {
			tr, tg, tb := rgb(src, sb.Min.X+x, sb.Min.Y+y)
			var br, bg, bb uint8
			if y+1 < target.Height {
				br, bg, bb = rgb(src, sb.Min.X+x, sb.Min.Y+y+1)
			}
			fmt.Fprintf(&line, "\x1b[48;2;%d;%d;%dm\x1b[38;2;%d;%d;%dm▄", tr, tg, tb, br, bg, bb)
		}
		line.WriteString("\x1b[0m")
		lines = append(lines, line.String())
	}
	return lines
}

func rgb(img goimage.Image, x, y int) (uint8, uint8, uint8) {
	r, g, b, _ := img.At(x, y).RGBA()
	return uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)
}
