// ABOUTME: Metadata probes for image, video and file attachments
// ABOUTME: ProbeAll loads several pending attachments concurrently with independent failures

package media

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mauromedda/msgcomposer/pkg/composer/document"
	"github.com/mauromedda/msgcomposer/pkg/tui/image"
)

// ThumbnailDim bounds the preview thumbnail edge in pixels.
const ThumbnailDim = 160

// thumbnailBytes bounds the encoded preview thumbnail.
const thumbnailBytes = 64 << 10

// readSource returns the file bytes, reading from disk when the source was
// delivered as a path.
func readSource(ctx context.Context, f document.File) ([]byte, error) {
	if f.Data != nil {
		return f.Data, nil
	}
	if f.Path == "" {
		return nil, errors.New("source has neither data nor path")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.Path, err)
	}
	return data, nil
}

// ImageProbe reads the natural dimensions and derives a thumbnail.
func ImageProbe(ctx context.Context, f document.File) (document.Metadata, error) {
	data, err := readSource(ctx, f)
	if err != nil {
		return document.Metadata{}, err
	}
	dim, _, err := image.Probe(data)
	if err != nil {
		return document.Metadata{}, err
	}
	if dim.Width <= 0 || dim.Height <= 0 {
		return document.Metadata{}, fmt.Errorf("invalid dimensions %dx%d", dim.Width, dim.Height)
	}
	meta := document.Metadata{Width: dim.Width, Height: dim.Height}
	if err := ctx.Err(); err != nil {
		return document.Metadata{}, err
	}
	thumb, tdim, mime, err := image.Thumbnail(data, ThumbnailDim, thumbnailBytes)
	if err == nil {
		meta.Thumbnail, meta.ThumbMIME = thumb, mime
		meta.ThumbWidth, meta.ThumbHeight = tdim.Width, tdim.Height
	}
	return meta, nil
}

// VideoProbe reads duration and frame size from an MP4/MOV container.
func VideoProbe(ctx context.Context, f document.File) (document.Metadata, error) {
	data, err := readSource(ctx, f)
	if err != nil {
		return document.Metadata{}, err
	}
	return parseMP4(data)
}

// FileProbe accepts any readable source.
func FileProbe(ctx context.Context, f document.File) (document.Metadata, error) {
	if f.Data != nil {
		return document.Metadata{}, nil
	}
	if err := ctx.Err(); err != nil {
		return document.Metadata{}, err
	}
	if _, err := os.Stat(f.Path); err != nil {
		return document.Metadata{}, fmt.Errorf("stat %s: %w", f.Path, err)
	}
	return document.Metadata{}, nil
}

// ProbeAll loads every pending attachment with at most limit probes in
// flight. One failure does not cancel the others; each result carries its
// own error.
func ProbeAll(ctx context.Context, pending []*Pending, limit int) []Result {
	out := make([]Result, len(pending))
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, p := range pending {
		g.Go(func() error {
			out[i] = p.Load(gctx)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// parseMP4 walks top-level boxes to moov, then reads mvhd for the duration
// and the first tkhd with a non-zero size for the frame dimensions.
func parseMP4(data []byte) (document.Metadata, error) {
	moov, ok := findBox(data, "moov")
	if !ok {
		return document.Metadata{}, errors.New("no moov box")
	}
	var meta document.Metadata
	mvhd, ok := findBox(moov, "mvhd")
	if !ok || len(mvhd) < 20 {
		return document.Metadata{}, errors.New("no mvhd box")
	}
	var scale, dur uint64
	if mvhd[0] == 1 {
		if len(mvhd) < 32 {
			return document.Metadata{}, io.ErrUnexpectedEOF
		}
		scale = uint64(binary.BigEndian.Uint32(mvhd[20:24]))
		dur = binary.BigEndian.Uint64(mvhd[24:32])
	} else {
		scale = uint64(binary.BigEndian.Uint32(mvhd[12:16]))
		dur = uint64(binary.BigEndian.Uint32(mvhd[16:20]))
	}
	if scale > 0 {
		meta.Duration = time.Duration(dur * uint64(time.Second) / scale)
	}

	rest := moov
	for {
		trak, next, ok := nextBox(rest, "trak")
		if !ok {
			break
		}
		rest = next
		tkhd, ok := findBox(trak, "tkhd")
		if !ok {
			continue
		}
		// Width and height are the last 8 bytes, 16.16 fixed point.
		if len(tkhd) < 8 {
			continue
		}
		w := int(binary.BigEndian.Uint32(tkhd[len(tkhd)-8:]) >> 16)
		h := int(binary.BigEndian.Uint32(tkhd[len(tkhd)-4:]) >> 16)
		if w > 0 && h > 0 {
			meta.Width, meta.Height = w, h
			break
		}
	}
	return meta, nil
}

// findBox returns the payload of the first box named typ in data.
func findBox(data []byte, typ string) ([]byte, bool) {
	payload, _, ok := nextBox(data, typ)
	return payload, ok
}

// nextBox scans data for a box named typ and returns its payload and the
// bytes after it.
func nextBox(data []byte, typ string) (payload, rest []byte, ok bool) {
	for len(data) >= 8 {
		size := uint64(binary.BigEndian.Uint32(data[0:4]))
		name := string(data[4:8])
		hdr := uint64(8)
		switch size {
		case 0:
			size = uint64(len(data))
		case 1:
			if len(data) < 16 {
				return nil, nil, false
			}
			size = binary.BigEndian.Uint64(data[8:16])
			hdr = 16
		}
		if size < hdr || size > uint64(len(data)) {
			return nil, nil, false
		}
		if name == typ {
			return data[hdr:size], data[size:], true
		}
		data = data[size:]
	}
	return nil, nil, false
}
