// ABOUTME: Reads an image from the system clipboard for paste-to-attach
// ABOUTME: Shells out to the platform tool: osascript/pngpaste, xclip/wl-paste, powershell

package image

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
)

// ErrNoImage is returned when the clipboard holds no image.
var ErrNoImage = errors.New("no image in clipboard")

// ClipboardImage returns the clipboard image as encoded bytes.
func ClipboardImage(ctx context.Context) ([]byte, error) {
	var candidates [][]string
	switch runtime.GOOS {
	case "darwin":
		candidates = [][]string{
			{"osascript", "-e", `get the clipboard as «class PNGf»`},
			{"pngpaste", "-"},
		}
	case "linux":
		candidates = [][]string{
			{"xclip", "-selection", "clipboard", "-t", "image/png", "-o"},
			{"wl-paste", "--type", "image/png"},
		}
	case "windows":
		candidates = [][]string{{"powershell", "-NoProfile", "-Command",
			`Add-Type -AssemblyName System.Windows.Forms; $b=[System.Windows.Forms.Clipboard]::GetImage(); if ($b) { $m=New-Object System.IO.MemoryStream; $b.Save($m,[System.Drawing.Imaging.ImageFormat]::Png); [Console]::OpenStandardOutput().Write($m.ToArray(),0,$m.Length) }`}}
	default:
		return nil, fmt.Errorf("clipboard images unsupported on %s", runtime.GOOS)
	}

	var lastErr error = ErrNoImage
	for _, argv := range candidates {
		out, err := exec.CommandContext(ctx, argv[0], argv[1:]...).Output()
		if err != nil {
			lastErr = fmt.Errorf("reading clipboard image: %w", err)
			continue
		}
		if Sniff(out) == Unknown {
			lastErr = ErrNoImage
			continue
		}
		return out, nil
	}
	return nil, lastErr
}
