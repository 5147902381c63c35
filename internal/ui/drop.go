// ABOUTME: Terminal drag-and-drop: pasted file paths become attachments of the matching kind
// ABOUTME: Paths may be quoted, file:// URLs, or use backslash-escaped spaces

package ui

import (
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/mauromedda/msgcomposer/pkg/composer/document"
)

var (
	imageExt = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true}
	videoExt = map[string]bool{".mp4": true, ".mov": true, ".m4v": true}
)

// KindFor picks the attachment kind from the file extension.
func KindFor(name string) document.AttachmentKind {
	ext := strings.ToLower(filepath.Ext(name))
	switch {
	case imageExt[ext]:
		return document.AttachImage
	case videoExt[ext]:
		return document.AttachVideo
	default:
		return document.AttachFile
	}
}

// splitPaths splits a pasted drop into path candidates.
func splitPaths(s string) []string {
	var (
		out   []string
		cur   strings.Builder
		quote rune
		esc   bool
	)
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
	}
	for _, r := range strings.TrimSpace(s) {
		switch {
		case esc:
			cur.WriteRune(r)
			esc = false
		case r == '\\' && quote != '\'':
			esc = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote = r
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	for i, p := range out {
		if strings.HasPrefix(p, "file://") {
			if u, err := url.Parse(p); err == nil {
				out[i] = u.Path
			}
		}
	}
	return out
}

// DroppedFiles returns the files named by a pasted drop, or nil when any
// candidate is not an existing regular file (the paste is then text).
func DroppedFiles(s string) []document.File {
	paths := splitPaths(s)
	if len(paths) == 0 {
		return nil
	}
	files := make([]document.File, 0, len(paths))
	for _, p := range paths {
		if !filepath.IsAbs(p) && !strings.HasPrefix(p, "~") {
			return nil
		}
		if strings.HasPrefix(p, "~") {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil
			}
			p = filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
		info, err := os.Stat(p)
		if err != nil || !info.Mode().IsRegular() {
			return nil
		}
		files = append(files, document.File{
			Name: filepath.Base(p),
			Path: p,
			MIME: mime.TypeByExtension(strings.ToLower(filepath.Ext(p))),
			Size: info.Size(),
		})
	}
	return files
}

// looksLikeHTML reports a pasted fragment that carries mention markup.
func looksLikeHTML(s string) bool {
	t := strings.TrimSpace(s)
	return strings.HasPrefix(t, "<") && strings.Contains(t, "data-type=")
}
