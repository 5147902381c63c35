// ABOUTME: Attachment entry points: insert placeholders, resolve probe results, notify rejections
// ABOUTME: Rejections become throttled notices; late results for deleted nodes are dropped

package form

import (
	"errors"
	"fmt"

	"github.com/mauromedda/msgcomposer/internal/notify"
	"github.com/mauromedda/msgcomposer/pkg/composer/document"
	"github.com/mauromedda/msgcomposer/pkg/composer/media"
)

// Attach inserts a placeholder for f. The returned Pending must be loaded
// off the UI goroutine and its result passed to ResolveAttachment.
func (c *Composer) Attach(kind document.AttachmentKind, f document.File) (*media.Pending, error) {
	m, ok := c.media[kind]
	if !ok {
		return nil, fmt.Errorf("unknown attachment kind %q", kind)
	}
	p, err := m.Insert(f, f.Name)
	if err != nil {
		c.reject(kind, err)
		return nil, err
	}
	c.Input()
	return p, nil
}

// AttachImage inserts an image placeholder.
func (c *Composer) AttachImage(f document.File) (*media.Pending, error) {
	return c.Attach(document.AttachImage, f)
}

// AttachVideo inserts a video placeholder.
func (c *Composer) AttachVideo(f document.File) (*media.Pending, error) {
	return c.Attach(document.AttachVideo, f)
}

// AttachFile inserts a file placeholder.
func (c *Composer) AttachFile(f document.File) (*media.Pending, error) {
	return c.Attach(document.AttachFile, f)
}

// ResolveAttachment commits a probe result. A result whose node was
// deleted meanwhile returns media.ErrDetached without a notice.
func (c *Composer) ResolveAttachment(res media.Result) error {
	doc := c.sel.Root()
	if doc == nil {
		return media.ErrDetached
	}
	n, ok := doc.Node(res.Node)
	if !ok || n.Attachment() == nil {
		c.log.Warn("form: dropping late metadata for %s", res.ID)
		return media.ErrDetached
	}
	kind := n.Attachment().Kind
	err := c.media[kind].Resolve(res)
	if err != nil && !errors.Is(err, media.ErrDetached) {
		c.reject(kind, err)
	}
	return err
}

// Attachments returns every ready attachment across kinds.
func (c *Composer) Attachments() []*document.Attachment {
	var out []*document.Attachment
	for _, k := range []document.AttachmentKind{document.AttachImage, document.AttachVideo, document.AttachFile} {
		out = append(out, c.media[k].GetAll()...)
	}
	return out
}

func reasonCode(err error) string {
	switch {
	case errors.Is(err, media.ErrNotMounted):
		return "not-mounted"
	case errors.Is(err, media.ErrKindForbidden):
		return "forbidden"
	case errors.Is(err, media.ErrLimitReached):
		return "limit"
	case errors.Is(err, media.ErrTooLarge):
		return "too-large"
	case errors.Is(err, media.ErrMetadata):
		return "metadata"
	default:
		return "error"
	}
}

func (c *Composer) reject(kind document.AttachmentKind, err error) {
	n := notify.Notice{Level: notify.LevelWarning, Reason: string(kind) + "/" + reasonCode(err), Message: err.Error(), Err: err}
	var rej *media.RejectError
	if errors.As(err, &rej) {
		n.Message = rej.Reason
	} else {
		n.Level = notify.LevelError
	}
	c.notifier.Publish(n)
}
