// ABOUTME: Node variants of the editable document: text runs, entities, attachments
// ABOUTME: Entity and attachment nodes are atomic; attachments own a releasable resource handle

package document

import (
	"sync/atomic"
	"time"
	"unicode/utf8"
)

// NodeID identifies a node. IDs are unique process-wide, so a point taken
// from one document never resolves inside another.
type NodeID uint64

var lastID atomic.Uint64

func newID() NodeID {
	return NodeID(lastID.Add(1))
}

// NodeKind discriminates the three node variants.
type NodeKind int

const (
	KindText NodeKind = iota
	KindEntity
	KindAttachment
)

// String returns the lowercase kind name.
func (k NodeKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindEntity:
		return "entity"
	case KindAttachment:
		return "attachment"
	default:
		return "unknown"
	}
}

// EntityKind is the mention flavour of an entity node.
type EntityKind string

const (
	EntityUser  EntityKind = "user"
	EntityAgent EntityKind = "agent"
)

// Identity is the {kind, id} tuple of a mention.
type Identity struct {
	Kind EntityKind
	ID   string
}

// Entity is the payload of an entity node.
type Entity struct {
	Identity
	// DisplayName is the bare name ("alice").
	DisplayName string
	// DisplayText is what the node shows and what linearization emits ("@alice").
	DisplayText string
	// Title is the hover/help text of the tag.
	Title string
}

// AttachmentKind is the media flavour of an attachment node.
type AttachmentKind string

const (
	AttachImage AttachmentKind = "image"
	AttachVideo AttachmentKind = "video"
	AttachFile  AttachmentKind = "file"
)

// Status is the upload state of an attachment.
type Status string

const (
	StatusPending  Status = "pending"
	StatusUploaded Status = "uploaded"
	StatusFailed   Status = "failed"
)

// File is the source of an attachment as delivered by paste, drop or picker.
type File struct {
	Name string
	Path string
	MIME string
	Size int64
	Data []byte
}

// Metadata is what a probe derives from the source before the attachment
// is considered ready.
type Metadata struct {
	Width       int
	Height      int
	Duration    time.Duration
	Thumbnail   []byte
	ThumbMIME   string
	ThumbWidth  int
	ThumbHeight int
}

// Resource is a transient handle (preview object, temp buffer) owned by an
// attachment. Release must be safe to call more than once.
type Resource interface {
	Release()
}

// Attachment is the descriptor carried by an attachment node. It lives
// exactly as long as its node.
type Attachment struct {
	ID          string
	Kind        AttachmentKind
	File        File
	DisplayName string
	Status      Status
	Percent     int
	Meta        Metadata
	// Ready is set once metadata resolved successfully.
	Ready bool
	// Key is the stable reference returned by the upload collaborator.
	Key string
	Err error
	// Handle is released when the node leaves the document.
	Handle Resource
}

// Node is one child of the editable root.
type Node struct {
	id         NodeID
	kind       NodeKind
	text       string
	entity     *Entity
	attachment *Attachment
	owner      *Document
}

// NewText creates a detached text run.
func NewText(s string) *Node {
	return &Node{id: newID(), kind: KindText, text: s}
}

// NewEntity creates a detached entity node.
func NewEntity(e Entity) *Node {
	return &Node{id: newID(), kind: KindEntity, entity: &e}
}

// NewAttachment creates a detached attachment node owning a.
func NewAttachment(a *Attachment) *Node {
	return &Node{id: newID(), kind: KindAttachment, attachment: a}
}

// ID returns the node identifier.
func (n *Node) ID() NodeID { return n.id }

// Kind returns the node variant.
func (n *Node) Kind() NodeKind { return n.kind }

// Text returns the content of a text run, "" for other kinds.
func (n *Node) Text() string { return n.text }

// Entity returns the entity payload or nil.
func (n *Node) Entity() *Entity { return n.entity }

// Attachment returns the attachment descriptor or nil.
func (n *Node) Attachment() *Attachment { return n.attachment }

// IsAtomic reports whether the node can only be deleted as a whole.
func (n *Node) IsAtomic() bool { return n.kind != KindText }

// Attached reports whether the node currently belongs to a document.
func (n *Node) Attached() bool { return n.owner != nil }

// LogicalText is the text the node contributes to the document's content.
func (n *Node) LogicalText() string {
	switch n.kind {
	case KindText:
		return n.text
	case KindEntity:
		return n.entity.DisplayText
	default:
		return ""
	}
}

func (n *Node) runeLen() int {
	return utf8.RuneCountInString(n.text)
}

// release frees the node's transient resource. Every removal path goes
// through here.
func release(n *Node) {
	if n.attachment != nil && n.attachment.Handle != nil {
		n.attachment.Handle.Release()
		n.attachment.Handle = nil
	}
	n.owner = nil
}
