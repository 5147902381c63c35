// ABOUTME: Splices paste pieces into the document at a caret

package paste

import (
	"github.com/mauromedda/msgcomposer/pkg/composer/document"
)

// Insert splices pieces at p and returns the caret after the last one. An
// entity whose id already exists (per exists) is inserted as its display
// text so the one-tag-per-identity rule holds.
func Insert(doc *document.Document, p document.Point, pieces []Piece, exists func(id string) bool) (document.Point, error) {
	var err error
	for _, pc := range pieces {
		if pc.Node == nil {
			if p, err = doc.InsertText(p, pc.Text); err != nil {
				return p, err
			}
			continue
		}
		e := pc.Node.Entity()
		if exists != nil && exists(e.ID) {
			if p, err = doc.InsertText(p, e.DisplayText); err != nil {
				return p, err
			}
			continue
		}
		if p, err = doc.InsertNode(p, pc.Node); err != nil {
			return p, err
		}
	}
	return p, nil
}
