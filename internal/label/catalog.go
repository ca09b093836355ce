// Package label describes shipping-label sheets: where each kind of tracking
// number is printed, and what a valid tracking number looks like.
package label

import (
	"fmt"
	"strings"
)

// FieldType identifies a region of a label sheet, or a synthetic annotation
// slot that has no region of its own (username, page number, notes).
type FieldType string

const (
	BulkDomesticTop    FieldType = "bulk-domestic-top"
	BulkDomesticBottom FieldType = "bulk-domestic-bottom"
	BulkForeign        FieldType = "bulk-foreign"
	SingleDomestic     FieldType = "single-domestic"
	SingleForeign      FieldType = "single-foreign"

	// Synthetic annotation slots.
	Username   FieldType = "username"
	PageNumber FieldType = "page-number"
	CenterLine FieldType = "bulk-domestic-center-line"
)

// Kind groups field types by the tracking number format printed in them.
type Kind int

const (
	KindNone Kind = iota
	KindDomestic
	KindForeign
)

func (k Kind) String() string {
	switch k {
	case KindDomestic:
		return "domestic"
	case KindForeign:
		return "foreign"
	default:
		return "none"
	}
}

// Kind returns the tracking number format expected in this field.
func (t FieldType) Kind() Kind {
	switch t {
	case BulkDomesticTop, BulkDomesticBottom, SingleDomestic:
		return KindDomestic
	case BulkForeign, SingleForeign:
		return KindForeign
	default:
		return KindNone
	}
}

// Notes returns the companion slot used for cross-sell notes on this field.
func (t FieldType) Notes() FieldType {
	return FieldType(string(t) + "-notes")
}

// IsNotes reports whether t is a notes slot.
func (t FieldType) IsNotes() bool {
	return strings.HasSuffix(string(t), "-notes")
}

// Entry maps one field type to the region of the page where it is printed.
type Entry struct {
	Type FieldType
	BBox BBox
}

// Catalog is an immutable list of label regions. Build it once at startup and
// share it; nothing mutates it afterwards.
type Catalog struct {
	entries []Entry
}

// NewCatalog copies entries into a new catalog. Lookup order follows entries.
func NewCatalog(entries ...Entry) *Catalog {
	c := &Catalog{entries: make([]Entry, len(entries))}
	copy(c.entries, entries)
	return c
}

// DefaultCatalog returns the regions of the label sheets in use.
//
// SingleForeign has no entry: its tracking number shares the page with other
// numeric blocks and no unambiguous region has been measured yet.
func DefaultCatalog() *Catalog {
	return NewCatalog(
		Entry{Type: BulkDomesticTop, BBox: BBox{Left: 147, Top: 129, Width: 10, Height: 135}},
		Entry{Type: BulkDomesticBottom, BBox: BBox{Left: 147, Top: 524, Width: 10, Height: 135}},
		Entry{Type: BulkForeign, BBox: BBox{Left: 324, Top: 350, Width: 140, Height: 20}},
		Entry{Type: SingleDomestic, BBox: BBox{Left: 294, Top: 431, Width: 155, Height: 12}},
	)
}

// Lookup returns the type of the first region containing p.
func (c *Catalog) Lookup(p Point) (FieldType, bool) {
	for _, e := range c.entries {
		if e.BBox.Contains(p) {
			return e.Type, true
		}
	}
	return "", false
}

// Entries returns a copy of the catalog entries.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Validate reports regions of different types that overlap. An overlap makes
// Lookup depend on entry order, which is a configuration bug.
func (c *Catalog) Validate() error {
	for i, a := range c.entries {
		if a.Type.Kind() == KindNone {
			return fmt.Errorf("catalog entry %d: %q is not a label field", i, a.Type)
		}
		for _, b := range c.entries[i+1:] {
			if a.Type != b.Type && a.BBox.Overlaps(b.BBox) {
				return fmt.Errorf("catalog regions overlap: %s %s and %s %s", a.Type, a.BBox, b.Type, b.BBox)
			}
		}
	}
	return nil
}
