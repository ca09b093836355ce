// Package annotate decides where and how annotation text is drawn on a label
// page: position, rotation, wrapping and line budget per field type.
package annotate

import (
	"fmt"
	"strings"

	"github.com/jackzampolin/labelpack/internal/label"
)

// Offset is a canvas position in PDF points, measured from the top-left corner.
type Offset struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Params are the rendering parameters of one field type.
type Params struct {
	Translate Offset
	Rotate    float64 // degrees, counter-clockwise positive
	// MaxLineLength is the wrap width in characters. Zero disables wrapping.
	MaxLineLength int
	// MaxLines is the line budget. Zero disables the overflow check.
	MaxLines int
}

// fallbackParams apply to field types missing from a layout.
var fallbackParams = Params{
	Translate:     Offset{X: 10, Y: 10},
	MaxLineLength: 20,
	MaxLines:      2,
}

// OutputField is one block of annotation text ready to be drawn.
type OutputField struct {
	Type      label.FieldType `json:"type" yaml:"type"`
	Text      string          `json:"text" yaml:"text"` // already wrapped, lines separated by "\n"
	Overflow  bool            `json:"overflow" yaml:"overflow"`
	Translate Offset          `json:"translate" yaml:"translate"`
	Rotate    float64         `json:"rotate" yaml:"rotate"`
}

// Lines splits the wrapped text into lines.
func (f OutputField) Lines() []string {
	if f.Text == "" {
		return nil
	}
	return strings.Split(f.Text, "\n")
}

func (f OutputField) String() string {
	return fmt.Sprintf("%s %q @(%g,%g)", f.Type, f.Text, f.Translate.X, f.Translate.Y)
}

// Layout is an immutable table of rendering parameters keyed by field type.
type Layout struct {
	params map[label.FieldType]Params
}

// NewLayout copies params into a new layout.
func NewLayout(params map[label.FieldType]Params) *Layout {
	l := &Layout{params: make(map[label.FieldType]Params, len(params))}
	for k, v := range params {
		l.params[k] = v
	}
	return l
}

// DefaultLayout returns the annotation positions used on the label sheets in use.
func DefaultLayout() *Layout {
	return NewLayout(map[label.FieldType]Params{
		label.BulkDomesticTop:    {Translate: Offset{244, 316}, MaxLineLength: 27, MaxLines: 2},
		label.BulkDomesticBottom: {Translate: Offset{244, 713}, MaxLineLength: 27, MaxLines: 2},
		label.BulkForeign:        {Translate: Offset{537, 143}, Rotate: -90, MaxLineLength: 21, MaxLines: 4},
		label.SingleDomestic:     {Translate: Offset{223, 318}, MaxLineLength: 28, MaxLines: 2},
		label.SingleForeign:      {Translate: Offset{573, 165}, Rotate: -90, MaxLineLength: 16, MaxLines: 5},
		label.CenterLine:         {Translate: Offset{45, 397}},
		label.Username:           {Translate: Offset{45, 767}, MaxLineLength: 50, MaxLines: 1},
		label.PageNumber:         {Translate: Offset{430, 767}, MaxLineLength: 30, MaxLines: 1},

		label.BulkDomesticTop.Notes():    {Translate: Offset{100, 347}, MaxLineLength: 73, MaxLines: 2},
		label.BulkDomesticBottom.Notes(): {Translate: Offset{100, 740}, MaxLineLength: 73, MaxLines: 2},
		label.BulkForeign.Notes():        {Translate: Offset{75, 645}, MaxLineLength: 79, MaxLines: 3},
		label.SingleDomestic.Notes():     {Translate: Offset{29, 646}, MaxLineLength: 83, MaxLines: 4},
		label.SingleForeign.Notes():      {Translate: Offset{102, 634}, MaxLineLength: 83, MaxLines: 4},
	})
}

// Params returns the parameters for t.
func (l *Layout) Params(t label.FieldType) (Params, bool) {
	p, ok := l.params[t]
	return p, ok
}

// Format wraps text according to the parameters of t. It never fails: a
// field that needs more lines than its budget is flagged, not rejected.
func (l *Layout) Format(t label.FieldType, text string) OutputField {
	p, ok := l.params[t]
	if !ok {
		p = fallbackParams
	}

	var lines []string
	if p.MaxLineLength > 0 {
		lines = Wrap(text, p.MaxLineLength)
		text = strings.Join(lines, "\n")
	} else if text != "" {
		lines = strings.Split(text, "\n")
	}

	return OutputField{
		Type:      t,
		Text:      text,
		Overflow:  p.MaxLines > 0 && len(lines) > p.MaxLines,
		Translate: p.Translate,
		Rotate:    p.Rotate,
	}
}

// CenterLine returns the dashed separator drawn between two labels on a sheet.
func (l *Layout) CenterLine() OutputField {
	return l.Format(label.CenterLine, strings.Repeat("-  ", 30))
}

// PageNumber returns the running page counter for page i of n.
func (l *Layout) PageNumber(i, n, labels int) OutputField {
	return l.Format(label.PageNumber, fmt.Sprintf("Page %d of %d (%d labels)", i, n, labels))
}

// Username returns the seller account field.
func (l *Layout) Username(name string) OutputField {
	return l.Format(label.Username, "User: "+name)
}

// Notes returns the cross-sell reminder for a label of type t.
func (l *Layout) Notes(t label.FieldType, notes string) OutputField {
	return l.Format(t.Notes(), "Notes: "+notes)
}
