package pipeline

import (
	"fmt"

	"github.com/jackzampolin/labelpack/internal/annotate"
	"github.com/jackzampolin/labelpack/internal/extract"
	"github.com/jackzampolin/labelpack/internal/label"
	"github.com/jackzampolin/labelpack/internal/orders"
	"github.com/jackzampolin/labelpack/internal/render"
)

// UnresolvedError reports a tracking number printed on a label that no order
// in the export accounts for.
type UnresolvedError struct {
	Number label.TrackingNumber
	Err    error
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("found no orders linked to %s tracking number %s on page %d of %s",
		e.Number.Type, e.Number.Value, e.Number.PageNumber, e.Number.SourceFile)
}

func (e *UnresolvedError) Unwrap() error { return e.Err }

// CountLabels returns the number of tracking numbers across all pages.
func CountLabels(pages []extract.PageResult) int {
	n := 0
	for _, p := range pages {
		n += len(p.TrackingNumbers)
	}
	return n
}

// Plan computes the annotation fields of every page. labels is the label
// total shown in the page counter; zero derives it from pages. Any tracking
// number missing from the index fails the whole plan.
func Plan(pages []extract.PageResult, idx *orders.Index, layout *annotate.Layout, labels int) ([]render.Page, error) {
	if labels <= 0 {
		labels = CountLabels(pages)
	}

	planned := make([]render.Page, 0, len(pages))
	for i, page := range pages {
		var fields []annotate.OutputField
		var username string

		for j, tn := range page.TrackingNumbers {
			res, err := idx.Resolve(tn.Value)
			if err != nil {
				return nil, &UnresolvedError{Number: tn, Err: err}
			}
			if j == 0 {
				username = res.Username
			}

			fields = append(fields, layout.Format(tn.Type, res.PackingInfo))
			if res.HasNotes() {
				fields = append(fields, layout.Notes(tn.Type, res.Notes))
			}
		}

		if len(page.TrackingNumbers) > 0 {
			fields = append(fields, layout.Username(username))
		}
		fields = append(fields, layout.PageNumber(i+1, len(pages), labels))
		if len(page.TrackingNumbers) >= 2 {
			fields = append(fields, layout.CenterLine())
		}

		planned = append(planned, render.Page{
			SourceFile: page.SourceFile,
			PageNumber: page.PageNumber,
			Fields:     fields,
		})
	}
	return planned, nil
}
