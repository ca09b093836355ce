package pipeline

import (
	"errors"
	"strings"
	"testing"

	"github.com/jackzampolin/labelpack/internal/annotate"
	"github.com/jackzampolin/labelpack/internal/extract"
	"github.com/jackzampolin/labelpack/internal/label"
	"github.com/jackzampolin/labelpack/internal/orders"
)

func tn(t label.FieldType, value, file string, page int) label.TrackingNumber {
	return label.TrackingNumber{Type: t, Value: value, SourceFile: file, PageNumber: page}
}

func testIndex() *orders.Index {
	return orders.BuildIndex([]orders.OrderRecord{
		{OrderID: "O1", PackingInfo: "1x Widget A1", Username: "seller1", Buyer: "alice", TrackingNumbers: []string{"9400100000000000000001"}},
		{OrderID: "O2", PackingInfo: "1x Widget B2", Username: "seller1", Buyer: "alice"},
		{OrderID: "O3", PackingInfo: "2x Gadget C3", Username: "seller2", Buyer: "bob", TrackingNumbers: []string{"9400100000000000000002"}},
		{OrderID: "O4", PackingInfo: "1x Gizmo D4", Username: "seller2", Buyer: "carol", TrackingNumbers: []string{"LZ123456789US"}},
	})
}

func fieldTypes(fields []annotate.OutputField) []label.FieldType {
	out := make([]label.FieldType, len(fields))
	for i, f := range fields {
		out[i] = f.Type
	}
	return out
}

func TestPlan(t *testing.T) {
	pages := []extract.PageResult{
		{SourceFile: "a.pdf", PageNumber: 1, TrackingNumbers: []label.TrackingNumber{
			tn(label.BulkDomesticTop, "9400100000000000000001", "a.pdf", 1),
			tn(label.BulkDomesticBottom, "9400100000000000000002", "a.pdf", 1),
		}},
		{SourceFile: "a.pdf", PageNumber: 2},
		{SourceFile: "b.pdf", PageNumber: 1, TrackingNumbers: []label.TrackingNumber{
			tn(label.BulkForeign, "LZ123456789US", "b.pdf", 1),
		}},
	}

	planned, err := Plan(pages, testIndex(), annotate.DefaultLayout(), 0)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if len(planned) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(planned))
	}

	t.Run("two labels", func(t *testing.T) {
		got := fieldTypes(planned[0].Fields)
		want := []label.FieldType{
			label.BulkDomesticTop, label.BulkDomesticTop.Notes(),
			label.BulkDomesticBottom,
			label.Username, label.PageNumber, label.CenterLine,
		}
		if strings.Join(typesToStrings(got), ",") != strings.Join(typesToStrings(want), ",") {
			t.Fatalf("got fields %v, want %v", got, want)
		}
		f := planned[0].Fields
		if f[0].Text != "1x Widget A1" {
			t.Errorf("unexpected packing text %q", f[0].Text)
		}
		if !strings.HasPrefix(f[1].Text, "Notes: alice") || !strings.Contains(f[1].Text, "1x Widget B2") {
			t.Errorf("unexpected notes %q", f[1].Text)
		}
		if f[3].Text != "User: seller1" {
			t.Errorf("expected username from first number, got %q", f[3].Text)
		}
		if f[4].Text != "Page 1 of 3 (3 labels)" {
			t.Errorf("unexpected page counter %q", f[4].Text)
		}
	})

	t.Run("empty page gets only the counter", func(t *testing.T) {
		f := planned[1].Fields
		if len(f) != 1 || f[0].Type != label.PageNumber || f[0].Text != "Page 2 of 3 (3 labels)" {
			t.Errorf("unexpected fields %v", f)
		}
	})

	t.Run("single label has no center line", func(t *testing.T) {
		got := fieldTypes(planned[2].Fields)
		want := []label.FieldType{label.BulkForeign, label.Username, label.PageNumber}
		if strings.Join(typesToStrings(got), ",") != strings.Join(typesToStrings(want), ",") {
			t.Errorf("got fields %v, want %v", got, want)
		}
		if planned[2].SourceFile != "b.pdf" || planned[2].PageNumber != 1 {
			t.Errorf("unexpected page identity %+v", planned[2])
		}
	})
}

func typesToStrings(types []label.FieldType) []string {
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return out
}

func TestPlanLabelOverride(t *testing.T) {
	pages := []extract.PageResult{{SourceFile: "a.pdf", PageNumber: 1}}
	planned, err := Plan(pages, testIndex(), annotate.DefaultLayout(), 25)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if got := planned[0].Fields[0].Text; got != "Page 1 of 1 (25 labels)" {
		t.Errorf("got %q", got)
	}
}

func TestPlanUnresolved(t *testing.T) {
	missing := tn(label.BulkDomesticBottom, "9400100000000000000099", "labels-3.pdf", 4)
	pages := []extract.PageResult{
		{SourceFile: "a.pdf", PageNumber: 1, TrackingNumbers: []label.TrackingNumber{
			tn(label.BulkDomesticTop, "9400100000000000000001", "a.pdf", 1),
		}},
		{SourceFile: "labels-3.pdf", PageNumber: 4, TrackingNumbers: []label.TrackingNumber{missing}},
	}

	planned, err := Plan(pages, testIndex(), annotate.DefaultLayout(), 0)
	if err == nil {
		t.Fatal("expected error")
	}
	if planned != nil {
		t.Error("expected no partial plan")
	}
	if !errors.Is(err, orders.ErrUnresolved) {
		t.Errorf("expected ErrUnresolved in chain, got %v", err)
	}
	var unresolved *UnresolvedError
	if !errors.As(err, &unresolved) {
		t.Fatalf("expected *UnresolvedError, got %T", err)
	}
	if unresolved.Number != missing {
		t.Errorf("got %+v, want %+v", unresolved.Number, missing)
	}
	for _, part := range []string{"9400100000000000000099", "bulk-domestic-bottom", "labels-3.pdf", "page 4"} {
		if !strings.Contains(err.Error(), part) {
			t.Errorf("expected error to mention %q: %s", part, err.Error())
		}
	}
}

func TestPlanOverflow(t *testing.T) {
	idx := orders.BuildIndex([]orders.OrderRecord{{
		OrderID:         "O1",
		PackingInfo:     strings.Repeat("Widget ", 11) + "A1Z", // 80 characters
		Username:        "seller1",
		Buyer:           "alice",
		TrackingNumbers: []string{"9400100000000000000001"},
	}})
	pages := []extract.PageResult{{SourceFile: "a.pdf", PageNumber: 1, TrackingNumbers: []label.TrackingNumber{
		tn(label.BulkDomesticTop, "9400100000000000000001", "a.pdf", 1),
	}}}

	planned, err := Plan(pages, idx, annotate.DefaultLayout(), 0)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if !planned[0].Fields[0].Overflow {
		t.Error("expected overflow on long packing info")
	}
}
