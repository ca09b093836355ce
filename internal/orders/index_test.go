package orders

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

const tn1 = "9400100000000000000000"

func TestIndex_Resolve(t *testing.T) {
	t.Run("single order without notes", func(t *testing.T) {
		ix := BuildIndex([]OrderRecord{{
			OrderID:         "O1",
			TrackingNumbers: []string{tn1},
			PackingInfo:     "1x Widget A1",
			Buyer:           "alice",
			Username:        "seller1",
		}})

		got, err := ix.Resolve(tn1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.PackingInfo != "1x Widget A1" {
			t.Errorf("expected packing info 1x Widget A1, got %q", got.PackingInfo)
		}
		if got.Username != "seller1" {
			t.Errorf("expected username seller1, got %q", got.Username)
		}
		if got.HasNotes() {
			t.Errorf("expected no notes, got %q", got.Notes)
		}
	})

	t.Run("buyer with an unlabeled order gets notes", func(t *testing.T) {
		ix := BuildIndex([]OrderRecord{
			{OrderID: "O1", TrackingNumbers: []string{tn1}, PackingInfo: "1x Widget A1", Buyer: "alice", Username: "seller1"},
			{OrderID: "O2", PackingInfo: "1x Widget B2", Buyer: "alice", Username: "seller1"},
		})

		got, err := ix.Resolve(tn1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !got.HasNotes() {
			t.Fatal("expected notes")
		}
		if !strings.Contains(got.Notes, "alice") || !strings.Contains(got.Notes, "1x Widget B2") {
			t.Errorf("notes should name alice and 1x Widget B2, got %q", got.Notes)
		}
	})

	t.Run("notes exclude orders already linked to a tracking number", func(t *testing.T) {
		ix := BuildIndex([]OrderRecord{
			{OrderID: "O1", TrackingNumbers: []string{tn1}, PackingInfo: "1x Widget A1", Buyer: "alice"},
			{OrderID: "O2", TrackingNumbers: []string{"9400100000000000000001"}, PackingInfo: "1x Widget B2", Buyer: "alice"},
			{OrderID: "O3", PackingInfo: "1x Widget C3", Buyer: "bob"},
		})

		got, err := ix.Resolve(tn1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.HasNotes() {
			t.Errorf("expected no notes, got %q", got.Notes)
		}
	})

	t.Run("combined shipment joins packing info once per order", func(t *testing.T) {
		ix := BuildIndex([]OrderRecord{
			{OrderID: "A", TrackingNumbers: []string{tn1}, PackingInfo: "1x Alpha", Buyer: "carol", Username: "s1"},
			{OrderID: "B", TrackingNumbers: []string{tn1}, PackingInfo: "2x Beta", Buyer: "carol", Username: "s2"},
			{OrderID: "A", TrackingNumbers: []string{tn1}, PackingInfo: "1x Alpha", Buyer: "carol", Username: "s1"},
		})

		got, err := ix.Resolve(tn1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.PackingInfo != "1x Alpha"+PackingSeparator+"2x Beta" {
			t.Errorf("unexpected packing info %q", got.PackingInfo)
		}
		if strings.Count(got.PackingInfo, "1x Alpha") != 1 {
			t.Errorf("order A duplicated: %q", got.PackingInfo)
		}
		if got.Username != "s1" {
			t.Errorf("expected username from first order, got %q", got.Username)
		}
		if !reflect.DeepEqual(got.OrderIDs, []string{"A", "B"}) {
			t.Errorf("unexpected order ids %v", got.OrderIDs)
		}
	})

	t.Run("split shipment resolves from either number", func(t *testing.T) {
		other := "9400100000000000000002"
		ix := BuildIndex([]OrderRecord{
			{OrderID: "O1", TrackingNumbers: []string{tn1, other}, PackingInfo: "5x Bulk", Buyer: "dave"},
		})
		for _, tn := range []string{tn1, other} {
			got, err := ix.Resolve(tn)
			if err != nil {
				t.Fatalf("resolve %s: %v", tn, err)
			}
			if got.PackingInfo != "5x Bulk" {
				t.Errorf("resolve %s: unexpected packing info %q", tn, got.PackingInfo)
			}
		}
		if ix.TrackingCount() != 2 {
			t.Errorf("expected 2 tracking numbers, got %d", ix.TrackingCount())
		}
	})

	t.Run("unknown tracking number fails loudly", func(t *testing.T) {
		ix := BuildIndex(nil)
		_, err := ix.Resolve(tn1)
		if !errors.Is(err, ErrUnresolved) {
			t.Fatalf("expected ErrUnresolved, got %v", err)
		}
		if !strings.Contains(err.Error(), tn1) {
			t.Errorf("error should name the tracking number: %v", err)
		}
	})
}

func TestIndex_ResolveIsPure(t *testing.T) {
	ix := BuildIndex([]OrderRecord{
		{OrderID: "O1", TrackingNumbers: []string{tn1}, PackingInfo: "1x Widget A1", Buyer: "alice", Username: "seller1"},
		{OrderID: "O2", PackingInfo: "1x Widget B2", Buyer: "alice", Username: "seller1"},
	})

	first, err := ix.Resolve(tn1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first.OrderIDs[0] = "mutated"

	second, err := ix.Resolve(tn1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.OrderIDs[0] != "O1" {
		t.Error("mutating a result leaked into the index")
	}
	first.OrderIDs[0] = "O1"
	if !reflect.DeepEqual(first, second) {
		t.Errorf("resolve not deterministic:\n%+v\n%+v", first, second)
	}
}

func TestIndex_AddOrderIdempotent(t *testing.T) {
	ix := NewIndex()
	r := OrderRecord{OrderID: "O1", TrackingNumbers: []string{tn1, tn1, " "}, PackingInfo: "x", Buyer: "b"}
	ix.AddOrder(r)
	ix.AddOrder(r)

	if ix.Len() != 1 {
		t.Errorf("expected 1 order, got %d", ix.Len())
	}
	rec, ok := ix.Order("O1")
	if !ok {
		t.Fatal("order O1 missing")
	}
	if !reflect.DeepEqual(rec.TrackingNumbers, []string{tn1}) {
		t.Errorf("unexpected tracking numbers %v", rec.TrackingNumbers)
	}
	got, _ := ix.Resolve(tn1)
	if len(got.OrderIDs) != 1 {
		t.Errorf("duplicate relation rows: %v", got.OrderIDs)
	}
}
