// Package orders holds the shipped-orders export and the cross-reference
// index from tracking numbers to the orders they contain.
package orders

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrUnresolved is returned when no order is linked to a tracking number.
var ErrUnresolved = errors.New("no orders linked to tracking number")

// PackingSeparator joins the packing info of orders sharing one tracking number.
const PackingSeparator = " / "

// OrderRecord is one order from the shipped-orders export.
type OrderRecord struct {
	OrderID         string   `json:"order_id" yaml:"order_id"`
	PackingInfo     string   `json:"packing_info" yaml:"packing_info"`
	Username        string   `json:"username" yaml:"username"`
	Buyer           string   `json:"buyer" yaml:"buyer"`
	TrackingNumbers []string `json:"tracking_numbers" yaml:"tracking_numbers"`
}

// Resolved is what a tracking number tells us about the package it is on.
type Resolved struct {
	TrackingNumber string   `json:"tracking_number" yaml:"tracking_number"`
	OrderIDs       []string `json:"order_ids" yaml:"order_ids"`
	PackingInfo    string   `json:"packing_info" yaml:"packing_info"`
	Username       string   `json:"username" yaml:"username"`
	Buyer          string   `json:"buyer" yaml:"buyer"`
	// Notes lists the buyer's orders that are not on any label yet. Empty
	// when there are none.
	Notes string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// HasNotes reports whether the buyer has other orders still waiting.
func (r Resolved) HasNotes() bool { return r.Notes != "" }

// Index relates tracking numbers to orders in both directions. Build it
// completely before the first Resolve; it is not safe for concurrent writes.
type Index struct {
	orders     map[string]*OrderRecord
	orderIDs   []string
	byTracking map[string][]string
	byBuyer    map[string][]string
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{
		orders:     make(map[string]*OrderRecord),
		byTracking: make(map[string][]string),
		byBuyer:    make(map[string][]string),
	}
}

// BuildIndex indexes every record in order.
func BuildIndex(records []OrderRecord) *Index {
	ix := NewIndex()
	for _, r := range records {
		ix.AddOrder(r)
	}
	return ix
}

// AddOrder inserts r and links each of its tracking numbers to it.
//
// Adding an order id that is already present only links new tracking numbers;
// the first record's packing info, buyer and username are kept. Re-adding an
// existing (order, tracking number) pair is a no-op.
func (ix *Index) AddOrder(r OrderRecord) {
	rec, ok := ix.orders[r.OrderID]
	if !ok {
		rec = &OrderRecord{
			OrderID:     r.OrderID,
			PackingInfo: r.PackingInfo,
			Username:    r.Username,
			Buyer:       r.Buyer,
		}
		ix.orders[r.OrderID] = rec
		ix.orderIDs = append(ix.orderIDs, r.OrderID)
		ix.byBuyer[r.Buyer] = append(ix.byBuyer[r.Buyer], r.OrderID)
	}

	for _, tn := range r.TrackingNumbers {
		tn = strings.TrimSpace(tn)
		if tn == "" || slices.Contains(rec.TrackingNumbers, tn) {
			continue
		}
		rec.TrackingNumbers = append(rec.TrackingNumbers, tn)
		ix.byTracking[tn] = append(ix.byTracking[tn], r.OrderID)
	}
}

// Len returns the number of indexed orders.
func (ix *Index) Len() int { return len(ix.orderIDs) }

// TrackingCount returns the number of distinct tracking numbers.
func (ix *Index) TrackingCount() int { return len(ix.byTracking) }

// Order returns a copy of the record for id.
func (ix *Index) Order(id string) (OrderRecord, bool) {
	rec, ok := ix.orders[id]
	if !ok {
		return OrderRecord{}, false
	}
	out := *rec
	out.TrackingNumbers = append([]string(nil), rec.TrackingNumbers...)
	return out, true
}

// Orders returns copies of all records in insertion order.
func (ix *Index) Orders() []OrderRecord {
	out := make([]OrderRecord, 0, len(ix.orderIDs))
	for _, id := range ix.orderIDs {
		rec, _ := ix.Order(id)
		out = append(out, rec)
	}
	return out
}

// Resolve returns the packing info, seller and buyer notes for a tracking
// number. It fails with ErrUnresolved when the number is not linked to any
// order: a label we cannot account for must stop the batch.
func (ix *Index) Resolve(trackingNumber string) (Resolved, error) {
	ids := ix.byTracking[trackingNumber]
	if len(ids) == 0 {
		return Resolved{}, fmt.Errorf("%w: %s", ErrUnresolved, trackingNumber)
	}

	packing := make([]string, 0, len(ids))
	for _, id := range ids {
		packing = append(packing, ix.orders[id].PackingInfo)
	}

	first := ix.orders[ids[0]]
	return Resolved{
		TrackingNumber: trackingNumber,
		OrderIDs:       append([]string(nil), ids...),
		PackingInfo:    strings.Join(packing, PackingSeparator),
		Username:       first.Username,
		Buyer:          first.Buyer,
		Notes:          ix.notes(first.Buyer),
	}, nil
}

// notes describes the buyer's orders that no tracking number links to yet.
func (ix *Index) notes(buyer string) string {
	var waiting []string
	for _, id := range ix.byBuyer[buyer] {
		rec := ix.orders[id]
		if len(rec.TrackingNumbers) == 0 {
			waiting = append(waiting, rec.PackingInfo)
		}
	}
	if len(waiting) == 0 {
		return ""
	}
	return fmt.Sprintf("%s also ordered %s", buyer, strings.Join(waiting, "; "))
}
