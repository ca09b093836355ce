package orders

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
)

// Load reads an order export from path. See Decode for accepted formats.
func Load(path string) ([]OrderRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read order export: %w", err)
	}
	records, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// Decode parses an order export. Two shapes are accepted:
//
//   - the flattened list written by WriteFlat
//   - the marketplace payload, {"payload": {"<account>": [order, ...]}}
//
// Both are validated against a schema before decoding.
func Decode(data []byte) ([]OrderRecord, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid order export JSON: %w", err)
	}

	switch doc.(type) {
	case []any:
		if err := flatValidator.Validate(doc); err != nil {
			return nil, fmt.Errorf("order export does not match schema: %w", err)
		}
		var records []OrderRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("failed to decode order export: %w", err)
		}
		return records, nil

	case map[string]any:
		if err := payloadValidator.Validate(doc); err != nil {
			return nil, fmt.Errorf("order payload does not match schema: %w", err)
		}
		var p payload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("failed to decode order payload: %w", err)
		}
		return p.flatten(), nil

	default:
		return nil, fmt.Errorf("order export must be a JSON array or object")
	}
}

// WriteFlat writes records in the flattened export format.
func WriteFlat(w io.Writer, records []OrderRecord) error {
	if records == nil {
		records = []OrderRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

type payload struct {
	Payload map[string][]rawOrder `json:"payload"`
}

type rawOrder struct {
	OrderID          string `json:"OrderID"`
	BuyerUserID      string `json:"BuyerUserID"`
	PackingInfo      string `json:"packing_info"`
	Username         string `json:"username"`
	TransactionArray struct {
		Transaction oneOrMany[rawTransaction] `json:"Transaction"`
	} `json:"TransactionArray"`
}

type rawTransaction struct {
	ShippingDetails struct {
		ShipmentTrackingDetails oneOrMany[rawTrackingDetail] `json:"ShipmentTrackingDetails"`
	} `json:"ShippingDetails"`
}

type rawTrackingDetail struct {
	ShipmentTrackingNumber string `json:"ShipmentTrackingNumber"`
}

// flatten turns the payload into records, accounts in name order.
func (p payload) flatten() []OrderRecord {
	accounts := make([]string, 0, len(p.Payload))
	for account := range p.Payload {
		accounts = append(accounts, account)
	}
	sort.Strings(accounts)

	var records []OrderRecord
	for _, account := range accounts {
		for _, o := range p.Payload[account] {
			username := o.Username
			if username == "" {
				username = account
			}
			records = append(records, OrderRecord{
				OrderID:         o.OrderID,
				PackingInfo:     o.PackingInfo,
				Username:        username,
				Buyer:           o.BuyerUserID,
				TrackingNumbers: o.trackingNumbers(),
			})
		}
	}
	return records
}

// trackingNumbers collects the distinct tracking numbers across all
// transactions, in first-seen order. Missing details mean none.
func (o rawOrder) trackingNumbers() []string {
	seen := make(map[string]bool)
	var out []string
	for _, tx := range o.TransactionArray.Transaction {
		for _, d := range tx.ShippingDetails.ShipmentTrackingDetails {
			tn := d.ShipmentTrackingNumber
			if tn == "" || seen[tn] {
				continue
			}
			seen[tn] = true
			out = append(out, tn)
		}
	}
	return out
}

// oneOrMany decodes either a single JSON object or a list of them. The
// marketplace API collapses one-element lists into a bare object.
type oneOrMany[T any] []T

func (m *oneOrMany[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*m = nil
		return nil
	case data[0] == '[':
		var list []T
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*m = list
		return nil
	default:
		var one T
		if err := json.Unmarshal(data, &one); err != nil {
			return err
		}
		*m = oneOrMany[T]{one}
		return nil
	}
}
