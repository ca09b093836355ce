package orders

import (
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// flatSchema describes the flattened export: one object per order.
const flatSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["order_id", "packing_info", "username", "buyer"],
    "properties": {
      "order_id": {"type": "string", "minLength": 1},
      "packing_info": {"type": "string"},
      "username": {"type": "string"},
      "buyer": {"type": "string"},
      "tracking_numbers": {
        "type": ["array", "null"],
        "items": {"type": "string"}
      }
    }
  }
}`

// payloadSchema describes the marketplace export keyed by seller account.
// Only the fields this package reads are constrained.
const payloadSchema = `{
  "type": "object",
  "required": ["payload"],
  "properties": {
    "payload": {
      "type": "object",
      "additionalProperties": {
        "type": "array",
        "items": {
          "type": "object",
          "required": ["OrderID", "BuyerUserID"],
          "properties": {
            "OrderID": {"type": "string", "minLength": 1},
            "BuyerUserID": {"type": "string"},
            "packing_info": {"type": "string"},
            "username": {"type": "string"},
            "TransactionArray": {"type": "object"}
          }
        }
      }
    }
  }
}`

var (
	flatValidator    = mustCompile("flat.json", flatSchema)
	payloadValidator = mustCompile("payload.json", payloadSchema)
)

func mustCompile(name, schema string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, strings.NewReader(schema)); err != nil {
		panic(fmt.Sprintf("orders: failed to load %s: %v", name, err))
	}
	return compiler.MustCompile(name)
}
