package filter

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Parse decodes a predicate node from its wire JSON.
// Numeric constants are kept as json.Number.
//
// Error conditions:
//   - Invalid JSON syntax
//   - Unknown node type
//   - Field reference whose value is not a string
func Parse(data []byte) (Node, error) {
	n, err := parseNode(data)
	if err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}
	return n, nil
}

// rawNode is used for two-phase parsing to determine the node type.
type rawNode struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

// rawFilter is the JSON structure of a filter or group body.
type rawFilter struct {
	Operator string            `json:"operator"`
	Args     []json.RawMessage `json:"args"`
}

func parseNode(data []byte) (Node, error) {
	var raw rawNode
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid node: %w", err)
	}

	switch NodeType(raw.Type) {
	case NodeField:
		var id string
		if err := json.Unmarshal(raw.Value, &id); err != nil {
			return nil, fmt.Errorf("invalid field reference: %w", err)
		}
		return &FieldRef{FieldID: id}, nil
	case NodeConstant:
		v, err := decodeValue(raw.Value)
		if err != nil {
			return nil, fmt.Errorf("invalid constant: %w", err)
		}
		return &Constant{Value: v}, nil
	case NodeFilter:
		var body rawFilter
		if err := json.Unmarshal(raw.Value, &body); err != nil {
			return nil, fmt.Errorf("invalid filter: %w", err)
		}
		args, err := parseArgs(body.Args)
		if err != nil {
			return nil, err
		}
		return &Filter{Operator: Operator(body.Operator), Args: args}, nil
	default:
		return nil, fmt.Errorf("unknown node type %q", raw.Type)
	}
}

func parseArgs(raw []json.RawMessage) ([]Node, error) {
	args := make([]Node, 0, len(raw))
	for i, r := range raw {
		n, err := parseNode(r)
		if err != nil {
			return nil, fmt.Errorf("invalid arg %d: %w", i, err)
		}
		args = append(args, n)
	}
	return args, nil
}

func decodeValue(data json.RawMessage) (any, error) {
	if len(data) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
