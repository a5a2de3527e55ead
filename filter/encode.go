package filter

import "encoding/json"

// wireNode is the JSON envelope shared by all node variants.
type wireNode struct {
	Type  NodeType `json:"type"`
	Value any      `json:"value"`
}

type wireFilter struct {
	Operator Operator `json:"operator"`
	Args     []Node   `json:"args"`
}

// MarshalJSON encodes the node as {"type":"field","value":id}.
func (f *FieldRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireNode{Type: NodeField, Value: f.FieldID})
}

// MarshalJSON encodes the node as {"type":"constant","value":v}.
func (c *Constant) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireNode{Type: NodeConstant, Value: c.Value})
}

// MarshalJSON encodes the node as {"type":"filter","value":{"operator":op,"args":[...]}}.
func (f *Filter) MarshalJSON() ([]byte, error) {
	args := f.Args
	if args == nil {
		args = []Node{}
	}
	return json.Marshal(wireNode{Type: NodeFilter, Value: wireFilter{Operator: f.Operator, Args: args}})
}

// MarshalJSON encodes the group as {"operator":"and","args":[...]}.
func (g *Group) MarshalJSON() ([]byte, error) {
	args := g.Args
	if args == nil {
		args = []Node{}
	}
	return json.Marshal(wireFilter{Operator: g.Operator, Args: args})
}

// UnmarshalJSON decodes a group, parsing every argument with Parse.
func (g *Group) UnmarshalJSON(data []byte) error {
	var raw rawFilter
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	args, err := parseArgs(raw.Args)
	if err != nil {
		return err
	}
	g.Operator = Operator(raw.Operator)
	g.Args = args
	return nil
}
