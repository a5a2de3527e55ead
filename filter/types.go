package filter

// NodeType identifies the variant of a predicate node on the wire.
type NodeType string

const (
	NodeField    NodeType = "field"
	NodeConstant NodeType = "constant"
	NodeFilter   NodeType = "filter"
)

// Operator is a predicate operator name understood by the API.
type Operator string

const (
	// Comparison operators
	OpEqual              Operator = "equal"
	OpNotEqual           Operator = "notEqual"
	OpLessThan           Operator = "lessThan"
	OpLessThanOrEqual    Operator = "lessThanOrEqual"
	OpGreaterThan        Operator = "greaterThan"
	OpGreaterThanOrEqual Operator = "greaterThanOrEqual"

	// Membership operators
	OpIn    Operator = "in"
	OpNotIn Operator = "notIn"

	// Unary boolean operators
	OpIsTrue  Operator = "isTrue"
	OpIsFalse Operator = "isFalse"

	// DateTime operators
	OpDateTimeBefore  Operator = "dateTimeBefore"
	OpDateTimeOnAfter Operator = "dateTimeOnAfter"

	// Conjunction
	OpAnd Operator = "and"
)

// UTCMarker is appended as the last argument of dateTime filters.
const UTCMarker = "Utc"

// Node is the interface implemented by all predicate nodes.
// The set of implementations is closed: FieldRef, Constant and Filter.
type Node interface {
	// Type returns the wire tag of the node.
	Type() NodeType

	nodeMarker()
}

// FieldRef references a field by its opaque identifier.
type FieldRef struct {
	FieldID string
}

// Type implements Node.
func (*FieldRef) Type() NodeType { return NodeField }
func (*FieldRef) nodeMarker()    {}

// Constant is a literal operand.
type Constant struct {
	Value any
}

// Type implements Node.
func (*Constant) Type() NodeType { return NodeConstant }
func (*Constant) nodeMarker()    {}

// Filter applies an operator to its arguments.
// Args are either two operands (binary comparison), a FieldRef followed by one
// or more Constants (membership), or a single FieldRef (isTrue/isFalse).
type Filter struct {
	Operator Operator
	Args     []Node
}

// Type implements Node.
func (*Filter) Type() NodeType { return NodeFilter }
func (*Filter) nodeMarker()    {}

// Group is the top-level conjunction held by a query descriptor.
type Group struct {
	Operator Operator
	Args     []Node
}

// NewGroup returns an empty "and" group.
func NewGroup() *Group {
	return &Group{Operator: OpAnd, Args: []Node{}}
}

// Add appends a node to the group.
func (g *Group) Add(n Node) {
	g.Args = append(g.Args, n)
}

func newFilter(op Operator, field string, values ...any) *Filter {
	args := make([]Node, 0, len(values)+1)
	args = append(args, &FieldRef{FieldID: field})
	for _, v := range values {
		args = append(args, &Constant{Value: v})
	}
	return &Filter{Operator: op, Args: args}
}
