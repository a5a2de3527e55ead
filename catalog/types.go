package catalog

import "fmt"

// FieldType is the semantic type of a field as reported by the metadata service.
type FieldType string

const (
	TypeBoolean  FieldType = "boolean"
	TypeDiscrete FieldType = "discrete"
	TypeNumber   FieldType = "number"
	TypeString   FieldType = "string"
	TypeDateTime FieldType = "dateTime"
)

// Valid reports whether t is one of the known field types.
func (t FieldType) Valid() bool {
	switch t {
	case TypeBoolean, TypeDiscrete, TypeNumber, TypeString, TypeDateTime:
		return true
	}
	return false
}

// Field describes a queryable column.
// Fields are handed out by value and never mutated after creation.
type Field struct {
	ID   string    `json:"id" msgpack:"id"`
	Type FieldType `json:"type" msgpack:"type"`
	Name string    `json:"name" msgpack:"name"`
}

func (f Field) String() string {
	return fmt.Sprintf("%s (%s)", f.Name, f.Type)
}

// ValueEntry is a single row of a discrete field's code table.
type ValueEntry struct {
	Key   int    `json:"key" msgpack:"key"`
	Value string `json:"value" msgpack:"value"`
}
