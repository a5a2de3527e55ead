package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// StaticDirectory is an in-memory Directory.
// It is populated once (from a field list or a Snapshot) and then only read,
// except for SetValues which replaces a field's code table wholesale.
type StaticDirectory struct {
	fields []Field
	byID   map[string]int
	values map[string][]ValueEntry
}

// NewStaticDirectory creates a directory over the given fields.
// Field order is preserved and determines search result order.
func NewStaticDirectory(fields ...Field) *StaticDirectory {
	d := &StaticDirectory{
		fields: make([]Field, 0, len(fields)),
		byID:   make(map[string]int, len(fields)),
		values: make(map[string][]ValueEntry),
	}
	for _, f := range fields {
		d.AddField(f)
	}
	return d
}

// NewStaticDirectoryFromSnapshot creates a directory from persisted metadata.
func NewStaticDirectoryFromSnapshot(s *Snapshot) *StaticDirectory {
	d := NewStaticDirectory(s.Fields...)
	for id, entries := range s.Values {
		d.SetValues(id, entries)
	}
	return d
}

// AddField registers a field. A field with an existing ID replaces the old one.
func (d *StaticDirectory) AddField(f Field) {
	if i, ok := d.byID[f.ID]; ok {
		d.fields[i] = f
		return
	}
	d.byID[f.ID] = len(d.fields)
	d.fields = append(d.fields, f)
}

// SetValues replaces the code table of a discrete field.
func (d *StaticDirectory) SetValues(fieldID string, entries []ValueEntry) {
	cp := make([]ValueEntry, len(entries))
	copy(cp, entries)
	sort.Slice(cp, func(i, j int) bool { return cp[i].Key < cp[j].Key })
	d.values[fieldID] = cp
}

// Fields returns all registered fields in registration order.
func (d *StaticDirectory) Fields() []Field {
	out := make([]Field, len(d.fields))
	copy(out, d.fields)
	return out
}

// SearchFields implements Directory.
// For each keyword an exact ID match wins, then exact (case-insensitive) name
// matches, then fields whose name contains the keyword.
func (d *StaticDirectory) SearchFields(ctx context.Context, keywords ...string) ([]Field, error) {
	var result []Field
	seen := make(map[string]bool)
	for _, kw := range keywords {
		matches := d.match(kw)
		if len(matches) == 0 {
			return nil, fmt.Errorf("%w: %q", ErrFieldNotFound, kw)
		}
		for _, f := range matches {
			if seen[f.ID] {
				continue
			}
			seen[f.ID] = true
			result = append(result, f)
		}
	}
	return result, nil
}

func (d *StaticDirectory) match(kw string) []Field {
	if i, ok := d.byID[kw]; ok {
		return []Field{d.fields[i]}
	}
	needle := strings.ToLower(strings.TrimSpace(kw))
	if needle == "" {
		return nil
	}

	var exact, partial []Field
	for _, f := range d.fields {
		name := strings.ToLower(f.Name)
		switch {
		case name == needle:
			exact = append(exact, f)
		case strings.Contains(name, needle):
			partial = append(partial, f)
		}
	}
	if len(exact) > 0 {
		return exact
	}
	return partial
}

// ValueID implements Directory.
func (d *StaticDirectory) ValueID(ctx context.Context, fieldID string, value string) (int, error) {
	if err := d.checkDiscrete(fieldID); err != nil {
		return 0, err
	}
	for _, e := range d.values[fieldID] {
		if e.Value == value {
			return e.Key, nil
		}
	}
	return 0, fmt.Errorf("%w: %q in field %s", ErrValueNotFound, value, fieldID)
}

// ListAllValues implements ValueLister.
func (d *StaticDirectory) ListAllValues(ctx context.Context, fieldID string) ([]ValueEntry, error) {
	if err := d.checkDiscrete(fieldID); err != nil {
		return nil, err
	}
	entries := d.values[fieldID]
	out := make([]ValueEntry, len(entries))
	copy(out, entries)
	return out, nil
}

func (d *StaticDirectory) checkDiscrete(fieldID string) error {
	i, ok := d.byID[fieldID]
	if !ok {
		return fmt.Errorf("%w: id %s", ErrFieldNotFound, fieldID)
	}
	if d.fields[i].Type != TypeDiscrete {
		return fmt.Errorf("%w: %s", ErrNotDiscrete, d.fields[i].Name)
	}
	return nil
}

// Snapshot captures the directory contents for persistence.
func (d *StaticDirectory) Snapshot() *Snapshot {
	s := &Snapshot{
		Fields: d.Fields(),
		Values: make(map[string][]ValueEntry, len(d.values)),
	}
	for id, entries := range d.values {
		cp := make([]ValueEntry, len(entries))
		copy(cp, entries)
		s.Values[id] = cp
	}
	return s
}
