package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"

	"github.com/hugr-lab/emsquery/transport"
)

// RemoteDirectory resolves fields through the EMS field endpoints.
//
// Field search results are memoized per keyword, including keywords that
// matched nothing. Code tables are always read from the service by
// ListAllValues; ValueID keeps its own table per field and refetches it once
// when a value is missing.
type RemoteDirectory struct {
	requester transport.Requester
	systemID  string
	database  string
	logger    *slog.Logger

	searches map[string][]Field
	fields   map[string]Field
	values   map[string]map[string]int
}

// NewRemoteDirectory creates a directory for one EMS system and database.
// A nil logger uses slog.Default().
func NewRemoteDirectory(requester transport.Requester, systemID, database string, logger *slog.Logger) *RemoteDirectory {
	if logger == nil {
		logger = slog.Default()
	}
	return &RemoteDirectory{
		requester: requester,
		systemID:  systemID,
		database:  database,
		logger:    logger,
		searches:  make(map[string][]Field),
		fields:    make(map[string]Field),
		values:    make(map[string]map[string]int),
	}
}

// remoteField is the wire shape of a field returned by the field endpoints.
type remoteField struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Type           FieldType         `json:"type"`
	DiscreteValues map[string]string `json:"discreteValues,omitempty"`
}

func (f remoteField) field() Field {
	return Field{ID: f.ID, Type: f.Type, Name: f.Name}
}

// SearchFields implements Directory.
func (d *RemoteDirectory) SearchFields(ctx context.Context, keywords ...string) ([]Field, error) {
	var result []Field
	seen := make(map[string]bool)
	for _, kw := range keywords {
		matches, err := d.search(ctx, kw)
		if err != nil {
			return nil, err
		}
		for _, f := range matches {
			if !seen[f.ID] {
				seen[f.ID] = true
				result = append(result, f)
			}
		}
	}
	return result, nil
}

func (d *RemoteDirectory) search(ctx context.Context, kw string) ([]Field, error) {
	if fields, ok := d.searches[kw]; ok {
		if len(fields) == 0 {
			return nil, fmt.Errorf("%w: %q", ErrFieldNotFound, kw)
		}
		return fields, nil
	}

	call := transport.Get(transport.RouteFieldSearch, d.systemID, d.database)
	call.Query = url.Values{"search": {kw}}
	resp, err := d.requester.Request(ctx, call)
	if err != nil {
		return nil, fmt.Errorf("search fields %q: %w", kw, err)
	}
	var found []remoteField
	if err := resp.Decode(&found); err != nil {
		return nil, err
	}

	// misses are remembered too: value-first filters look literal values up as keywords
	fields := make([]Field, 0, len(found))
	for _, rf := range found {
		f := rf.field()
		if !f.Type.Valid() {
			d.logger.Warn("Field has an unknown type, its values will stay raw",
				"field", f.ID,
				"name", f.Name,
				"type", f.Type,
			)
		}
		d.fields[f.ID] = f
		fields = append(fields, f)
	}
	d.searches[kw] = fields
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrFieldNotFound, kw)
	}
	d.logger.Debug("Resolved field keyword", "keyword", kw, "matches", len(fields))
	return fields, nil
}

// ValueID implements Directory.
func (d *RemoteDirectory) ValueID(ctx context.Context, fieldID string, value string) (int, error) {
	if table, ok := d.values[fieldID]; ok {
		if code, ok := table[value]; ok {
			return code, nil
		}
	}

	entries, err := d.ListAllValues(ctx, fieldID)
	if err != nil {
		return 0, err
	}
	table := make(map[string]int, len(entries))
	for _, e := range entries {
		table[e.Value] = e.Key
	}
	d.values[fieldID] = table

	code, ok := table[value]
	if !ok {
		return 0, fmt.Errorf("%w: %q in field %s", ErrValueNotFound, value, fieldID)
	}
	return code, nil
}

// ListAllValues implements ValueLister.
func (d *RemoteDirectory) ListAllValues(ctx context.Context, fieldID string) ([]ValueEntry, error) {
	resp, err := d.requester.Request(ctx, transport.Get(transport.RouteField, d.systemID, d.database, fieldID))
	if err != nil {
		var re *transport.RemoteRequestError
		if errors.As(err, &re) && re.Status == http.StatusNotFound {
			return nil, fmt.Errorf("%w: id %s", ErrFieldNotFound, fieldID)
		}
		return nil, fmt.Errorf("get field %s: %w", fieldID, err)
	}

	var rf remoteField
	if err := resp.Decode(&rf); err != nil {
		return nil, err
	}
	if rf.Type != "" && rf.Type != TypeDiscrete {
		return nil, fmt.Errorf("%w: %s", ErrNotDiscrete, rf.Name)
	}

	entries := make([]ValueEntry, 0, len(rf.DiscreteValues))
	for k, v := range rf.DiscreteValues {
		key, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("field %s: invalid discrete key %q: %w", fieldID, k, err)
		}
		entries = append(entries, ValueEntry{Key: key, Value: v})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}

// Snapshot captures every field resolved so far and the value tables used by ValueID.
func (d *RemoteDirectory) Snapshot() *Snapshot {
	s := &Snapshot{
		Fields: make([]Field, 0, len(d.fields)),
		Values: make(map[string][]ValueEntry, len(d.values)),
	}
	for _, f := range d.fields {
		s.Fields = append(s.Fields, f)
	}
	sort.Slice(s.Fields, func(i, j int) bool { return s.Fields[i].ID < s.Fields[j].ID })
	if len(d.searches) > 0 {
		s.Searches = make(map[string][]string, len(d.searches))
		for kw, fields := range d.searches {
			ids := make([]string, len(fields))
			for i, f := range fields {
				ids[i] = f.ID
			}
			s.Searches[kw] = ids
		}
	}
	for id, table := range d.values {
		entries := make([]ValueEntry, 0, len(table))
		for v, k := range table {
			entries = append(entries, ValueEntry{Key: k, Value: v})
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
		s.Values[id] = entries
	}
	return s
}

// Restore seeds the directory from a snapshot so that known keywords and
// values resolve without requests. Existing entries are replaced.
func (d *RemoteDirectory) Restore(s *Snapshot) {
	for _, f := range s.Fields {
		d.fields[f.ID] = f
	}
	for kw, ids := range s.Searches {
		fields := make([]Field, 0, len(ids))
		for _, id := range ids {
			if f, ok := d.fields[id]; ok {
				fields = append(fields, f)
			}
		}
		if len(fields) == len(ids) {
			d.searches[kw] = fields
		}
	}
	for id, entries := range s.Values {
		table := make(map[string]int, len(entries))
		for _, e := range entries {
			table[e.Value] = e.Key
		}
		d.values[id] = table
	}
}
