package catalog

import (
	"context"
	"fmt"
)

// CodeCache memoizes discrete code tables per field.
//
// Tables are fetched lazily on first Lookup. When a caller observes a code that
// is missing from a cached table it calls Refresh, which discards the table and
// fetches it again in full.
//
// CodeCache is not safe for concurrent use.
type CodeCache struct {
	lister ValueLister
	tables map[string]map[int]string
}

// NewCodeCache creates an empty cache backed by lister.
func NewCodeCache(lister ValueLister) *CodeCache {
	return &CodeCache{
		lister: lister,
		tables: make(map[string]map[int]string),
	}
}

// Lookup returns the code table of a field, fetching it if not cached.
// The returned map must not be modified.
func (c *CodeCache) Lookup(ctx context.Context, fieldID string) (map[int]string, error) {
	if table, ok := c.tables[fieldID]; ok {
		return table, nil
	}
	return c.fetch(ctx, fieldID)
}

// Refresh discards the cached table of a field and fetches it again.
func (c *CodeCache) Refresh(ctx context.Context, fieldID string) (map[int]string, error) {
	c.Invalidate(fieldID)
	return c.fetch(ctx, fieldID)
}

// Invalidate drops the cached table of a field.
func (c *CodeCache) Invalidate(fieldID string) {
	delete(c.tables, fieldID)
}

func (c *CodeCache) fetch(ctx context.Context, fieldID string) (map[int]string, error) {
	entries, err := c.lister.ListAllValues(ctx, fieldID)
	if err != nil {
		return nil, fmt.Errorf("list values of %s: %w", fieldID, err)
	}
	table := make(map[int]string, len(entries))
	for _, e := range entries {
		table[e.Key] = e.Value
	}
	c.tables[fieldID] = table
	return table, nil
}

// Snapshot returns the cached tables as value entries.
func (c *CodeCache) Snapshot() map[string][]ValueEntry {
	out := make(map[string][]ValueEntry, len(c.tables))
	for id, table := range c.tables {
		entries := make([]ValueEntry, 0, len(table))
		for k, v := range table {
			entries = append(entries, ValueEntry{Key: k, Value: v})
		}
		out[id] = entries
	}
	return out
}

// Restore seeds the cache with persisted tables, replacing existing entries.
func (c *CodeCache) Restore(values map[string][]ValueEntry) {
	for id, entries := range values {
		table := make(map[int]string, len(entries))
		for _, e := range entries {
			table[e.Key] = e.Value
		}
		c.tables[id] = table
	}
}
