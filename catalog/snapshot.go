package catalog

import (
	"fmt"
	"io"

	"github.com/hugr-lab/emsquery/internal/serialize"
)

// Snapshot is the persisted form of a directory: its fields and the discrete
// code tables known so far.
type Snapshot struct {
	Fields []Field                 `msgpack:"fields"`
	Values map[string][]ValueEntry `msgpack:"values"`

	// Searches maps a search keyword to the IDs of the fields it matched.
	// Only remote directories record searches.
	Searches map[string][]string `msgpack:"searches,omitempty"`
}

// SaveSnapshot writes s to w as compressed MessagePack.
func SaveSnapshot(w io.Writer, s *Snapshot) error {
	if err := serialize.Write(w, s); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot reads a snapshot written by SaveSnapshot.
func LoadSnapshot(r io.Reader) (*Snapshot, error) {
	var s Snapshot
	if err := serialize.Read(r, &s); err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	if s.Values == nil {
		s.Values = make(map[string][]ValueEntry)
	}
	return &s, nil
}
