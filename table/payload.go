package table

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// HeaderColumn describes one column of a row payload.
type HeaderColumn struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// Payload is the row payload returned by the query endpoints.
type Payload struct {
	Header []HeaderColumn `json:"header"`
	Rows   [][]any        `json:"rows"`
}

// DecodePayload decodes a row payload, keeping numbers as json.Number.
func DecodePayload(data []byte) (*Payload, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var p Payload
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return &p, nil
}

// Names returns the header column names.
func (p *Payload) Names() []string {
	names := make([]string, len(p.Header))
	for i, h := range p.Header {
		names[i] = h.Name
	}
	return names
}
