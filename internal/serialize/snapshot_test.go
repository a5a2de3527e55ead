package serialize

import (
	"bytes"
	"errors"
	"reflect"
	"testing"
)

type sample struct {
	Name   string           `msgpack:"name"`
	Codes  map[string][]int `msgpack:"codes"`
	Labels []string         `msgpack:"labels"`
}

func TestWriteRead(t *testing.T) {
	in := sample{
		Name:   "flights",
		Codes:  map[string][]int{"airport": {1, 2, 3}},
		Labels: []string{"KSEA", "KPDX"},
	}

	var buf bytes.Buffer
	if err := Write(&buf, in); err != nil {
		t.Fatalf("Write() failed: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("EMSQ\x01")) {
		t.Errorf("missing header: %q", buf.Bytes()[:5])
	}

	var out sample
	if err := Read(&buf, &out); err != nil {
		t.Fatalf("Read() failed: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("round trip mismatch\n got: %+v\nwant: %+v", out, in)
	}
}

func TestReadRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short", []byte("EM")},
		{"magic", []byte("NOPE\x01rest")},
		{"version", []byte("EMSQ\x09rest")},
		{"payload", []byte("EMSQ\x01not zstd")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out sample
			err := Read(bytes.NewReader(tt.data), &out)
			if !errors.Is(err, ErrBadSnapshot) {
				t.Errorf("expected ErrBadSnapshot, got %v", err)
			}
		})
	}
}
