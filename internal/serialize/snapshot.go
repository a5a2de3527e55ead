// Package serialize provides compact persistence for metadata snapshots.
//
// A snapshot file starts with the 4-byte magic "EMSQ" and a format version
// byte, followed by a ZStandard stream holding one MessagePack value.
package serialize

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	magic = "EMSQ"

	// FormatVersion is written to every snapshot. Readers reject other versions.
	FormatVersion byte = 1
)

// ErrBadSnapshot indicates the input is not a snapshot this package can read.
var ErrBadSnapshot = errors.New("invalid snapshot")

// Write encodes v and writes it to w as a compressed snapshot.
func Write(w io.Writer, v any) error {
	if _, err := io.WriteString(w, magic); err != nil {
		return err
	}
	if _, err := w.Write([]byte{FormatVersion}); err != nil {
		return err
	}

	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	if err := msgpack.NewEncoder(zw).Encode(v); err != nil {
		zw.Close()
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return zw.Close()
}

// Read decodes a snapshot written by Write into v.
func Read(r io.Reader, v any) error {
	header := make([]byte, len(magic)+1)
	if _, err := io.ReadFull(r, header); err != nil {
		return fmt.Errorf("%w: short header: %v", ErrBadSnapshot, err)
	}
	if !bytes.Equal(header[:len(magic)], []byte(magic)) {
		return fmt.Errorf("%w: bad magic %q", ErrBadSnapshot, header[:len(magic)])
	}
	if ver := header[len(magic)]; ver != FormatVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrBadSnapshot, ver)
	}

	zr, err := zstd.NewReader(r)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadSnapshot, err)
	}
	defer zr.Close()

	if err := msgpack.NewDecoder(zr).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadSnapshot, err)
	}
	return nil
}
