// Package nvhr decodes NVHR backup containers written by network video
// recorders: a short opaque header followed by a zlib stream holding the
// device configuration as text.
package nvhr

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

const (
	Magic = "NVHR"

	// HeaderSize is the nominal header length (0x14). Only the magic is
	// interpreted; the remaining 16 bytes vary between firmware versions.
	HeaderSize = 0x14
)

var (
	ErrNotFound = errors.New("nvhr: file not found")
	ErrIO       = errors.New("nvhr: i/o error")
)

// Header structure (Little Endian)
// Offset 0x00: Magic "NVHR" (4 bytes)
// Offset 0x04: Opaque (16 bytes), layout unknown
type Header struct {
	Magic  [4]byte
	Opaque [16]byte
}

func NewHeader() *Header {
	h := &Header{}
	copy(h.Magic[:], Magic)
	return h
}

// Write writes the header to the writer.
func (h *Header) Write(w io.Writer) error {
	return binary.Write(w, binary.LittleEndian, h)
}

// Container is the full content of an NVHR artifact. It is never modified
// after construction.
type Container struct {
	data []byte
}

func NewContainer(data []byte) *Container {
	return &Container{data: data}
}

// ReadFile loads the whole artifact at path into memory.
func ReadFile(path string) (*Container, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s: %w", ErrNotFound, path, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrIO, path, err)
	}
	return NewContainer(data), nil
}

func (c *Container) Len() int {
	return len(c.data)
}

// Bytes returns the raw container content. Callers must not modify it.
func (c *Container) Bytes() []byte {
	return c.data
}

// Header returns up to the first HeaderSize bytes, for display.
func (c *Container) Header() []byte {
	if len(c.data) < HeaderSize {
		return c.data
	}
	return c.data[:HeaderSize]
}

// HasMagic reports whether the container starts with "NVHR". A missing
// magic does not prevent decoding.
func (c *Container) HasMagic() bool {
	return bytes.HasPrefix(c.data, []byte(Magic))
}

// ParseHeader decodes the fixed header. It fails only when the container
// is shorter than HeaderSize; the magic is not validated here.
func (c *Container) ParseHeader() (*Header, error) {
	var h Header
	if err := binary.Read(bytes.NewReader(c.data), binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("nvhr: header needs %d bytes, have %d: %w", HeaderSize, len(c.data), err)
	}
	return &h, nil
}
