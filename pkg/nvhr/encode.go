package nvhr

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/falk/nvhr-go/pkg/zlib"
)

type EncodeOptions struct {
	// Offset is where the zlib stream starts. Zero means PrimaryOffset.
	Offset int
	// Level is the zlib compression level. Zero means zlib.DefaultLevel.
	Level int
}

// Encode writes plaintext as an NVHR container: magic, zero padding up to
// opts.Offset, then the zlib stream.
func Encode(w io.Writer, plaintext []byte, opts EncodeOptions) error {
	offset := opts.Offset
	if offset == 0 {
		offset = PrimaryOffset
	}
	if offset < 0 {
		return fmt.Errorf("nvhr: negative payload offset %d", offset)
	}
	level := opts.Level
	if level == 0 {
		level = zlib.DefaultLevel
	}

	compressed, err := zlib.Compress(plaintext, level)
	if err != nil {
		return err
	}

	if offset >= HeaderSize {
		if err := NewHeader().Write(w); err != nil {
			return err
		}
		if _, err := w.Write(make([]byte, offset-HeaderSize)); err != nil {
			return err
		}
	} else {
		// Short header: as much of the magic as fits.
		head := make([]byte, offset)
		copy(head, Magic)
		if _, err := w.Write(head); err != nil {
			return err
		}
	}

	_, err = w.Write(compressed)
	return err
}

// EncodeFile writes an NVHR container holding plaintext to path.
func EncodeFile(path string, plaintext []byte, opts EncodeOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	if err := Encode(bw, plaintext, opts); err != nil {
		return fmt.Errorf("%w: encoding %s: %w", ErrIO, path, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w: writing %s: %w", ErrIO, path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: closing %s: %w", ErrIO, path, err)
	}
	return nil
}
