package zlib

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zlib"
)

const (
	DefaultLevel = zlib.DefaultCompression
	BestLevel    = zlib.BestCompression
)

// ErrTooLarge is returned by Decompress when the inflated stream exceeds
// the caller's limit.
var ErrTooLarge = errors.New("zlib: decompressed data exceeds limit")

var (
	// Writer pools by compression level
	writerPools = make(map[int]*sync.Pool)
	poolMu      sync.RWMutex
)

func getWriterPool(level int) *sync.Pool {
	poolMu.RLock()
	pool, ok := writerPools[level]
	poolMu.RUnlock()
	if ok {
		return pool
	}

	poolMu.Lock()
	defer poolMu.Unlock()

	if pool, ok = writerPools[level]; ok {
		return pool
	}

	pool = &sync.Pool{
		New: func() interface{} {
			w, _ := zlib.NewWriterLevel(nil, level)
			return w
		},
	}
	writerPools[level] = pool
	return pool
}

// Compress wraps src in a zlib stream (2-byte header, deflate data,
// Adler-32 trailer) using pooled writers.
func Compress(src []byte, level int) ([]byte, error) {
	if level < zlib.HuffmanOnly || level > zlib.BestCompression {
		return nil, fmt.Errorf("zlib: invalid compression level %d", level)
	}

	pool := getWriterPool(level)
	w := pool.Get().(*zlib.Writer)
	defer pool.Put(w)

	var buf bytes.Buffer
	w.Reset(&buf)
	if _, err := w.Write(src); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decompress inflates a complete zlib stream. The checksum is verified;
// bytes following the trailer are ignored. A limit <= 0 means unbounded.
func Decompress(src []byte, limit int64) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(src))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var lr io.Reader = r
	if limit > 0 {
		lr = io.LimitReader(r, limit+1)
	}

	out, err := io.ReadAll(lr)
	if err != nil {
		return nil, err
	}
	if limit > 0 && int64(len(out)) > limit {
		return nil, ErrTooLarge
	}
	return out, nil
}

// HasHeader reports whether b starts with a plausible zlib header:
// deflate method, window size within range and a valid FCHECK.
func HasHeader(b []byte) bool {
	if len(b) < 2 {
		return false
	}
	cmf, flg := b[0], b[1]
	if cmf&0x0f != 8 || cmf>>4 > 7 {
		return false
	}
	return (uint16(cmf)<<8|uint16(flg))%31 == 0
}
