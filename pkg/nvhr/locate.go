package nvhr

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/falk/nvhr-go/pkg/zlib"
)

const (
	PrimaryOffset = HeaderSize

	DefaultMaxPayloadSize = 256 << 20 // 256 MiB
)

// FallbackOffsets are tried in this order when the stream does not start
// at PrimaryOffset. Samples from different firmware put it at each of
// these; the order decides which one wins when several inflate.
var FallbackOffsets = []int{0x10, 0x18, 0x20, 0x24}

var (
	ErrDecompressionFailed = errors.New("nvhr: failed to decompress with any known offset")
	ErrOffsetOutOfRange    = errors.New("nvhr: offset beyond end of container")
)

// CandidateOffsets returns the primary offset followed by the fallbacks.
func CandidateOffsets() []int {
	return append([]int{PrimaryOffset}, FallbackOffsets...)
}

// minOffset is the smallest candidate; shorter containers cannot hold a
// payload at any of them.
func minOffset() int {
	m := PrimaryOffset
	for _, off := range FallbackOffsets {
		m = min(m, off)
	}
	return m
}

// Attempt records the outcome of inflating from one offset.
type Attempt struct {
	Offset int
	Err    error
}

// Payload is the decompressed stream and where it was found.
type Payload struct {
	Offset   int
	Data     []byte
	Attempts []Attempt
}

// Fallback reports whether the payload was found at an offset other than
// PrimaryOffset.
func (p *Payload) Fallback() bool {
	return p.Offset != PrimaryOffset
}

// DecompressionError is returned when no candidate offset inflates. It
// matches ErrDecompressionFailed.
type DecompressionError struct {
	Attempts []Attempt
}

func (e *DecompressionError) Error() string {
	if len(e.Attempts) == 0 {
		return ErrDecompressionFailed.Error() + " (container too short)"
	}
	tried := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		tried[i] = fmt.Sprintf("%#x", a.Offset)
	}
	return fmt.Sprintf("%s (tried %s)", ErrDecompressionFailed, strings.Join(tried, ", "))
}

func (e *DecompressionError) Is(target error) bool {
	return target == ErrDecompressionFailed
}

type LocateOptions struct {
	// MaxPayloadSize bounds the inflated size. Zero means
	// DefaultMaxPayloadSize; negative means unbounded.
	MaxPayloadSize int64

	// Logger receives one debug record per attempt. Nil discards.
	Logger *slog.Logger
}

func (o LocateOptions) limit() int64 {
	switch {
	case o.MaxPayloadSize == 0:
		return DefaultMaxPayloadSize
	case o.MaxPayloadSize < 0:
		return 0
	default:
		return o.MaxPayloadSize
	}
}

// Locate inflates the zlib stream in data, trying PrimaryOffset first and
// then each of FallbackOffsets. The first offset that inflates without
// error wins; nothing else about the offset is validated.
func Locate(data []byte, opts LocateOptions) (*Payload, error) {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if len(data) < minOffset() {
		log.Debug("container shorter than smallest candidate offset", "size", len(data), "min_offset", minOffset())
		return nil, &DecompressionError{}
	}

	limit := opts.limit()
	var attempts []Attempt
	for _, off := range CandidateOffsets() {
		if off > len(data) {
			attempts = append(attempts, Attempt{Offset: off, Err: ErrOffsetOutOfRange})
			log.Debug("offset out of range", "offset", off, "size", len(data))
			continue
		}

		out, err := zlib.Decompress(data[off:], limit)
		attempts = append(attempts, Attempt{Offset: off, Err: err})
		if err != nil {
			log.Debug("inflate failed", "offset", off, "zlib_header", zlib.HasHeader(data[off:]), "err", err)
			continue
		}

		log.LogAttrs(context.Background(), slog.LevelDebug, "inflate succeeded",
			slog.Int("offset", off), slog.Int("size", len(out)))
		return &Payload{Offset: off, Data: out, Attempts: attempts}, nil
	}

	return nil, &DecompressionError{Attempts: attempts}
}
