package nvhr

import (
	"fmt"
	"io"
	"log/slog"
)

// Options configures a decode. The zero value drops invalid UTF-8, caps the
// payload at DefaultMaxPayloadSize and discards log output.
type Options struct {
	Locate   LocateOptions
	TextMode TextMode
	Logger   *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Result is a successfully decoded container.
type Result struct {
	Container *Container
	Payload   *Payload
	Text      string
}

// Decode locates and inflates the payload of c and converts it to text.
func Decode(c *Container, opts Options) (*Result, error) {
	log := opts.logger()

	log.Info("container loaded", "size", c.Len(), "header", fmt.Sprintf("%q", c.Header()))
	if !c.HasMagic() {
		log.Warn("container does not start with NVHR magic", "header", fmt.Sprintf("% x", c.Header()))
	}

	lopts := opts.Locate
	if lopts.Logger == nil {
		lopts.Logger = log
	}
	payload, err := Locate(c.Bytes(), lopts)
	if err != nil {
		return nil, err
	}
	if payload.Fallback() {
		log.Info("payload found at fallback offset", "offset", fmt.Sprintf("%#x", payload.Offset), "attempts", len(payload.Attempts))
	}

	return &Result{
		Container: c,
		Payload:   payload,
		Text:      DecodeText(payload.Data, opts.TextMode),
	}, nil
}

// DecodeFile reads the container at path and decodes it.
func DecodeFile(path string, opts Options) (*Result, error) {
	c, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(c, opts)
}
