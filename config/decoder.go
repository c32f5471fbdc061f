package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Decoder is an interface for standard decoder types.
type Decoder interface {
	// Decode decodes from the io.Reader specified at creation.
	Decode(v any) error
}

// DecoderFunc creates a new Decoder for a reader.
type DecoderFunc func(r io.Reader) Decoder

// NewDecoderFunc returns a DecoderFunc for a specific Decoder type.
func NewDecoderFunc[T Decoder](f func(r io.Reader) T) DecoderFunc {
	return func(r io.Reader) Decoder { return f(r) }
}

// decoders maps a lower-case file extension to a strict decoder rejecting unknown keys.
var decoders = map[string]DecoderFunc{
	".yaml": yamlDecoder,
	".yml":  yamlDecoder,
	".toml": NewDecoderFunc(func(r io.Reader) *toml.Decoder {
		return toml.NewDecoder(r).DisallowUnknownFields()
	}),
}

var yamlDecoder = NewDecoderFunc(func(r io.Reader) *yaml.Decoder {
	d := yaml.NewDecoder(r)
	d.KnownFields(true)
	return d
})

// DecoderFor returns the decoder registered for the extension of filename.
//
// Parameters:
//   - filename: the file name or path
//
// Returns:
//   - DecoderFunc: the decoder
//   - error: non-nil if the extension has no decoder
func DecoderFor(filename string) (DecoderFunc, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if f, ok := decoders[ext]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("config: unsupported format %q", ext)
}

// Open decodes the file into v using the given DecoderFunc. An empty file leaves v unchanged.
//
// Parameters:
//   - v: the destination
//   - filename: the file to read
//   - f: the decoder
//
// Returns:
//   - error: the open or decode error
func Open(v any, filename string, f DecoderFunc) error {
	fp, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer fp.Close()
	return Read(v, bufio.NewReader(fp), f)
}

// Read decodes from reader into v using the given DecoderFunc. An empty input leaves v unchanged.
//
// Parameters:
//   - v: the destination
//   - reader: the encoded input
//   - f: the decoder
//
// Returns:
//   - error: the decode error
func Read(v any, reader io.Reader, f DecoderFunc) error {
	if err := f(reader).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
