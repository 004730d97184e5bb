// Package codec defines the serializations available for cache artifacts.
package codec

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ulikunitz/xz"
)

// Format is the closed set of artifact encodings.
type Format interface {
	// Name is the configured name, e.g. "gob+xz".
	Name() string
	// Ext is the artifact file extension including the dot.
	Ext() string
	Encode(w io.Writer, v any) error
	Decode(r io.Reader, v any) error
	format()
}

// Default is the format used when none is configured.
var Default Format = Gob{}

// Parse resolves a configured format name.
func Parse(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "gob":
		return Gob{}, nil
	case "gob+xz", "xz":
		return GobXZ{}, nil
	case "json":
		return JSON{}, nil
	default:
		return nil, fmt.Errorf("unknown cache format %q (valid: gob, gob+xz, json)", name)
	}
}

// All lists every format, used to clean up artifacts of a previous format.
func All() []Format {
	return []Format{Gob{}, GobXZ{}, JSON{}}
}

// Gob is encoding/gob, the default native format.
type Gob struct{}

func (Gob) Name() string { return "gob" }
func (Gob) Ext() string  { return ".gob" }
func (Gob) format()      {}

func (Gob) Encode(w io.Writer, v any) error {
	return gob.NewEncoder(w).Encode(v)
}

func (Gob) Decode(r io.Reader, v any) error {
	return gob.NewDecoder(bufio.NewReader(r)).Decode(v)
}

// GobXZ is gob wrapped in an xz stream, for large sites on slow disks.
type GobXZ struct{}

func (GobXZ) Name() string { return "gob+xz" }
func (GobXZ) Ext() string  { return ".gob.xz" }
func (GobXZ) format()      {}

func (GobXZ) Encode(w io.Writer, v any) error {
	zw, err := xz.NewWriter(w)
	if err != nil {
		return fmt.Errorf("xz writer: %w", err)
	}
	if err := gob.NewEncoder(zw).Encode(v); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

func (GobXZ) Decode(r io.Reader, v any) error {
	zr, err := xz.NewReader(bufio.NewReader(r))
	if err != nil {
		return fmt.Errorf("xz reader: %w", err)
	}
	return gob.NewDecoder(zr).Decode(v)
}

// JSON is indented JSON, readable by external tooling.
type JSON struct{}

func (JSON) Name() string { return "json" }
func (JSON) Ext() string  { return ".json" }
func (JSON) format()      {}

func (JSON) Encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (JSON) Decode(r io.Reader, v any) error {
	return json.NewDecoder(r).Decode(v)
}
