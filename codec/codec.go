// Package codec encodes cached translation results.
//
// Every entry is framed with a version byte and the name of the codec that
// wrote it, so a shared cache populated by a decoder with another codec is
// detected on read instead of silently misdecoded.
package codec

import (
	"errors"
	"fmt"
)

// Codec marshals values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// Default is the codec used when none is configured.
var Default Codec = GoJSON{}

// entryVersion is the first byte of every framed entry.
const entryVersion byte = 1

var (
	// ErrEntryFormat is returned for entries that are not framed by Encode.
	ErrEntryFormat = errors.New("codec: malformed entry")
	// ErrCodecMismatch is returned when an entry was written by another codec.
	ErrCodecMismatch = errors.New("codec: entry written by another codec")
)

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	case "go-json":
		return GoJSON{}, true
	default:
		return nil, false
	}
}

// Names lists the built-in codec names.
func Names() []string { return []string{"json", "go-json"} }

// Encode marshals v with c and frames it as
//
//	version | len(name) | name | payload
func Encode(c Codec, v any) ([]byte, error) {
	name := c.Name()
	if len(name) > 255 {
		return nil, fmt.Errorf("codec: name %q too long", name)
	}
	payload, err := c.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("codec %s: %w", name, err)
	}
	out := make([]byte, 0, 2+len(name)+len(payload))
	out = append(out, entryVersion, byte(len(name)))
	out = append(out, name...)
	return append(out, payload...), nil
}

// Decode unframes data and unmarshals the payload into v with c.
func Decode(c Codec, data []byte, v any) error {
	if len(data) < 2 || data[0] != entryVersion {
		return ErrEntryFormat
	}
	n := int(data[1])
	if len(data) < 2+n {
		return ErrEntryFormat
	}
	if name := string(data[2 : 2+n]); name != c.Name() {
		return fmt.Errorf("%w: %s, want %s", ErrCodecMismatch, name, c.Name())
	}
	if err := c.Unmarshal(data[2+n:], v); err != nil {
		return fmt.Errorf("codec %s: %w", c.Name(), err)
	}
	return nil
}
