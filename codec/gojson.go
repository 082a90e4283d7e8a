package codec

import gojson "github.com/goccy/go-json"

// GoJSON is a faster JSON codec backed by github.com/goccy/go-json. Its
// payloads are interchangeable with JSON, but framed entries are not since
// they record the codec name.
type GoJSON struct{}

func (GoJSON) Marshal(v any) ([]byte, error) { return gojson.Marshal(v) }

func (GoJSON) Unmarshal(data []byte, v any) error { return gojson.Unmarshal(data, v) }

// Name returns "go-json".
func (GoJSON) Name() string { return "go-json" }
