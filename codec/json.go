package codec

import "encoding/json"

// JSON is the standard-library JSON codec.
//
// Non-finite floats are not representable in JSON. Scores are floored by
// the models, so cached results never carry one.
type JSON struct{}

func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name returns "json".
func (JSON) Name() string { return "json" }
