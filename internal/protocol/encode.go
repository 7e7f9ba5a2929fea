package protocol

import "encoding/json"

// Encode flattens payload into one wire frame tagged with the event kind,
// matching the envelope shape handlers decode on the way in.
func Encode(kind EventKind, payload any) ([]byte, error) {
	var fields map[string]any
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(b, &fields); err != nil {
			return nil, err
		}
	}
	if fields == nil {
		fields = make(map[string]any, 1)
	}
	fields["type"] = kind
	return json.Marshal(fields)
}
