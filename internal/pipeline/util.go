package pipeline

import "encoding/json"

// unmarshalResponse decodes a raw structured LM response into dst.
func unmarshalResponse(raw json.RawMessage, dst interface{}) error {
	return json.Unmarshal(raw, dst)
}
