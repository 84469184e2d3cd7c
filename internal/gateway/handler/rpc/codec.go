package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// jsonCodec lets connect carry plain Go structs. It takes over the "json"
// codec name so application/json and application/connect+json requests
// both decode through encoding/json.
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("decode %T: %w", msg, err)
	}
	return nil
}
