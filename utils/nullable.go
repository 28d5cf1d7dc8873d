package utils

import (
	"bytes"
	"encoding/json"
)

// Nullable tells apart a JSON field that was omitted, sent as null, or sent
// with a value. Set is false when the key is absent.
type Nullable[T any] struct {
	Set   bool
	Value *T
}

func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

func (n Nullable[T]) MarshalJSON() ([]byte, error) {
	if n.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*n.Value)
}

// IsNull reports an explicit null.
func (n Nullable[T]) IsNull() bool {
	return n.Set && n.Value == nil
}
