package pos

import (
	"bytes"
	"encoding/json"
)

// Many normalizes the API's single-or-list polymorphism: a nested collection
// arrives as a bare object when it holds one element and as an array
// otherwise. Decoding through Many yields a slice either way.
type Many[T any] []T

func (m *Many[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*m = nil
		return nil
	}
	if data[0] == '[' {
		var list []T
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*m = list
		return nil
	}
	var one T
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	*m = []T{one}
	return nil
}
