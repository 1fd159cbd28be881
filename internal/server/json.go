package server

import "encoding/json"

// encodeJSON marshals v to JSON bytes terminated by a newline.
func encodeJSON(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
