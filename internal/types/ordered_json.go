package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// walkObject visits the members of a JSON object in document order.
// A JSON null is treated as an empty object.
func walkObject(data []byte, fn func(key string, raw json.RawMessage) error) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("decode %q: %w", key, err)
		}
		if err := fn(key, raw); err != nil {
			return err
		}
	}
	_, err = dec.Token()
	return err
}

// scalarText renders a JSON scalar the way a table cell shows it. Integral
// floats lose their fraction so pandas-style 8.0 reads as 8.
func scalarText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return string(raw)
		}
		return s
	case 't', 'f':
		return string(raw)
	case '{', '[':
		return string(raw)
	}
	text := string(raw)
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		if f == float64(int64(f)) && !strings.ContainsAny(text, "eE") {
			return strconv.FormatInt(int64(f), 10)
		}
	}
	return text
}
