package store

import (
	"encoding/json"
	"fmt"
)

// Encode marshals doc to its JSON form and extracts the id.
func Encode(doc any) ([]byte, string, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, "", fmt.Errorf("store: encode document: %w", err)
	}
	var head struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, "", fmt.Errorf("store: document is not an object: %w", err)
	}
	if head.ID == "" {
		return nil, "", ErrInvalidID
	}
	return raw, head.ID, nil
}

// DecodeMany decodes raw JSON documents into out, a pointer to a slice.
func DecodeMany(docs [][]byte, out any) error {
	buf := make([]byte, 0, 2+len(docs)*64)
	buf = append(buf, '[')
	for i, d := range docs {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, d...)
	}
	buf = append(buf, ']')
	if err := json.Unmarshal(buf, out); err != nil {
		return fmt.Errorf("store: decode documents: %w", err)
	}
	return nil
}

// DecodeOne decodes a raw JSON document into out.
func DecodeOne(doc []byte, out any) error {
	if err := json.Unmarshal(doc, out); err != nil {
		return fmt.Errorf("store: decode document: %w", err)
	}
	return nil
}

// Normalize round-trips v through JSON so that it compares equal to decoded document values.
func Normalize(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
