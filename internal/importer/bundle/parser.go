package bundle

import (
	"encoding/json"
	"fmt"
)

// ParseConfig parses a bundle config.json file.
//
// Precondition: data must be valid JSON.
// Postcondition: returns a non-nil Config or a non-nil error.
func ParseConfig(data []byte) (*Config, error) {
	var c Config
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing bundle config: %w", err)
	}
	return &c, nil
}

// ParseList parses a JSON array of content records.
//
// Precondition: data must be a valid JSON array.
// Postcondition: returns the decoded records or a non-nil error naming kind.
func ParseList[T any](kind string, data []byte) ([]T, error) {
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parsing bundle %s: %w", kind, err)
	}
	return out, nil
}
