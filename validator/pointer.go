package validator

import (
	"encoding/json"
	"fmt"

	"github.com/agentflare-ai/go-jsonpointer"
)

// ResolvePointer returns the JSON value at pointer within data, re-encoded.
// An empty pointer or "/" selects the whole document.
func ResolvePointer(data []byte, pointer string) ([]byte, error) {
	if pointer == "" || pointer == "/" {
		return data, nil
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}

	ptr, err := jsonpointer.New(pointer)
	if err != nil {
		return nil, fmt.Errorf("invalid JSON pointer %s: %w", pointer, err)
	}

	value, err := ptr.Get(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve pointer %s: %w", pointer, err)
	}

	out, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resolved value: %w", err)
	}
	return out, nil
}
