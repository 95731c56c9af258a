package memory

import (
	"encoding/json"
	"fmt"
	"os"
)

// Save writes entries to path as a JSON array.
func Save(path string, entries []Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode memory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write memory file: %w", err)
	}
	return nil
}

// Load reads a memory file written by Save. A missing file is an error the
// caller is expected to treat as "nothing to load", not a crash.
func Load(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read memory file: %w", err)
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse memory file: %w", err)
	}
	return entries, nil
}
