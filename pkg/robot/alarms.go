package robot

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

//go:embed alarms.json
var defaultAlarmsJSON []byte

// DefaultAlarms returns the built-in alarm code translation table.
func DefaultAlarms() map[int]string {
	table, err := decodeAlarms(defaultAlarmsJSON)
	if err != nil {
		// The embedded table is part of the build; a decode failure is a
		// programming error, not a runtime condition.
		panic(err)
	}
	return table
}

// LoadAlarms reads an alarm translation table from a JSON file mapping
// decimal code strings to messages, e.g. {"22": "Inverse kinematics error"}.
func LoadAlarms(path string) (map[int]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read alarm table: %w", err)
	}
	return decodeAlarms(data)
}

func decodeAlarms(data []byte) (map[int]string, error) {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse alarm table: %w", err)
	}
	table := make(map[int]string, len(raw))
	for code, msg := range raw {
		id, err := strconv.Atoi(code)
		if err != nil {
			return nil, fmt.Errorf("alarm code %q: %w", code, err)
		}
		table[id] = msg
	}
	return table, nil
}

// translate maps alarm codes to human-readable messages using the table,
// falling back to a generic message for unknown codes.
func translate(table map[int]string, ids []int) []string {
	if len(ids) == 0 {
		return nil
	}
	msgs := make([]string, len(ids))
	for i, id := range ids {
		if msg, ok := table[id]; ok {
			msgs[i] = msg
		} else {
			msgs[i] = fmt.Sprintf("Unknown error %d", id)
		}
	}
	return msgs
}
