package robot

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNoReading reports a telemetry reply that carried no usable numbers.
// Callers must treat the reading as unknown, never as the origin.
var ErrNoReading = errors.New("no reading available")

// parseBody extracts the text between the braces of a reply of the form
// "<code>,{<body>},<Method>();".
func parseBody(reply string) (string, error) {
	open := strings.IndexByte(reply, '{')
	close := strings.LastIndexByte(reply, '}')
	if open < 0 || close < open {
		return "", fmt.Errorf("malformed reply %q", reply)
	}
	return reply[open+1 : close], nil
}

// parseVector parses the first n comma-separated floats from a reply body.
func parseVector(reply string, n int) ([]float64, error) {
	body, err := parseBody(reply)
	if err != nil {
		return nil, err
	}
	fields := strings.Split(body, ",")
	vec := make([]float64, 0, n)
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("parse reply field %q: %w", f, err)
		}
		vec = append(vec, v)
		if len(vec) == n {
			break
		}
	}
	if len(vec) < n {
		return nil, ErrNoReading
	}
	return vec, nil
}

// parseAlarmIDs parses a GetErrorID reply body, which holds a JSON array of
// per-subsystem arrays of alarm codes. Codes <= 0 mean "no alarm".
func parseAlarmIDs(reply string) ([]int, error) {
	body, err := parseBody(reply)
	if err != nil {
		return nil, err
	}
	var groups [][]int
	if err := json.Unmarshal([]byte(body), &groups); err != nil {
		return nil, fmt.Errorf("parse alarm reply: %w", err)
	}
	var ids []int
	for _, group := range groups {
		for _, id := range group {
			if id > 0 {
				ids = append(ids, id)
			}
		}
	}
	return ids, nil
}

func formatArgs(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.Join(parts, ",")
}
