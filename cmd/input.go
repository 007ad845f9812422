package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// readListings loads raw attribute sets from a JSON array, an object with a
// "jobs" array, or JSON lines. "-" reads stdin.
func readListings(path string) ([]map[string]any, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading listings: %w", err)
	}
	return parseListings(data)
}

func parseListings(data []byte) ([]map[string]any, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	switch data[0] {
	case '[':
		var raws []map[string]any
		if err := json.Unmarshal(data, &raws); err != nil {
			return nil, fmt.Errorf("decoding listings: %w", err)
		}
		return raws, nil
	case '{':
		var wrapped struct {
			Jobs []map[string]any `json:"jobs"`
		}
		if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Jobs != nil {
			return wrapped.Jobs, nil
		}
	}

	var raws []map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	for {
		var raw map[string]any
		err := dec.Decode(&raw)
		if errors.Is(err, io.EOF) {
			return raws, nil
		}
		if err != nil {
			return nil, fmt.Errorf("decoding listing %d: %w", len(raws), err)
		}
		raws = append(raws, raw)
	}
}
