package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/poiesic/notesearch/core"
)

// loadNotes reads a notes export: a JSON array of {"id", "content"} objects.
func loadNotes(path string) ([]core.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read notes: %w", err)
	}

	var notes []core.Document
	if err := json.Unmarshal(data, &notes); err != nil {
		return nil, fmt.Errorf("failed to parse notes %s: %w", path, err)
	}

	if err := core.ValidateDocuments(notes); err != nil {
		return nil, fmt.Errorf("invalid notes %s: %w", path, err)
	}
	return notes, nil
}
