package forecast

import (
	"encoding/json"
	"fmt"
	"os"
)

// SaveModel persists a fitted model as a JSON artifact, replacing any
// previous artifact at the path.
func SaveModel(model *Model, path string) error {
	raw, err := json.Marshal(model)
	if err != nil {
		return fmt.Errorf("failed to marshal model artifact: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write model artifact %s: %w", path, err)
	}
	return nil
}

// LoadModel reads a model artifact written by SaveModel.
func LoadModel(path string) (*Model, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model artifact %s: %w", path, err)
	}
	model := &Model{}
	if err := json.Unmarshal(raw, model); err != nil {
		return nil, fmt.Errorf("failed to parse model artifact %s: %w", path, err)
	}
	return model, nil
}
