// Package checkpoint persists the trading policy between retrain cycles.
package checkpoint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"LiquiMind/internal/model"
)

// LoadCheckpoint reads a checkpoint from a JSON file. Returns nil if the file doesn't exist.
func LoadCheckpoint(filePath string) (*model.PolicyCheckpoint, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var cp model.PolicyCheckpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("decode checkpoint %s: %w", filePath, err)
	}
	return &cp, nil
}

// SaveCheckpoint writes the checkpoint to a temp file and renames it over
// filePath, so readers see either the old or the new artifact.
func SaveCheckpoint(filePath string, cp *model.PolicyCheckpoint) error {
	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return err
	}
	tmp := filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, filePath); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
