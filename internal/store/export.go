// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// ExportYAML writes a full run to dir/<run-id>.yaml and returns the path.
func (s *Store) ExportYAML(ctx context.Context, runID string) (string, error) {
	result, err := s.Get(ctx, runID)
	if err != nil {
		return "", err
	}

	data, err := yaml.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("marshaling run %s: %w", runID, err)
	}

	path := filepath.Join(s.dir, runID+".yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing export: %w", err)
	}
	return path, nil
}
