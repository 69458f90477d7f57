package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/orbiterhost/orbiter-cli/internal/model"
)

// ProjectFile is the per-project deployment config file name.
const ProjectFile = "orbiter.json"

// LoadProject reads orbiter.json from dir. A missing or unparseable file
// returns ErrNotFound so the caller can recreate it.
func LoadProject(dir string) (*model.ProjectConfig, error) {
	data, err := os.ReadFile(filepath.Join(dir, ProjectFile))
	if err != nil {
		return nil, ErrNotFound
	}

	var cfg model.ProjectConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, ErrNotFound
	}
	return &cfg, nil
}

// SaveProject writes cfg to dir/orbiter.json.
func SaveProject(dir string, cfg *model.ProjectConfig) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode project config: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(filepath.Join(dir, ProjectFile), data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", ProjectFile, err)
	}
	return nil
}
