package config

import (
	"os"

	"gopkg.in/yaml.v3"

	perrors "github.com/odvcencio/panes/pkg/errors"
)

// loadAndMerge loads a YAML file and merges it into the config. Scalars
// absent from the file keep their current values; a layout in the file
// replaces the current one wholesale.
func loadAndMerge(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return mergeYAML(cfg, data, path)
}

func mergeYAML(cfg *Config, data []byte, path string) error {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return parseError(err, path)
	}
	if _, ok := raw["layout"]; ok {
		cfg.Layout = NodeSpec{}
	}
	if input, ok := raw["input"].(map[string]any); ok {
		if _, ok := input["quit_keys"]; ok {
			cfg.Input.QuitKeys = nil
		}
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return parseError(err, path)
	}
	return nil
}

func parseError(err error, path string) error {
	return perrors.Wrap(err, perrors.ErrCodeConfigParse, "parsing YAML").
		WithContext("path", path).
		WithRemediation("Fix the YAML syntax reported above")
}
