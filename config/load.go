// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads Parameters from a YAML file, starting from DefaultParameters
// so an omitted field keeps its default rather than zeroing out.
func Load(path string) (Parameters, error) {
	params := DefaultParameters

	data, err := os.ReadFile(path)
	if err != nil {
		return Parameters{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &params); err != nil {
		return Parameters{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := params.Valid(); err != nil {
		return Parameters{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return params, nil
}
