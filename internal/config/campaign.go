package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadCampaignConfig reads path and decodes it over Defaults(), so an
// omitted field in the file keeps its built-in default rather than
// zeroing out.
func LoadCampaignConfig(path string) (CampaignConfig, error) {
	cfg := Defaults()
	content, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read campaign config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return cfg, fmt.Errorf("parse campaign config %s: %w", path, err)
	}
	return cfg, nil
}
