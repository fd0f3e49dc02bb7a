package customization

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ConfigVersion tags exported customization files.
const ConfigVersion = "2.2"

// ErrNotConfig is returned by ImportConfig for documents without a
// customizations object.
var ErrNotConfig = errors.New("customization: document is not a customization config")

// Config is the exported customization file.
type Config struct {
	Version        string          `json:"version"`
	Timestamp      time.Time       `json:"timestamp"`
	Customizations json.RawMessage `json:"customizations"`
}

// ExportConfig renders c as a standalone config file.
func ExportConfig(c Customization, now time.Time) ([]byte, error) {
	c = c.Clone()
	EnsureSections(&c)
	body, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("customization: encode config: %w", err)
	}
	out, err := json.MarshalIndent(Config{
		Version:        ConfigVersion,
		Timestamp:      now.UTC(),
		Customizations: body,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("customization: encode config: %w", err)
	}
	return out, nil
}

// ImportConfig decodes an exported config, merging its customizations onto
// Default.
func ImportConfig(raw []byte) (Customization, error) {
	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return Customization{}, fmt.Errorf("customization: decode config: %w", err)
	}
	if len(cfg.Customizations) == 0 || string(cfg.Customizations) == "null" {
		return Customization{}, ErrNotConfig
	}
	return Decode(cfg.Customizations)
}

// ConfigFilename names an exported config file after its date.
func ConfigFilename(now time.Time) string {
	return "customizacao-config-" + now.UTC().Format("2006-01-02") + ".json"
}
