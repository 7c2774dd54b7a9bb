package tactics

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Format identifies the encoding of a tactics document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks a format from a file extension. Anything that is not
// .yaml or .yml is treated as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Load reads a tactics document from path. An empty path or a missing file
// yields DefaultConfig and a nil error. A malformed document yields
// DefaultConfig and the parse error; callers are expected to log it and
// carry on with the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Warn().Str("path", path).Msg("Tactics document not found, using defaults")
		return DefaultConfig(), nil
	}
	if err != nil {
		return DefaultConfig(), fmt.Errorf("read tactics %s: %w", path, err)
	}
	cfg, err := Parse(data, FormatFromPath(path))
	if err != nil {
		return cfg, fmt.Errorf("load tactics %s: %w", path, err)
	}
	log.Info().Str("path", path).Int("classes", len(cfg.Classes)).Msg("Tactics document loaded")
	return cfg, nil
}

// Parse decodes a tactics document on top of DefaultConfig, so keys absent
// from the document keep their default values. On any error the returned
// config is DefaultConfig.
func Parse(data []byte, format Format) (*Config, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return DefaultConfig(), nil
	}
	if format == FormatYAML {
		var err error
		if data, err = yamlToJSON(data); err != nil {
			return DefaultConfig(), err
		}
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("decode tactics: %w", err)
	}

	var doc struct {
		Classes               map[string]json.RawMessage `json:"classes"`
		TargetValues          map[string]float64         `json:"target_values"`
		WeaponSizeMultipliers map[string]Range           `json:"weapon_size_multipliers"`
		FocusCaps             map[string]IntRange        `json:"focus_limits"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return DefaultConfig(), fmt.Errorf("decode tables: %w", err)
	}
	if err := mergeClasses(cfg, doc.Classes); err != nil {
		return DefaultConfig(), err
	}
	mergeTable(cfg.TargetValues, doc.TargetValues)
	mergeTable(cfg.WeaponSizeMultipliers, doc.WeaponSizeMultipliers)
	mergeTable(cfg.FocusCaps, doc.FocusCaps)

	cfg.Validate()

	src := strings.TrimSpace(cfg.Targeting.PriorityTarget)
	if src == "" {
		src = defaultPriorityTarget
		cfg.Targeting.PriorityTarget = src
	}
	prio, err := compilePriority(src)
	if err != nil {
		return DefaultConfig(), err
	}
	cfg.priority = prio
	return cfg, nil
}

// mergeClasses applies class rows from a document. The default row is merged
// first; a class row then starts from that class's built-in row, or from the
// merged default row when the class has none.
func mergeClasses(cfg *Config, rows map[string]json.RawMessage) error {
	if len(rows) == 0 {
		return nil
	}
	lowered := make(map[string]json.RawMessage, len(rows))
	for k, v := range rows {
		lowered[strings.ToLower(strings.TrimSpace(k))] = v
	}

	base := cfg.Classes[defaultClassKey]
	if raw, ok := lowered[defaultClassKey]; ok {
		if err := json.Unmarshal(raw, &base); err != nil {
			return fmt.Errorf("decode class %q: %w", defaultClassKey, err)
		}
		cfg.Classes[defaultClassKey] = base
	}

	for k, raw := range lowered {
		if k == defaultClassKey {
			continue
		}
		if _, err := ParseClass(k); err != nil {
			return fmt.Errorf("decode classes: %w", err)
		}
		row, ok := cfg.Classes[k]
		if !ok {
			row = base
		}
		if err := json.Unmarshal(raw, &row); err != nil {
			return fmt.Errorf("decode class %q: %w", k, err)
		}
		cfg.Classes[k] = row
	}
	return nil
}

// mergeTable re-applies document rows under their lowercase key, so a row
// spelled "Cruiser" replaces the built-in "cruiser" row.
func mergeTable[V any](dst, rows map[string]V) {
	for k, v := range rows {
		delete(dst, k)
		dst[strings.ToLower(strings.TrimSpace(k))] = v
	}
}

// yamlToJSON re-encodes a YAML document as JSON so a single set of struct
// tags and text unmarshalers drives both formats.
func yamlToJSON(data []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("convert yaml: %w", err)
	}
	return out, nil
}
