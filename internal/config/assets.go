package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/seenimoa/marketpulse/internal/tracker"
)

// ErrNoAssets is returned when an assets file lists nothing.
var ErrNoAssets = errors.New("assets file lists no assets")

// Portfolio is a named, ordered asset list.
type Portfolio struct {
	Name   string
	Assets []tracker.Asset
}

// LoadPortfolio reads an assets file. The portfolio is named after the
// file stem. Both JSON and YAML are accepted; see ParseAssets.
func LoadPortfolio(path string) (Portfolio, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Portfolio{}, fmt.Errorf("reading assets file: %w", err)
	}
	assets, err := ParseAssets(data)
	if err != nil {
		return Portfolio{}, fmt.Errorf("%s: %w", path, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Portfolio{Name: name, Assets: assets}, nil
}

// ParseAssets decodes either a mapping of display name to ticker
// ({"S&P 500": "SPY"}) or a sequence of {name, symbol} objects. Document
// order is preserved. JSON is parsed as YAML.
func ParseAssets(data []byte) ([]tracker.Asset, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing assets: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, ErrNoAssets
	}

	root := doc.Content[0]
	var assets []tracker.Asset
	switch root.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(root.Content); i += 2 {
			key, val := root.Content[i], root.Content[i+1]
			if val.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: ticker for %q must be a string", val.Line, key.Value)
			}
			assets = append(assets, tracker.Asset{Name: key.Value, Symbol: val.Value})
		}
	case yaml.SequenceNode:
		for _, item := range root.Content {
			var a tracker.Asset
			if err := item.Decode(&a); err != nil {
				return nil, fmt.Errorf("line %d: %w", item.Line, err)
			}
			if a.Name == "" {
				a.Name = a.Symbol
			}
			assets = append(assets, a)
		}
	default:
		return nil, fmt.Errorf("line %d: expected a mapping or a list of assets", root.Line)
	}

	if len(assets) == 0 {
		return nil, ErrNoAssets
	}
	seen := make(map[string]bool, len(assets))
	for _, a := range assets {
		if strings.TrimSpace(a.Symbol) == "" {
			return nil, fmt.Errorf("asset %q has no ticker", a.Name)
		}
		if seen[a.Name] {
			return nil, fmt.Errorf("duplicate asset %q", a.Name)
		}
		seen[a.Name] = true
	}
	return assets, nil
}
