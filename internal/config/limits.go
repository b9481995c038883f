package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"bilancio/internal/core"
)

// LoadLimits reads per-owner budget caps from a YAML file:
//
//	alice:
//	  food: "450.00"
//	  entertainment: "120,50"
//	bob:
//	  housing: "900"
//
// Amounts are decimal strings in the same format transaction amounts use.
// Unknown categories and non-positive caps are rejected at load time so that
// limit matching downstream needs no existence checks.
func LoadLimits(path string) (map[string]core.Limits, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read limits file: %w", err)
	}

	var raw map[string]map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse limits file %s: %w", path, err)
	}

	out := make(map[string]core.Limits, len(raw))
	for owner, caps := range raw {
		limits := make(core.Limits, len(caps))
		for name, amount := range caps {
			category, err := core.ParseCategory(name)
			if err != nil {
				return nil, fmt.Errorf("owner %s: category %q: %w", owner, name, err)
			}
			cents, err := core.ParseDecimalToCents(amount)
			if err != nil {
				return nil, fmt.Errorf("owner %s: %s amount %q: %w", owner, name, amount, err)
			}
			limits[category] = core.Money{Cents: cents}
		}
		if err := limits.Validate(); err != nil {
			return nil, fmt.Errorf("owner %s: %w", owner, err)
		}
		out[owner] = limits
	}
	return out, nil
}
