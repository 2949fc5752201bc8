package parser

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type rulesFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRules reads a category rule table from a YAML file:
//
//	rules:
//	  - category: Groceries
//	    type: expense
//	    keywords: [bigbasket, dmart]
//
// Rules keep their file order.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	return ParseRules(data)
}

// ParseRules decodes and validates a YAML rule table.
func ParseRules(data []byte) ([]Rule, error) {
	var f rulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse rules: %w", err)
	}
	if len(f.Rules) == 0 {
		return nil, fmt.Errorf("rules file contains no rules")
	}

	for i := range f.Rules {
		r := &f.Rules[i]
		if r.Category == "" {
			return nil, fmt.Errorf("rule %d: category is required", i+1)
		}
		if len(r.Keywords) == 0 {
			return nil, fmt.Errorf("rule %d (%s): at least one keyword is required", i+1, r.Category)
		}
		if r.Type != "" {
			t, ok := ParseTransactionType(string(r.Type))
			if !ok {
				return nil, fmt.Errorf("rule %d (%s): invalid type %q", i+1, r.Category, r.Type)
			}
			r.Type = t
		}
	}
	return f.Rules, nil
}
