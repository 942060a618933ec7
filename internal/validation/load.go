package validation

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadRules reads a JSON array of rule definitions from path and validates
// every definition. CUSTOM rules cannot be expressed in JSON; a file that
// declares one fails definition validation because no check function can be
// attached.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}

	var rules []Rule
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parse rules file %s: %w", path, err)
	}

	for _, rule := range rules {
		if err := rule.ValidateDefinition(); err != nil {
			return nil, fmt.Errorf("rules file %s: %w", path, err)
		}
	}
	return rules, nil
}
