package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRulesFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadRules(t *testing.T) {
	path := writeRulesFile(t, `[
		{"name": "required_fecha", "rule_type": "REQUIRED", "column": "fecha"},
		{"name": "total_range", "rule_type": "RANGE", "column": "total", "min": 0, "max": 100000},
		{"name": "sku_pattern", "rule_type": "PATTERN", "column": "sku", "pattern": "^[A-Z]{3}-\\d+$", "severity": "WARNING"}
	]`)

	rules, err := LoadRules(path)
	require.NoError(t, err)
	require.Len(t, rules, 3)

	assert.Equal(t, RuleTypeRequired, rules[0].Type)
	assert.Equal(t, "fecha", rules[0].Column)

	require.NotNil(t, rules[1].Min)
	assert.Equal(t, 0.0, *rules[1].Min)
	require.NotNil(t, rules[1].Max)
	assert.Equal(t, 100000.0, *rules[1].Max)

	assert.Equal(t, SeverityWarning, rules[2].Severity)
}

func TestLoadRulesMissingFile(t *testing.T) {
	_, err := LoadRules(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read rules file")
}

func TestLoadRulesMalformedJSON(t *testing.T) {
	path := writeRulesFile(t, `{"rules": not json}`)

	_, err := LoadRules(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse rules file")
}

func TestLoadRulesInvalidDefinition(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing rule name",
			content: `[{"rule_type": "REQUIRED", "column": "fecha"}]`,
			wantErr: "Name",
		},
		{
			name:    "range without bounds",
			content: `[{"name": "r", "rule_type": "RANGE", "column": "total"}]`,
			wantErr: "at least one bound",
		},
		{
			name:    "custom rule has no check function",
			content: `[{"name": "c", "rule_type": "CUSTOM", "column": "total"}]`,
			wantErr: "check function",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadRules(writeRulesFile(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadRulesEmptyArray(t *testing.T) {
	rules, err := LoadRules(writeRulesFile(t, `[]`))
	require.NoError(t, err)
	assert.Empty(t, rules)
}
