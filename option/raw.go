package option

import (
	"encoding/json"
	"fmt"
)

// RawRule is one entry of the "rules" list in the plugin configuration.
type RawRule struct {
	Name               string           `json:"name,omitempty"`
	Extensions         []string         `json:"extensions"`
	ExportedNameCase   ExportedNameCase `json:"exportedNameCase,omitempty"`
	ExportedNamePrefix *string          `json:"exportedNamePrefix,omitempty"`
}

// RawAssetPluginOptions is the plugin configuration blob as written by the user.
// The top-level extensions/exportedNameCase/exportedNamePrefix form the first rule.
type RawAssetPluginOptions struct {
	Include                  []string         `json:"include"`
	Exclude                  []string         `json:"exclude,omitempty"`
	Extensions               []string         `json:"extensions,omitempty"`
	ExportedNameCase         ExportedNameCase `json:"exportedNameCase,omitempty"`
	ExportedNamePrefix       *string          `json:"exportedNamePrefix,omitempty"`
	Rules                    []RawRule        `json:"rules,omitempty"`
	AllowArbitraryExtensions *bool            `json:"allowArbitraryExtensions,omitempty"`
	RespectGitignore         bool             `json:"respectGitignore,omitempty"`
	IncrementalMatch         MatchPolicy      `json:"incrementalMatch,omitempty"`
}

// ParseRaw decodes a plugin configuration blob.
func ParseRaw(data []byte) (RawAssetPluginOptions, error) {
	var raw RawAssetPluginOptions
	if err := json.Unmarshal(data, &raw); err != nil {
		return RawAssetPluginOptions{}, fmt.Errorf("parsing plugin options: %w", err)
	}
	return raw, nil
}

// Resolve turns raw options into AssetPluginOptions. allowArbitraryExtensions is
// the value from the host's compilation settings, used unless the raw options
// override it. The result is not validated; call Validate.
func Resolve(manifestPath string, allowArbitraryExtensions bool, raw RawAssetPluginOptions) AssetPluginOptions {
	nameCase := raw.ExportedNameCase
	if nameCase == "" {
		nameCase = DefaultExportedNameCase
	}
	prefix := DefaultExportedNamePrefix
	if raw.ExportedNamePrefix != nil {
		prefix = *raw.ExportedNamePrefix
	}

	var rules []SuggestionRule
	if len(raw.Extensions) > 0 {
		rules = append(rules, SuggestionRule{
			Name:               "default",
			Extensions:         raw.Extensions,
			ExportedNameCase:   nameCase,
			ExportedNamePrefix: prefix,
		})
	}
	for i, r := range raw.Rules {
		rule := SuggestionRule{
			Name:               r.Name,
			Extensions:         r.Extensions,
			ExportedNameCase:   r.ExportedNameCase,
			ExportedNamePrefix: prefix,
		}
		if rule.Name == "" {
			rule.Name = fmt.Sprintf("rule%d", i+1)
		}
		if rule.ExportedNameCase == "" {
			rule.ExportedNameCase = nameCase
		}
		if r.ExportedNamePrefix != nil {
			rule.ExportedNamePrefix = *r.ExportedNamePrefix
		}
		rules = append(rules, rule)
	}

	if raw.AllowArbitraryExtensions != nil {
		allowArbitraryExtensions = *raw.AllowArbitraryExtensions
	}
	policy := raw.IncrementalMatch
	if policy == "" {
		policy = DefaultIncrementalMatch
	}

	return AssetPluginOptions{
		ManifestPath:             manifestPath,
		AllowArbitraryExtensions: allowArbitraryExtensions,
		Rules:                    rules,
		Extensions:               UnionExtensions(rules),
		Include:                  raw.Include,
		Exclude:                  raw.Exclude,
		RespectGitignore:         raw.RespectGitignore,
		IncrementalMatch:         policy,
	}
}
