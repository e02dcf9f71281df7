package tools

import (
	"fmt"
	"strings"
	"time"

	"github.com/lexandro/assetmod-mcp/assets"
	"github.com/lexandro/assetmod-mcp/index"
	"github.com/lexandro/assetmod-mcp/option"
)

// FormatAssetList formats listed assets as human-readable text. total is the
// number of matches before truncation.
func FormatAssetList(entries []AssetEntry, total int) string {
	if total == 0 {
		return "No assets matched."
	}

	var builder strings.Builder
	if len(entries) < total {
		builder.WriteString(fmt.Sprintf("Found %d assets (showing %d):\n\n", total, len(entries)))
	} else {
		builder.WriteString(fmt.Sprintf("Found %d assets:\n\n", total))
	}

	width := 0
	for _, entry := range entries {
		width = max(width, len(entry.RelativePath))
	}
	for _, entry := range entries {
		builder.WriteString(fmt.Sprintf("  %-*s  [%s]\n", width, entry.RelativePath, entry.Rule))
	}
	return builder.String()
}

// FormatLookup describes whether path is an asset and which rule matched it.
func FormatLookup(path string, rule *option.SuggestionRule) string {
	if rule == nil {
		return fmt.Sprintf("%s is not an asset file.", path)
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("%s is an asset file.\n\n", path))
	builder.WriteString(fmt.Sprintf("Rule:               %s\n", rule.Name))
	builder.WriteString(fmt.Sprintf("Extensions:         %s\n", strings.Join(rule.Extensions, ", ")))
	builder.WriteString(fmt.Sprintf("Exported name case: %s\n", rule.ExportedNameCase))
	builder.WriteString(fmt.Sprintf("Exported prefix:    %q\n", rule.ExportedNamePrefix))
	return builder.String()
}

// FormatSearchResults formats catalog search results as human-readable text.
func FormatSearchResults(results []index.SearchResult, total int) string {
	if len(results) == 0 {
		return "No assets found."
	}

	var builder strings.Builder
	if len(results) < total {
		builder.WriteString(fmt.Sprintf("Found %d assets (showing %d):\n\n", total, len(results)))
	} else {
		builder.WriteString(fmt.Sprintf("Found %d assets:\n\n", total))
	}
	for _, result := range results {
		builder.WriteString(fmt.Sprintf("  %s  [%s]\n", result.RelativePath, result.Rule))
	}
	return builder.String()
}

// FormatRuleCounts lists every configured rule with its asset count, in
// configuration order.
func FormatRuleCounts(rules []option.SuggestionRule, counts map[string]int) string {
	var builder strings.Builder
	builder.WriteString("Rules:\n")
	for _, rule := range rules {
		builder.WriteString(fmt.Sprintf("  %-20s %d assets  (%s, %s, prefix %q)\n",
			rule.Name,
			counts[rule.Name],
			strings.Join(rule.Extensions, " "),
			rule.ExportedNameCase,
			rule.ExportedNamePrefix,
		))
	}
	return builder.String()
}

// FormatVerifyResult summarizes a registry verification.
func FormatVerifyResult(result assets.VerifyResult) string {
	if result.MissingFiles+result.StaleFiles+result.ReclassifiedFiles == 0 {
		return fmt.Sprintf("rescan: registry in sync (%s)", formatDuration(result.Duration))
	}
	return fmt.Sprintf("rescan: added %d, removed %d, reclassified %d (%s)",
		result.MissingFiles, result.StaleFiles, result.ReclassifiedFiles, formatDuration(result.Duration))
}

// formatFileSize converts bytes to a human-readable string.
func formatFileSize(bytes int64) string {
	switch {
	case bytes >= 1024*1024:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
	case bytes >= 1024:
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	totalSeconds := int(d.Seconds())
	if totalSeconds < 60 {
		return fmt.Sprintf("%ds", totalSeconds)
	}
	totalMinutes := totalSeconds / 60
	remainderSeconds := totalSeconds % 60
	if totalMinutes < 60 {
		return fmt.Sprintf("%dm%ds", totalMinutes, remainderSeconds)
	}
	hours := totalMinutes / 60
	remainderMinutes := totalMinutes % 60
	return fmt.Sprintf("%dh%dm", hours, remainderMinutes)
}
