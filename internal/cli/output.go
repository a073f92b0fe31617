package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/wareflow/ruleengine/internal/condition"
	"github.com/wareflow/ruleengine/internal/rule"
)

// OutputFormat specifies the output format for CLI commands
type OutputFormat string

const (
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
)

// PrintRules outputs rules in the specified format
func PrintRules(rules []rule.Rule, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return printJSON(rules)
	case FormatYAML:
		return printYAML(rules)
	case FormatTable:
		return printTable(rules)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// PrintRule outputs a single rule in the specified format
func PrintRule(doc *rule.Rule, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return printJSON(doc)
	case FormatYAML:
		return printYAML(doc)
	case FormatTable:
		return printTable([]rule.Rule{*doc})
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func printJSON(data interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	// Wrap slices of rule.Rule in a "rules" key for consistency with the API
	if rules, ok := data.([]rule.Rule); ok {
		return encoder.Encode(map[string][]rule.Rule{"rules": rules})
	}
	return encoder.Encode(data)
}

func printYAML(data interface{}) error {
	encoder := yaml.NewEncoder(os.Stdout)
	defer encoder.Close()
	encoder.SetIndent(2)
	return encoder.Encode(data)
}

func printTable(rules []rule.Rule) error {
	table := tablewriter.NewWriter(os.Stdout)

	// Set headers
	table.Header("Rule ID", "Name", "Enabled", "Conditions", "Actions", "Updated At")

	// Add rows
	for _, doc := range rules {
		enabled := "false"
		if doc.Enabled {
			enabled = "true"
		}

		name := doc.Name
		if len(name) > 40 {
			name = name[:37] + "..."
		}

		updated := ""
		if !doc.UpdatedAt.IsZero() {
			updated = doc.UpdatedAt.Format("2006-01-02 15:04")
		}

		table.Append(
			doc.RuleID,
			name,
			enabled,
			fmt.Sprintf("%d", countLeaves(doc.Root)),
			fmt.Sprintf("%d", len(doc.Actions)),
			updated,
		)
	}

	return table.Render()
}

func countLeaves(root condition.Node) int {
	if root == nil {
		return 0
	}
	return len(condition.Leaves(root))
}
