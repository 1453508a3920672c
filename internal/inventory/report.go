package inventory

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

// buildTable lays out the per-category status table shared by the Markdown
// and HTML renderings.
func (inv *Inventory) buildTable() table.Writer {
	perCategory := map[string]int{}
	for _, test := range inv.Tests {
		perCategory[test.Category]++
	}

	names := make([]string, 0, len(inv.Categories))
	for name := range inv.Categories {
		names = append(names, name)
	}
	sort.Strings(names)

	t := table.NewWriter()
	t.AppendHeader(table.Row{"Category", "Declared", "Tracked", "Priority", "Description"})
	for _, name := range names {
		category := inv.Categories[name]
		t.AppendRow(table.Row{name, category.Count, perCategory[name], category.Priority, category.Description})
	}
	t.AppendFooter(table.Row{"Total", inv.TotalImplemented, len(inv.Tests), "", ""})
	return t
}

// RenderMarkdown produces the status report as Markdown, including the
// validation outcome.
func (inv *Inventory) RenderMarkdown(v *Validation) string {
	var sb strings.Builder
	sb.WriteString("# Test Inventory Status\n\n")

	if v.OK() {
		sb.WriteString("Validation: **passed**\n\n")
	} else {
		sb.WriteString("Validation: **failed**\n\n")
		for _, issue := range v.Issues {
			fmt.Fprintf(&sb, "- `%s`: %s\n", issue.Path, issue.Message)
		}
		sb.WriteString("\n")
	}

	sb.WriteString(inv.buildTable().RenderMarkdown())
	sb.WriteString("\n")

	if len(v.Warnings) > 0 {
		sb.WriteString("\n## Warnings\n\n")
		for _, warning := range v.Warnings {
			fmt.Fprintf(&sb, "- %s\n", warning)
		}
	}
	return sb.String()
}

// RenderHTML produces the same report as a standalone HTML fragment.
func (inv *Inventory) RenderHTML(v *Validation) string {
	var sb strings.Builder
	sb.WriteString("<h1>Test Inventory Status</h1>\n")
	if v.OK() {
		sb.WriteString("<p>Validation: passed</p>\n")
	} else {
		sb.WriteString("<p>Validation: failed</p>\n<ul>\n")
		for _, issue := range v.Issues {
			fmt.Fprintf(&sb, "<li><code>%s</code>: %s</li>\n", issue.Path, issue.Message)
		}
		sb.WriteString("</ul>\n")
	}
	sb.WriteString(inv.buildTable().RenderHTML())
	sb.WriteString("\n")
	if len(v.Warnings) > 0 {
		sb.WriteString("<h2>Warnings</h2>\n<ul>\n")
		for _, warning := range v.Warnings {
			fmt.Fprintf(&sb, "<li>%s</li>\n", warning)
		}
		sb.WriteString("</ul>\n")
	}
	return sb.String()
}
