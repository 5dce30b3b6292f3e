// lint/report.go
package lint

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Printer writes human-readable lint reports. Colors are only emitted when
// the writer is a terminal.
type Printer struct {
	w io.Writer

	heading lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
	warning lipgloss.Style
	detail  lipgloss.Style
}

// NewPrinter returns a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:       w,
		heading: r.NewStyle().Bold(true),
		success: r.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		failure: r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		warning: r.NewStyle().Foreground(lipgloss.Color("11")),
		detail:  r.NewStyle().Foreground(lipgloss.Color("14")),
	}
}

// Print writes the report for each result, separated by a blank line.
func (p *Printer) Print(results []Result) {
	for i, r := range results {
		if i > 0 {
			fmt.Fprintln(p.w)
		}
		p.print(r)
	}
}

func (p *Printer) print(r Result) {
	fmt.Fprintln(p.w, p.heading.Render(fmt.Sprintf("🔍 Validating %s...", r.File)))

	if r.Err != nil {
		fmt.Fprintln(p.w, p.failure.Render(fmt.Sprintf("❌ Error loading YAML file: %v", r.Err)))
		return
	}

	fmt.Fprintln(p.w, p.detail.Render(fmt.Sprintf("📊 Found %d unique variable references", len(r.Variables))))

	if len(r.Warnings) > 0 {
		fmt.Fprintln(p.w)
		fmt.Fprintln(p.w, p.warning.Render("⚠️  Structure Warnings:"))
		for _, w := range r.Warnings {
			fmt.Fprintf(p.w, "    - %s\n", w)
		}
	}

	if r.HasWorkflows {
		fmt.Fprintln(p.w)
		if len(r.Issues) > 0 {
			fmt.Fprintln(p.w, p.failure.Render("❌ Validation Issues Found:"))
			for _, wi := range r.Issues {
				fmt.Fprintf(p.w, "\n  %s:\n", wi.Workflow)
				for _, issue := range wi.Issues {
					fmt.Fprintf(p.w, "    - %s\n", issue)
				}
			}
		} else {
			fmt.Fprintln(p.w, p.success.Render("✅ No validation issues found!"))
		}
	}

	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, p.heading.Render("📋 Variable Categories Found:"))
	for _, c := range r.Categories {
		fmt.Fprintf(p.w, "  %s: %d variables\n", c.Name, len(c.Variables))
	}

	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, p.success.Render("✅ YAML validation completed!"))
}

// WriteJSON writes results as an indented JSON array.
func WriteJSON(w io.Writer, results []Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}
