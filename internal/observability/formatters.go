// Package observability provides formatted output utilities for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/resume-builder/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
	// timeLayout is used for snapshot timestamps
	timeLayout = "2006-01-02 15:04"
)

// Printer handles formatted output for CLI inspection commands
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// writeList writes at most maxItemsToShow lines and a trailing count of
// the rest.
func writeList(sb *strings.Builder, lines []string) {
	count := min(len(lines), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(lines[i])
		sb.WriteString("\n")
	}
	if len(lines) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(lines)-maxItemsToShow))
	}
}

// PrintProfile outputs one box per section of the user's live profile.
// Empty sections are listed as such.
func (p *Printer) PrintProfile(profile *types.Profile) {
	if profile == nil {
		return
	}

	var sb strings.Builder
	for i, info := range profile.Personal {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("Name:   %s\n", info.FullName))
		sb.WriteString(fmt.Sprintf("Email:  %s\n", info.Email))
		sb.WriteString(fmt.Sprintf("Phone:  %s\n", info.Phone))
	}
	p.printSection(types.KindPersonal, len(profile.Personal), sb.String())

	lines := make([]string, 0, len(profile.Education))
	for _, e := range profile.Education {
		lines = append(lines, fmt.Sprintf("  • %s, %s (%d)", e.Degree, e.Institution, e.GraduationYear))
	}
	p.printSection(types.KindEducation, len(lines), listText(lines))

	lines = lines[:0]
	for _, e := range profile.Experience {
		line := fmt.Sprintf("  • %s at %s", e.JobTitle, e.CompanyName)
		if e.YearsOfExperience != nil {
			line += fmt.Sprintf(" (%.1f yrs)", *e.YearsOfExperience)
		}
		lines = append(lines, line)
	}
	p.printSection(types.KindExperience, len(lines), listText(lines))

	lines = lines[:0]
	for _, s := range profile.Skills {
		lines = append(lines, fmt.Sprintf("  • %s: %s", s.SkillType, strings.Join(s.SkillName, ", ")))
	}
	p.printSection(types.KindSkills, len(lines), listText(lines))

	lines = lines[:0]
	for _, pr := range profile.Projects {
		lines = append(lines, fmt.Sprintf("  • %s [%s]", pr.Title, strings.Join(pr.TechnologiesUsed, ", ")))
	}
	p.printSection(types.KindProjects, len(lines), listText(lines))

	lines = lines[:0]
	for _, c := range profile.Certifications {
		lines = append(lines, fmt.Sprintf("  • %s (%s, %s)", c.CertificationName, c.IssuingOrganization, c.DateObtained))
	}
	p.printSection(types.KindCertifications, len(lines), listText(lines))
}

func listText(lines []string) string {
	var sb strings.Builder
	writeList(&sb, lines)
	return sb.String()
}

func (p *Printer) printSection(kind types.SectionKind, n int, body string) {
	title := fmt.Sprintf("%s (%d)", strings.ToUpper(string(kind)), n)
	if n == 0 {
		p.printBox(title, "(empty)")
		return
	}
	p.printBox(title, strings.TrimSuffix(body, "\n"))
}

// PrintSnapshots outputs the list view of a user's saved resumes.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintSnapshots(summaries []types.SnapshotSummary) {
	if len(summaries) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "NO SAVED RESUMES")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Saved resumes: %d\n\n", len(summaries)))

	for i, s := range summaries {
		sb.WriteString(fmt.Sprintf("%s [%s]\n", s.Name, s.Layout))
		sb.WriteString(fmt.Sprintf("  id:      %s\n", s.ID))
		sb.WriteString(fmt.Sprintf("  updated: %s", s.UpdatedAt.UTC().Format(timeLayout)))
		if i < len(summaries)-1 {
			sb.WriteString("\n\n")
		}
	}

	p.printBox("SAVED RESUMES", sb.String())
}
