package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/jonathan/readme-generator/internal/db"
	"github.com/jonathan/readme-generator/internal/evaluation"
	"github.com/jonathan/readme-generator/internal/pipeline"
	"github.com/jonathan/readme-generator/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer writes boxed summaries for the CLI.
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// StepRow is one line of the step listing.
type StepRow struct {
	Number    int
	Name      string
	Category  string
	Completed bool
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, clip(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// clip shortens s to width runes, marking the cut with "...".
func clip(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}

func writeCapped(sb *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(heading + ":\n")
	count := min(len(items), maxItemsToShow)
	for _, item := range items[:count] {
		sb.WriteString(fmt.Sprintf("  • %s\n", item))
	}
	if len(items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-maxItemsToShow))
	}
	sb.WriteString("\n")
}

func joinSteps(steps []int) string {
	parts := make([]string, len(steps))
	for i, s := range steps {
		parts[i] = fmt.Sprintf("%d", s)
	}
	return strings.Join(parts, ", ")
}

// PrintAnalysis outputs the headline facts of an analyzed repository.
func (p *Printer) PrintAnalysis(repo *types.RepositoryContext) {
	if repo == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Repository: %s\n", repo.Name))
	sb.WriteString(fmt.Sprintf("Language:   %s\n", repo.PrimaryLanguage))
	if repo.HasFramework {
		sb.WriteString(fmt.Sprintf("Framework:  %s\n", repo.FrameworkName))
	}
	sb.WriteString(fmt.Sprintf("Build:      %s\n", repo.BuildSystem.Type))
	sb.WriteString(fmt.Sprintf("Files:      %d (%d analyzed)\n", repo.TotalFiles, len(repo.Files)))
	sb.WriteString("\n")

	writeCapped(&sb, "Entry Points", repo.EntryPoints)

	if len(repo.Files) > 0 {
		sb.WriteString("Top Files:\n")
		for _, f := range repo.Files[:min(len(repo.Files), maxItemsToShow)] {
			sb.WriteString(fmt.Sprintf("  %4d  %s\n", f.Score, f.Path))
		}
		sb.WriteString("\n")
	}

	if len(repo.BuildSystem.Commands) > 0 {
		names := make([]string, 0, len(repo.BuildSystem.Commands))
		for name := range repo.BuildSystem.Commands {
			names = append(names, name)
		}
		sort.Strings(names)
		cmds := make([]string, 0, len(names))
		for _, name := range names {
			cmds = append(cmds, fmt.Sprintf("%s: %s", name, strings.Join(repo.BuildSystem.Commands[name], " && ")))
		}
		writeCapped(&sb, "Commands", cmds)
	}

	if _, ok := repo.OriginalReadme(); ok {
		sb.WriteString("Existing README found\n")
	}

	p.printBox("REPOSITORY ANALYSIS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRunReport outputs the outcome of a pipeline run.
func (p *Printer) PrintRunReport(report *pipeline.RunReport) {
	if report == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("State:    %s\n", report.State))
	sb.WriteString(fmt.Sprintf("Run ID:   %s\n", report.RunID))
	if !report.StartedAt.IsZero() && !report.CompletedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("Duration: %s\n", report.CompletedAt.Sub(report.StartedAt).Round(time.Millisecond)))
	}

	if report.SkipReason != "" {
		sb.WriteString("\n" + report.SkipReason + "\n")
	}
	if len(report.Executed) > 0 {
		sb.WriteString(fmt.Sprintf("\nExecuted: %s\n", joinSteps(report.Executed)))
	}
	if len(report.Failed) > 0 {
		sb.WriteString(fmt.Sprintf("Failed:   %s\n", joinSteps(report.Failed)))
		for _, step := range report.Failed {
			sb.WriteString(fmt.Sprintf("  ⚠ %s\n", report.StepErrors[step]))
		}
	}
	if report.ReadmePath != "" {
		sb.WriteString(fmt.Sprintf("\nREADME:   %s\n", report.ReadmePath))
		if report.FinalizedFrom != 0 {
			sb.WriteString(fmt.Sprintf("From:     step %d\n", report.FinalizedFrom))
		}
	}

	p.printBox("README GENERATION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintAssessment outputs a README quality decision.
func (p *Printer) PrintAssessment(a evaluation.Assessment) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Decision:    %s\n", a.Recommendation()))
	sb.WriteString(fmt.Sprintf("Low quality: %t\n", a.LowQuality))
	if !a.Evaluated {
		sb.WriteString("(no model call: original README missing or trivial)\n")
	}
	if a.Rationale != "" {
		sb.WriteString("\n")
		for _, line := range strings.Split(strings.TrimSpace(a.Rationale), "\n") {
			sb.WriteString(line + "\n")
		}
	}

	p.printBox("README EVALUATION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSteps outputs the step registry with completion markers.
func (p *Printer) PrintSteps(rows []StepRow) {
	var sb strings.Builder
	for _, row := range rows {
		mark := "○"
		if row.Completed {
			mark = "✓"
		}
		sb.WriteString(fmt.Sprintf("%s %d  %-20s %s\n", mark, row.Number, row.Name, row.Category))
	}

	p.printBox("PIPELINE STEPS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRuns outputs recorded run history, most recent first.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintRuns(runs []db.Run) {
	if len(runs) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "NO RECORDED RUNS")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	for i, run := range runs {
		sb.WriteString(fmt.Sprintf("%s  %s\n", run.StartedAt.Format("2006-01-02 15:04"), run.RepoName))
		sb.WriteString(fmt.Sprintf("  %s", run.Status))
		if len(run.FailedSteps) > 0 {
			sb.WriteString(fmt.Sprintf(" (failed: %s)", joinSteps(run.FailedSteps)))
		}
		if run.Model != "" {
			sb.WriteString(fmt.Sprintf("  %s", run.Model))
		}
		sb.WriteString("\n")
		if i < len(runs)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("RECENT RUNS", strings.TrimSuffix(sb.String(), "\n"))
}
