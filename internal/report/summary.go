// =============================================================================
// Smart Invoice Validator - Findings Report
// =============================================================================
//
// Pure reduction over an issue log into counts by severity, category and
// fix state, plus a plain-text findings rendering used by the CLI and the
// per-file findings bundle. The summarizer defines the statistics contract
// other components (and downstream tooling) depend on.
//
// =============================================================================

package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/zedtax/invoice-validator/internal/types"
)

// Summary aggregates an issue log. All counts are zero for an empty log.
type Summary struct {
	// Total is the number of issues.
	Total int

	// Errors, Warnings and Infos count issues by severity.
	Errors   int
	Warnings int
	Infos    int

	// AutoFixed counts issues whose correction is already in FixedData.
	AutoFixed int

	// ManualReview counts issues that still need a human.
	ManualReview int

	// ByCategory maps rule category to issue count.
	ByCategory map[types.Category]int

	// AutoFixRate is the percentage of issues fixed automatically,
	// 0 when the log is empty.
	AutoFixRate float64
}

// Summarize reduces an issue log to its summary. Safe for an empty or nil
// log.
func Summarize(issues []types.Issue) *Summary {
	summary := &Summary{ByCategory: make(map[types.Category]int)}

	for _, issue := range issues {
		summary.Total++
		summary.ByCategory[issue.Category]++

		switch issue.Severity {
		case types.SeverityError:
			summary.Errors++
		case types.SeverityWarning:
			summary.Warnings++
		case types.SeverityInfo:
			summary.Infos++
		}

		if issue.AutoFixed {
			summary.AutoFixed++
		} else {
			summary.ManualReview++
		}
	}

	if summary.Total > 0 {
		summary.AutoFixRate = 100 * float64(summary.AutoFixed) / float64(summary.Total)
	}
	return summary
}

// =============================================================================
// TEXT RENDERING
// =============================================================================

// Render produces the plain-text findings report for one processed file.
// runID and fileName identify the run in archived bundles.
func Render(result *types.Result, fileName, kind, runID string) string {
	summary := Summarize(result.Issues)

	var b strings.Builder
	b.WriteString("=== Invoice Validation Findings ===\n")
	fmt.Fprintf(&b, "File:      %s (%s)\n", fileName, kind)
	fmt.Fprintf(&b, "Run:       %s\n", runID)
	fmt.Fprintf(&b, "Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(&b, "Valid:     %t\n\n", result.IsValid)

	fmt.Fprintf(&b, "Issues:    %d total (%d error, %d warning, %d info)\n",
		summary.Total, summary.Errors, summary.Warnings, summary.Infos)
	fmt.Fprintf(&b, "Auto-fixed: %d (%.1f%%), manual review: %d\n",
		summary.AutoFixed, summary.AutoFixRate, summary.ManualReview)

	if len(summary.ByCategory) > 0 {
		b.WriteString("\nBy category:\n")
		for _, category := range sortedCategories(summary.ByCategory) {
			fmt.Fprintf(&b, "  %-10s %d\n", category, summary.ByCategory[category])
		}
	}

	if summary.Total > 0 {
		b.WriteString("\nFindings:\n")
		for i, issue := range result.Issues {
			fmt.Fprintf(&b, "%3d. %s\n", i+1, issue.String())
		}
	} else {
		b.WriteString("\nNo findings. The file is submission-ready as-is.\n")
	}

	return b.String()
}

// sortedCategories returns the category keys in stable alphabetical order.
func sortedCategories(byCategory map[types.Category]int) []types.Category {
	categories := make([]types.Category, 0, len(byCategory))
	for category := range byCategory {
		categories = append(categories, category)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })
	return categories
}
