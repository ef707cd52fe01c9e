package joinvalidation

import (
	"fmt"
	"strings"
	"time"

	"censuscli/pkg/contracts/domain"
)

// Narrative renders the human-readable join validation report: a quick
// summary, a tier-specific assessment with remediation steps, and the
// unmatched identifier sample.
func Narrative(report domain.JoinReport, boundaryPath, dataPath string, generated time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Join Validation — Summary Report\n\n")
	fmt.Fprintf(&b, "**Generated:** %s\n\n", generated.Format(time.RFC3339))

	b.WriteString("## Quick Summary\n\n")
	b.WriteString("| Metric | Value |\n|--------|-------|\n")
	fmt.Fprintf(&b, "| Total Boundaries | %d |\n", report.TotalBoundaries)
	fmt.Fprintf(&b, "| Data Records | %d |\n", report.TotalDataRecords)
	fmt.Fprintf(&b, "| Matched | %d |\n", report.MatchedCount)
	fmt.Fprintf(&b, "| Unmatched | %d |\n", report.UnmatchedCount)
	fmt.Fprintf(&b, "| Match Rate | %.2f%% |\n", report.MatchRatePercent)
	fmt.Fprintf(&b, "| Quality Status | **%s** |\n\n", report.MatchQuality)

	b.WriteString("## Assessment\n\n")
	switch report.MatchQuality {
	case domain.MatchQualityPass:
		b.WriteString("### PASS\n\n")
		b.WriteString("The join validation passed with a match rate >= 95%.\n\n")
		b.WriteString("- Boundary units and data records align on normalized keys\n")
		b.WriteString("- Ready to proceed to indicator computation\n\n")
	case domain.MatchQualityReview:
		fmt.Fprintf(&b, "### REVIEW\n\nThe join requires review: match rate %.2f%% (90-95%% range).\n\n", report.MatchRatePercent)
		fmt.Fprintf(&b, "- %d boundary units have no data match\n", report.UnmatchedCount)
		b.WriteString("- Determine whether unmatched units are institutional (non-residential),\n")
		b.WriteString("  missing from the source extract, or key-format misalignments\n\n")
		b.WriteString("**Action required:** document a justification for the unmatched units before proceeding.\n\n")
	default:
		fmt.Fprintf(&b, "### FAIL\n\nThe join failed with a match rate below 90%% (%.2f%%).\n\n", report.MatchRatePercent)
		fmt.Fprintf(&b, "- %d boundary units have no data match\n\n", report.UnmatchedCount)
		b.WriteString("**Action required:**\n\n")
		b.WriteString("1. Verify unit identifier formats (case, whitespace, leading zeros)\n")
		b.WriteString("2. Check that the boundary reference and the data table cover the same extent\n")
		b.WriteString("3. Regenerate normalized keys and re-run the validation\n\n")
	}

	b.WriteString("## Unmatched Units\n\n")
	if report.UnmatchedCount == 0 {
		b.WriteString("No unmatched units.\n")
	} else {
		fmt.Fprintf(&b, "Total unmatched: %d\n\nSample (first %d):\n\n", report.UnmatchedCount, len(report.UnmatchedSample))
		for _, id := range report.UnmatchedSample {
			fmt.Fprintf(&b, "- %s\n", id)
		}
		if report.UnmatchedCount > len(report.UnmatchedSample) {
			fmt.Fprintf(&b, "- ... and %d more\n", report.UnmatchedCount-len(report.UnmatchedSample))
		}
	}

	b.WriteString("\n## Inputs\n\n")
	fmt.Fprintf(&b, "- Boundary reference: %s\n", boundaryPath)
	fmt.Fprintf(&b, "- Data table: %s\n\n", dataPath)
	b.WriteString("Normalization applied to both key spaces: trim whitespace, uppercase,\n")
	b.WriteString("leading zeros preserved (identifiers treated as strings, never integers).\n")

	return b.String()
}
