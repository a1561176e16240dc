// Package report renders a cleaning report as a stand-alone text artifact.
package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Preyash-NEU/InsightIQ/pkg/models"
)

// Section headings in output order. Storage is only emitted when present.
const (
	Title                  = "Data Cleaning Report"
	HeadingStructural      = "=== STRUCTURAL ISSUES FIXED ==="
	HeadingTransformations = "=== COLUMN TRANSFORMATIONS ==="
	HeadingTypeConversions = "=== TYPE CONVERSIONS ==="
	HeadingDataCleaning    = "=== DATA CLEANING APPLIED ==="
	HeadingSummary         = "=== SUMMARY ==="
	HeadingStorage         = "=== STORAGE ==="
	NoStructuralIssues     = "• No structural issues found"
	NoTransformations      = "• No transformations needed"
	NoTypeConversions      = "• No type conversions recorded"
	NoDataCleaning         = "• No cleaning actions applied"
	NotAvailable           = "N/A"
	timestampLayout        = "2006-01-02 15:04:05 MST"
)

// Render produces the report text. Sections always appear in the same order
// and entries keep the order the server sent them in.
func Render(r *models.CleaningReport, source *models.DataSource, generatedAt time.Time) string {
	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	line("%s", Title)
	line("Data Source: %s", source.Name)
	line("Generated: %s", generatedAt.Format(timestampLayout))

	line("")
	line(HeadingStructural)
	if len(r.StructuralIssues) == 0 {
		line(NoStructuralIssues)
	}
	for _, issue := range r.StructuralIssues {
		line("• %s", issue)
	}

	line("")
	line(HeadingTransformations)
	if len(r.ColumnTransformations) == 0 {
		line(NoTransformations)
	}
	for _, t := range r.ColumnTransformations {
		line("• \"%s\" → %s", t.Original, t.Normalized)
	}

	line("")
	line(HeadingTypeConversions)
	if r.TypeConversions.Len() == 0 {
		line(NoTypeConversions)
	}
	for col, conv := range r.TypeConversions.All() {
		line("• %s: %s (%s%% success)", col, conv.DetectedType, number(conv.SuccessRate))
	}

	line("")
	line(HeadingDataCleaning)
	if r.DataCleaning.Len() == 0 {
		line(NoDataCleaning)
	}
	for col, stats := range r.DataCleaning.All() {
		line("• %s: %d values imputed, %d outliers handled", col, stats.ImputedNulls, stats.OutliersHandled)
	}

	line("")
	line(HeadingSummary)
	line("• Rows removed: %d", r.Summary.RowsRemoved)
	line("• Columns removed: %d", r.Summary.ColumnsRemoved)
	line("• Values imputed: %d", r.Summary.ValuesImputed)
	line("• Outliers handled: %d", r.Summary.OutliersHandled)

	if st := r.Storage; st != nil {
		line("")
		line(HeadingStorage)
		line("• Original size: %s", FormatFileSize(st.OriginalSizeBytes))
		line("• Cleaned size: %s", FormatFileSize(st.CleanedSizeBytes))
		line("• Storage compression: %.1f%%", st.CompressionRatioPercent)
	}

	line("")
	b.WriteString("Quality Score: " + QualityScore(source.QualityScore))
	return b.String()
}

// QualityScore formats a score, N/A when the source has not been processed.
func QualityScore(score *float64) string {
	if score == nil {
		return NotAvailable
	}
	return number(*score)
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
