package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Preyash-NEU/InsightIQ/pkg/models"
)

func TestFormatFileSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{-1, "0 B"},
		{512, "512.00 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{5 * 1024 * 1024, "5.00 MB"},
		{3 * 1024 * 1024 * 1024, "3.00 GB"},
		{2048 * 1024 * 1024 * 1024, "2048.00 GB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatFileSize(tt.bytes), "%d bytes", tt.bytes)
	}
}

func TestFormatDuration(t *testing.T) {
	d := func(v float64) *float64 { return &v }

	assert.Equal(t, "-", FormatDuration(nil))
	assert.Equal(t, "-", FormatDuration(d(0)))
	assert.Equal(t, "250ms", FormatDuration(d(0.25)))
	assert.Equal(t, "1.5s", FormatDuration(d(1.5)))
	assert.Equal(t, "59.0s", FormatDuration(d(59)))
	assert.Equal(t, "2m 5s", FormatDuration(d(125.7)))
}

func TestFilename(t *testing.T) {
	ts := time.UnixMilli(1709649000123)

	assert.Equal(t, "cleaning_report_orders_1709649000123.txt", Filename("orders", ts))
	assert.Equal(t, "cleaning_report_Q1 Sales_1709649000123.txt", Filename("Q1 Sales", ts))
	assert.Equal(t, "cleaning_report_.._etc_passwd_1709649000123.txt", Filename("../etc/passwd", ts))
	assert.Equal(t, "cleaning_report_data_source_1709649000123.txt", Filename("  ", ts))

	name := Filename(`a\b:c`, ts)
	assert.NotContains(t, name, `\`)
	assert.NotContains(t, name, "/")
}

func TestSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	now := time.UnixMilli(1709649000123).UTC()
	src := &models.DataSource{Name: "orders"}

	path, err := Save(dir, &models.CleaningReport{StructuralIssues: []string{"Trimmed whitespace"}}, src, now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "cleaning_report_orders_1709649000123.txt"), path)

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(body), Title+"\n"))
	assert.Contains(t, string(body), "• Trimmed whitespace")
	assert.True(t, strings.HasSuffix(string(body), "Quality Score: N/A\n"))
}
