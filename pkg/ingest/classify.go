// Package ingest implements the file upload workflow: classifying a chosen
// file, discovering the sheets of a workbook before upload, and sending it to
// the backend.
package ingest

import (
	"path/filepath"
	"strings"

	"github.com/Preyash-NEU/InsightIQ/pkg/apperrors"
	"github.com/Preyash-NEU/InsightIQ/pkg/models"
)

// Classification is what the extension of a file says about its content.
type Classification struct {
	Extension string
	Type      models.DataSourceType
	Workbook  bool
}

var extensions = map[string]models.DataSourceType{
	".csv":     models.TypeCSV,
	".xlsx":    models.TypeExcel,
	".xls":     models.TypeExcel,
	".json":    models.TypeJSON,
	".parquet": models.TypeParquet,
	".tsv":     models.TypeTSV,
	".txt":     models.TypeTSV,
}

// SupportedExtensions is the file picker filter, in display order.
var SupportedExtensions = []string{".csv", ".xlsx", ".xls", ".json", ".parquet", ".tsv", ".txt"}

// Classify maps a filename to its source type. Matching is case-insensitive.
func Classify(filename string) (Classification, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	t, ok := extensions[ext]
	if !ok {
		if ext == "" {
			return Classification{}, apperrors.NewValidationError("file", "%q has no file extension; supported: %s",
				filepath.Base(filename), strings.Join(SupportedExtensions, ", "))
		}
		return Classification{}, apperrors.NewValidationError("file", "unsupported file type %s; supported: %s",
			ext, strings.Join(SupportedExtensions, ", "))
	}
	return Classification{Extension: ext, Type: t, Workbook: t == models.TypeExcel}, nil
}
