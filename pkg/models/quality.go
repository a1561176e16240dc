package models

// QualityReport is the body of GET /data-sources/{id}/quality.
type QualityReport struct {
	OverallScore float64                   `json:"overall_score"`
	OverallLevel string                    `json:"overall_level"`
	Columns      OrderedMap[ColumnQuality] `json:"columns"`
	DatasetStats DatasetStats              `json:"dataset_stats"`
}

// ColumnQuality holds the per-column quality dimensions, each 0-100.
type ColumnQuality struct {
	Completeness float64  `json:"completeness"`
	Uniqueness   float64  `json:"uniqueness"`
	Consistency  float64  `json:"consistency"`
	Validity     float64  `json:"validity"`
	QualityScore float64  `json:"quality_score"`
	QualityLevel string   `json:"quality_level"`
	Issues       []string `json:"issues"`
}

// DatasetStats are whole-dataset cell counts.
type DatasetStats struct {
	TotalRows           int64    `json:"total_rows"`
	TotalColumns        int64    `json:"total_columns"`
	TotalCells          int64    `json:"total_cells"`
	MissingCells        int64    `json:"missing_cells"`
	CompleteCells       int64    `json:"complete_cells"`
	CompletenessPercent *float64 `json:"completeness_percent,omitempty"`
}
