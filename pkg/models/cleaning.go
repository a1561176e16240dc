package models

// CleaningReport is the body of GET /data-sources/{id}/cleaning-report.
type CleaningReport struct {
	StructuralIssues      []string                        `json:"structural_issues"`
	ColumnTransformations []ColumnTransformation          `json:"column_transformations"`
	TypeConversions       OrderedMap[TypeConversion]      `json:"type_conversions"`
	DataCleaning          OrderedMap[ColumnCleaningStats] `json:"data_cleaning"`
	Summary               CleaningSummary                 `json:"summary"`
	Storage               *StorageStats                   `json:"storage,omitempty"`
}

// ColumnTransformation is one header rename applied during normalization.
type ColumnTransformation struct {
	Original   string `json:"original"`
	Normalized string `json:"normalized"`
}

// TypeConversion describes the type detected for a column.
type TypeConversion struct {
	DetectedType      string  `json:"detected_type"`
	SuccessRate       float64 `json:"success_rate"`
	OriginalDtype     string  `json:"original_dtype,omitempty"`
	FinalDtype        string  `json:"final_dtype,omitempty"`
	FailedConversions int64   `json:"failed_conversions,omitempty"`
}

// ColumnCleaningStats describes imputation and outlier handling for a column.
type ColumnCleaningStats struct {
	OriginalNulls     int64  `json:"original_nulls"`
	ImputedNulls      int64  `json:"imputed_nulls"`
	FinalNulls        int64  `json:"final_nulls"`
	ImputationMethod  string `json:"imputation_method"`
	OutliersHandled   int64  `json:"outliers_handled"`
	DuplicatesRemoved int64  `json:"duplicates_removed"`
}

// CleaningSummary totals the cleaning actions.
type CleaningSummary struct {
	RowsRemoved     int64 `json:"rows_removed"`
	ColumnsRemoved  int64 `json:"columns_removed"`
	ValuesImputed   int64 `json:"values_imputed"`
	OutliersHandled int64 `json:"outliers_handled"`
}

// StorageStats compares the original upload with the optimized copy.
type StorageStats struct {
	OriginalSizeBytes       int64   `json:"original_size_bytes"`
	CleanedSizeBytes        int64   `json:"cleaned_size_bytes"`
	CompressionRatioPercent float64 `json:"compression_ratio_percent"`
}
