package models

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/Preyash-NEU/InsightIQ/pkg/jsonutil"
)

// DataSourceType is the kind of a connected file or database.
type DataSourceType string

const (
	TypeCSV                DataSourceType = "csv"
	TypeExcel              DataSourceType = "excel"
	TypeJSON               DataSourceType = "json"
	TypeParquet            DataSourceType = "parquet"
	TypeTSV                DataSourceType = "tsv"
	TypeGoogleSheets       DataSourceType = "google_sheets"
	TypeAPI                DataSourceType = "api"
	TypeDatabasePostgreSQL DataSourceType = "database_postgresql"
	TypeDatabaseMySQL      DataSourceType = "database_mysql"
	TypeDatabaseSQLite     DataSourceType = "database_sqlite"

	// TypeDatabase is the legacy generic database type still emitted by older records.
	TypeDatabase DataSourceType = "database"
)

var knownTypes = map[DataSourceType]bool{
	TypeCSV:                true,
	TypeExcel:              true,
	TypeJSON:               true,
	TypeParquet:            true,
	TypeTSV:                true,
	TypeGoogleSheets:       true,
	TypeAPI:                true,
	TypeDatabasePostgreSQL: true,
	TypeDatabaseMySQL:      true,
	TypeDatabaseSQLite:     true,
	TypeDatabase:           true,
}

// Valid reports whether t belongs to the closed set of source types.
func (t DataSourceType) Valid() bool {
	return knownTypes[t]
}

// IsDatabase reports whether the source is backed by a relational database.
func (t DataSourceType) IsDatabase() bool {
	return strings.HasPrefix(string(t), string(TypeDatabase))
}

// DatabaseType returns the source type produced by connecting a database of dbType.
func DatabaseType(dbType DBType) DataSourceType {
	return DataSourceType("database_" + string(dbType))
}

// Status is the lifecycle state of a data source.
type Status string

const (
	StatusConnected    Status = "connected"
	StatusSyncing      Status = "syncing"
	StatusProcessing   Status = "processing"
	StatusError        Status = "error"
	StatusDisconnected Status = "disconnected"
)

// InFlight reports whether the server pipeline is still running for the source.
func (s Status) InFlight() bool {
	return s == StatusSyncing || s == StatusProcessing
}

// ColumnInfo describes one column of an ingested source.
type ColumnInfo struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	Nullable     bool   `json:"nullable"`
	OriginalName string `json:"original_name,omitempty"`
}

// DataSource is a connected file or database as reported by the backend.
// QualityScore and QualityLevel are either both set (processing completed) or both nil.
type DataSource struct {
	ID                        uuid.UUID       `json:"id"`
	UserID                    *uuid.UUID      `json:"user_id,omitempty"`
	Name                      string          `json:"name"`
	Type                      DataSourceType  `json:"type"`
	Status                    Status          `json:"status"`
	FilePath                  *string         `json:"file_path,omitempty"`
	RowCount                  *int64          `json:"row_count"`
	FileSize                  *int64          `json:"file_size"`
	ColumnsInfo               []ColumnInfo    `json:"columns_info"`
	QualityScore              *float64        `json:"quality_score"`
	QualityLevel              *string         `json:"quality_level"`
	ColumnMapping             json.RawMessage `json:"column_mapping,omitempty"`
	ColumnStats               json.RawMessage `json:"column_stats,omitempty"`
	ProcessingDurationSeconds *float64        `json:"processing_duration_seconds"`
	LastProcessedAt           *jsonutil.Time  `json:"last_processed_at"`
	CreatedAt                 jsonutil.Time   `json:"created_at"`
	UpdatedAt                 jsonutil.Time   `json:"updated_at"`
	LastSyncedAt              *jsonutil.Time  `json:"last_synced_at,omitempty"`
}

// Processed reports whether the quality pipeline has completed for the source.
func (ds *DataSource) Processed() bool {
	return ds.QualityScore != nil && ds.QualityLevel != nil
}

// CheckQualityInvariant returns an error when only one of score/level is present.
func (ds *DataSource) CheckQualityInvariant() error {
	if (ds.QualityScore == nil) != (ds.QualityLevel == nil) {
		return fmt.Errorf("data source %s: quality_score and quality_level must be set together", ds.ID)
	}
	return nil
}

// Clone returns a deep copy so callers can mutate without touching shared state.
func (ds *DataSource) Clone() *DataSource {
	if ds == nil {
		return nil
	}
	c := *ds
	if ds.ColumnsInfo != nil {
		c.ColumnsInfo = append([]ColumnInfo(nil), ds.ColumnsInfo...)
	}
	if ds.QualityScore != nil {
		v := *ds.QualityScore
		c.QualityScore = &v
	}
	if ds.QualityLevel != nil {
		v := *ds.QualityLevel
		c.QualityLevel = &v
	}
	if ds.UserID != nil {
		v := *ds.UserID
		c.UserID = &v
	}
	if ds.LastProcessedAt != nil {
		v := *ds.LastProcessedAt
		c.LastProcessedAt = &v
	}
	if ds.LastSyncedAt != nil {
		v := *ds.LastSyncedAt
		c.LastSyncedAt = &v
	}
	return &c
}

// NameWithoutExtension is the display name the server assigns when none is given.
func NameWithoutExtension(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// DataSourceUpdate is the body of PUT /data-sources/{id}.
type DataSourceUpdate struct {
	Name   *string `json:"name,omitempty"`
	Status *Status `json:"status,omitempty"`
}

// Apply copies the set fields of u onto ds.
func (u DataSourceUpdate) Apply(ds *DataSource) {
	if u.Name != nil {
		ds.Name = *u.Name
	}
	if u.Status != nil {
		ds.Status = *u.Status
	}
}

// DeleteResult is the body returned by DELETE /data-sources/{id}.
type DeleteResult struct {
	Message string `json:"message"`
}

// DataPreview holds the first rows of a source.
type DataPreview struct {
	Columns     []string                     `json:"columns"`
	Rows        []map[string]json.RawMessage `json:"rows"`
	TotalRows   int64                        `json:"total_rows"`
	PreviewRows int                          `json:"preview_rows"`
	FileType    string                       `json:"file_type,omitempty"`
	TableName   string                       `json:"table_name,omitempty"`
}

// ExcelSheets is the result of the workbook pre-flight request.
type ExcelSheets struct {
	Filename   string   `json:"filename"`
	Sheets     []string `json:"sheets"`
	SheetCount int      `json:"sheet_count"`
}

// ReprocessResult is the body of POST /data-sources/{id}/reprocess.
// A pipeline failure is reported with Success=false on an otherwise successful response.
type ReprocessResult struct {
	Success         bool     `json:"success"`
	QualityScore    *float64 `json:"quality_score,omitempty"`
	QualityLevel    *string  `json:"quality_level,omitempty"`
	DurationSeconds *float64 `json:"duration_seconds,omitempty"`
	Rows            *int64   `json:"rows,omitempty"`
	Error           string   `json:"error,omitempty"`
	ErrorType       string   `json:"error_type,omitempty"`
}

// TableList is the set of tables visible through a database source.
type TableList struct {
	Tables     []string `json:"tables"`
	TableCount int      `json:"table_count"`
}

// TableColumn is one column of a database table.
type TableColumn struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// TableInfo describes a database table.
type TableInfo struct {
	TableName string        `json:"table_name"`
	Columns   []TableColumn `json:"columns"`
	RowCount  int64         `json:"row_count"`
}
