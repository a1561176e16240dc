package ingest

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/Preyash-NEU/InsightIQ/pkg/config"
	"github.com/Preyash-NEU/InsightIQ/pkg/models"
)

// SheetLister enumerates the sheets of a workbook before upload.
type SheetLister interface {
	ListSheets(ctx context.Context, f File) ([]string, error)
}

// SheetsClient is the backend call behind RemoteLister.
type SheetsClient interface {
	ExcelSheets(ctx context.Context, filename string, content io.Reader) (*models.ExcelSheets, error)
}

// RemoteLister asks the backend to read the workbook.
type RemoteLister struct {
	client SheetsClient
}

func NewRemoteLister(client SheetsClient) *RemoteLister {
	return &RemoteLister{client: client}
}

func (l *RemoteLister) ListSheets(ctx context.Context, f File) ([]string, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", f.Name, err)
	}
	defer rc.Close()

	res, err := l.client.ExcelSheets(ctx, f.Name, rc)
	if err != nil {
		return nil, err
	}
	return res.Sheets, nil
}

// WorkbookLister reads sheet names locally with excelize. Only the OOXML
// formats are readable; legacy .xls workbooks need the backend.
type WorkbookLister struct {
	logger *zap.Logger
}

func NewWorkbookLister(logger *zap.Logger) *WorkbookLister {
	return &WorkbookLister{logger: logger.Named("workbook")}
}

func (l *WorkbookLister) ListSheets(ctx context.Context, f File) ([]string, error) {
	kind, err := Classify(f.Name)
	if err != nil {
		return nil, err
	}
	if kind.Extension == ".xls" {
		return nil, fmt.Errorf("local sheet discovery cannot read legacy .xls workbooks; use remote discovery")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", f.Name, err)
	}
	defer rc.Close()

	wb, err := excelize.OpenReader(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	l.logger.Debug("Read workbook sheets",
		zap.String("filename", f.Name),
		zap.Int("sheet_count", len(sheets)))
	return sheets, nil
}

// NewSheetLister picks the lister configured by ingest.sheet_discovery.
func NewSheetLister(mode string, client SheetsClient, logger *zap.Logger) (SheetLister, error) {
	switch mode {
	case config.SheetDiscoveryRemote, "":
		return NewRemoteLister(client), nil
	case config.SheetDiscoveryLocal:
		return NewWorkbookLister(logger), nil
	default:
		return nil, fmt.Errorf("unknown sheet discovery mode %q", mode)
	}
}
