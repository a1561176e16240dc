package ingest

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/Preyash-NEU/InsightIQ/pkg/config"
	"github.com/Preyash-NEU/InsightIQ/pkg/models"
)

func buildWorkbook(t *testing.T, sheets ...string) []byte {
	t.Helper()
	wb := excelize.NewFile()
	defer wb.Close()

	require.NoError(t, wb.SetSheetName("Sheet1", sheets[0]))
	for _, name := range sheets[1:] {
		_, err := wb.NewSheet(name)
		require.NoError(t, err)
	}
	buf, err := wb.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestWorkbookLister_ListsSheetsInOrder(t *testing.T) {
	data := buildWorkbook(t, "Summary", "Raw", "Lookup")
	lister := NewWorkbookLister(zap.NewNop())

	sheets, err := lister.ListSheets(context.Background(), BytesFile("data.xlsx", data))
	require.NoError(t, err)
	assert.Equal(t, []string{"Summary", "Raw", "Lookup"}, sheets)
}

func TestWorkbookLister_Errors(t *testing.T) {
	lister := NewWorkbookLister(zap.NewNop())

	_, err := lister.ListSheets(context.Background(), BytesFile("legacy.xls", []byte("biff")))
	assert.Error(t, err)

	_, err = lister.ListSheets(context.Background(), BytesFile("broken.xlsx", []byte("not a zip")))
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = lister.ListSheets(ctx, BytesFile("data.xlsx", buildWorkbook(t, "S")))
	assert.ErrorIs(t, err, context.Canceled)
}

type mockSheetsClient struct {
	filename string
	content  string
	res      *models.ExcelSheets
	err      error
}

func (m *mockSheetsClient) ExcelSheets(ctx context.Context, filename string, content io.Reader) (*models.ExcelSheets, error) {
	m.filename = filename
	b, _ := io.ReadAll(content)
	m.content = string(b)
	return m.res, m.err
}

func TestRemoteLister(t *testing.T) {
	c := &mockSheetsClient{res: &models.ExcelSheets{Filename: "data.xlsx", Sheets: []string{"A", "B"}, SheetCount: 2}}
	lister := NewRemoteLister(c)

	sheets, err := lister.ListSheets(context.Background(), BytesFile("data.xlsx", []byte("payload")))
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, sheets)
	assert.Equal(t, "data.xlsx", c.filename)
	assert.Equal(t, "payload", c.content)

	c.err = errors.New("boom")
	_, err = lister.ListSheets(context.Background(), BytesFile("data.xlsx", nil))
	assert.Error(t, err)
}

func TestNewSheetLister(t *testing.T) {
	l, err := NewSheetLister(config.SheetDiscoveryRemote, &mockSheetsClient{}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &RemoteLister{}, l)

	l, err = NewSheetLister(config.SheetDiscoveryLocal, nil, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &WorkbookLister{}, l)

	_, err = NewSheetLister("ftp", nil, zap.NewNop())
	assert.Error(t, err)
}
