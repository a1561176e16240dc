package ingest

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Preyash-NEU/InsightIQ/pkg/apperrors"
	"github.com/Preyash-NEU/InsightIQ/pkg/client"
	"github.com/Preyash-NEU/InsightIQ/pkg/models"
)

const (
	timeout = time.Second
	tick    = time.Millisecond
)

type mockLister struct {
	mu     sync.Mutex
	calls  []string
	sheets []string
	err    error
}

func (m *mockLister) ListSheets(ctx context.Context, f File) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, f.Name)
	return m.sheets, m.err
}

type uploadCall struct {
	req     client.UploadRequest
	content string
}

type mockUploader struct {
	calls   []uploadCall
	created *models.DataSource
	err     error
}

func (m *mockUploader) Upload(ctx context.Context, up client.UploadRequest) (*models.DataSource, error) {
	body, err := io.ReadAll(up.Content)
	if err != nil {
		return nil, err
	}
	m.calls = append(m.calls, uploadCall{req: up, content: string(body)})
	return m.created, m.err
}

func TestWorkflow_WorkbookEnumeratedOnce(t *testing.T) {
	lister := &mockLister{sheets: []string{"Summary", "Raw"}}
	uploader := &mockUploader{created: &models.DataSource{ID: uuid.New(), Name: "data"}}

	var seen []State
	w := NewWorkflow(uploader, lister, zap.NewNop(), OnChange(func(s State) { seen = append(seen, s) }))

	require.NoError(t, w.SelectFile(context.Background(), BytesFile("data.xlsx", []byte("xlsx-bytes"))))
	assert.Equal(t, []string{"data.xlsx"}, lister.calls)

	// upload was disabled while the enumeration was pending
	require.Len(t, seen, 2)
	assert.True(t, seen[0].LoadingSheets)
	assert.False(t, seen[0].CanUpload())

	s := w.State()
	assert.Equal(t, "Summary", s.SelectedSheet)
	assert.True(t, s.CanUpload())

	require.NoError(t, w.ChooseSheet("Raw"))
	ds, err := w.Upload(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "data", ds.Name)

	require.Len(t, uploader.calls, 1)
	call := uploader.calls[0]
	assert.Equal(t, "data.xlsx", call.req.Filename)
	assert.Equal(t, "Raw", call.req.SheetName)
	assert.Empty(t, call.req.Name)
	assert.Equal(t, "xlsx-bytes", call.content)
	assert.Len(t, lister.calls, 1)
}

func TestWorkflow_NonWorkbookSkipsEnumeration(t *testing.T) {
	lister := &mockLister{}
	uploader := &mockUploader{created: &models.DataSource{ID: uuid.New()}}
	w := NewWorkflow(uploader, lister, zap.NewNop())

	require.NoError(t, w.SelectFile(context.Background(), BytesFile("sales.csv", []byte("a,b"))))
	assert.Empty(t, lister.calls)
	assert.True(t, w.State().CanUpload())

	_, err := w.Upload(context.Background(), "Q1 Sales")
	require.NoError(t, err)
	assert.Equal(t, "Q1 Sales", uploader.calls[0].req.Name)
	assert.Empty(t, uploader.calls[0].req.SheetName)
}

func TestWorkflow_EnumerationFailure(t *testing.T) {
	lister := &mockLister{err: errors.New("corrupt zip")}
	uploader := &mockUploader{}
	w := NewWorkflow(uploader, lister, zap.NewNop())

	err := w.SelectFile(context.Background(), BytesFile("data.xlsx", nil))
	require.Error(t, err)

	s := w.State()
	assert.Equal(t, SheetErrorMessage, s.Error)
	assert.Empty(t, s.SelectedSheet)
	assert.False(t, s.CanUpload())

	_, err = w.Upload(context.Background(), "")
	assert.ErrorIs(t, err, apperrors.ErrUploadDisabled)
	assert.Empty(t, uploader.calls)
}

func TestWorkflow_BrowseAndDropConverge(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("content"), 0o600))

	browseLister := &mockLister{sheets: []string{"S1"}}
	browsed := NewWorkflow(&mockUploader{}, browseLister, zap.NewNop())
	require.NoError(t, browsed.Browse(context.Background(), path))

	f, err := LocalFile(path)
	require.NoError(t, err)
	dropLister := &mockLister{sheets: []string{"S1"}}
	dropped := NewWorkflow(&mockUploader{}, dropLister, zap.NewNop())
	require.NoError(t, dropped.Drop(context.Background(), []File{f}))

	assert.Equal(t, browseLister.calls, dropLister.calls)
	b, d := browsed.State(), dropped.State()
	assert.Equal(t, b.Kind, d.Kind)
	assert.Equal(t, b.SelectedSheet, d.SelectedSheet)
	assert.Equal(t, b.File.Size, d.File.Size)

	require.NoError(t, dropped.Drop(context.Background(), nil))
	assert.Len(t, dropLister.calls, 1)
}

func TestWorkflow_RejectsOversizedFile(t *testing.T) {
	lister := &mockLister{}
	w := NewWorkflow(&mockUploader{}, lister, zap.NewNop(), WithMaxFileSize(4))

	err := w.SelectFile(context.Background(), BytesFile("big.xlsx", []byte("12345")))
	assert.True(t, apperrors.IsValidation(err))
	assert.Empty(t, lister.calls)
	assert.Nil(t, w.State().File)
	assert.NotEmpty(t, w.State().Error)
}

func TestWorkflow_UploadFailureShowsDetail(t *testing.T) {
	uploader := &mockUploader{err: &client.APIError{Status: http.StatusBadRequest, Detail: "Unsupported file type: .docx"}}
	w := NewWorkflow(uploader, &mockLister{}, zap.NewNop())
	require.NoError(t, w.SelectFile(context.Background(), BytesFile("sales.csv", nil)))

	_, err := w.Upload(context.Background(), "")
	require.Error(t, err)
	s := w.State()
	assert.Equal(t, "Unsupported file type: .docx", s.Error)
	assert.True(t, s.CanUpload())

	uploader.err = errors.New("connection reset")
	_, err = w.Upload(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, UploadErrorMessage, w.State().Error)
}

func TestWorkflow_StaleEnumerationAfterFileChange(t *testing.T) {
	release := make(chan struct{})
	lister := &blockingLister{release: release, sheets: []string{"old"}}
	w := NewWorkflow(&mockUploader{}, lister, zap.NewNop())

	done := make(chan error, 1)
	go func() { done <- w.SelectFile(context.Background(), BytesFile("old.xlsx", nil)) }()
	require.Eventually(t, func() bool { return w.State().LoadingSheets }, timeout, tick)

	require.NoError(t, w.SelectFile(context.Background(), BytesFile("new.csv", nil)))
	close(release)
	require.NoError(t, <-done)

	s := w.State()
	assert.Equal(t, "new.csv", s.File.Name)
	assert.False(t, s.IsWorkbook)
	assert.Empty(t, s.Sheets)
	assert.Empty(t, s.SelectedSheet)
}

type blockingLister struct {
	release chan struct{}
	sheets  []string
}

func (b *blockingLister) ListSheets(ctx context.Context, f File) ([]string, error) {
	<-b.release
	return b.sheets, nil
}
