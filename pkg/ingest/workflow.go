package ingest

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Preyash-NEU/InsightIQ/pkg/apperrors"
	"github.com/Preyash-NEU/InsightIQ/pkg/client"
	"github.com/Preyash-NEU/InsightIQ/pkg/logging"
	"github.com/Preyash-NEU/InsightIQ/pkg/models"
)

// Uploader sends a file to the backend.
type Uploader interface {
	Upload(ctx context.Context, up client.UploadRequest) (*models.DataSource, error)
}

// Workflow drives the upload dialog. Requests run on the caller's goroutine;
// the state is guarded so a response for a file that has since been replaced
// is discarded.
type Workflow struct {
	uploader Uploader
	lister   SheetLister
	logger   *zap.Logger
	maxBytes int64
	onChange func(State)

	mu    sync.Mutex
	state State
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithMaxFileSize rejects files larger than n bytes before any request. Zero
// disables the check.
func WithMaxFileSize(n int64) Option {
	return func(w *Workflow) {
		w.maxBytes = n
	}
}

// OnChange registers an observer called with every new state.
func OnChange(fn func(State)) Option {
	return func(w *Workflow) {
		w.onChange = fn
	}
}

func NewWorkflow(uploader Uploader, lister SheetLister, logger *zap.Logger, opts ...Option) *Workflow {
	w := &Workflow{
		uploader: uploader,
		lister:   lister,
		logger:   logger.Named("ingest"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// State returns the current snapshot.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *Workflow) update(fn func(State) State) State {
	w.mu.Lock()
	w.state = fn(w.state)
	s := w.state
	w.mu.Unlock()

	if w.onChange != nil {
		w.onChange(s)
	}
	return s
}

// Browse selects a file from disk.
func (w *Workflow) Browse(ctx context.Context, path string) error {
	f, err := LocalFile(path)
	if err != nil {
		return err
	}
	return w.SelectFile(ctx, f)
}

// Drop selects the first of the dropped files.
func (w *Workflow) Drop(ctx context.Context, files []File) error {
	if len(files) == 0 {
		return nil
	}
	return w.SelectFile(ctx, files[0])
}

// SelectFile is the single entry point for a newly chosen file. Workbooks are
// enumerated once before SelectFile returns.
func (w *Workflow) SelectFile(ctx context.Context, f File) error {
	if w.maxBytes > 0 && f.Size > w.maxBytes {
		err := apperrors.NewValidationError("file", "%s is %d bytes; the limit is %d bytes", f.Name, f.Size, w.maxBytes)
		w.update(func(s State) State {
			if s.Uploading {
				return s
			}
			s = s.Clear()
			s.Error = err.Error()
			return s
		})
		return err
	}

	var (
		tok         Token
		needsSheets bool
		selectErr   error
	)
	w.update(func(s State) State {
		var next State
		next, tok, needsSheets, selectErr = s.Select(f)
		return next
	})
	if selectErr != nil {
		return selectErr
	}

	w.logger.Debug("File selected",
		zap.String("filename", f.Name),
		zap.Int64("size", f.Size),
		zap.Bool("workbook", needsSheets))

	if !needsSheets {
		return nil
	}

	sheets, err := w.lister.ListSheets(ctx, f)
	if err != nil {
		w.logger.Warn("Sheet enumeration failed",
			zap.String("filename", f.Name),
			zap.String("error", logging.SanitizeError(err)))
		w.update(func(s State) State { return s.SheetsFailed(tok, "") })
		return fmt.Errorf("failed to list sheets of %s: %w", f.Name, err)
	}
	w.update(func(s State) State { return s.SheetsLoaded(tok, sheets) })
	return nil
}

// ChooseSheet changes the selected sheet of a workbook.
func (w *Workflow) ChooseSheet(name string) error {
	var err error
	w.update(func(s State) State {
		var next State
		next, err = s.ChooseSheet(name)
		return next
	})
	return err
}

// Clear drops the selected file.
func (w *Workflow) Clear() {
	w.update(func(s State) State { return s.Clear() })
}

// Upload sends the selected file. An empty displayName lets the server name
// the source after the file.
func (w *Workflow) Upload(ctx context.Context, displayName string) (*models.DataSource, error) {
	var (
		tok   Token
		begun State
		err   error
	)
	w.update(func(s State) State {
		begun, tok, err = s.BeginUpload()
		return begun
	})
	if err != nil {
		return nil, err
	}

	f := *begun.File
	created, err := w.upload(ctx, f, displayName, begun.SelectedSheet)
	if err != nil {
		msg := UploadErrorMessage
		if detail, ok := client.DetailOf(err); ok {
			msg = detail
		}
		w.logger.Error("Upload failed",
			zap.String("filename", f.Name),
			zap.String("error", logging.SanitizeError(err)))
		w.update(func(s State) State { return s.UploadFailed(tok, msg) })
		return nil, err
	}

	w.logger.Info("Upload complete",
		zap.String("filename", f.Name),
		zap.String("data_source_id", created.ID.String()))
	w.update(func(s State) State { return s.UploadSucceeded(tok, created) })
	return created, nil
}

func (w *Workflow) upload(ctx context.Context, f File, name, sheet string) (*models.DataSource, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", f.Name, err)
	}
	defer rc.Close()

	return w.uploader.Upload(ctx, client.UploadRequest{
		Filename:  f.Name,
		Content:   rc,
		Name:      name,
		SheetName: sheet,
	})
}
