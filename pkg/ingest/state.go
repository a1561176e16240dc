package ingest

import (
	"slices"

	"github.com/Preyash-NEU/InsightIQ/pkg/apperrors"
	"github.com/Preyash-NEU/InsightIQ/pkg/models"
)

// Messages shown when the backend gives no explanation.
const (
	SheetErrorMessage  = "Could not read Excel file. Make sure it's a valid Excel file."
	NoSheetsMessage    = "No sheets found in Excel file"
	UploadErrorMessage = "Upload failed. Please try again."
)

// Token identifies one outstanding sheet enumeration or upload.
type Token uint64

// State is an immutable snapshot of the upload dialog.
type State struct {
	File *File
	Kind Classification

	// Workbook state, reset whenever the file changes.
	IsWorkbook    bool
	Sheets        []string
	SelectedSheet string
	LoadingSheets bool

	Uploading bool
	Created   *models.DataSource
	Error     string

	Seq Token
}

// Select replaces the chosen file. All workbook state is reset and any
// outstanding enumeration becomes stale. needsSheets reports whether the
// caller must enumerate sheets with the returned token before upload.
func (s State) Select(f File) (next State, tok Token, needsSheets bool, err error) {
	if s.Uploading {
		return s, 0, false, apperrors.ErrOperationInFlight
	}

	kind, err := Classify(f.Name)
	next = State{Seq: s.Seq + 1}
	if err != nil {
		next.Error = err.Error()
		return next, 0, false, err
	}

	next.File = &f
	next.Kind = kind
	next.IsWorkbook = kind.Workbook
	next.LoadingSheets = kind.Workbook
	return next, next.Seq, kind.Workbook, nil
}

// SheetsLoaded applies an enumeration result. The first sheet is selected by
// default; an empty workbook leaves nothing selected.
func (s State) SheetsLoaded(tok Token, sheets []string) State {
	if !s.pendingSheets(tok) {
		return s
	}
	s.LoadingSheets = false
	s.Sheets = slices.Clone(sheets)
	if len(sheets) == 0 {
		s.Error = NoSheetsMessage
		return s
	}
	s.SelectedSheet = sheets[0]
	return s
}

// SheetsFailed records a failed enumeration. No sheet is selected so upload
// stays disabled until another file is chosen.
func (s State) SheetsFailed(tok Token, msg string) State {
	if !s.pendingSheets(tok) {
		return s
	}
	if msg == "" {
		msg = SheetErrorMessage
	}
	s.LoadingSheets = false
	s.Sheets = nil
	s.SelectedSheet = ""
	s.Error = msg
	return s
}

func (s State) pendingSheets(tok Token) bool {
	return s.LoadingSheets && tok == s.Seq
}

// ChooseSheet selects one of the enumerated sheets.
func (s State) ChooseSheet(name string) (State, error) {
	if !s.IsWorkbook || s.LoadingSheets || s.Uploading {
		return s, apperrors.ErrUploadDisabled
	}
	if !slices.Contains(s.Sheets, name) {
		return s, apperrors.NewValidationError("sheet_name", "sheet %q not found in %s", name, s.File.Name)
	}
	s.SelectedSheet = name
	s.Error = ""
	return s, nil
}

// Clear drops the selected file and invalidates outstanding responses.
func (s State) Clear() State {
	if s.Uploading {
		return s
	}
	return State{Seq: s.Seq + 1}
}

// CanUpload reports whether the upload control is enabled.
func (s State) CanUpload() bool {
	if s.File == nil || s.LoadingSheets || s.Uploading {
		return false
	}
	return !s.IsWorkbook || s.SelectedSheet != ""
}

// BeginUpload marks the upload in flight.
func (s State) BeginUpload() (State, Token, error) {
	if s.Uploading {
		return s, 0, apperrors.ErrOperationInFlight
	}
	if !s.CanUpload() {
		return s, 0, apperrors.ErrUploadDisabled
	}
	s.Seq++
	s.Uploading = true
	s.Error = ""
	return s, s.Seq, nil
}

// UploadSucceeded records the created data source.
func (s State) UploadSucceeded(tok Token, created *models.DataSource) State {
	if !s.Uploading || tok != s.Seq {
		return s
	}
	s.Uploading = false
	s.Created = created
	return s
}

// UploadFailed returns to the dialog with msg.
func (s State) UploadFailed(tok Token, msg string) State {
	if !s.Uploading || tok != s.Seq {
		return s
	}
	if msg == "" {
		msg = UploadErrorMessage
	}
	s.Uploading = false
	s.Error = msg
	return s
}
