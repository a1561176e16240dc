package client

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"go.uber.org/zap"

	"github.com/Preyash-NEU/InsightIQ/pkg/models"
)

// UploadRequest is a file to ingest as a new data source.
type UploadRequest struct {
	Filename  string
	Content   io.Reader
	Name      string // optional, the server uses the filename without extension
	SheetName string // optional, workbooks only
}

// Upload sends a file to the backend and returns the created data source.
func (c *Client) Upload(ctx context.Context, up UploadRequest) (*models.DataSource, error) {
	fields := map[string]string{}
	if up.Name != "" {
		fields["name"] = up.Name
	}
	if up.SheetName != "" {
		fields["sheet_name"] = up.SheetName
	}

	c.logger.Info("Uploading file",
		zap.String("filename", up.Filename),
		zap.String("sheet_name", up.SheetName))

	out := &models.DataSource{}
	if err := c.doMultipart(ctx, []string{dataSourcesPath, "upload"}, up.Filename, up.Content, fields, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ExcelSheets asks the backend for the sheet names of a workbook before upload.
func (c *Client) ExcelSheets(ctx context.Context, filename string, content io.Reader) (*models.ExcelSheets, error) {
	out := &models.ExcelSheets{}
	if err := c.doMultipart(ctx, []string{dataSourcesPath, "excel", "sheets"}, filename, content, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

// doMultipart streams a multipart/form-data body with the file under "file"
// followed by the given form fields.
func (c *Client) doMultipart(ctx context.Context, segments []string, filename string, content io.Reader, fields map[string]string, out any) error {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(writeMultipart(mw, filename, content, fields))
	}()

	err := c.do(ctx, request{
		method:      http.MethodPost,
		segments:    segments,
		body:        pr,
		contentType: mw.FormDataContentType(),
	}, out)
	// unblocks the writer if the request ended before the body was drained
	pr.CloseWithError(io.ErrClosedPipe)
	return err
}

func writeMultipart(mw *multipart.Writer, filename string, content io.Reader, fields map[string]string) error {
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return fmt.Errorf("failed to stream %s: %w", filename, err)
	}
	for _, key := range []string{"name", "sheet_name"} {
		if v, ok := fields[key]; ok {
			if err := mw.WriteField(key, v); err != nil {
				return fmt.Errorf("failed to write field %s: %w", key, err)
			}
		}
	}
	return mw.Close()
}
