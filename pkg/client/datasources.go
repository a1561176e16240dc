package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/Preyash-NEU/InsightIQ/pkg/models"
)

const dataSourcesPath = "data-sources"

// ListDataSources fetches one page of the caller's data sources.
func (c *Client) ListDataSources(ctx context.Context, skip, limit int) ([]*models.DataSource, error) {
	var out []*models.DataSource
	err := c.do(ctx, request{
		method:   http.MethodGet,
		segments: []string{dataSourcesPath},
		query: url.Values{
			"skip":  {strconv.Itoa(skip)},
			"limit": {strconv.Itoa(limit)},
		},
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetDataSource fetches a single data source.
func (c *Client) GetDataSource(ctx context.Context, id uuid.UUID) (*models.DataSource, error) {
	out := &models.DataSource{}
	if err := c.do(ctx, request{
		method:   http.MethodGet,
		segments: []string{dataSourcesPath, id.String()},
	}, out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateDataSource changes a data source's metadata and returns the stored record.
func (c *Client) UpdateDataSource(ctx context.Context, id uuid.UUID, update models.DataSourceUpdate) (*models.DataSource, error) {
	r, err := jsonRequest(http.MethodPut, update, dataSourcesPath, id.String())
	if err != nil {
		return nil, err
	}
	out := &models.DataSource{}
	if err := c.do(ctx, r, out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteDataSource removes a data source and its stored files.
func (c *Client) DeleteDataSource(ctx context.Context, id uuid.UUID) (*models.DeleteResult, error) {
	out := &models.DeleteResult{}
	if err := c.do(ctx, request{
		method:   http.MethodDelete,
		segments: []string{dataSourcesPath, id.String()},
	}, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Preview fetches the first limit rows of a data source.
func (c *Client) Preview(ctx context.Context, id uuid.UUID, limit int) (*models.DataPreview, error) {
	out := &models.DataPreview{}
	if err := c.do(ctx, request{
		method:   http.MethodGet,
		segments: []string{dataSourcesPath, id.String(), "preview"},
		query:    url.Values{"limit": {strconv.Itoa(limit)}},
	}, out); err != nil {
		return nil, err
	}
	return out, nil
}

// QualityReport fetches the quality assessment of a processed data source.
func (c *Client) QualityReport(ctx context.Context, id uuid.UUID) (*models.QualityReport, error) {
	out := &models.QualityReport{}
	if err := c.do(ctx, request{
		method:   http.MethodGet,
		segments: []string{dataSourcesPath, id.String(), "quality"},
	}, out); err != nil {
		return nil, err
	}
	return out, nil
}

// CleaningReport fetches the record of cleaning steps applied to a data source.
func (c *Client) CleaningReport(ctx context.Context, id uuid.UUID) (*models.CleaningReport, error) {
	out := &models.CleaningReport{}
	if err := c.do(ctx, request{
		method:   http.MethodGet,
		segments: []string{dataSourcesPath, id.String(), "cleaning-report"},
	}, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Reprocess reruns the server pipeline for a data source. A pipeline failure
// is reported through the result's Success field, not as an error.
func (c *Client) Reprocess(ctx context.Context, id uuid.UUID) (*models.ReprocessResult, error) {
	out := &models.ReprocessResult{}
	if err := c.do(ctx, request{
		method:   http.MethodPost,
		segments: []string{dataSourcesPath, id.String(), "reprocess"},
	}, out); err != nil {
		return nil, err
	}
	return out, nil
}
