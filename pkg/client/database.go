package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/Preyash-NEU/InsightIQ/pkg/models"
)

// TestConnection asks the backend to open a connection with conn. A failed
// attempt usually arrives as an APIError; callers must still check
// Succeeded on the result.
func (c *Client) TestConnection(ctx context.Context, conn models.DatabaseConnection) (*models.ConnectionTestResult, error) {
	r, err := jsonRequest(http.MethodPost, conn, dataSourcesPath, "database", "test")
	if err != nil {
		return nil, err
	}
	out := &models.ConnectionTestResult{}
	if err := c.do(ctx, r, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ConnectDatabase registers a database as a new data source.
func (c *Client) ConnectDatabase(ctx context.Context, req models.DatabaseConnectRequest) (*models.DataSource, error) {
	r, err := jsonRequest(http.MethodPost, req, dataSourcesPath, "database", "connect")
	if err != nil {
		return nil, err
	}
	out := &models.DataSource{}
	if err := c.do(ctx, r, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListTables lists the tables reachable through a database source.
func (c *Client) ListTables(ctx context.Context, id uuid.UUID) (*models.TableList, error) {
	out := &models.TableList{}
	if err := c.do(ctx, request{
		method:   http.MethodGet,
		segments: []string{dataSourcesPath, "database", id.String(), "tables"},
	}, out); err != nil {
		return nil, err
	}
	return out, nil
}

// TableInfo describes one table of a database source.
func (c *Client) TableInfo(ctx context.Context, id uuid.UUID, table string) (*models.TableInfo, error) {
	out := &models.TableInfo{}
	if err := c.do(ctx, request{
		method:   http.MethodGet,
		segments: []string{dataSourcesPath, "database", id.String(), "tables", table, "info"},
	}, out); err != nil {
		return nil, err
	}
	return out, nil
}

// PreviewTable fetches the first limit rows of a table of a database source.
func (c *Client) PreviewTable(ctx context.Context, id uuid.UUID, table string, limit int) (*models.DataPreview, error) {
	out := &models.DataPreview{}
	if err := c.do(ctx, request{
		method:   http.MethodGet,
		segments: []string{dataSourcesPath, "database", id.String(), "tables", table, "preview"},
		query:    url.Values{"limit": {strconv.Itoa(limit)}},
	}, out); err != nil {
		return nil, err
	}
	return out, nil
}
