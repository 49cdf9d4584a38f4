package sdk

import (
	"context"
	"io"
	"net/http"
)

const (
	QueryPath      = "/query"
	ProcessCSVPath = "/process-csv"

	// FileField is the multipart field the CSV is uploaded under
	FileField = "file"
)

// Query sends free text to the service and returns its answer
func (c *Client) Query(ctx context.Context, text string) (*QueryResponse, error) {
	var out QueryResponse
	if err := c.doJSON(ctx, http.MethodPost, QueryPath, &QueryRequest{Text: text}, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

// ProcessCSV uploads a CSV file and returns one result per processed row
func (c *Client) ProcessCSV(ctx context.Context, filename string, file io.Reader) (*BatchResponse, error) {
	var out BatchResponse
	if err := c.doMultipart(ctx, ProcessCSVPath, FileField, filename, file, &out); err != nil {
		return nil, err
	}

	return &out, nil
}
