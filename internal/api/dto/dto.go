package dto

import (
	"fmt"
	"io"
	"mime/multipart"

	"github.com/ethanbaker/api/pkg/api_types"
	"github.com/ethanbaker/mitra/pkg/chat"
)

// ApiResponse represents a standard API response structure
type ApiResponse[T any] struct {
	Status  api_types.StatusType `json:"status"`          // Status message
	Code    int                  `json:"code"`            // Status code
	Message string               `json:"message"`         // Human-readable message
	Data    T                    `json:"data,omitempty"`  // Optional data field for successful responses
	Error   any                  `json:"error,omitempty"` // Optional errors field for error responses
}

// AsGinResponse converts the ApiResponse to a format suitable for Gin framework
func (r ApiResponse[T]) AsGinResponse() (int, any) {
	return r.Code, r
}

// NewSuccessResponse wraps data in a success response
func NewSuccessResponse[T any](message string, data T) ApiResponse[T] {
	return ApiResponse[T]{
		Status:  api_types.StatusSuccess,
		Code:    200,
		Message: message,
		Data:    data,
	}
}

// NewErrorResponse builds an error response. Go errors are flattened to their text
func NewErrorResponse(code int, message string, err any) ApiResponse[any] {
	if e, ok := err.(error); ok {
		err = e.Error()
	}

	return ApiResponse[any]{
		Status:  api_types.StatusError,
		Code:    code,
		Message: message,
		Error:   err,
	}
}

/** Requests */

// QueryRequest is the body of POST /api/query
type QueryRequest struct {
	Text string `json:"text" binding:"required"`
}

/** Responses */

// QueryResponse is returned by POST /api/query
type QueryResponse struct {
	Reply chat.Message  `json:"reply"`
	View  chat.Snapshot `json:"view"`
}

// ReadUpload reads an uploaded multipart file into a file the view can select
func ReadUpload(header *multipart.FileHeader) (chat.File, error) {
	f, err := header.Open()
	if err != nil {
		return chat.File{}, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return chat.File{}, fmt.Errorf("failed to read upload: %w", err)
	}

	return chat.File{Name: header.Filename, Data: data}, nil
}
