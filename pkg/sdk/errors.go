package sdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ResponseError is returned when the query service answers with a non-2xx status
type ResponseError struct {
	Method     string
	Path       string
	StatusCode int
	Body       []byte

	// Message is the "error" field of a JSON error body, empty when the body had none
	Message string
}

func newResponseError(method, path string, status int, body []byte) *ResponseError {
	e := &ResponseError{
		Method:     method,
		Path:       path,
		StatusCode: status,
		Body:       body,
	}

	var payload ErrorResponse
	if json.Unmarshal(body, &payload) == nil {
		e.Message = payload.Error
	}

	return e
}

func (e *ResponseError) Error() string {
	detail := e.Message
	if detail == "" {
		detail = strings.TrimSpace(string(e.Body))
	}
	return fmt.Sprintf("[BACKEND]: backend '%s %s' failed: %d: %s", e.Method, e.Path, e.StatusCode, detail)
}

// ErrorMessage extracts the service provided error text from err, if any
func ErrorMessage(err error) (string, bool) {
	var respErr *ResponseError
	if errors.As(err, &respErr) && respErr.Message != "" {
		return respErr.Message, true
	}
	return "", false
}
