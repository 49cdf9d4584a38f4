package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethanbaker/mitra/pkg/chat"
	"github.com/ethanbaker/mitra/pkg/sdk"
	"github.com/ethanbaker/mitra/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBackend struct {
	queries  []string
	files    map[string]string
	reply    *sdk.QueryResponse
	queryErr error
	batch    *sdk.BatchResponse
	batchErr error
}

func (s *stubBackend) Query(_ context.Context, text string) (*sdk.QueryResponse, error) {
	s.queries = append(s.queries, text)
	return s.reply, s.queryErr
}

func (s *stubBackend) ProcessCSV(_ context.Context, filename string, file io.Reader) (*sdk.BatchResponse, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	if s.files == nil {
		s.files = map[string]string{}
	}
	s.files[filename] = string(data)
	return s.batch, s.batchErr
}

func runSession(t *testing.T, backend *stubBackend, batchEnabled bool, input string) (string, *chat.View) {
	t.Helper()

	view := chat.NewView(backend, chat.Options{
		Greeting:     utils.DefaultGreeting,
		BatchEnabled: batchEnabled,
	})

	var out bytes.Buffer
	err := startInteractiveSession(context.Background(), strings.NewReader(input), &out, utils.DefaultBranding(), view)
	require.NoError(t, err)

	return out.String(), view
}

func writeCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "queries.csv")
	require.NoError(t, os.WriteFile(path, []byte("query\nHow do I invest?\n"), 0600))
	return path
}

func TestSessionQuery(t *testing.T) {
	t.Run("prints the greeting and the reply", func(t *testing.T) {
		backend := &stubBackend{reply: &sdk.QueryResponse{Response: "Start with a SIP"}}

		out, view := runSession(t, backend, true, "How do I invest?\nexit\n")

		assert.Contains(t, out, "LenDen Mitra started.")
		assert.Contains(t, out, "Assistant: "+utils.DefaultGreeting)
		assert.Contains(t, out, "Assistant: Start with a SIP")
		assert.Equal(t, []string{"How do I invest?"}, backend.queries)
		assert.Len(t, view.Transcript(), 3)
	})

	t.Run("blank lines are skipped", func(t *testing.T) {
		backend := &stubBackend{}

		_, view := runSession(t, backend, true, "\n   \n")

		assert.Empty(t, backend.queries)
		assert.Len(t, view.Transcript(), 1)
	})

	t.Run("failures print the error reply", func(t *testing.T) {
		backend := &stubBackend{queryErr: errors.New("connection refused")}

		out, _ := runSession(t, backend, true, "hello\n")

		assert.Contains(t, out, "Assistant: "+chat.ErrorReply)
	})

	t.Run("missing response prints the fallback", func(t *testing.T) {
		backend := &stubBackend{reply: &sdk.QueryResponse{}}

		out, _ := runSession(t, backend, true, "hello\n")

		assert.Contains(t, out, "Assistant: "+chat.FallbackReply)
	})

	t.Run("exit stops reading", func(t *testing.T) {
		backend := &stubBackend{reply: &sdk.QueryResponse{Response: "ok"}}

		runSession(t, backend, true, "exit\nhello\n")

		assert.Empty(t, backend.queries)
	})
}

func TestSessionCommands(t *testing.T) {
	t.Run("upload prints the results", func(t *testing.T) {
		backend := &stubBackend{batch: &sdk.BatchResponse{Results: []sdk.QueryResult{
			{Query: "How do I invest?", Response: "Start with a SIP", Source: "faq", Confidence: 0.85},
		}}}
		path := writeCSV(t)

		out, view := runSession(t, backend, true, "/upload "+path+"\n/results\n")

		assert.Equal(t, "query\nHow do I invest?\n", backend.files["queries.csv"])
		assert.Contains(t, out, "Processing queries.csv...")
		assert.Equal(t, 2, strings.Count(out, "1. Query: How do I invest?"))
		assert.Contains(t, out, "Source: faq | Confidence: 85%")
		assert.Len(t, view.Snapshot().Results, 1)
	})

	t.Run("upload failure prints the service error", func(t *testing.T) {
		backend := &stubBackend{batchErr: &sdk.ResponseError{StatusCode: 422, Message: "Missing query column"}}

		out, _ := runSession(t, backend, true, "/upload "+writeCSV(t)+"\n")

		assert.Contains(t, out, "Error: Missing query column")
	})

	t.Run("upload failure without a message prints the fixed text", func(t *testing.T) {
		backend := &stubBackend{batchErr: errors.New("connection reset")}

		out, _ := runSession(t, backend, true, "/upload "+writeCSV(t)+"\n")

		assert.Contains(t, out, "Error: "+chat.BatchErrorMessage)
	})

	t.Run("upload without a path prints usage", func(t *testing.T) {
		backend := &stubBackend{}

		out, _ := runSession(t, backend, true, "/upload\n")

		assert.Contains(t, out, "Usage: /upload <path>")
		assert.Empty(t, backend.files)
	})

	t.Run("upload is refused when disabled", func(t *testing.T) {
		backend := &stubBackend{}

		out, _ := runSession(t, backend, false, "/upload "+writeCSV(t)+"\n")

		assert.Contains(t, out, "CSV uploads are disabled")
		assert.Empty(t, backend.files)
	})

	t.Run("results before any upload", func(t *testing.T) {
		out, _ := runSession(t, &stubBackend{}, true, "/results\n")

		assert.Contains(t, out, "No results")
	})

	t.Run("history lists the transcript", func(t *testing.T) {
		backend := &stubBackend{reply: &sdk.QueryResponse{Response: "Hi there"}}

		out, _ := runSession(t, backend, true, "hello\n/history\n")

		assert.Contains(t, out, "Assistant: "+utils.DefaultGreeting)
		assert.Contains(t, out, "You: hello")
		assert.Contains(t, out, "Assistant: Hi there")
	})
}
