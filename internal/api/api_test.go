package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/ethanbaker/mitra/internal/api/middleware"
	"github.com/ethanbaker/mitra/internal/stores/archive"
	"github.com/ethanbaker/mitra/pkg/chat"
	"github.com/ethanbaker/mitra/pkg/sdk"
	"github.com/ethanbaker/mitra/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubBackend answers every call with the configured values
type stubBackend struct {
	reply    string
	queryErr error
	results  []sdk.QueryResult
	batchErr error
	uploads  int
	lastFile string

	// release, when set, holds queries until it is closed
	release chan struct{}
}

func (s *stubBackend) Query(ctx context.Context, text string) (*sdk.QueryResponse, error) {
	if s.release != nil {
		<-s.release
	}
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	return &sdk.QueryResponse{Response: s.reply}, nil
}

func (s *stubBackend) ProcessCSV(ctx context.Context, filename string, file io.Reader) (*sdk.BatchResponse, error) {
	s.uploads++
	s.lastFile = filename
	if s.batchErr != nil {
		return nil, s.batchErr
	}
	return &sdk.BatchResponse{Results: s.results}, nil
}

// envelope mirrors dto.ApiResponse with raw data for decoding in tests
type envelope struct {
	Status  string          `json:"status"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   any             `json:"error"`
}

func newTestServer(t *testing.T, values map[string]string, opts Options) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	if opts.Branding.Title == "" {
		opts.Branding = utils.DefaultBranding()
	}

	server, err := NewServer(utils.NewConfig(values), opts)
	require.NoError(t, err)
	return server
}

func newTestEngine(t *testing.T, values map[string]string, opts Options) *gin.Engine {
	t.Helper()
	return newTestServer(t, values, opts).Engine
}

func serve(engine *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, data any) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	if data != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func jsonRequest(method, path, body, viewID string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if viewID != "" {
		req.Header.Set(middleware.ViewHeader, viewID)
	}
	return req
}

func uploadRequest(t *testing.T, path, filename, content, viewID string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if filename != "" {
		part, err := writer.CreateFormFile(sdk.FileField, filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if viewID != "" {
		req.Header.Set(middleware.ViewHeader, viewID)
	}
	return req
}

func TestHealth(t *testing.T) {
	engine := newTestEngine(t, nil, Options{Backend: &stubBackend{}})

	rec := serve(engine, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Health does not create a view, the view routes do
	serve(engine, jsonRequest(http.MethodGet, "/api/view", "", ""))

	rec = serve(engine, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var status struct {
		Views int `json:"views"`
	}
	decode(t, rec, &status)
	assert.Equal(t, 1, status.Views)
}

func TestQueryRoutes(t *testing.T) {
	backend := &stubBackend{reply: "hi"}
	engine := newTestEngine(t, nil, Options{Backend: backend})

	t.Run("new view is created and answered", func(t *testing.T) {
		rec := serve(engine, jsonRequest(http.MethodPost, "/api/query", `{"text":"hello"}`, ""))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		viewID := rec.Header().Get(middleware.ViewHeader)
		require.NotEmpty(t, viewID)

		var resp struct {
			Reply chat.Message  `json:"reply"`
			View  chat.Snapshot `json:"view"`
		}
		decode(t, rec, &resp)
		assert.Equal(t, "hi", resp.Reply.Content)
		assert.Equal(t, chat.RoleAssistant, resp.Reply.Role)
		require.Len(t, resp.View.Transcript, 3)
		assert.Equal(t, utils.DefaultGreeting, resp.View.Transcript[0].Content)
		assert.Equal(t, chat.Succeeded, resp.View.Query)

		// Same view on the next request
		rec = serve(engine, jsonRequest(http.MethodGet, "/api/view", "", viewID))
		require.Equal(t, http.StatusOK, rec.Code)

		var snap chat.Snapshot
		decode(t, rec, &snap)
		assert.Len(t, snap.Transcript, 3)
		assert.True(t, snap.BatchEnabled)
	})

	t.Run("whitespace input is rejected", func(t *testing.T) {
		rec := serve(engine, jsonRequest(http.MethodPost, "/api/query", `{"text":"   "}`, ""))
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = serve(engine, jsonRequest(http.MethodPost, "/api/query", `{}`, ""))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("service failure becomes the reply", func(t *testing.T) {
		failing := newTestEngine(t, nil, Options{Backend: &stubBackend{queryErr: errors.New("connection refused")}})

		rec := serve(failing, jsonRequest(http.MethodPost, "/api/query", `{"text":"hello"}`, ""))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Reply chat.Message `json:"reply"`
		}
		decode(t, rec, &resp)
		assert.Equal(t, chat.ErrorReply, resp.Reply.Content)
	})
}

func TestBatchRoutes(t *testing.T) {
	t.Run("no file performs no request", func(t *testing.T) {
		backend := &stubBackend{}
		engine := newTestEngine(t, nil, Options{Backend: backend})

		rec := serve(engine, uploadRequest(t, "/api/batch", "", "", ""))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Zero(t, backend.uploads)
	})

	t.Run("success then failure keeps results", func(t *testing.T) {
		want := []sdk.QueryResult{{Query: "q1", Response: "a1", Source: "s", Confidence: 0.9}}
		backend := &stubBackend{results: want}
		engine := newTestEngine(t, nil, Options{Backend: backend})

		rec := serve(engine, uploadRequest(t, "/api/batch", "questions.csv", "query\nq1\n", ""))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		viewID := rec.Header().Get(middleware.ViewHeader)

		var snap chat.Snapshot
		decode(t, rec, &snap)
		assert.Equal(t, want, snap.Results)
		assert.Equal(t, "questions.csv", snap.FileName)
		assert.Equal(t, "questions.csv", backend.lastFile)

		// Re-upload the selected file, this time failing
		backend.batchErr = &sdk.ResponseError{StatusCode: http.StatusBadRequest, Message: "bad file"}
		rec = serve(engine, uploadRequest(t, "/api/batch", "", "", viewID))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		decode(t, rec, &snap)
		assert.Equal(t, "bad file", snap.BatchError)
		assert.Equal(t, want, snap.Results)
		assert.Equal(t, chat.Failed, snap.Batch)
		assert.Equal(t, 2, backend.uploads)

		rec = serve(engine, jsonRequest(http.MethodDelete, "/api/batch/error", "", viewID))
		require.Equal(t, http.StatusOK, rec.Code)
		snap = chat.Snapshot{}
		decode(t, rec, &snap)
		assert.Empty(t, snap.BatchError)
	})

	t.Run("disabled", func(t *testing.T) {
		backend := &stubBackend{}
		engine := newTestEngine(t, map[string]string{"BATCH_ENABLED": "false"}, Options{Backend: backend})

		rec := serve(engine, uploadRequest(t, "/api/batch", "questions.csv", "query\n", ""))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Zero(t, backend.uploads)
	})
}

func TestPageRoutes(t *testing.T) {
	backend := &stubBackend{reply: "Your balance is 42", results: []sdk.QueryResult{{Query: "q1", Response: "a1", Source: "faq.md", Confidence: 0.9}}}
	branding := utils.Branding{Title: "Mitra Test", Greeting: "Welcome in!", Placeholder: "Ask..."}
	engine := newTestEngine(t, nil, Options{Backend: backend, Branding: branding})

	rec := serve(engine, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Mitra Test")
	assert.Contains(t, rec.Body.String(), "Welcome in!")

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	form := url.Values{"text": {"what is my balance?"}}
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rec = serve(engine, req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	upload := uploadRequest(t, "/upload", "questions.csv", "query\nq1\n", "")
	for _, cookie := range cookies {
		upload.AddCookie(cookie)
	}
	rec = serve(engine, upload)
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rec = serve(engine, req)
	body := rec.Body.String()
	assert.Contains(t, body, "what is my balance?")
	assert.Contains(t, body, "Your balance is 42")
	assert.Contains(t, body, "faq.md")
	assert.Contains(t, body, "90%")
}

func TestArchiveRestoresViews(t *testing.T) {
	store := archive.NewInMemoryStore()
	opts := Options{Backend: &stubBackend{reply: "hi"}, Archive: store}

	first := newTestEngine(t, nil, opts)
	rec := serve(first, jsonRequest(http.MethodPost, "/api/query", `{"text":"hello"}`, ""))
	require.Equal(t, http.StatusOK, rec.Code)
	viewID := rec.Header().Get(middleware.ViewHeader)

	// A fresh engine, as after a restart, shares only the archive
	second := newTestEngine(t, nil, opts)
	rec = serve(second, jsonRequest(http.MethodGet, "/api/view", "", viewID))
	require.Equal(t, http.StatusOK, rec.Code)

	var snap chat.Snapshot
	decode(t, rec, &snap)
	require.Len(t, snap.Transcript, 3)
	assert.Equal(t, "hello", snap.Transcript[1].Content)
	assert.Equal(t, "hi", snap.Transcript[2].Content)
}

func TestResetView(t *testing.T) {
	store := archive.NewInMemoryStore()
	engine := newTestEngine(t, nil, Options{Backend: &stubBackend{reply: "hi"}, Archive: store})

	rec := serve(engine, jsonRequest(http.MethodPost, "/api/query", `{"text":"hello"}`, ""))
	require.Equal(t, http.StatusOK, rec.Code)
	viewID := rec.Header().Get(middleware.ViewHeader)

	rec = serve(engine, jsonRequest(http.MethodDelete, "/api/view", "", viewID))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, viewID, rec.Header().Get(middleware.ViewHeader))

	var snap chat.Snapshot
	decode(t, rec, &snap)
	require.Len(t, snap.Transcript, 1)
	assert.Equal(t, utils.DefaultGreeting, snap.Transcript[0].Content)

	// The fresh greeting is not archived until the conversation starts again
	archived, err := store.GetMessages(context.Background(), uuid.MustParse(viewID))
	require.NoError(t, err)
	assert.Empty(t, archived)

	rec = serve(engine, jsonRequest(http.MethodPost, "/api/query", `{"text":"again"}`, viewID))
	require.Equal(t, http.StatusOK, rec.Code)

	archived, err = store.GetMessages(context.Background(), uuid.MustParse(viewID))
	require.NoError(t, err)
	require.Len(t, archived, 3)
	assert.Equal(t, snap.Transcript[0].ID, archived[0].ID)
	assert.Equal(t, "again", archived[1].Content)
}

func TestResetDuringPendingQuery(t *testing.T) {
	store := archive.NewInMemoryStore()
	backend := &stubBackend{reply: "late reply", release: make(chan struct{})}
	opts := Options{Backend: backend, Archive: store}
	server := newTestServer(t, nil, opts)

	rec := serve(server.Engine, jsonRequest(http.MethodGet, "/api/view", "", ""))
	require.Equal(t, http.StatusOK, rec.Code)
	viewID := rec.Header().Get(middleware.ViewHeader)
	id := uuid.MustParse(viewID)

	done := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		done <- serve(server.Engine, jsonRequest(http.MethodPost, "/api/query", `{"text":"hello"}`, viewID))
	}()

	require.Eventually(t, func() bool {
		view, ok := server.Views.Get(id)
		return ok && view.Busy()
	}, 5*time.Second, 5*time.Millisecond)

	rec = serve(server.Engine, jsonRequest(http.MethodDelete, "/api/view", "", viewID))
	require.Equal(t, http.StatusOK, rec.Code)

	close(backend.release)
	rec = <-done
	require.Equal(t, http.StatusOK, rec.Code)

	// The reply reaches the caller but not the archive of the replacement view
	archived, err := store.GetMessages(context.Background(), id)
	require.NoError(t, err)
	assert.Empty(t, archived)

	restarted := newTestEngine(t, nil, opts)
	rec = serve(restarted, jsonRequest(http.MethodGet, "/api/view", "", viewID))
	require.Equal(t, http.StatusOK, rec.Code)

	var snap chat.Snapshot
	decode(t, rec, &snap)
	require.Len(t, snap.Transcript, 1)
	assert.Equal(t, chat.RoleAssistant, snap.Transcript[0].Role)
	assert.Equal(t, utils.DefaultGreeting, snap.Transcript[0].Content)
}

func TestLookingDoesNotArchive(t *testing.T) {
	store := archive.NewInMemoryStore()
	server := newTestServer(t, nil, Options{Backend: &stubBackend{reply: "hi"}, Archive: store})

	ids := make([]uuid.UUID, 0, 500)
	for range 500 {
		rec := serve(server.Engine, jsonRequest(http.MethodGet, "/api/view", "", ""))
		require.Equal(t, http.StatusOK, rec.Code)
		ids = append(ids, uuid.MustParse(rec.Header().Get(middleware.ViewHeader)))
	}

	for _, id := range ids {
		archived, err := store.GetMessages(context.Background(), id)
		require.NoError(t, err)
		require.Empty(t, archived)
	}

	// Idle views are swept, a view with a pending flow would be kept
	assert.Equal(t, 500, server.Views.Len())
	assert.Equal(t, 500, server.Views.Evict(-time.Minute))
	assert.Zero(t, server.Views.Len())
}

func TestServersAreIndependent(t *testing.T) {
	first := newTestServer(t, nil, Options{Backend: &stubBackend{reply: "hi"}})

	rec := serve(first.Engine, jsonRequest(http.MethodPost, "/api/query", `{"text":"hello"}`, ""))
	require.Equal(t, http.StatusOK, rec.Code)
	viewID := rec.Header().Get(middleware.ViewHeader)

	second := newTestServer(t, nil, Options{Backend: &stubBackend{reply: "other"}})
	require.NotNil(t, second)

	rec = serve(first.Engine, jsonRequest(http.MethodDelete, "/api/view", "", viewID))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(first.Engine, jsonRequest(http.MethodGet, "/api/view", "", viewID))
	require.Equal(t, http.StatusOK, rec.Code)

	var snap chat.Snapshot
	decode(t, rec, &snap)
	require.Len(t, snap.Transcript, 1)
	assert.Equal(t, chat.Idle, snap.Query)
	assert.Zero(t, second.Views.Len())
}

func TestAPIKeyGuardsOnlyTheJSONRoutes(t *testing.T) {
	backend := &stubBackend{reply: "hi"}
	engine := newTestEngine(t, map[string]string{"API_KEY": "secret"}, Options{Backend: backend})

	rec := serve(engine, jsonRequest(http.MethodPost, "/api/query", `{"text":"hello"}`, ""))
	assert.NotEqual(t, http.StatusOK, rec.Code)

	req := jsonRequest(http.MethodPost, "/api/query", `{"text":"hello"}`, "")
	req.Header.Set("X-API-KEY", "secret")
	rec = serve(engine, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// The browser page cannot send the header and stays open
	form := url.Values{"text": {"from the page"}}
	req = httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = serve(engine, req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}
