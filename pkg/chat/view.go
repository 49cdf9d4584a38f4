// Package chat holds the view state shared by every front end: the transcript,
// the conversational and batch submit flows, the selected file and the batch results.
package chat

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/ethanbaker/mitra/pkg/sdk"
)

// Replies substituted when the query service does not produce an answer
const (
	FallbackReply = "Sorry, I couldn't process your request."
	ErrorReply    = "Sorry, there was an error processing your request. Please try again later."

	// BatchErrorMessage is shown when a failed upload carries no error text of its own
	BatchErrorMessage = "Failed to process CSV file. Please try again."
)

var (
	ErrEmptyInput    = errors.New("input is empty")
	ErrQueryPending  = errors.New("a query is already pending")
	ErrNoQuery       = errors.New("no query is pending")
	ErrNoFile        = errors.New("no file selected")
	ErrBatchPending  = errors.New("a batch upload is already pending")
	ErrNoBatch       = errors.New("no batch upload is pending")
	ErrBatchDisabled = errors.New("batch uploads are disabled")
)

// Backend is the query service as seen by the view
type Backend interface {
	Query(ctx context.Context, text string) (*sdk.QueryResponse, error)
	ProcessCSV(ctx context.Context, filename string, file io.Reader) (*sdk.BatchResponse, error)
}

// Options configure a View
type Options struct {
	Greeting     string // first assistant message, used when History is empty
	BatchEnabled bool   // whether the batch panel is available

	// History restores an earlier transcript instead of greeting
	History []Message

	// OnMessage is called for every message appended to the transcript, after the view is unlocked
	OnMessage func(Message)

	// Clock stamps new messages, time.Now when nil
	Clock func() time.Time
}

// View is the state behind a conversation screen. Each flow admits one attempt at a time,
// but the two flows are independent of each other
type View struct {
	backend Backend
	opts    Options

	mu         sync.Mutex
	transcript []Message
	query      FlowState
	batch      FlowState
	file       *File
	results    []sdk.QueryResult
	batchErr   string
}

// NewView creates a view whose transcript starts with the greeting (or the restored history)
func NewView(backend Backend, opts Options) *View {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	v := &View{
		backend: backend,
		opts:    opts,
	}

	if len(opts.History) > 0 {
		v.transcript = append([]Message(nil), opts.History...)
		return v
	}

	greeting := NewMessage(RoleAssistant, opts.Greeting, opts.Clock())
	v.transcript = []Message{greeting}
	v.notify(greeting)

	return v
}

// notify hands new messages to OnMessage. Callers must not hold the lock
func (v *View) notify(msgs ...Message) {
	if v.opts.OnMessage == nil {
		return
	}
	for _, msg := range msgs {
		v.opts.OnMessage(msg)
	}
}

/** Conversational flow */

// BeginQuery appends the user message and marks the query flow pending.
// It returns the text that must be sent to the query service
func (v *View) BeginQuery(input string) (string, error) {
	if strings.TrimSpace(input) == "" {
		return "", ErrEmptyInput
	}

	v.mu.Lock()
	if v.query == Pending {
		v.mu.Unlock()
		return "", ErrQueryPending
	}

	msg := NewMessage(RoleUser, input, v.opts.Clock())
	v.transcript = append(v.transcript, msg)
	v.query = Pending
	v.mu.Unlock()

	v.notify(msg)
	return input, nil
}

// CompleteQuery appends the assistant reply for the pending query and clears the pending flag
func (v *View) CompleteQuery(resp *sdk.QueryResponse, err error) (Message, error) {
	content := ErrorReply
	state := Failed

	if err != nil {
		log.Printf("[CHAT]: Error calling query API: %v", err)
	} else {
		state = Succeeded
		content = FallbackReply
		if resp != nil && resp.Response != "" {
			content = resp.Response
		}
	}

	v.mu.Lock()
	if v.query != Pending {
		v.mu.Unlock()
		return Message{}, ErrNoQuery
	}

	msg := NewMessage(RoleAssistant, content, v.opts.Clock())
	v.transcript = append(v.transcript, msg)
	v.query = state
	v.mu.Unlock()

	v.notify(msg)
	return msg, nil
}

// SubmitQuery runs the whole conversational flow and returns the assistant reply.
// Service failures become the reply; only ErrEmptyInput and ErrQueryPending are returned
func (v *View) SubmitQuery(ctx context.Context, input string) (Message, error) {
	text, err := v.BeginQuery(input)
	if err != nil {
		return Message{}, err
	}

	resp, err := v.backend.Query(ctx, text)
	return v.CompleteQuery(resp, err)
}

/** Batch flow */

// SelectFile sets the file the next upload sends
func (v *View) SelectFile(file File) error {
	if file.Name == "" {
		return ErrNoFile
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	v.file = &File{Name: file.Name, Data: append([]byte(nil), file.Data...)}
	return nil
}

// ClearFile drops the selected file
func (v *View) ClearFile() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.file = nil
}

// BeginBatch marks the batch flow pending, clears the previous error and returns the file to upload
func (v *View) BeginBatch() (File, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	switch {
	case !v.opts.BatchEnabled:
		return File{}, ErrBatchDisabled
	case v.batch == Pending:
		return File{}, ErrBatchPending
	case v.file == nil:
		return File{}, ErrNoFile
	}

	v.batch = Pending
	v.batchErr = ""
	return *v.file, nil
}

// CompleteBatch stores the outcome of the pending upload. Success replaces the results,
// failure leaves them alone and sets the visible error
func (v *View) CompleteBatch(resp *sdk.BatchResponse, err error) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.batch != Pending {
		return ErrNoBatch
	}

	if err != nil {
		log.Printf("[CHAT]: Error processing CSV upload: %v", err)

		v.batch = Failed
		v.batchErr = BatchErrorMessage
		if msg, ok := sdk.ErrorMessage(err); ok {
			v.batchErr = msg
		}
		return nil
	}

	v.batch = Succeeded
	v.results = nil
	if resp != nil {
		v.results = append([]sdk.QueryResult(nil), resp.Results...)
	}
	return nil
}

// SubmitBatch uploads the selected file and records the outcome.
// Service failures end up in the visible error, only precondition errors are returned
func (v *View) SubmitBatch(ctx context.Context) error {
	file, err := v.BeginBatch()
	if err != nil {
		return err
	}

	resp, err := v.backend.ProcessCSV(ctx, file.Name, bytes.NewReader(file.Data))
	return v.CompleteBatch(resp, err)
}

// DismissError hides the batch error
func (v *View) DismissError() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.batchErr = ""
}

/** Rendering */

// Snapshot is a copy of the view state for rendering
type Snapshot struct {
	Transcript   []Message         `json:"transcript"`
	Query        FlowState         `json:"query"`
	Batch        FlowState         `json:"batch"`
	Results      []sdk.QueryResult `json:"results"`
	BatchError   string            `json:"batch_error,omitempty"`
	FileName     string            `json:"file_name,omitempty"`
	BatchEnabled bool              `json:"batch_enabled"`
}

// QueryPending reports whether the chat trigger should be disabled
func (s Snapshot) QueryPending() bool { return s.Query == Pending }

// BatchPending reports whether the upload trigger should be disabled
func (s Snapshot) BatchPending() bool { return s.Batch == Pending }

// Snapshot copies the current state
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	s := Snapshot{
		Transcript:   append([]Message(nil), v.transcript...),
		Query:        v.query,
		Batch:        v.batch,
		Results:      append([]sdk.QueryResult{}, v.results...),
		BatchError:   v.batchErr,
		BatchEnabled: v.opts.BatchEnabled,
	}
	if v.file != nil {
		s.FileName = v.file.Name
	}

	return s
}

// Busy reports whether either flow is waiting on the query service
func (v *View) Busy() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.query == Pending || v.batch == Pending
}

// Transcript returns a copy of the messages so far
func (v *View) Transcript() []Message {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]Message(nil), v.transcript...)
}
