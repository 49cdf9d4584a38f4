package api

import (
	"context"
	"log"
	"sync"

	"github.com/ethanbaker/mitra/internal/stores/archive"
	"github.com/ethanbaker/mitra/pkg/chat"
	"github.com/google/uuid"
)

// transcriptJournal writes a view's messages to the archive. Nothing is written until the
// first user message, so views that are only looked at leave no trace, and nothing is
// written once the view has been replaced or evicted
type transcriptJournal struct {
	store     archive.Store
	viewID    uuid.UUID
	isCurrent func() bool

	mutex   sync.Mutex
	started bool
	held    []chat.Message
}

func newTranscriptJournal(store archive.Store, viewID uuid.UUID, started bool, isCurrent func() bool) *transcriptJournal {
	return &transcriptJournal{
		store:     store,
		viewID:    viewID,
		isCurrent: isCurrent,
		started:   started,
	}
}

// Record is the view's OnMessage hook
func (j *transcriptJournal) Record(msg chat.Message) {
	j.mutex.Lock()
	defer j.mutex.Unlock()

	if !j.started {
		if msg.Role != chat.RoleUser {
			j.held = append(j.held, msg)
			return
		}
		j.started = true
	}

	pending := append(j.held, msg)
	j.held = nil

	if !j.isCurrent() {
		log.Printf("[ARCHIVE]: Dropping %d messages of replaced view %s", len(pending), j.viewID)
		return
	}

	for _, m := range pending {
		if err := j.store.SaveMessage(context.Background(), j.viewID, m); err != nil {
			log.Printf("[ARCHIVE]: Failed to save message %s of view %s: %v", m.ID, j.viewID, err)
		}
	}
}
