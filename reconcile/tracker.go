// Package reconcile implements the client side of optimistic writes.
//
// A client renders its own action immediately under a temporary id, then
// submits it to the durable write endpoint. Confirmation arrives twice:
// once as the write response and once as the room/DM broadcast, in either
// order. Whichever lands first replaces the pending entry; the later one
// is recognized by its permanent id and dropped. The server never learns
// the temporary id, so broadcasts are matched against pending entries by
// content equality (sender id + payload), not id equality.
//
// Known limitation, kept on purpose: two identical payloads from the same
// sender in quick succession are ambiguous under content matching — the
// oldest pending entry wins. A client-generated idempotency key would fix
// this, at the cost of a wire change.
package reconcile

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Outcome says what the caller should do with a confirmation.
type Outcome int

const (
	// Applied: first confirmation for this entity, render it (replacing
	// the pending entry if one matched).
	Applied Outcome = iota
	// Duplicate: the other channel already confirmed this entity, drop it.
	Duplicate
)

// Pending is a locally-created action awaiting server confirmation.
type Pending struct {
	TempID      string
	SenderID    string
	Content     string
	SubmittedAt time.Time
}

// confirmedCap bounds the duplicate-detection window. A duplicate can
// only race in the gap between the write response and the broadcast, so
// remembering the most recent ids is enough; the set must not grow for
// the lifetime of the session.
const confirmedCap = 512

// Tracker reconciles pending entries against confirmations from both
// channels. Safe for concurrent use; the socket callback and the HTTP
// response land on different goroutines.
type Tracker struct {
	mu        sync.Mutex
	pending   []*Pending
	confirmed map[string]struct{}
	recent    []string
}

func NewTracker() *Tracker {
	return &Tracker{confirmed: make(map[string]struct{})}
}

func (t *Tracker) confirmLocked(permanentID string) {
	t.confirmed[permanentID] = struct{}{}
	t.recent = append(t.recent, permanentID)
	for len(t.recent) > confirmedCap {
		delete(t.confirmed, t.recent[0])
		t.recent = t.recent[1:]
	}
}

// Submit records an optimistic action and returns its pending entry. The
// temporary id exists only on this client.
func (t *Tracker) Submit(senderID, content string) *Pending {
	p := &Pending{
		TempID:      uuid.NewString(),
		SenderID:    senderID,
		Content:     content,
		SubmittedAt: time.Now(),
	}
	t.mu.Lock()
	t.pending = append(t.pending, p)
	t.mu.Unlock()
	return p
}

// ResolveBroadcast handles a pushed entity. Matching is by content
// equality against the oldest pending entry from the same sender; an
// event with no pending match is someone else's action and is applied
// as-is.
func (t *Tracker) ResolveBroadcast(permanentID, senderID, content string) Outcome {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, dup := t.confirmed[permanentID]; dup {
		return Duplicate
	}
	t.confirmLocked(permanentID)
	for i, p := range t.pending {
		if p.SenderID == senderID && p.Content == content {
			t.pending = append(t.pending[:i], t.pending[i+1:]...)
			break
		}
	}
	return Applied
}

// ResolveResponse handles the synchronous write response for a known
// pending entry.
func (t *Tracker) ResolveResponse(tempID, permanentID string) Outcome {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.removeLocked(tempID)
	if _, dup := t.confirmed[permanentID]; dup {
		return Duplicate
	}
	t.confirmLocked(permanentID)
	return Applied
}

// Fail discards a pending entry after a write failure and hands back the
// original content so the UI can restore the user's input for retry.
func (t *Tracker) Fail(tempID string) (content string, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, p := range t.pending {
		if p.TempID == tempID {
			content = p.Content
			ok = true
			break
		}
	}
	t.removeLocked(tempID)
	return content, ok
}

// PendingCount reports how many actions still await confirmation.
func (t *Tracker) PendingCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

func (t *Tracker) removeLocked(tempID string) {
	for i, p := range t.pending {
		if p.TempID == tempID {
			t.pending = append(t.pending[:i], t.pending[i+1:]...)
			return
		}
	}
}
