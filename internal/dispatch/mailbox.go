package dispatch

import (
	"sync"
	"time"

	"lifeline/internal/domain"

	"github.com/google/uuid"
)

// mailbox routes volunteer responses to the goroutine waiting on the
// incident's single outstanding offer. At most one entry per incident exists
// at any instant; that is the sequential-offering invariant made concrete.
type mailbox struct {
	mu      sync.Mutex
	pending map[uuid.UUID]*pendingOffer
}

type pendingOffer struct {
	volunteerID uuid.UUID
	deadline    time.Time
	ch          chan domain.OfferResponse
	delivered   bool
}

func newMailbox() *mailbox {
	return &mailbox{pending: make(map[uuid.UUID]*pendingOffer)}
}

// open registers the outstanding offer and returns the channel the
// coordinator waits on. Any forgotten previous entry is discarded.
func (m *mailbox) open(incidentID, volunteerID uuid.UUID, deadline time.Time) <-chan domain.OfferResponse {
	entry := &pendingOffer{
		volunteerID: volunteerID,
		deadline:    deadline,
		ch:          make(chan domain.OfferResponse, 1),
	}

	m.mu.Lock()
	m.pending[incidentID] = entry
	m.mu.Unlock()

	return entry.ch
}

func (m *mailbox) close(incidentID uuid.UUID) {
	m.mu.Lock()
	delete(m.pending, incidentID)
	m.mu.Unlock()
}

// deliver hands a response to the waiting offer. It reports false when the
// response is stale: no offer outstanding, a different volunteer, past the
// deadline, or a second response racing the first.
func (m *mailbox) deliver(incidentID, volunteerID uuid.UUID, resp domain.OfferResponse, now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.pending[incidentID]
	if !ok || entry.volunteerID != volunteerID || entry.delivered || now.After(entry.deadline) {
		return false
	}
	entry.delivered = true
	entry.ch <- resp
	return true
}

// outstanding reports how many offers are currently open for the incident.
func (m *mailbox) outstanding(incidentID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.pending[incidentID]; ok {
		return 1
	}
	return 0
}
