package journal

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/kode4food/bedrock"
)

type (
	// Hibernator keeps the full event log of a closed session
	Hibernator interface {
		Get(context.Context, string) (*HibernateRecord, error)
		Put(context.Context, *HibernateRecord) error
		Delete(context.Context, string) error
	}

	// HibernateRecord is a closed session's log in dispatch order
	HibernateRecord struct {
		SessionID string           `json:"session_id"`
		Events    []*bedrock.Event `json:"events"`
		ClosedAt  time.Time        `json:"closed_at"`
	}

	// MemoryHibernator keeps records in process memory
	MemoryHibernator struct {
		mu      sync.RWMutex
		records map[string]*HibernateRecord
	}
)

var (
	// ErrHibernateNotFound indicates no record exists for a session
	ErrHibernateNotFound = errors.New("hibernated session not found")

	// ErrSessionIDRequired is returned when putting a record with no session
	ErrSessionIDRequired = errors.New("hibernate record requires session id")
)

func NewMemoryHibernator() *MemoryHibernator {
	return &MemoryHibernator{records: map[string]*HibernateRecord{}}
}

func (h *MemoryHibernator) Get(
	_ context.Context, sessionID string,
) (*HibernateRecord, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	rec, ok := h.records[sessionID]
	if !ok {
		return nil, ErrHibernateNotFound
	}
	return rec.clone(), nil
}

func (h *MemoryHibernator) Put(
	_ context.Context, rec *HibernateRecord,
) error {
	if rec.SessionID == "" {
		return ErrSessionIDRequired
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records[rec.SessionID] = rec.clone()
	return nil
}

func (h *MemoryHibernator) Delete(_ context.Context, sessionID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.records, sessionID)
	return nil
}

func (r *HibernateRecord) clone() *HibernateRecord {
	res := *r
	res.Events = make([]*bedrock.Event, len(r.Events))
	for i, ev := range r.Events {
		res.Events[i] = ev.Clone()
	}
	return &res
}
