// Package store owns the mutable system of record for simulations. Records
// are keyed by simulation id and mutated only through Update; concurrent
// writers are last-write-wins.
package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agentboxes/ap2-sandbox/pkg/artifacts"
)

// Status is the lifecycle state of a simulation.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// SimulationRecord is the queryable state of one simulation. The store does
// not police status transitions; the job processor guarantees queued records
// move to exactly one terminal state.
type SimulationRecord struct {
	ID             uuid.UUID                     `json:"id"`
	BoxID          uuid.UUID                     `json:"box_id"`
	Status         Status                        `json:"status"`
	CreatedAt      time.Time                     `json:"created_at"`
	UpdatedAt      time.Time                     `json:"updated_at"`
	Logs           []string                      `json:"logs"`
	MandateHashes  map[string]string             `json:"mandate_hashes"`
	RequestPayload map[string]any                `json:"request_payload"`
	Artifacts      *artifacts.SimulationArtifact `json:"artifacts,omitempty"`
	Error          string                        `json:"error,omitempty"`
}

// Update carries the fields rewritten by a terminal-state transition.
type Update struct {
	Status        Status
	Logs          []string
	MandateHashes map[string]string
	Artifacts     *artifacts.SimulationArtifact
	Error         string
}

// SimulationStore holds simulation records in process memory.
type SimulationStore struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*SimulationRecord
}

// NewSimulationStore creates an empty store.
func NewSimulationStore() *SimulationStore {
	return &SimulationStore{records: make(map[uuid.UUID]*SimulationRecord)}
}

// Create registers a new queued simulation for the given box and payload.
func (s *SimulationStore) Create(boxID uuid.UUID, payload map[string]any) *SimulationRecord {
	now := time.Now().UTC()
	record := &SimulationRecord{
		ID:             uuid.New(),
		BoxID:          boxID,
		Status:         StatusQueued,
		CreatedAt:      now,
		UpdatedAt:      now,
		Logs:           []string{},
		MandateHashes:  map[string]string{},
		RequestPayload: payload,
	}

	s.mu.Lock()
	s.records[record.ID] = record
	s.mu.Unlock()

	return snapshot(record)
}

// Update rewrites the mutable fields of a record and bumps its updated_at.
func (s *SimulationStore) Update(simulationID uuid.UUID, upd Update) (*SimulationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[simulationID]
	if !ok {
		return nil, fmt.Errorf("unknown simulation %s", simulationID)
	}

	record.Status = upd.Status
	record.Logs = upd.Logs
	record.MandateHashes = upd.MandateHashes
	record.Artifacts = upd.Artifacts
	record.Error = upd.Error
	record.UpdatedAt = time.Now().UTC()

	return snapshot(record), nil
}

// Get returns a copy of the record, or false when the id is unknown.
func (s *SimulationStore) Get(simulationID uuid.UUID) (*SimulationRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[simulationID]
	if !ok {
		return nil, false
	}
	return snapshot(record), true
}

// snapshot copies the record so callers can't mutate stored state. Log, hash,
// and payload containers are cloned; the artifact bundle is immutable by
// contract and shared.
func snapshot(record *SimulationRecord) *SimulationRecord {
	out := *record
	out.Logs = append([]string(nil), record.Logs...)
	out.MandateHashes = make(map[string]string, len(record.MandateHashes))
	for k, v := range record.MandateHashes {
		out.MandateHashes[k] = v
	}
	if record.RequestPayload != nil {
		out.RequestPayload = make(map[string]any, len(record.RequestPayload))
		for k, v := range record.RequestPayload {
			out.RequestPayload[k] = v
		}
	}
	return &out
}
