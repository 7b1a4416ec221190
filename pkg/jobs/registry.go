package jobs

import (
	"sync"
	"time"
)

type State string

const (
	StateIdle      State = "IDLE"
	StateRunning   State = "RUNNING"
	StateSucceeded State = "SUCCEEDED"
	StateFailed    State = "FAILED"
)

// Record tracks one regeneration job. EntityKey is a concrete customer id or
// the ALL sentinel; both live in the same keyspace but never collide.
type Record struct {
	EntityKey string
	State     State
	Message   string
	StartedAt time.Time
}

// Terminal reports whether the record reached an end state and the key may
// be started again.
func (r Record) Terminal() bool {
	return r.State == StateSucceeded || r.State == StateFailed
}

// Registry is the only owner of job records. All mutation goes through
// Start/Complete/Fail/Reset; callers never touch the map directly.
type Registry struct {
	mu      sync.Mutex
	records map[string]Record
	clock   func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		records: make(map[string]Record),
		clock:   time.Now,
	}
}

// Start claims the key for a new run. If a run is already in flight for the
// key it returns false and leaves the existing record untouched; jobs for
// distinct keys are fully independent.
func (r *Registry) Start(entityKey, message string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.records[entityKey]; ok && existing.State == StateRunning {
		return false
	}

	r.records[entityKey] = Record{
		EntityKey: entityKey,
		State:     StateRunning,
		Message:   message,
		StartedAt: r.clock(),
	}
	return true
}

// Complete marks a running job as succeeded. Completions for keys that are
// no longer running (reset in the meantime) are dropped.
func (r *Registry) Complete(entityKey, message string) bool {
	return r.finish(entityKey, StateSucceeded, message)
}

// Fail marks a running job as failed.
func (r *Registry) Fail(entityKey, message string) bool {
	return r.finish(entityKey, StateFailed, message)
}

func (r *Registry) finish(entityKey string, state State, message string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.records[entityKey]
	if !ok || record.State != StateRunning {
		return false
	}
	record.State = state
	record.Message = message
	r.records[entityKey] = record
	return true
}

// Reset returns the key to IDLE, e.g. when the entity is deselected and its
// status display should be cleared.
func (r *Registry) Reset(entityKey string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, entityKey)
}

// Get returns a copy of the record for the key. Absent keys read as IDLE.
func (r *Registry) Get(entityKey string) Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	if record, ok := r.records[entityKey]; ok {
		return record
	}
	return Record{EntityKey: entityKey, State: StateIdle}
}

// Message is the read-only status accessor polled by the UI.
func (r *Registry) Message(entityKey string) string {
	return r.Get(entityKey).Message
}

// Running lists the keys with a job currently in flight.
func (r *Registry) Running() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var keys []string
	for key, record := range r.records {
		if record.State == StateRunning {
			keys = append(keys, key)
		}
	}
	return keys
}
