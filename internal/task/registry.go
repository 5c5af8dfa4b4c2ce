// Package task tracks the lifecycle of asynchronous call tasks. State is
// process-scoped: it is never persisted and does not survive a restart.
package task

import (
	"fmt"
	"sync"
)

// Well-known statuses. Failures carry a reason: "fail: <reason>".
const (
	StatusPending  = "pending"
	StatusSuccess  = "success"
	StatusNotFound = "not_found"
)

// FailStatus formats a failure status with its reason.
func FailStatus(reason string) string {
	return fmt.Sprintf("fail: %s", reason)
}

// Registry is a concurrent map from task ID to lifecycle status. Entries are
// never evicted; the set of task IDs is bounded by process lifetime, which is
// an accepted limitation of this design.
type Registry struct {
	mu    sync.RWMutex
	tasks map[string]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tasks: make(map[string]string)}
}

// Create inserts a task with status pending. Task IDs are generated fresh
// per call, so an existing entry is simply overwritten.
func (r *Registry) Create(id string) {
	r.Set(id, StatusPending)
}

// Set overwrites the status for a task unconditionally.
func (r *Registry) Set(id, status string) {
	r.mu.Lock()
	r.tasks[id] = status
	r.mu.Unlock()
}

// Get returns the current status, or StatusNotFound for unknown IDs.
func (r *Registry) Get(id string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if status, ok := r.tasks[id]; ok {
		return status
	}
	return StatusNotFound
}
