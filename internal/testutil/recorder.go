package testutil

import (
	"fmt"
	"sync"
)

// Recorder captures creation outcomes as "mode/label" strings.
//
// Thread-safety: all methods are safe for concurrent use.
type Recorder struct {
	mu       sync.Mutex
	created  []string
	failures []string
}

// AccountCreated records a successful creation.
func (r *Recorder) AccountCreated(mode, rule string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, fmt.Sprintf("%s/%s", mode, rule))
}

// CreationFailed records a failed creation.
func (r *Recorder) CreationFailed(mode, kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, fmt.Sprintf("%s/%s", mode, kind))
}

// Created returns recorded successes in order.
func (r *Recorder) Created() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.created...)
}

// Failures returns recorded failures in order.
func (r *Recorder) Failures() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.failures...)
}
