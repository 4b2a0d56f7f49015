// Package memory provides an in-process docstore.Slot for tests and dev runs.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/warp/stockledger/docstore"
)

// Ensure Slot implements the interface.
var _ docstore.Slot = (*Slot)(nil)

// ErrInjected is returned when a fault has been armed with FailReads/FailWrites.
var ErrInjected = errors.New("injected storage fault")

// =============================================================================
// MEMORY SLOT
// =============================================================================

// Slot keeps the serialized snapshot in memory.
type Slot struct {
	mu         sync.RWMutex
	data       []byte
	written    bool
	writes     int
	failReads  error
	failWrites error
}

// New returns an empty slot.
func New() *Slot {
	return &Slot{}
}

// NewWithData returns a slot pre-filled with raw bytes.
func NewWithData(data []byte) *Slot {
	return &Slot{data: append([]byte(nil), data...), written: true}
}

func (s *Slot) Name() string { return "memory" }

func (s *Slot) Read(_ context.Context) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failReads != nil {
		return nil, false, s.failReads
	}
	if !s.written {
		return nil, false, nil
	}
	return append([]byte(nil), s.data...), true, nil
}

func (s *Slot) Write(_ context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites != nil {
		return s.failWrites
	}
	s.data = append([]byte(nil), data...)
	s.written = true
	s.writes++
	return nil
}

// =============================================================================
// TEST HOOKS
// =============================================================================

// FailReads makes every subsequent Read return err (nil disarms).
func (s *Slot) FailReads(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failReads = err
}

// FailWrites makes every subsequent Write return err (nil disarms).
func (s *Slot) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWrites = err
}

// Bytes returns a copy of the stored bytes.
func (s *Slot) Bytes() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]byte(nil), s.data...)
}

// Writes returns how many successful writes happened.
func (s *Slot) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}
