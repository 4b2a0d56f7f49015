package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"time"
)

// DefaultKey is the storage key the snapshot lives under unless configured.
const DefaultKey = "inventory_master_db"

// =============================================================================
// SLOT - Durable bytes under one key
// =============================================================================

// Slot is a durable key-value cell holding the serialized snapshot.
// Implementations must make Write atomic from the reader's point of view:
// a reader sees either the old bytes or the new bytes, never a mix.
type Slot interface {
	// Read returns the stored bytes. ok is false when nothing was ever written.
	Read(ctx context.Context) (data []byte, ok bool, err error)

	// Write replaces the stored bytes.
	Write(ctx context.Context, data []byte) error

	// Name identifies the backend in errors and logs.
	Name() string
}

// Resetter is implemented by slots that can drop their stored bytes, so the
// next Read reports absence.
type Resetter interface {
	Reset(ctx context.Context) error
}

// Timestamped is implemented by slots that record when they were last written.
type Timestamped interface {
	UpdatedAt(ctx context.Context) (time.Time, error)
}

// =============================================================================
// BLOB STORE - Snapshot <-> bytes
// =============================================================================

// BlobStore loads and saves the whole Snapshot through a Slot.
type BlobStore struct {
	slot Slot
	seed func() Snapshot

	// OnSave, when set, observes the encoded size of every successful save.
	OnSave func(size int)
}

// NewBlobStore creates a BlobStore. seed supplies the snapshot returned when
// the slot is empty; nil means an empty snapshot.
func NewBlobStore(slot Slot, seed func() Snapshot) *BlobStore {
	if seed == nil {
		seed = func() Snapshot { return Snapshot{} }
	}
	return &BlobStore{slot: slot, seed: seed}
}

// Load returns the current snapshot, or a fresh copy of the seed when the
// slot has never been written. Absence is not an error.
func (b *BlobStore) Load(ctx context.Context) (Snapshot, error) {
	data, ok, err := b.slot.Read(ctx)
	if err != nil {
		return nil, &StorageError{Op: "read", Backend: b.slot.Name(), Err: err}
	}
	if !ok || len(bytes.TrimSpace(data)) == 0 {
		return b.seed().Clone(), nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var snap Snapshot
	if err := dec.Decode(&snap); err != nil {
		return nil, &StorageError{Op: "decode", Backend: b.slot.Name(), Err: err}
	}
	if snap == nil {
		return nil, &StorageError{Op: "decode", Backend: b.slot.Name(), Err: errors.New("snapshot is not a JSON object")}
	}
	return snap, nil
}

// Save serializes and persists the entire snapshot.
func (b *BlobStore) Save(ctx context.Context, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return &StorageError{Op: "encode", Backend: b.slot.Name(), Err: err}
	}
	if err := b.slot.Write(ctx, data); err != nil {
		return &StorageError{Op: "write", Backend: b.slot.Name(), Err: err}
	}
	if b.OnSave != nil {
		b.OnSave(len(data))
	}
	return nil
}

// Reset returns the slot to its never-written state so the next Load yields
// the seed. Slots without Resetter get the seed saved over them instead.
func (b *BlobStore) Reset(ctx context.Context) error {
	r, ok := b.slot.(Resetter)
	if !ok {
		return b.Save(ctx, b.seed().Clone())
	}
	if err := r.Reset(ctx); err != nil {
		return &StorageError{Op: "reset", Backend: b.slot.Name(), Err: err}
	}
	return nil
}

// UpdatedAt reports when the slot was last written. ok is false when the
// slot does not track it.
func (b *BlobStore) UpdatedAt(ctx context.Context) (at time.Time, ok bool, err error) {
	ts, ok := b.slot.(Timestamped)
	if !ok {
		return time.Time{}, false, nil
	}
	at, err = ts.UpdatedAt(ctx)
	if err != nil {
		return time.Time{}, false, &StorageError{Op: "read", Backend: b.slot.Name(), Err: err}
	}
	return at, true, nil
}

// Backend returns the slot name.
func (b *BlobStore) Backend() string {
	return b.slot.Name()
}
