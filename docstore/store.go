/*
store.go - Collection-oriented API over the BlobStore

PURPOSE:
  Gives callers list/get/create/replace/merge/delete per collection while the
  bytes underneath are a single blob.

READ-MODIFY-WRITE:
  Every mutation loads the snapshot, applies the change in memory, and saves
  the whole snapshot back. Store holds a mutex across that window so two
  writers in the same process never interleave (no lost updates).

BATCHES:
  Update(ctx, fn) runs fn against one loaded snapshot and saves once. Either
  all of fn's writes land or none do. The inventory ledger uses this to make
  "update snapshot record + append movement" a single unit of work.

MERGE VS REPLACE:
  Replace swaps the whole body (stale fields are dropped).
  Merge overlays the given fields on the existing body, creating the
  document if it does not exist yet.

SEE ALSO:
  - blob.go: persistence
  - inventory/ledger.go: the main batch user
*/
package docstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Store is the Document Store.
type Store struct {
	blobs *BlobStore
	newID IDGenerator
	mu    sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator overrides the id generator used by Create.
func WithIDGenerator(gen IDGenerator) Option {
	return func(s *Store) { s.newID = gen }
}

// New creates a Store over the given BlobStore.
func New(blobs *BlobStore, opts ...Option) *Store {
	s := &Store{blobs: blobs, newID: UUIDGenerator}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Blobs exposes the underlying BlobStore.
func (s *Store) Blobs() *BlobStore {
	return s.blobs
}

// =============================================================================
// READS
// =============================================================================

// List returns every document in the collection, ordered by id.
// Each call re-reads the slot; a collection never written yields an empty slice.
func (s *Store) List(ctx context.Context, collection string) ([]Entry, error) {
	if collection == "" {
		return nil, fmt.Errorf("%w: empty collection name", ErrInvalidInput)
	}
	s.mu.Lock()
	snap, err := s.blobs.Load(ctx)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return listEntries(snap[collection]), nil
}

// Get returns the document body, or ErrNotFound.
func (s *Store) Get(ctx context.Context, collection, id string) (Document, error) {
	if err := checkRef(collection, id); err != nil {
		return nil, err
	}
	s.mu.Lock()
	snap, err := s.blobs.Load(ctx)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return getDoc(snap, collection, id)
}

// Snapshot returns a copy of the whole database.
func (s *Store) Snapshot(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blobs.Load(ctx)
}

// =============================================================================
// WRITES
// =============================================================================

// Create inserts body under a freshly generated id and returns the id.
func (s *Store) Create(ctx context.Context, collection string, body Document) (string, error) {
	var id string
	err := s.Update(ctx, func(tx *Tx) error {
		var err error
		id, err = tx.Create(collection, body)
		return err
	})
	return id, err
}

// Replace writes body as the complete document, dropping any prior fields.
func (s *Store) Replace(ctx context.Context, collection, id string, body Document) error {
	return s.Update(ctx, func(tx *Tx) error {
		return tx.Replace(collection, id, body)
	})
}

// Merge overlays patch onto the existing document (or creates it).
func (s *Store) Merge(ctx context.Context, collection, id string, patch Document) error {
	return s.Update(ctx, func(tx *Tx) error {
		return tx.Merge(collection, id, patch)
	})
}

// Delete removes the document. Deleting a missing id is a no-op.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	return s.Update(ctx, func(tx *Tx) error {
		return tx.Delete(collection, id)
	})
}

// Update runs fn against a single loaded snapshot and persists it once.
// If fn returns an error nothing is saved. If fn made no changes nothing is
// saved either.
func (s *Store) Update(ctx context.Context, fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.blobs.Load(ctx)
	if err != nil {
		return err
	}
	tx := &Tx{snap: snap, newID: s.newID}
	if err := fn(tx); err != nil {
		return err
	}
	if !tx.dirty {
		return nil
	}
	return s.blobs.Save(ctx, tx.snap)
}

// Reset restores the seed snapshot.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blobs.Reset(ctx)
}

// =============================================================================
// TX - In-flight view used inside Update
// =============================================================================

// Tx is the snapshot being modified by an Update call. It is only valid
// inside the callback.
type Tx struct {
	snap  Snapshot
	newID IDGenerator
	dirty bool
}

// List returns the documents of a collection as currently staged.
func (tx *Tx) List(collection string) []Entry {
	return listEntries(tx.snap[collection])
}

// Get returns a staged document or ErrNotFound.
func (tx *Tx) Get(collection, id string) (Document, error) {
	if err := checkRef(collection, id); err != nil {
		return nil, err
	}
	return getDoc(tx.snap, collection, id)
}

// Create stages a new document and returns its id.
func (tx *Tx) Create(collection string, body Document) (string, error) {
	if collection == "" {
		return "", fmt.Errorf("%w: empty collection name", ErrInvalidInput)
	}
	coll := tx.snap.Collection(collection)
	id := tx.newID()
	for _, taken := coll[id]; taken; _, taken = coll[id] {
		id = tx.newID()
	}
	coll[id] = body.Clone()
	if coll[id] == nil {
		coll[id] = Document{}
	}
	tx.dirty = true
	return id, nil
}

// Replace stages a full replacement.
func (tx *Tx) Replace(collection, id string, body Document) error {
	if err := checkRef(collection, id); err != nil {
		return err
	}
	doc := body.Clone()
	if doc == nil {
		doc = Document{}
	}
	tx.snap.Collection(collection)[id] = doc
	tx.dirty = true
	return nil
}

// Merge stages a shallow field-level merge, creating the document if absent.
func (tx *Tx) Merge(collection, id string, patch Document) error {
	if err := checkRef(collection, id); err != nil {
		return err
	}
	coll := tx.snap.Collection(collection)
	doc := coll[id]
	if doc == nil {
		doc = Document{}
	}
	for k, v := range patch {
		doc[k] = cloneValue(v)
	}
	coll[id] = doc
	tx.dirty = true
	return nil
}

// Delete stages removal of a document. Missing ids are ignored.
func (tx *Tx) Delete(collection, id string) error {
	if err := checkRef(collection, id); err != nil {
		return err
	}
	coll, ok := tx.snap[collection]
	if !ok {
		return nil
	}
	if _, ok := coll[id]; !ok {
		return nil
	}
	delete(coll, id)
	tx.dirty = true
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func checkRef(collection, id string) error {
	if collection == "" {
		return fmt.Errorf("%w: empty collection name", ErrInvalidInput)
	}
	if id == "" {
		return fmt.Errorf("%w: empty document id", ErrInvalidInput)
	}
	return nil
}

func getDoc(snap Snapshot, collection, id string) (Document, error) {
	doc, ok := snap[collection][id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, NewRef(collection, id))
	}
	return doc.Clone(), nil
}

func listEntries(coll Collection) []Entry {
	entries := make([]Entry, 0, len(coll))
	for id, doc := range coll {
		entries = append(entries, Entry{ID: id, Data: doc.Clone()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries
}
