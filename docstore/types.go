/*
Package docstore emulates a collection-oriented document database on top of a
single serialized blob.

PURPOSE:
  The whole database is one JSON object held under one key in a durable
  key-value slot:

    {
      "<collection>": { "<docId>": { ...fields }, ... },
      ...
    }

  Every read loads the full snapshot; every write rewrites it. There is no
  partial or append persistence, so a write either fully lands or the
  previous snapshot remains visible.

KEY TYPES (types.go):
  Document:   an open record (field name -> JSON value)
  Collection: document id -> Document
  Snapshot:   collection name -> Collection (the root value)
  Entry:      an (id, Document) pair returned by List

LAYERS:
  Slot      - durable bytes under one key (store/memory, store/sqlite, ...)
  BlobStore - Snapshot <-> bytes, seed on first run
  Store     - list/get/create/replace/merge/delete + batched Update

SEE ALSO:
  - blob.go:  BlobStore and the Slot interface
  - store.go: collection API
  - ref.go:   references and composite ids
*/
package docstore

import "encoding/json"

// =============================================================================
// DOCUMENTS
// =============================================================================

// Document is one record within a collection. Values are JSON-compatible:
// string, bool, nil, json.Number/float64/int, []any, map[string]any.
type Document map[string]any

// Collection maps document ids to bodies. Insertion order carries no meaning.
type Collection map[string]Document

// Snapshot is the root value persisted by a BlobStore.
type Snapshot map[string]Collection

// Entry is a document together with its id.
type Entry struct {
	ID   string
	Data Document
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for name, coll := range s {
		c := make(Collection, len(coll))
		for id, doc := range coll {
			c[id] = doc.Clone()
		}
		out[name] = c
	}
	return out
}

// Entries returns the documents of a collection ordered by id.
func (s Snapshot) Entries(collection string) []Entry {
	return listEntries(s[collection])
}

// Collection returns the named collection, creating it if missing.
// Collections never referenced before are treated as empty.
func (s Snapshot) Collection(name string) Collection {
	c, ok := s[name]
	if !ok || c == nil {
		c = make(Collection)
		s[name] = c
	}
	return c
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, inner := range t {
			m[k] = cloneValue(inner)
		}
		return m
	case Document:
		return t.Clone()
	case []any:
		s := make([]any, len(t))
		for i, inner := range t {
			s[i] = cloneValue(inner)
		}
		return s
	case json.RawMessage:
		return append(json.RawMessage(nil), t...)
	default:
		return v
	}
}
