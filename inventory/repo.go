package inventory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/stockledger/docstore"
)

// recordPtr is satisfied by *T for every record type T in this package.
type recordPtr[T any] interface {
	*T
	Record
	setID(id string)
}

func (r *Location) setID(id string)        { r.ID = id }
func (r *Category) setID(id string)        { r.ID = id }
func (r *UOM) setID(id string)             { r.ID = id }
func (r *UOMConversion) setID(id string)   { r.ID = id }
func (r *User) setID(id string)            { r.ID = id }
func (r *Item) setID(id string)            { r.ID = id }
func (r *InventoryRecord) setID(id string) { r.ID = id }
func (r *Movement) setID(id string)        { r.ID = id }

// Repo gives typed access to one collection. Records are validated before
// they are written; documents that fail to decode are reported, not dropped.
type Repo[T any, P recordPtr[T]] struct {
	store *docstore.Store
}

// NewRepo creates a repository for T's collection.
func NewRepo[T any, P recordPtr[T]](store *docstore.Store) *Repo[T, P] {
	return &Repo[T, P]{store: store}
}

func (r *Repo[T, P]) collection() string {
	var zero T
	return P(&zero).CollectionName()
}

// List returns every record ordered by id.
func (r *Repo[T, P]) List(ctx context.Context) ([]T, error) {
	entries, err := r.store.List(ctx, r.collection())
	if err != nil {
		return nil, err
	}
	return decodeEntries[T, P](entries)
}

// Get returns one record or docstore.ErrNotFound.
func (r *Repo[T, P]) Get(ctx context.Context, id string) (T, error) {
	doc, err := r.store.Get(ctx, r.collection(), id)
	if err != nil {
		var zero T
		return zero, err
	}
	return decodeRecord[T, P](id, doc)
}

// Create validates and inserts rec, returning it with its new id.
func (r *Repo[T, P]) Create(ctx context.Context, rec T) (T, error) {
	doc, err := encodeRecord[T, P](rec)
	if err != nil {
		return rec, err
	}
	id, err := r.store.Create(ctx, r.collection(), doc)
	if err != nil {
		return rec, err
	}
	P(&rec).setID(id)
	return rec, nil
}

// Replace validates rec and writes it as the full body of id.
func (r *Repo[T, P]) Replace(ctx context.Context, id string, rec T) error {
	doc, err := encodeRecord[T, P](rec)
	if err != nil {
		return err
	}
	return r.store.Replace(ctx, r.collection(), id, doc)
}

// Merge overlays patch onto id and validates the result before saving.
func (r *Repo[T, P]) Merge(ctx context.Context, id string, patch docstore.Document) (T, error) {
	var out T
	err := r.store.Update(ctx, func(tx *docstore.Tx) error {
		merged := docstore.Document{}
		if cur, err := tx.Get(r.collection(), id); err == nil {
			merged = cur
		} else if !docstore.IsNotFound(err) {
			return err
		}
		for k, v := range patch {
			merged[k] = v
		}
		rec, err := decodeRecord[T, P](id, merged)
		if err != nil {
			return err
		}
		if err := P(&rec).Validate(); err != nil {
			return err
		}
		out = rec
		return tx.Merge(r.collection(), id, patch)
	})
	return out, err
}

// Delete removes id. Missing ids are a no-op.
func (r *Repo[T, P]) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, r.collection(), id)
}

// =============================================================================
// CODEC
// =============================================================================

// toDocument converts a typed value to its stored document form.
func toDocument(v any) (docstore.Document, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc docstore.Document
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func encodeRecord[T any, P recordPtr[T]](rec T) (docstore.Document, error) {
	if err := P(&rec).Validate(); err != nil {
		return nil, err
	}
	doc, err := toDocument(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", P(&rec).CollectionName(), err)
	}
	return doc, nil
}

func decodeRecord[T any, P recordPtr[T]](id string, doc docstore.Document) (T, error) {
	var rec T
	raw, err := json.Marshal(doc)
	if err != nil {
		return rec, err
	}
	if err := json.Unmarshal(raw, &rec); err != nil {
		return rec, fmt.Errorf("%w: failed to decode %s: %v",
			ErrMalformedRecord, docstore.NewRef(P(&rec).CollectionName(), id), err)
	}
	P(&rec).setID(id)
	return rec, nil
}

func decodeEntries[T any, P recordPtr[T]](entries []docstore.Entry) ([]T, error) {
	out := make([]T, 0, len(entries))
	for _, e := range entries {
		rec, err := decodeRecord[T, P](e.ID, e.Data)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// decodeValid decodes what it can and returns refs to the documents it had
// to skip.
func decodeValid[T any, P recordPtr[T]](snap docstore.Snapshot) ([]T, []docstore.Ref) {
	var zero T
	coll := P(&zero).CollectionName()
	entries := snap.Entries(coll)
	out := make([]T, 0, len(entries))
	var skipped []docstore.Ref
	for _, e := range entries {
		rec, err := decodeRecord[T, P](e.ID, e.Data)
		if err != nil {
			skipped = append(skipped, docstore.NewRef(coll, e.ID))
			continue
		}
		out = append(out, rec)
	}
	return out, skipped
}

var (
	maxQuantity = decimal.NewFromInt(math.MaxInt64)
	minQuantity = decimal.NewFromInt(math.MinInt64)
)

// quantityOf reads only the quantity field of a stored inventory document.
func quantityOf(id string, doc docstore.Document) (int64, error) {
	q, err := parseQuantity(doc["quantity"])
	if err != nil {
		return 0, fmt.Errorf("%w: %s quantity: %v",
			ErrMalformedRecord, docstore.NewRef(CollectionInventory, id), err)
	}
	return q, nil
}

// parseQuantity accepts whole-valued numbers and numeric strings. Absent,
// null and blank values are zero.
func parseQuantity(v any) (int64, error) {
	var (
		d   decimal.Decimal
		err error
	)
	switch v := v.(type) {
	case nil:
		return 0, nil
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case json.Number:
		d, err = decimal.NewFromString(v.String())
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("non-finite value")
		}
		d = decimal.NewFromFloat(v)
	case string:
		if strings.TrimSpace(v) == "" {
			return 0, nil
		}
		d, err = decimal.NewFromString(strings.TrimSpace(v))
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
	if err != nil {
		return 0, err
	}
	if !d.IsInteger() || d.GreaterThan(maxQuantity) || d.LessThan(minQuantity) {
		return 0, fmt.Errorf("%s is not a whole number of base units", d)
	}
	return d.IntPart(), nil
}

// UnmarshalJSON decodes a stored record, reading quantity with parseQuantity
// so records written as 4.0 or "4" still load.
func (r *InventoryRecord) UnmarshalJSON(data []byte) error {
	type plain InventoryRecord
	var raw struct {
		plain
		Quantity any `json:"quantity"`
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	q, err := parseQuantity(raw.Quantity)
	if err != nil {
		return fmt.Errorf("quantity: %w", err)
	}
	*r = InventoryRecord(raw.plain)
	r.Quantity = q
	return nil
}
