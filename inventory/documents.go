package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/warp/stockledger/docstore"
)

// ErrLedgerOwned is returned for untyped writes to collections that only the
// ledger may change.
var ErrLedgerOwned = errors.New("collection is written by the stock ledger only")

var validators = map[string]func(id string, doc docstore.Document) error{
	CollectionLocations:      validateAs[Location, *Location],
	CollectionItems:          validateAs[Item, *Item],
	CollectionUOMs:           validateAs[UOM, *UOM],
	CollectionUOMConversions: validateAs[UOMConversion, *UOMConversion],
	CollectionCategories:     validateAs[Category, *Category],
	CollectionUsers:          validateAs[User, *User],
	CollectionInventory:      validateAs[InventoryRecord, *InventoryRecord],
	CollectionMovements:      validateAs[Movement, *Movement],
}

func validateAs[T any, P recordPtr[T]](id string, doc docstore.Document) error {
	rec, err := decodeRecord[T, P](id, doc)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return P(&rec).Validate()
}

// LedgerOwned reports whether writes to collection must go through the Ledger.
func LedgerOwned(collection string) bool {
	return collection == CollectionInventory || collection == CollectionMovements
}

// Documents is untyped collection access for callers that work with raw
// documents. Bodies for known collections are validated against their
// record type; unknown collections are stored as given.
type Documents struct {
	store *docstore.Store
}

// NewDocuments wraps store.
func NewDocuments(store *docstore.Store) *Documents {
	return &Documents{store: store}
}

func (d *Documents) List(ctx context.Context, collection string) ([]docstore.Entry, error) {
	return d.store.List(ctx, collection)
}

func (d *Documents) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	return d.store.Get(ctx, collection, id)
}

func (d *Documents) Create(ctx context.Context, collection string, body docstore.Document) (string, error) {
	if err := d.check(collection, "", body); err != nil {
		return "", err
	}
	return d.store.Create(ctx, collection, body)
}

func (d *Documents) Replace(ctx context.Context, collection, id string, body docstore.Document) error {
	if err := d.check(collection, id, body); err != nil {
		return err
	}
	return d.store.Replace(ctx, collection, id, body)
}

// Merge overlays patch and returns the merged document.
func (d *Documents) Merge(ctx context.Context, collection, id string, patch docstore.Document) (docstore.Document, error) {
	if LedgerOwned(collection) {
		return nil, fmt.Errorf("%w: %s", ErrLedgerOwned, collection)
	}
	var merged docstore.Document
	err := d.store.Update(ctx, func(tx *docstore.Tx) error {
		cur, err := tx.Get(collection, id)
		if docstore.IsNotFound(err) {
			cur = docstore.Document{}
		} else if err != nil {
			return err
		}
		for k, v := range patch {
			cur[k] = v
		}
		if err := d.check(collection, id, cur); err != nil {
			return err
		}
		merged = cur
		return tx.Merge(collection, id, patch)
	})
	return merged, err
}

func (d *Documents) Delete(ctx context.Context, collection, id string) error {
	if LedgerOwned(collection) {
		return fmt.Errorf("%w: %s", ErrLedgerOwned, collection)
	}
	return d.store.Delete(ctx, collection, id)
}

func (d *Documents) check(collection, id string, body docstore.Document) error {
	if LedgerOwned(collection) {
		return fmt.Errorf("%w: %s", ErrLedgerOwned, collection)
	}
	if validate, ok := validators[collection]; ok {
		return validate(id, body)
	}
	return nil
}
