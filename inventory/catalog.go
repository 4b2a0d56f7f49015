package inventory

import (
	"context"

	"github.com/warp/stockledger/docstore"
)

// Catalog is a consistent view of reference data and stock decoded from a
// single snapshot load.
type Catalog struct {
	Locations   []Location
	Items       []Item
	Categories  []Category
	UOMs        []UOM
	Conversions []UOMConversion
	Users       []User
	Records     []InventoryRecord

	// Malformed lists documents that did not decode and were left out.
	Malformed []docstore.Ref
}

// LoadCatalog reads the store once and decodes every catalog collection.
// Every collection comes back ordered by id. A document that does not decode
// is skipped and listed in Malformed rather than failing the whole load.
func LoadCatalog(ctx context.Context, store *docstore.Store) (*Catalog, error) {
	snap, err := store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	c := &Catalog{}
	var bad []docstore.Ref
	c.Locations, bad = decodeValid[Location](snap)
	c.Malformed = append(c.Malformed, bad...)
	c.Items, bad = decodeValid[Item](snap)
	c.Malformed = append(c.Malformed, bad...)
	c.Categories, bad = decodeValid[Category](snap)
	c.Malformed = append(c.Malformed, bad...)
	c.UOMs, bad = decodeValid[UOM](snap)
	c.Malformed = append(c.Malformed, bad...)
	c.Conversions, bad = decodeValid[UOMConversion](snap)
	c.Malformed = append(c.Malformed, bad...)
	c.Users, bad = decodeValid[User](snap)
	c.Malformed = append(c.Malformed, bad...)
	c.Records, bad = decodeValid[InventoryRecord](snap)
	c.Malformed = append(c.Malformed, bad...)
	return c, nil
}

// VariantCount sums the variants of every item.
func (c *Catalog) VariantCount() int {
	n := 0
	for _, it := range c.Items {
		n += len(it.Variants)
	}
	return n
}

// Lookup indexes the catalog for ordering and joins.
func (c *Catalog) Lookup() *Lookup {
	return NewLookup(c.Locations, c.Items, c.Categories)
}

// Item finds an item by id.
func (c *Catalog) Item(id string) (Item, bool) {
	for _, it := range c.Items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}
