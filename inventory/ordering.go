package inventory

import (
	"cmp"
	"slices"
	"strings"
)

// Row identifies one stock line to be ordered. Catalog rows leave
// LocationID and VariantID empty.
type Row struct {
	LocationID string `json:"location_id"`
	ItemID     string `json:"item_id"`
	VariantID  string `json:"variant_id"`
}

// Lookup resolves row references for ordering. References that do not
// resolve are treated as absent records, never as errors.
type Lookup struct {
	locations      map[string]Location
	items          map[string]Item
	categoryByID   map[string]Category
	categoryByName map[string]Category
}

// NewLookup indexes the reference data.
func NewLookup(locations []Location, items []Item, categories []Category) *Lookup {
	lk := &Lookup{
		locations:      make(map[string]Location, len(locations)),
		items:          make(map[string]Item, len(items)),
		categoryByID:   make(map[string]Category, len(categories)),
		categoryByName: make(map[string]Category, len(categories)),
	}
	for _, l := range locations {
		lk.locations[l.ID] = l
	}
	for _, i := range items {
		lk.items[i.ID] = i
	}
	for _, c := range categories {
		lk.categoryByID[c.ID] = c
		// Names are not unique; the lowest id wins.
		if prev, dup := lk.categoryByName[c.Name]; !dup || c.ID < prev.ID {
			lk.categoryByName[c.Name] = c
		}
	}
	return lk
}

// Item resolves an item id.
func (lk *Lookup) Item(id string) (Item, bool) {
	it, ok := lk.items[id]
	return it, ok
}

// Location resolves a location id.
func (lk *Lookup) Location(id string) (Location, bool) {
	l, ok := lk.locations[id]
	return l, ok
}

// Category resolves an item's category field, by id first and then by name.
func (lk *Lookup) Category(ref string) (Category, bool) {
	if c, ok := lk.categoryByID[ref]; ok {
		return c, true
	}
	c, ok := lk.categoryByName[ref]
	return c, ok
}

// sortKey is the tuple rows are ordered by, compared left to right.
type sortKey struct {
	location    string
	missingItem bool
	rank        float64
	category    string
	subcategory string
	item        string
	itemID      string
	variantID   string
	locationID  string
}

func (lk *Lookup) key(r Row) sortKey {
	k := sortKey{
		location:   lk.locations[r.LocationID].Name,
		itemID:     r.ItemID,
		variantID:  r.VariantID,
		locationID: r.LocationID,
	}
	item, ok := lk.items[r.ItemID]
	if !ok {
		k.missingItem = true
		return k
	}
	k.item = item.Name
	k.subcategory = item.Subcategory
	if cat, ok := lk.Category(item.Category); ok {
		k.rank = cat.Rank()
		k.category = cat.Name
	}
	return k
}

// Compare orders rows by location name, then category rank, category name,
// subcategory and item name. Rows whose item does not resolve sort after
// every resolved row at the same location. Remaining ties fall back to the
// ids, so the order is total and deterministic.
func (lk *Lookup) Compare(a, b Row) int {
	return compareKeys(lk.key(a), lk.key(b))
}

func compareKeys(a, b sortKey) int {
	if c := strings.Compare(a.location, b.location); c != 0 {
		return c
	}
	if a.missingItem != b.missingItem {
		if a.missingItem {
			return 1
		}
		return -1
	}
	if c := cmp.Compare(a.rank, b.rank); c != 0 {
		return c
	}
	if c := strings.Compare(a.category, b.category); c != 0 {
		return c
	}
	if c := strings.Compare(a.subcategory, b.subcategory); c != 0 {
		return c
	}
	if c := strings.Compare(a.item, b.item); c != 0 {
		return c
	}
	if c := strings.Compare(a.itemID, b.itemID); c != 0 {
		return c
	}
	if c := strings.Compare(a.variantID, b.variantID); c != 0 {
		return c
	}
	return strings.Compare(a.locationID, b.locationID)
}

// SortRows sorts rows in place.
func (lk *Lookup) SortRows(rows []Row) {
	keys := make(map[Row]sortKey, len(rows))
	for _, r := range rows {
		keys[r] = lk.key(r)
	}
	slices.SortStableFunc(rows, func(a, b Row) int {
		return compareKeys(keys[a], keys[b])
	})
}

// SortRecords sorts inventory records in display order.
func (lk *Lookup) SortRecords(records []InventoryRecord) {
	slices.SortStableFunc(records, func(a, b InventoryRecord) int {
		return lk.Compare(rowOf(a), rowOf(b))
	})
}

// SortItems sorts catalog items by category rank, category name,
// subcategory and name.
func (lk *Lookup) SortItems(items []Item) {
	slices.SortStableFunc(items, func(a, b Item) int {
		return lk.Compare(Row{ItemID: a.ID}, Row{ItemID: b.ID})
	})
}

// SortCategories orders categories by rank, then name.
func SortCategories(categories []Category) {
	slices.SortStableFunc(categories, func(a, b Category) int {
		if c := cmp.Compare(a.Rank(), b.Rank()); c != 0 {
			return c
		}
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

func rowOf(r InventoryRecord) Row {
	return Row{LocationID: r.LocationID, ItemID: r.ItemID, VariantID: r.VariantID}
}
