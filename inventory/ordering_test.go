package inventory_test

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/stockledger/docstore"
	"github.com/warp/stockledger/inventory"
	"github.com/warp/stockledger/store/memory"
)

func rank(n float64) *float64 { return &n }

func orderingFixture() *inventory.Lookup {
	locations := []inventory.Location{
		{ID: "L-beta", Name: "Beta"},
		{ID: "L-alpha", Name: "Alpha"},
	}
	categories := []inventory.Category{
		{ID: "cat-tools", Name: "Tools", SortOrder: rank(2)},
		{ID: "cat-safety", Name: "Safety", SortOrder: rank(1)},
		{ID: "cat-misc", Name: "Misc"},
	}
	items := []inventory.Item{
		{ID: "hammer", Name: "Hammer", Category: "cat-tools"},
		{ID: "drill", Name: "Drill", Category: "cat-tools", Subcategory: "Power"},
		{ID: "saw", Name: "Saw", Category: "cat-tools"},
		{ID: "gloves", Name: "Gloves", Category: "cat-safety"},
		{ID: "tape", Name: "Tape", Category: "cat-misc"},
		{ID: "helmet", Name: "Helmet", Category: "Safety"},
	}
	return inventory.NewLookup(locations, items, categories)
}

func TestCompare_LocationIsPrimaryKey(t *testing.T) {
	// GIVEN: Alpha rows in a rank-2 category and Beta rows in a rank-1 category
	// WHEN: Sorting
	// THEN: All Alpha rows precede all Beta rows; within a location rank 1 wins

	lk := orderingFixture()
	rows := []inventory.Row{
		{LocationID: "L-beta", ItemID: "gloves", VariantID: "v1"},
		{LocationID: "L-alpha", ItemID: "hammer", VariantID: "v1"},
		{LocationID: "L-beta", ItemID: "hammer", VariantID: "v1"},
		{LocationID: "L-alpha", ItemID: "gloves", VariantID: "v1"},
	}
	lk.SortRows(rows)

	assert.Equal(t, []inventory.Row{
		{LocationID: "L-alpha", ItemID: "gloves", VariantID: "v1"},
		{LocationID: "L-alpha", ItemID: "hammer", VariantID: "v1"},
		{LocationID: "L-beta", ItemID: "gloves", VariantID: "v1"},
		{LocationID: "L-beta", ItemID: "hammer", VariantID: "v1"},
	}, rows)
}

func TestCompare_WithinLocation(t *testing.T) {
	lk := orderingFixture()
	at := func(item string) inventory.Row {
		return inventory.Row{LocationID: "L-alpha", ItemID: item, VariantID: "v1"}
	}

	// Unranked category (rank 0) sorts before rank 1.
	assert.Negative(t, lk.Compare(at("tape"), at("gloves")))
	// Same category: empty subcategory before "Power".
	assert.Negative(t, lk.Compare(at("hammer"), at("drill")))
	// Same category and subcategory: by item name.
	assert.Negative(t, lk.Compare(at("hammer"), at("saw")))
	// Category referenced by name resolves like an id.
	assert.Negative(t, lk.Compare(at("gloves"), at("helmet")))
}

func TestCompare_MissingItemsSortLast(t *testing.T) {
	lk := orderingFixture()
	ghostA := inventory.Row{LocationID: "L-alpha", ItemID: "ghost-a", VariantID: "v1"}
	ghostB := inventory.Row{LocationID: "L-alpha", ItemID: "ghost-b", VariantID: "v1"}
	known := inventory.Row{LocationID: "L-alpha", ItemID: "tape", VariantID: "v1"}

	assert.Positive(t, lk.Compare(ghostA, known))
	assert.Negative(t, lk.Compare(known, ghostA))

	// Two unresolved rows compare consistently in both directions.
	assert.Equal(t, -lk.Compare(ghostA, ghostB), lk.Compare(ghostB, ghostA))
	assert.Zero(t, lk.Compare(ghostA, ghostA))
}

func TestCompare_UnknownLocationSortsAsEmptyName(t *testing.T) {
	lk := orderingFixture()
	nowhere := inventory.Row{LocationID: "gone", ItemID: "tape", VariantID: "v1"}
	alpha := inventory.Row{LocationID: "L-alpha", ItemID: "tape", VariantID: "v1"}

	assert.Negative(t, lk.Compare(nowhere, alpha))
}

func TestCompare_TotalOrder(t *testing.T) {
	// GIVEN: Random rows over known and unknown references
	// WHEN: Comparing every pair and triple
	// THEN: The comparator is antisymmetric and transitive

	lk := orderingFixture()
	rng := rand.New(rand.NewSource(7))
	locs := []string{"L-alpha", "L-beta", "gone"}
	items := []string{"hammer", "drill", "saw", "gloves", "tape", "helmet", "ghost"}
	variants := []string{"v1", "v2"}

	rows := make([]inventory.Row, 40)
	for i := range rows {
		rows[i] = inventory.Row{
			LocationID: locs[rng.Intn(len(locs))],
			ItemID:     items[rng.Intn(len(items))],
			VariantID:  variants[rng.Intn(len(variants))],
		}
	}

	sign := func(n int) int {
		switch {
		case n < 0:
			return -1
		case n > 0:
			return 1
		}
		return 0
	}
	for _, a := range rows {
		for _, b := range rows {
			require.Equal(t, sign(lk.Compare(a, b)), -sign(lk.Compare(b, a)), "%v %v", a, b)
			for _, c := range rows {
				if lk.Compare(a, b) <= 0 && lk.Compare(b, c) <= 0 {
					require.LessOrEqual(t, lk.Compare(a, c), 0, "%v %v %v", a, b, c)
				}
			}
		}
	}
}

func TestSortItems_CatalogOrder(t *testing.T) {
	lk := orderingFixture()
	items := []inventory.Item{
		{ID: "saw"}, {ID: "gloves"}, {ID: "tape"}, {ID: "drill"}, {ID: "hammer"},
	}
	lk.SortItems(items)

	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	assert.Equal(t, []string{"tape", "gloves", "hammer", "saw", "drill"}, ids)
}

func TestSortCategories_RankThenName(t *testing.T) {
	cats := []inventory.Category{
		{ID: "c3", Name: "Tools", SortOrder: rank(2)},
		{ID: "c2", Name: "Safety", SortOrder: rank(1)},
		{ID: "c1", Name: "Adhesives", SortOrder: rank(1)},
		{ID: "c0", Name: "Misc"},
	}
	inventory.SortCategories(cats)

	assert.Equal(t, "Misc", cats[0].Name)
	assert.Equal(t, "Adhesives", cats[1].Name)
	assert.Equal(t, "Safety", cats[2].Name)
	assert.Equal(t, "Tools", cats[3].Name)
}

func TestLookup_DuplicateCategoryNamesResolveToLowestID(t *testing.T) {
	// GIVEN: Two categories sharing a name, listed in either order
	// WHEN: An item references the category by name
	// THEN: The category with the lowest id is used every time

	for _, cats := range [][]inventory.Category{
		{{ID: "cat-b", Name: "Tools", SortOrder: rank(5)}, {ID: "cat-a", Name: "Tools", SortOrder: rank(1)}},
		{{ID: "cat-a", Name: "Tools", SortOrder: rank(1)}, {ID: "cat-b", Name: "Tools", SortOrder: rank(5)}},
	} {
		lk := inventory.NewLookup(nil, nil, cats)
		cat, ok := lk.Category("Tools")
		require.True(t, ok)
		assert.Equal(t, "cat-a", cat.ID)
	}
}

func TestSortCategories_FractionalRanks(t *testing.T) {
	// GIVEN: Categories stored with fractional sort_order values
	// WHEN: Loading and sorting them
	// THEN: 1 < 1.5 < 2 and nothing fails to decode

	slot := memory.NewWithData([]byte(`{"categories":{
		"c1":{"name":"Tools","subcategories":[],"sort_order":2},
		"c2":{"name":"Safety","subcategories":[],"sort_order":1.5},
		"c3":{"name":"Adhesives","subcategories":[],"sort_order":1}
	}}`))
	store := docstore.New(docstore.NewBlobStore(slot, nil))

	cats, err := inventory.NewRepo[inventory.Category](store).List(context.Background())
	require.NoError(t, err)
	inventory.SortCategories(cats)

	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = c.Name
	}
	assert.Equal(t, []string{"Adhesives", "Safety", "Tools"}, names)
	assert.Equal(t, 1.5, cats[1].Rank())
}
