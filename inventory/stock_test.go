package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/stockledger/inventory"
)

func stockFixture() ([]inventory.InventoryRecord, *inventory.Lookup) {
	items := []inventory.Item{{
		ID:       "item-1",
		Name:     "Cable",
		Category: "cat-1",
		Variants: []inventory.Variant{
			{VariantID: "v-red", SKU: "CBL-R", AverageCost: decimal.RequireFromString("2.50"), ReorderLevel: 10},
			{VariantID: "v-blue", SKU: "CBL-B", AverageCost: decimal.RequireFromString("1.25")},
		},
	}}
	locations := []inventory.Location{{ID: "loc-1", Name: "Main Warehouse"}, {ID: "loc-2", Name: "Downtown Office"}}
	records := []inventory.InventoryRecord{
		{ID: "loc-1_v-red", LocationID: "loc-1", ItemID: "item-1", VariantID: "v-red", Quantity: 8},
		{ID: "loc-1_v-blue", LocationID: "loc-1", ItemID: "item-1", VariantID: "v-blue", Quantity: 5},
		{ID: "loc-2_v-blue", LocationID: "loc-2", ItemID: "item-1", VariantID: "v-blue", Quantity: 4},
		{ID: "loc-2_v-gone", LocationID: "loc-2", ItemID: "item-gone", VariantID: "v-gone", Quantity: 3},
	}
	return records, inventory.NewLookup(locations, items, nil)
}

func TestLowStock_UsesVariantOrDefaultLevel(t *testing.T) {
	// GIVEN: red has reorder level 10, blue has none (default 5)
	// WHEN: Listing low stock
	// THEN: red@8 and blue@4 are low, blue@5 is not

	records, lk := stockFixture()
	low := inventory.LowStock(records, lk)

	ids := make([]string, len(low))
	for i, l := range low {
		ids[i] = l.ID
	}
	assert.ElementsMatch(t, []string{"loc-1_v-red", "loc-2_v-blue", "loc-2_v-gone"}, ids)

	for _, l := range low {
		if l.ID == "loc-1_v-red" {
			assert.Equal(t, int64(10), l.ReorderLevel)
			assert.Equal(t, "CBL-R", l.SKU)
			assert.Equal(t, "Cable", l.ItemName)
		}
	}
}

func TestValuation_SumsQuantityTimesCost(t *testing.T) {
	records, lk := stockFixture()
	report := inventory.Valuation(records, lk)

	// 8*2.50 + 5*1.25 + 4*1.25 + 3*0
	assert.True(t, report.Total.Equal(decimal.RequireFromString("31.25")), report.Total.String())
	require.Contains(t, report.ByLocation, "loc-1")
	assert.True(t, report.ByLocation["loc-1"].Equal(decimal.RequireFromString("26.25")))
	assert.True(t, report.ByLocation["loc-2"].Equal(decimal.RequireFromString("5")))
	assert.Len(t, report.Lines, 4)
}
