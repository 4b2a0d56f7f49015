package inventory

import "github.com/shopspring/decimal"

// DefaultReorderLevel applies to variants without a reorder level.
const DefaultReorderLevel int64 = 5

// StockLine is an inventory record joined with its catalog entry.
type StockLine struct {
	InventoryRecord
	InventoryID  string          `json:"inventory_id"`
	ItemName     string          `json:"item_name"`
	SKU          string          `json:"sku"`
	ReorderLevel int64           `json:"reorder_level"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	Value        decimal.Decimal `json:"value"`
}

// EffectiveReorderLevel returns the variant's reorder level, or the default.
func (v Variant) EffectiveReorderLevel() int64 {
	if v.ReorderLevel <= 0 {
		return DefaultReorderLevel
	}
	return v.ReorderLevel
}

func joinLine(rec InventoryRecord, lk *Lookup) StockLine {
	line := StockLine{InventoryRecord: rec, InventoryID: rec.ID, ReorderLevel: DefaultReorderLevel}
	item, ok := lk.Item(rec.ItemID)
	if !ok {
		return line
	}
	line.ItemName = item.Name
	if v, ok := item.Variant(rec.VariantID); ok {
		line.SKU = v.SKU
		line.ReorderLevel = v.EffectiveReorderLevel()
		line.UnitCost = v.AverageCost
		line.Value = v.AverageCost.Mul(decimal.NewFromInt(rec.Quantity))
	}
	return line
}

// LowStock returns the records whose quantity is below their reorder level,
// in display order.
func LowStock(records []InventoryRecord, lk *Lookup) []StockLine {
	out := []StockLine{}
	for _, line := range StockLines(records, lk) {
		if line.Quantity < line.ReorderLevel {
			out = append(out, line)
		}
	}
	return out
}

// ValuationReport totals stock value.
type ValuationReport struct {
	Total      decimal.Decimal            `json:"total"`
	ByLocation map[string]decimal.Decimal `json:"by_location"`
	Lines      []StockLine                `json:"lines"`
}

// Valuation sums quantity times average cost over all records. Records whose
// item or variant no longer exists contribute zero.
func Valuation(records []InventoryRecord, lk *Lookup) ValuationReport {
	report := ValuationReport{
		Total:      decimal.Zero,
		ByLocation: make(map[string]decimal.Decimal),
		Lines:      StockLines(records, lk),
	}
	for _, line := range report.Lines {
		report.Total = report.Total.Add(line.Value)
		report.ByLocation[line.LocationID] = report.ByLocation[line.LocationID].Add(line.Value)
	}
	return report
}

// StockLines joins records with the catalog, in display order.
func StockLines(records []InventoryRecord, lk *Lookup) []StockLine {
	sorted := append([]InventoryRecord(nil), records...)
	lk.SortRecords(sorted)

	out := make([]StockLine, 0, len(sorted))
	for _, rec := range sorted {
		out = append(out, joinLine(rec, lk))
	}
	return out
}
