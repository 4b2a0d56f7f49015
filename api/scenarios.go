/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	data for testing and demos. Each scenario creates locations, categories,
	items and stock that demonstrate specific features.

AVAILABLE SCENARIOS:

	empty:          Seed data only (admin user, two locations, two units)
	hardware-store: Tools and safety gear, box conversions, some low stock
	ordering-demo:  Two locations and ranked categories for display order
	drift-demo:     Hardware store with snapshot/log drift to reconcile

HOW SCENARIOS WORK:
 1. Reset the database to the seed snapshot
 2. Write reference data (locations, categories, units, items)
 3. Post opening stock through the ledger so every quantity has movements
 4. Optionally damage the data directly (drift-demo)

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "hardware-store"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Create loader function: loadXxxScenario(ctx)
 3. Add case to loadScenario

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Inventory handlers
  - inventory/seed.go: Seed snapshot
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/warp/stockledger/docstore"
	"github.com/warp/stockledger/inventory"
	"go.uber.org/zap"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "empty",
		Name:        "Empty",
		Description: "Seed data only: admin user, two locations, piece and box units",
		Category:    "basics",
	},
	{
		ID:          "hardware-store",
		Name:        "Hardware Store",
		Description: "Tools and safety gear across two locations, box conversions, low stock",
		Category:    "inventory",
	},
	{
		ID:          "ordering-demo",
		Name:        "Display Ordering",
		Description: "Location name first, then category rank, subcategory and item name",
		Category:    "inventory",
	},
	{
		ID:          "drift-demo",
		Name:        "Drift Demo",
		Description: "Snapshot and movement log disagree; run reconciliation to repair",
		Category:    "reconciliation",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	if current == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}

	writeJSON(w, http.StatusOK, ScenarioDTO{
		ID:          current,
		Name:        current,
		Description: "Currently loaded scenario",
	})
}

// LoadScenario loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if !knownScenario(req.ScenarioID) {
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	if err := h.loadScenario(r.Context(), req.ScenarioID); err != nil {
		h.writeDomainError(w, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// ResetDatabase restores the seed snapshot.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.reset(r.Context()); err != nil {
		h.writeDomainError(w, "Failed to reset database", err)
		return
	}
	h.setScenario("")
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func knownScenario(id string) bool {
	for _, s := range scenarios {
		if s.ID == id {
			return true
		}
	}
	return false
}

func (h *Handler) setScenario(id string) {
	h.mu.Lock()
	h.currentScenario = id
	h.mu.Unlock()
}

func (h *Handler) reset(ctx context.Context) error {
	return h.Store.Reset(ctx)
}

func (h *Handler) loadScenario(ctx context.Context, id string) error {
	if err := h.reset(ctx); err != nil {
		return err
	}
	h.setScenario("")

	var err error
	switch id {
	case "empty":
	case "hardware-store":
		err = h.loadHardwareStoreScenario(ctx)
	case "ordering-demo":
		err = h.loadOrderingScenario(ctx)
	case "drift-demo":
		err = h.loadDriftScenario(ctx)
	default:
		err = fmt.Errorf("unknown scenario %q", id)
	}
	if err != nil {
		return err
	}

	h.setScenario(id)
	h.Log.Info("scenario loaded", zap.String("scenario", id))
	return nil
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadHardwareStoreScenario(ctx context.Context) error {
	categories := map[string]inventory.Category{
		"cat-tools":  {Name: "Tools", Subcategories: []string{"Hand", "Power"}, SortOrder: rankPtr(2)},
		"cat-safety": {Name: "Safety", Subcategories: []string{"PPE"}, SortOrder: rankPtr(1)},
	}
	for id, c := range categories {
		if err := inventory.NewRepo[inventory.Category](h.Store).Replace(ctx, id, c); err != nil {
			return err
		}
	}

	box := inventory.UOMConversion{FromUOM: "uom-2", ToUOM: "uom-1", Multiplier: decimal.NewFromInt(12)}
	if err := inventory.NewRepo[inventory.UOMConversion](h.Store).Replace(ctx, "conv-box-piece", box); err != nil {
		return err
	}

	items := map[string]inventory.Item{
		"item-hammer": {
			Name: "Claw Hammer", Category: "cat-tools", Subcategory: "Hand", BaseUOM: "uom-1",
			HasVariants: true, Status: inventory.StatusActive,
			Variants: []inventory.Variant{
				{VariantID: "hammer-16", SKU: "HAM-16", Size: "16oz", AverageCost: decimal.RequireFromString("14.50"), ReorderLevel: 10},
				{VariantID: "hammer-20", SKU: "HAM-20", Size: "20oz", AverageCost: decimal.RequireFromString("18.00")},
			},
		},
		"item-drill": {
			Name: "Cordless Drill", Category: "cat-tools", Subcategory: "Power", BaseUOM: "uom-1",
			Status: inventory.StatusActive,
			Variants: []inventory.Variant{
				{VariantID: "drill-18v", SKU: "DRL-18V", Brand: "Voltline", AverageCost: decimal.RequireFromString("89.99"), ReorderLevel: 3, SerialRequired: true},
			},
		},
		"item-gloves": {
			Name: "Work Gloves", Category: "cat-safety", Subcategory: "PPE", BaseUOM: "uom-1",
			HasVariants: true, Status: inventory.StatusActive,
			Variants: []inventory.Variant{
				{VariantID: "gloves-m", SKU: "GLV-M", Size: "M", AverageCost: decimal.RequireFromString("4.25"), ReorderLevel: 24, ApplicableUOMs: []string{"uom-1", "uom-2"}},
				{VariantID: "gloves-l", SKU: "GLV-L", Size: "L", AverageCost: decimal.RequireFromString("4.25"), ReorderLevel: 24, ApplicableUOMs: []string{"uom-1", "uom-2"}},
			},
		},
	}
	for id, it := range items {
		if err := inventory.NewRepo[inventory.Item](h.Store).Replace(ctx, id, it); err != nil {
			return err
		}
	}

	stock := []inventory.AdjustInput{
		{LocationID: "loc-1", ItemID: "item-hammer", VariantID: "hammer-16", Delta: 40},
		{LocationID: "loc-1", ItemID: "item-hammer", VariantID: "hammer-20", Delta: 3},
		{LocationID: "loc-1", ItemID: "item-drill", VariantID: "drill-18v", Delta: 8},
		{LocationID: "loc-1", ItemID: "item-gloves", VariantID: "gloves-m", Delta: 48},
		{LocationID: "loc-1", ItemID: "item-gloves", VariantID: "gloves-l", Delta: 36},
		{LocationID: "loc-2", ItemID: "item-drill", VariantID: "drill-18v", Delta: 1},
		{LocationID: "loc-2", ItemID: "item-gloves", VariantID: "gloves-m", Delta: 12},
	}
	if err := h.postOpeningStock(ctx, stock); err != nil {
		return err
	}

	_, err := h.Ledger.Transfer(ctx, inventory.TransferInput{
		FromLocationID: "loc-1",
		ToLocationID:   "loc-2",
		ItemID:         "item-hammer",
		VariantID:      "hammer-16",
		Quantity:       6,
		Reference:      "Restock downtown office",
		UserID:         inventory.SeedAdminID,
	})
	return err
}

func (h *Handler) loadOrderingScenario(ctx context.Context) error {
	locations := map[string]inventory.Location{
		"L-beta":  {Name: "Beta", Type: inventory.LocationJobsite, Status: inventory.StatusActive},
		"L-alpha": {Name: "Alpha", Type: inventory.LocationWarehouse, Status: inventory.StatusActive},
	}
	for id, l := range locations {
		if err := inventory.NewRepo[inventory.Location](h.Store).Replace(ctx, id, l); err != nil {
			return err
		}
	}

	categories := map[string]inventory.Category{
		"cat-tools":  {Name: "Tools", SortOrder: rankPtr(2)},
		"cat-safety": {Name: "Safety", SortOrder: rankPtr(1)},
	}
	for id, c := range categories {
		if err := inventory.NewRepo[inventory.Category](h.Store).Replace(ctx, id, c); err != nil {
			return err
		}
	}

	items := map[string]inventory.Item{
		"item-hammer": {Name: "Hammer", Category: "cat-tools", BaseUOM: "uom-1",
			Variants: []inventory.Variant{{VariantID: "hammer-std", SKU: "HAM"}}},
		"item-gloves": {Name: "Gloves", Category: "cat-safety", BaseUOM: "uom-1",
			Variants: []inventory.Variant{{VariantID: "gloves-std", SKU: "GLV"}}},
	}
	for id, it := range items {
		if err := inventory.NewRepo[inventory.Item](h.Store).Replace(ctx, id, it); err != nil {
			return err
		}
	}

	return h.postOpeningStock(ctx, []inventory.AdjustInput{
		{LocationID: "L-beta", ItemID: "item-gloves", VariantID: "gloves-std", Delta: 20},
		{LocationID: "L-beta", ItemID: "item-hammer", VariantID: "hammer-std", Delta: 7},
		{LocationID: "L-alpha", ItemID: "item-hammer", VariantID: "hammer-std", Delta: 5},
		{LocationID: "L-alpha", ItemID: "item-gloves", VariantID: "gloves-std", Delta: 30},
	})
}

// loadDriftScenario leaves the data the way an interrupted two-step write
// would: one snapshot without its movement, one movement without its
// snapshot, and one record that never went through the ledger.
func (h *Handler) loadDriftScenario(ctx context.Context) error {
	if err := h.loadHardwareStoreScenario(ctx); err != nil {
		return err
	}

	return h.Store.Update(ctx, func(tx *docstore.Tx) error {
		if err := tx.Merge(inventory.CollectionInventory,
			inventory.InventoryID("loc-1", "drill-18v"), docstore.Document{"quantity": 5}); err != nil {
			return err
		}
		if err := tx.Delete(inventory.CollectionInventory, inventory.InventoryID("loc-2", "gloves-m")); err != nil {
			return err
		}
		return tx.Replace(inventory.CollectionInventory, inventory.InventoryID("loc-2", "gloves-l"), docstore.Document{
			"location_id": "loc-2",
			"item_id":     "item-gloves",
			"variant_id":  "gloves-l",
			"quantity":    10,
		})
	})
}

func (h *Handler) postOpeningStock(ctx context.Context, stock []inventory.AdjustInput) error {
	for _, in := range stock {
		in.Reference = "Opening stock"
		in.UserID = inventory.SeedAdminID
		if _, err := h.Ledger.AdjustStock(ctx, in); err != nil {
			return fmt.Errorf("opening stock %s/%s: %w", in.LocationID, in.VariantID, err)
		}
	}
	return nil
}

func rankPtr(n float64) *float64 { return &n }
