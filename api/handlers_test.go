/*
handlers_test.go - HTTP tests for API handlers

Tests for:
- Generic collection CRUD and validation
- Stock adjustment, unit conversion, transfer
- Inventory listing order, low stock, valuation
- Reconciliation check and repair
- Error status mapping
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/stockledger/config"
	"github.com/warp/stockledger/docstore"
	"github.com/warp/stockledger/inventory"
	"github.com/warp/stockledger/store/memory"
	"github.com/warp/stockledger/store/sqlite"
	"go.uber.org/zap"
)

// =============================================================================
// TEST SETUP
// =============================================================================

type testServer struct {
	handler *Handler
	router  http.Handler
	slot    *memory.Slot
}

func setupTestServer(t *testing.T, opts ...inventory.LedgerOption) *testServer {
	t.Helper()
	slot := memory.New()
	store := docstore.New(docstore.NewBlobStore(slot, inventory.SeedSnapshot))
	clock := time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)
	tick := func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	opts = append([]inventory.LedgerOption{inventory.WithClock(tick)}, opts...)
	h := NewHandler(store, inventory.NewLedger(store, opts...), zap.NewNop())
	return &testServer{handler: h, router: NewRouter(h, nil), slot: slot}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (s *testServer) loadScenario(t *testing.T, id string) {
	t.Helper()
	require.NoError(t, s.handler.loadScenario(context.Background(), id))
}

// =============================================================================
// COLLECTIONS
// =============================================================================

func TestCollections_CRUD(t *testing.T) {
	// GIVEN: A fresh seeded store
	// WHEN: Creating, merging, replacing and deleting a location
	// THEN: Each step returns the document as stored

	s := setupTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/collections/locations", map[string]any{"name": "Yard", "id": "ignored"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[map[string]any](t, rec)
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)
	assert.NotEqual(t, "ignored", id)

	rec = s.do(t, http.MethodPatch, "/api/collections/locations/"+id, map[string]any{"address": "1 Quarry Rd"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	merged := decode[map[string]any](t, rec)
	assert.Equal(t, "Yard", merged["name"])
	assert.Equal(t, "1 Quarry Rd", merged["address"])

	rec = s.do(t, http.MethodPut, "/api/collections/locations/"+id, map[string]any{"name": "Yard 2"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/collections/locations/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[map[string]any](t, rec)
	assert.Equal(t, "Yard 2", got["name"])
	assert.NotContains(t, got, "address", "replace drops fields")

	rec = s.do(t, http.MethodDelete, "/api/collections/locations/"+id, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/collections/locations/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/collections/locations/"+id, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code, "deleting a missing document is a no-op")
}

func TestCollections_ListSeed(t *testing.T) {
	s := setupTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/collections/locations", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	docs := decode[[]map[string]any](t, rec)
	require.Len(t, docs, 2)
	assert.Equal(t, "loc-1", docs[0]["id"])
	assert.Equal(t, "loc-2", docs[1]["id"])

	rec = s.do(t, http.MethodGet, "/api/collections/never-written", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]map[string]any](t, rec))
}

func TestCollections_Errors(t *testing.T) {
	s := setupTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"invalid item", http.MethodPost, "/api/collections/items", map[string]any{"name": ""}, http.StatusBadRequest},
		{"invalid merge", http.MethodPatch, "/api/collections/locations/loc-1", map[string]any{"name": " "}, http.StatusBadRequest},
		{"ledger owned create", http.MethodPost, "/api/collections/inventory", map[string]any{"quantity": 1}, http.StatusConflict},
		{"ledger owned delete", http.MethodDelete, "/api/collections/inventory_movements/m1", nil, http.StatusConflict},
		{"malformed body", http.MethodPost, "/api/collections/locations", "{", http.StatusBadRequest},
		{"array body", http.MethodPost, "/api/collections/locations", "[]", http.StatusBadRequest},
		{"unknown doc", http.MethodGet, "/api/collections/items/nope", nil, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			assert.NotEmpty(t, decode[ErrorResponse](t, rec).Error)
		})
	}
}

func TestCollections_UnknownCollectionStoredAsGiven(t *testing.T) {
	s := setupTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/collections/notes", map[string]any{"text": "call supplier", "pinned": true})
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode[map[string]any](t, rec)["id"].(string)

	rec = s.do(t, http.MethodGet, "/api/collections/notes/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	doc := decode[map[string]any](t, rec)
	assert.Equal(t, "call supplier", doc["text"])
	assert.Equal(t, true, doc["pinned"])
}

// =============================================================================
// STOCK
// =============================================================================

func TestAdjustStock_BaseUnits(t *testing.T) {
	// GIVEN: No stock
	// WHEN: Adding 5 then removing 2
	// THEN: Quantity is 3 and two movements are logged, newest first

	s := setupTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/inventory/adjust", map[string]any{
		"location_id": "loc-1", "item_id": "item-x", "variant_id": "var-1",
		"quantity_change": 5, "reference": "PO-1", "user_id": "u1",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[AdjustResponse](t, rec)
	assert.Equal(t, int64(5), resp.NewQuantity)
	assert.Equal(t, inventory.InventoryID("loc-1", "var-1"), resp.InventoryID)

	rec = s.do(t, http.MethodPost, "/api/inventory/adjust", map[string]any{
		"location_id": "loc-1", "item_id": "item-x", "variant_id": "var-1",
		"quantity_change": -2, "reference": "Sale", "user_id": "u1",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, int64(3), decode[AdjustResponse](t, rec).NewQuantity)

	rec = s.do(t, http.MethodGet, "/api/inventory/movements?variant_id=var-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	mvs := decode[[]MovementDTO](t, rec)
	require.Len(t, mvs, 2)
	assert.Equal(t, int64(-2), mvs[0].QuantityChange)
	assert.Equal(t, int64(3), mvs[0].NewQuantity)
	assert.Equal(t, "Sale", mvs[0].Reference)
	assert.Equal(t, "adjustment", mvs[0].Type)

	rec = s.do(t, http.MethodGet, "/api/inventory/movements?limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]MovementDTO](t, rec), 1)
}

func TestAdjustStock_ConvertsUnits(t *testing.T) {
	// GIVEN: Gloves stocked in pieces and a box = 12 pieces conversion
	// WHEN: Adding 2 boxes
	// THEN: 24 pieces are added

	s := setupTestServer(t)
	s.loadScenario(t, "hardware-store")

	rec := s.do(t, http.MethodPost, "/api/inventory/adjust", map[string]any{
		"location_id": "loc-1", "item_id": "item-gloves", "variant_id": "gloves-m",
		"quantity_change": 2, "uom_id": "uom-2",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[AdjustResponse](t, rec)
	assert.Equal(t, int64(24), resp.QuantityChange)
	assert.Equal(t, int64(72), resp.NewQuantity)
}

func TestAdjustStock_Rejections(t *testing.T) {
	s := setupTestServer(t)
	s.loadScenario(t, "hardware-store")

	tests := []struct {
		name string
		body map[string]any
		want int
	}{
		{"zero change", map[string]any{"location_id": "loc-1", "item_id": "item-x", "variant_id": "v", "quantity_change": 0}, http.StatusBadRequest},
		{"missing location", map[string]any{"item_id": "item-x", "variant_id": "v", "quantity_change": 1}, http.StatusBadRequest},
		{"fractional base units", map[string]any{"location_id": "loc-1", "item_id": "item-x", "variant_id": "v", "quantity_change": 0.5}, http.StatusBadRequest},
		{"no conversion", map[string]any{"location_id": "loc-1", "item_id": "item-gloves", "variant_id": "gloves-m", "quantity_change": 1, "uom_id": "uom-9"}, http.StatusBadRequest},
		{"unknown item with unit", map[string]any{"location_id": "loc-1", "item_id": "nope", "variant_id": "v", "quantity_change": 1, "uom_id": "uom-2"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/api/inventory/adjust", tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestAdjustStock_FloorConflict(t *testing.T) {
	s := setupTestServer(t, inventory.WithAllowNegative(false))

	rec := s.do(t, http.MethodPost, "/api/inventory/adjust", map[string]any{
		"location_id": "loc-1", "item_id": "item-x", "variant_id": "var-1", "quantity_change": -1,
	})
	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
}

func TestAdjustStock_StorageFault(t *testing.T) {
	s := setupTestServer(t)
	s.slot.FailWrites(memory.ErrInjected)

	rec := s.do(t, http.MethodPost, "/api/inventory/adjust", map[string]any{
		"location_id": "loc-1", "item_id": "item-x", "variant_id": "var-1", "quantity_change": 1,
	})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code, rec.Body.String())
}

func TestTransferStock(t *testing.T) {
	s := setupTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/inventory/adjust", map[string]any{
		"location_id": "loc-1", "item_id": "item-x", "variant_id": "var-1", "quantity_change": 10,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/inventory/transfer", map[string]any{
		"from_location_id": "loc-1", "to_location_id": "loc-2",
		"item_id": "item-x", "variant_id": "var-1", "quantity": 4,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[inventory.TransferResult](t, rec)
	assert.Equal(t, int64(6), res.FromQuantity)
	assert.Equal(t, int64(4), res.ToQuantity)

	rec = s.do(t, http.MethodPost, "/api/inventory/transfer", map[string]any{
		"from_location_id": "loc-1", "to_location_id": "loc-1",
		"item_id": "item-x", "variant_id": "var-1", "quantity": 1,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListMovements_InvalidLimit(t *testing.T) {
	s := setupTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/inventory/movements?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// VIEWS
// =============================================================================

func TestListInventory_DisplayOrder(t *testing.T) {
	// GIVEN: Alpha and Beta locations; Tools ranked 2, Safety ranked 1
	// WHEN: Listing inventory
	// THEN: Location name is the primary key, category rank the secondary

	s := setupTestServer(t)
	s.loadScenario(t, "ordering-demo")

	rec := s.do(t, http.MethodGet, "/api/inventory", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	lines := decode[[]inventory.StockLine](t, rec)
	require.Len(t, lines, 4)

	got := make([][2]string, len(lines))
	for i, l := range lines {
		got[i] = [2]string{l.LocationID, l.ItemName}
	}
	assert.Equal(t, [][2]string{
		{"L-alpha", "Gloves"},
		{"L-alpha", "Hammer"},
		{"L-beta", "Gloves"},
		{"L-beta", "Hammer"},
	}, got)

	rec = s.do(t, http.MethodGet, "/api/inventory?location_id=L-beta", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]inventory.StockLine](t, rec), 2)
}

func TestLowStock(t *testing.T) {
	s := setupTestServer(t)
	s.loadScenario(t, "hardware-store")

	rec := s.do(t, http.MethodGet, "/api/inventory/low-stock", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	lines := decode[[]inventory.StockLine](t, rec)

	ids := make([]string, len(lines))
	for i, l := range lines {
		ids[i] = l.InventoryID
	}
	assert.ElementsMatch(t, []string{
		inventory.InventoryID("loc-1", "hammer-20"),
		inventory.InventoryID("loc-2", "hammer-16"),
		inventory.InventoryID("loc-2", "drill-18v"),
		inventory.InventoryID("loc-2", "gloves-m"),
	}, ids)
}

func TestValuation(t *testing.T) {
	s := setupTestServer(t)
	s.loadScenario(t, "hardware-store")

	rec := s.do(t, http.MethodGet, "/api/inventory/valuation", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	report := decode[inventory.ValuationReport](t, rec)

	assert.True(t, decimal.RequireFromString("1851.91").Equal(report.Total), report.Total.String())
	assert.True(t, decimal.RequireFromString("227.99").Equal(report.ByLocation["loc-2"]), report.ByLocation["loc-2"].String())
}

func TestListItemsAndCategories_Ordered(t *testing.T) {
	s := setupTestServer(t)
	s.loadScenario(t, "hardware-store")

	rec := s.do(t, http.MethodGet, "/api/items", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var items []struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 3)
	assert.Equal(t, []string{"item-gloves", "item-hammer", "item-drill"},
		[]string{items[0].ID, items[1].ID, items[2].ID})

	rec = s.do(t, http.MethodGet, "/api/categories", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var cats []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cats))
	require.Len(t, cats, 3)
	assert.Equal(t, []string{"Electronics", "Safety", "Tools"},
		[]string{cats[0].Name, cats[1].Name, cats[2].Name})
}

// =============================================================================
// RECONCILIATION
// =============================================================================

func TestReconciliation_CheckAndRepair(t *testing.T) {
	// GIVEN: The drift demo (mismatch, missing snapshot, unlogged record)
	// WHEN: Checking, repairing, checking again
	// THEN: Three drifts are found, all repaired, and the ledger is clean

	s := setupTestServer(t)
	s.loadScenario(t, "drift-demo")

	rec := s.do(t, http.MethodGet, "/api/reconciliation", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	report := decode[inventory.Report](t, rec)
	require.Len(t, report.Drifts, 3)

	kinds := map[inventory.DriftKind]string{}
	for _, d := range report.Drifts {
		kinds[d.Kind] = d.InventoryID
	}
	assert.Equal(t, inventory.InventoryID("loc-1", "drill-18v"), kinds[inventory.DriftQuantityMismatch])
	assert.Equal(t, inventory.InventoryID("loc-2", "gloves-m"), kinds[inventory.DriftMissingSnapshot])
	assert.Equal(t, inventory.InventoryID("loc-2", "gloves-l"), kinds[inventory.DriftUnloggedSnapshot])

	rec = s.do(t, http.MethodPost, "/api/reconciliation/repair", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, decode[inventory.Report](t, rec).Repaired)

	rec = s.do(t, http.MethodGet, "/api/reconciliation", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[inventory.Report](t, rec).Drifts)
}

func TestReconciliation_MalformedRecordConflictsUntilRepaired(t *testing.T) {
	// GIVEN: An inventory record stored with a fractional quantity
	// WHEN: Listing, adjusting, repairing, then adjusting again
	// THEN: Listing still works, the first adjust is a 409, and after
	//       repair the key adjusts from the replayed quantity

	s := setupTestServer(t)
	ctx := context.Background()
	require.NoError(t, s.handler.Store.Replace(ctx, inventory.CollectionInventory, "loc-1_var-1",
		docstore.Document{"location_id": "loc-1", "item_id": "item-x", "variant_id": "var-1", "quantity": 2.5}))

	rec := s.do(t, http.MethodGet, "/api/inventory", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := map[string]any{
		"location_id": "loc-1", "item_id": "item-x", "variant_id": "var-1", "quantity_change": 1,
	}
	rec = s.do(t, http.MethodPost, "/api/inventory/adjust", body)
	require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/reconciliation", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	report := decode[inventory.Report](t, rec)
	require.Len(t, report.Drifts, 1)
	assert.Equal(t, inventory.DriftMalformedSnapshot, report.Drifts[0].Kind)

	rec = s.do(t, http.MethodPost, "/api/reconciliation/repair", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/inventory/adjust", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, int64(1), decode[AdjustResponse](t, rec).NewQuantity)
}

// =============================================================================
// DASHBOARD
// =============================================================================

func TestDashboard_Counts(t *testing.T) {
	// GIVEN: The seed plus one item with two variants, stock at two
	//        locations and one malformed inventory record
	// WHEN: Fetching the dashboard
	// THEN: Counts cover the seed and the new item; the malformed record
	//       is listed instead of failing the request

	s := setupTestServer(t)
	ctx := context.Background()

	require.NoError(t, inventory.NewRepo[inventory.Item](s.handler.Store).Replace(ctx, "item-1", inventory.Item{
		Name:     "Drill",
		Category: "cat-1",
		Variants: []inventory.Variant{{VariantID: "var-1", SKU: "D-1"}, {VariantID: "var-2", SKU: "D-2"}},
	}))
	_, err := s.handler.Ledger.AdjustStock(ctx, inventory.AdjustInput{
		LocationID: "loc-1", ItemID: "item-1", VariantID: "var-1", Delta: 7,
	})
	require.NoError(t, err)
	_, err = s.handler.Ledger.AdjustStock(ctx, inventory.AdjustInput{
		LocationID: "loc-2", ItemID: "item-1", VariantID: "var-2", Delta: 3,
	})
	require.NoError(t, err)
	require.NoError(t, s.handler.Store.Replace(ctx, inventory.CollectionInventory, "loc-2_var-9",
		docstore.Document{"quantity": "a few"}))

	rec := s.do(t, http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	dash := decode[DashboardDTO](t, rec)

	assert.Equal(t, 1, dash.Items)
	assert.Equal(t, 2, dash.Variants)
	assert.Equal(t, 2, dash.Locations)
	assert.Equal(t, 1, dash.Users)
	assert.Equal(t, 1, dash.Categories)
	assert.Equal(t, int64(10), dash.TotalUnits)
	assert.Equal(t, []string{"inventory/loc-2_var-9"}, dash.Malformed)
}

func TestDashboard_StorageFault(t *testing.T) {
	s := setupTestServer(t)
	s.slot.FailReads(memory.ErrInjected)

	rec := s.do(t, http.MethodGet, "/api/dashboard", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

// =============================================================================
// HEALTH AND METRICS
// =============================================================================

func TestHealth(t *testing.T) {
	s := setupTestServer(t)

	rec := s.do(t, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]string](t, rec)
	assert.Equal(t, "memory", body["backend"])
	assert.NotContains(t, body, "updated_at")

	s.slot.FailReads(memory.ErrInjected)
	rec = s.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealth_ReportsLastWriteForTimestampedSlot(t *testing.T) {
	// GIVEN: A handler over SQLite after one adjustment
	// WHEN: Checking health
	// THEN: The last write time is reported

	slot, err := sqlite.New(":memory:", "")
	require.NoError(t, err)
	t.Cleanup(func() { slot.Close() })
	store := docstore.New(docstore.NewBlobStore(slot, inventory.SeedSnapshot))
	h := NewHandler(store, inventory.NewLedger(store), zap.NewNop())
	router := NewRouter(h, nil)

	_, err = h.Ledger.AdjustStock(context.Background(), inventory.AdjustInput{
		LocationID: "loc-1", ItemID: "item-1", VariantID: "var-1", Delta: 1,
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]string](t, rec)
	assert.Equal(t, "sqlite", body["backend"])
	at, err := time.Parse(time.RFC3339, body["updated_at"])
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), at, time.Minute)
}

func TestRouter_DefaultCORSOrigins(t *testing.T) {
	// GIVEN: A router built without configured origins
	// WHEN: A browser preflights from each configured default origin
	// THEN: The origin is allowed, and an unlisted one is not

	s := setupTestServer(t)
	preflight := func(origin string) string {
		req := httptest.NewRequest(http.MethodOptions, "/api/items", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		return rec.Header().Get("Access-Control-Allow-Origin")
	}

	for _, origin := range config.DefaultCORSOrigins {
		assert.Equal(t, origin, preflight(origin))
	}
	assert.Empty(t, preflight("http://localhost:3000"))
}

func TestMetricsEndpoint(t *testing.T) {
	s := setupTestServer(t)
	s.do(t, http.MethodGet, "/api/items", nil)

	rec := s.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}
