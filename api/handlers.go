/*
handlers.go - HTTP API handlers for the stock ledger

PURPOSE:
  Exposes the document store and the inventory ledger via REST API. Handles
  HTTP request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Collections (untyped documents, validated for known collections):
    GET    /api/collections/{collection}        List documents
    POST   /api/collections/{collection}        Create document (generated id)
    GET    /api/collections/{collection}/{id}   Get document
    PUT    /api/collections/{collection}/{id}   Replace document
    PATCH  /api/collections/{collection}/{id}   Merge fields into document
    DELETE /api/collections/{collection}/{id}   Delete document

  Inventory:
    GET    /api/inventory                       Stock lines in display order
    POST   /api/inventory/adjust                Adjust stock
    POST   /api/inventory/transfer              Transfer between locations
    GET    /api/inventory/movements             Movement history, newest first
    GET    /api/inventory/low-stock             Lines below reorder level
    GET    /api/inventory/valuation             Stock value

  Catalog:
    GET    /api/dashboard                       Catalog counts and stock totals
    GET    /api/items                           Items in display order
    GET    /api/categories                      Categories by rank, name

  Reconciliation:
    GET    /api/reconciliation                  Snapshot vs movement replay
    POST   /api/reconciliation/repair           Repair drift

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Document not found
  - 409: Insufficient stock, ledger-owned collection, malformed stored record
  - 503: Storage fault
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/warp/stockledger/docstore"
	"github.com/warp/stockledger/inventory"
	"go.uber.org/zap"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store      *docstore.Store
	Documents  *inventory.Documents
	Ledger     *inventory.Ledger
	Reconciler *inventory.Reconciler
	Log        *zap.Logger

	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a new handler over the given store and ledger.
func NewHandler(store *docstore.Store, ledger *inventory.Ledger, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		Store:      store,
		Documents:  inventory.NewDocuments(store),
		Ledger:     ledger,
		Reconciler: inventory.NewReconciler(store, log),
		Log:        log,
	}
}

// =============================================================================
// COLLECTION HANDLERS
// =============================================================================

// ListDocuments returns every document in a collection.
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Documents.List(r.Context(), chi.URLParam(r, "collection"))
	if err != nil {
		h.writeDomainError(w, "Failed to list documents", err)
		return
	}
	writeJSON(w, http.StatusOK, toDocumentDTOs(entries))
}

// GetDocument returns one document.
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	collection, id := chi.URLParam(r, "collection"), chi.URLParam(r, "id")
	doc, err := h.Documents.Get(r.Context(), collection, id)
	if err != nil {
		h.writeDomainError(w, "Failed to get document", err)
		return
	}
	writeJSON(w, http.StatusOK, toDocumentDTO(id, doc))
}

// CreateDocument inserts a document under a generated id.
func (h *Handler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeBody(w, r)
	if !ok {
		return
	}
	collection := chi.URLParam(r, "collection")
	doc := bodyDocument(body)

	id, err := h.Documents.Create(r.Context(), collection, doc)
	if err != nil {
		h.writeDomainError(w, "Failed to create document", err)
		return
	}
	writeJSON(w, http.StatusCreated, toDocumentDTO(id, doc))
}

// ReplaceDocument writes the full body of a document.
func (h *Handler) ReplaceDocument(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeBody(w, r)
	if !ok {
		return
	}
	collection, id := chi.URLParam(r, "collection"), chi.URLParam(r, "id")
	doc := bodyDocument(body)

	if err := h.Documents.Replace(r.Context(), collection, id, doc); err != nil {
		h.writeDomainError(w, "Failed to replace document", err)
		return
	}
	writeJSON(w, http.StatusOK, toDocumentDTO(id, doc))
}

// MergeDocument overlays the given fields, creating the document if needed.
func (h *Handler) MergeDocument(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeBody(w, r)
	if !ok {
		return
	}
	collection, id := chi.URLParam(r, "collection"), chi.URLParam(r, "id")

	merged, err := h.Documents.Merge(r.Context(), collection, id, bodyDocument(body))
	if err != nil {
		h.writeDomainError(w, "Failed to merge document", err)
		return
	}
	writeJSON(w, http.StatusOK, toDocumentDTO(id, merged))
}

// DeleteDocument removes a document. Missing documents are not an error.
func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	collection, id := chi.URLParam(r, "collection"), chi.URLParam(r, "id")
	if err := h.Documents.Delete(r.Context(), collection, id); err != nil {
		h.writeDomainError(w, "Failed to delete document", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// INVENTORY HANDLERS
// =============================================================================

// ListInventory returns stock lines in display order.
// GET /api/inventory?location_id=
func (h *Handler) ListInventory(w http.ResponseWriter, r *http.Request) {
	catalog, err := inventory.LoadCatalog(r.Context(), h.Store)
	if err != nil {
		h.writeDomainError(w, "Failed to load inventory", err)
		return
	}
	records := filterRecords(catalog.Records, r.URL.Query().Get("location_id"))
	writeJSON(w, http.StatusOK, inventory.StockLines(records, catalog.Lookup()))
}

// AdjustStock applies one stock change.
// POST /api/inventory/adjust
func (h *Handler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	var req AdjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	ctx := r.Context()

	delta, err := h.toBaseUnits(r, req.QuantityChange, req.ItemID, req.UOMID)
	if err != nil {
		h.writeDomainError(w, "Invalid quantity", err)
		return
	}

	newQty, err := h.Ledger.AdjustStock(ctx, inventory.AdjustInput{
		LocationID: req.LocationID,
		ItemID:     req.ItemID,
		VariantID:  req.VariantID,
		Delta:      delta,
		Reference:  req.Reference,
		UserID:     req.UserID,
	})
	if err != nil {
		h.writeDomainError(w, "Failed to adjust stock", err)
		return
	}

	writeJSON(w, http.StatusOK, AdjustResponse{
		InventoryID:    inventory.InventoryID(req.LocationID, req.VariantID),
		NewQuantity:    newQty,
		QuantityChange: delta,
	})
}

// TransferStock moves stock between locations as one unit of work.
// POST /api/inventory/transfer
func (h *Handler) TransferStock(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	qty, err := h.toBaseUnits(r, req.Quantity, req.ItemID, req.UOMID)
	if err != nil {
		h.writeDomainError(w, "Invalid quantity", err)
		return
	}

	res, err := h.Ledger.Transfer(r.Context(), inventory.TransferInput{
		FromLocationID: req.FromLocationID,
		ToLocationID:   req.ToLocationID,
		ItemID:         req.ItemID,
		VariantID:      req.VariantID,
		Quantity:       qty,
		Reference:      req.Reference,
		UserID:         req.UserID,
	})
	if err != nil {
		h.writeDomainError(w, "Failed to transfer stock", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ListMovements returns movement history, newest first.
// GET /api/inventory/movements?location_id=&item_id=&variant_id=&type=&limit=
func (h *Handler) ListMovements(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := inventory.MovementFilter{
		LocationID: q.Get("location_id"),
		ItemID:     q.Get("item_id"),
		VariantID:  q.Get("variant_id"),
		Type:       inventory.MovementType(q.Get("type")),
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		filter.Limit = limit
	}

	mvs, err := h.Ledger.Movements(r.Context(), filter)
	if err != nil {
		h.writeDomainError(w, "Failed to list movements", err)
		return
	}

	dtos := make([]MovementDTO, len(mvs))
	for i, m := range mvs {
		dtos[i] = MovementDTO{
			ID:             m.ID,
			ItemID:         m.ItemID,
			VariantID:      m.VariantID,
			LocationID:     m.LocationID,
			QuantityChange: m.QuantityChange,
			NewQuantity:    m.NewQuantity,
			Reference:      m.Reference,
			Timestamp:      m.Timestamp.Format(time.RFC3339),
			UserID:         m.UserID,
			Type:           string(m.Type),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// LowStock returns stock lines under their reorder level.
// GET /api/inventory/low-stock?location_id=
func (h *Handler) LowStock(w http.ResponseWriter, r *http.Request) {
	catalog, err := inventory.LoadCatalog(r.Context(), h.Store)
	if err != nil {
		h.writeDomainError(w, "Failed to load inventory", err)
		return
	}
	records := filterRecords(catalog.Records, r.URL.Query().Get("location_id"))
	writeJSON(w, http.StatusOK, inventory.LowStock(records, catalog.Lookup()))
}

// Valuation returns total stock value.
// GET /api/inventory/valuation
func (h *Handler) Valuation(w http.ResponseWriter, r *http.Request) {
	catalog, err := inventory.LoadCatalog(r.Context(), h.Store)
	if err != nil {
		h.writeDomainError(w, "Failed to load inventory", err)
		return
	}
	writeJSON(w, http.StatusOK, inventory.Valuation(catalog.Records, catalog.Lookup()))
}

// =============================================================================
// CATALOG HANDLERS
// =============================================================================

// Dashboard returns catalog counts and stock totals. Documents that fail to
// decode are left out of the counts and listed by reference.
// GET /api/dashboard
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	catalog, err := inventory.LoadCatalog(r.Context(), h.Store)
	if err != nil {
		h.writeDomainError(w, "Failed to load dashboard", err)
		return
	}
	lk := catalog.Lookup()

	resp := DashboardDTO{
		Items:      len(catalog.Items),
		Variants:   catalog.VariantCount(),
		Locations:  len(catalog.Locations),
		Users:      len(catalog.Users),
		Categories: len(catalog.Categories),
		LowStock:   len(inventory.LowStock(catalog.Records, lk)),
		StockValue: inventory.Valuation(catalog.Records, lk).Total,
	}
	for _, rec := range catalog.Records {
		resp.TotalUnits += rec.Quantity
	}
	for _, ref := range catalog.Malformed {
		resp.Malformed = append(resp.Malformed, ref.String())
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListItems returns items ordered by category rank, category, subcategory, name.
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	catalog, err := inventory.LoadCatalog(r.Context(), h.Store)
	if err != nil {
		h.writeDomainError(w, "Failed to load items", err)
		return
	}
	items := catalog.Items
	catalog.Lookup().SortItems(items)

	dtos := make([]itemDTO, len(items))
	for i, it := range items {
		dtos[i] = itemDTO{ID: it.ID, Item: it}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListCategories returns categories by rank, then name.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := inventory.NewRepo[inventory.Category](h.Store).List(r.Context())
	if err != nil {
		h.writeDomainError(w, "Failed to list categories", err)
		return
	}
	inventory.SortCategories(cats)

	dtos := make([]categoryDTO, len(cats))
	for i, c := range cats {
		dtos[i] = categoryDTO{ID: c.ID, Category: c}
	}
	writeJSON(w, http.StatusOK, dtos)
}

type itemDTO struct {
	ID string `json:"id"`
	inventory.Item
}

type categoryDTO struct {
	ID string `json:"id"`
	inventory.Category
}

// =============================================================================
// RECONCILIATION HANDLERS
// =============================================================================

// CheckReconciliation compares snapshot records with movement replay.
// GET /api/reconciliation
func (h *Handler) CheckReconciliation(w http.ResponseWriter, r *http.Request) {
	report, err := h.Reconciler.Check(r.Context())
	if err != nil {
		h.writeDomainError(w, "Failed to check reconciliation", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// RepairReconciliation rewrites drifted records.
// POST /api/reconciliation/repair
func (h *Handler) RepairReconciliation(w http.ResponseWriter, r *http.Request) {
	report, err := h.Reconciler.Repair(r.Context())
	if err != nil {
		h.writeDomainError(w, "Failed to repair inventory", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Health reports whether the snapshot can be loaded.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if _, err := h.Store.Snapshot(r.Context()); err != nil {
		h.writeDomainError(w, "Storage unavailable", err)
		return
	}
	resp := map[string]string{
		"status":  "ok",
		"backend": h.Store.Blobs().Backend(),
	}
	if at, ok, err := h.Store.Blobs().UpdatedAt(r.Context()); err == nil && ok && !at.IsZero() {
		resp["updated_at"] = at.UTC().Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case docstore.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, inventory.ErrInsufficientStock), errors.Is(err, inventory.ErrLedgerOwned),
		errors.Is(err, inventory.ErrMalformedRecord):
		return http.StatusConflict
	case inventory.IsClientError(err):
		return http.StatusBadRequest
	case docstore.IsStorageFault(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeDomainError(w http.ResponseWriter, message string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.Log.Error(message, zap.Error(err), zap.Int("status", status))
	}
	writeError(w, status, message, err)
}

func decodeBody(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	var body map[string]any
	if err := dec.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return nil, false
	}
	if body == nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", fmt.Errorf("body must be a JSON object"))
		return nil, false
	}
	return body, true
}

// toBaseUnits converts a request quantity to whole base units of the item.
func (h *Handler) toBaseUnits(r *http.Request, qty decimal.Decimal, itemID, uomID string) (int64, error) {
	if uomID == "" {
		return inventory.ConvertToBase(qty, "", "", nil)
	}
	catalog, err := inventory.LoadCatalog(r.Context(), h.Store)
	if err != nil {
		return 0, err
	}
	item, ok := catalog.Item(itemID)
	if !ok {
		return 0, fmt.Errorf("%w: unknown item %q for unit conversion", inventory.ErrInvalidAdjustment, itemID)
	}
	return inventory.ConvertToBase(qty, uomID, item.BaseUOM, catalog.Conversions)
}

func filterRecords(records []inventory.InventoryRecord, locationID string) []inventory.InventoryRecord {
	if locationID == "" {
		return records
	}
	out := make([]inventory.InventoryRecord, 0, len(records))
	for _, rec := range records {
		if rec.LocationID == locationID {
			out = append(out, rec)
		}
	}
	return out
}
