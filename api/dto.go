/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Typed records already
  carry JSON tags, so most responses return them directly; DTOs exist where
  the wire shape differs from the stored shape.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

DOCUMENTS:
  Generic collection endpoints return documents flattened with their id:
    {"id": "loc-1", "name": "Main Warehouse", ...}
  An "id" field in a request body is ignored; the path decides the id.

VALIDATION:
  Validation is done in handlers and the inventory package, not in DTOs.

SEE ALSO:
  - handlers.go: Uses these types
  - inventory/types.go: Stored record shapes
*/
package api

import (
	"github.com/shopspring/decimal"
	"github.com/warp/stockledger/docstore"
)

// =============================================================================
// DOCUMENTS
// =============================================================================

// DocumentDTO is a document with its id folded in.
type DocumentDTO map[string]any

func toDocumentDTO(id string, doc docstore.Document) DocumentDTO {
	out := make(DocumentDTO, len(doc)+1)
	for k, v := range doc {
		out[k] = v
	}
	out["id"] = id
	return out
}

func toDocumentDTOs(entries []docstore.Entry) []DocumentDTO {
	dtos := make([]DocumentDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toDocumentDTO(e.ID, e.Data)
	}
	return dtos
}

// bodyDocument strips the id from a request body.
func bodyDocument(body map[string]any) docstore.Document {
	doc := make(docstore.Document, len(body))
	for k, v := range body {
		if k == "id" {
			continue
		}
		doc[k] = v
	}
	return doc
}

// =============================================================================
// STOCK
// =============================================================================

// AdjustRequest changes stock at one location. QuantityChange is expressed
// in UOMID when given, otherwise in the item's base unit.
type AdjustRequest struct {
	LocationID     string          `json:"location_id"`
	ItemID         string          `json:"item_id"`
	VariantID      string          `json:"variant_id"`
	QuantityChange decimal.Decimal `json:"quantity_change"`
	UOMID          string          `json:"uom_id,omitempty"`
	Reference      string          `json:"reference"`
	UserID         string          `json:"user_id"`
}

// AdjustResponse reports the quantity after an adjustment.
type AdjustResponse struct {
	InventoryID    string `json:"inventory_id"`
	NewQuantity    int64  `json:"new_quantity"`
	QuantityChange int64  `json:"quantity_change"`
}

// TransferRequest moves stock between two locations.
type TransferRequest struct {
	FromLocationID string          `json:"from_location_id"`
	ToLocationID   string          `json:"to_location_id"`
	ItemID         string          `json:"item_id"`
	VariantID      string          `json:"variant_id"`
	Quantity       decimal.Decimal `json:"quantity"`
	UOMID          string          `json:"uom_id,omitempty"`
	Reference      string          `json:"reference"`
	UserID         string          `json:"user_id"`
}

// MovementDTO is a movement with its id.
type MovementDTO struct {
	ID             string `json:"id"`
	ItemID         string `json:"item_id"`
	VariantID      string `json:"variant_id"`
	LocationID     string `json:"location_id"`
	QuantityChange int64  `json:"quantity_change"`
	NewQuantity    int64  `json:"new_quantity"`
	Reference      string `json:"reference"`
	Timestamp      string `json:"timestamp"`
	UserID         string `json:"user_id"`
	Type           string `json:"type"`
}

// =============================================================================
// DASHBOARD
// =============================================================================

// DashboardDTO summarizes the catalog.
type DashboardDTO struct {
	Items      int             `json:"items"`
	Variants   int             `json:"variants"`
	Locations  int             `json:"locations"`
	Users      int             `json:"users"`
	Categories int             `json:"categories"`
	TotalUnits int64           `json:"total_units"`
	LowStock   int             `json:"low_stock"`
	StockValue decimal.Decimal `json:"stock_value"`
	Malformed  []string        `json:"malformed,omitempty"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO describes a demo data set.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
