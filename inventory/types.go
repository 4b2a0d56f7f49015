/*
Package inventory is the stock-keeping domain on top of the document store.

PURPOSE:
  Closed, typed records for each collection the application uses, a typed
  repository that validates at the store boundary, and the stock ledger.

KEY CONCEPTS IN THIS FILE (types.go):
  - Location, Category, UOM, UOMConversion, User: reference data
  - Item / Variant: catalog; variants are embedded in their item, so deleting
    an item removes its variants with it
  - InventoryRecord: current quantity per (location, variant), keyed by a
    composite id
  - Movement: append-only audit entry for one stock change

QUANTITIES:
  Quantities are int64 in the item's base unit of measure. Money and
  conversion factors use decimal.Decimal.

SEE ALSO:
  - repo.go:      typed access to collections
  - ledger.go:    AdjustStock / Transfer
  - reconcile.go: snapshot vs movement-log replay
  - ordering.go:  display ordering
*/
package inventory

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/stockledger/docstore"
)

// =============================================================================
// COLLECTIONS
// =============================================================================

const (
	CollectionLocations      = "locations"
	CollectionItems          = "items"
	CollectionInventory      = "inventory"
	CollectionMovements      = "inventory_movements"
	CollectionUOMs           = "uoms"
	CollectionUOMConversions = "uom_conversions"
	CollectionCategories     = "categories"
	CollectionUsers          = "users"
)

// Collections lists every collection the application reads.
var Collections = []string{
	CollectionLocations,
	CollectionItems,
	CollectionInventory,
	CollectionMovements,
	CollectionUOMs,
	CollectionUOMConversions,
	CollectionCategories,
	CollectionUsers,
}

// Record is implemented by every typed document.
type Record interface {
	CollectionName() string
	Validate() error
}

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// =============================================================================
// REFERENCE DATA
// =============================================================================

type LocationType string

const (
	LocationWarehouse LocationType = "Warehouse"
	LocationJobsite   LocationType = "Jobsite"
	LocationOffice    LocationType = "Office"
	LocationOther     LocationType = "Other"
)

type Location struct {
	ID      string       `json:"-"`
	Name    string       `json:"name"`
	Address string       `json:"address,omitempty"`
	Type    LocationType `json:"type,omitempty"`
	Status  Status       `json:"status,omitempty"`
}

func (Location) CollectionName() string { return CollectionLocations }

func (l Location) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return invalid(CollectionLocations, "name", "required")
	}
	return nil
}

// Category groups items. SortOrder is the explicit display rank; nil means 0.
type Category struct {
	ID            string   `json:"-"`
	Name          string   `json:"name"`
	Subcategories []string `json:"subcategories"`
	SortOrder     *float64 `json:"sort_order,omitempty"`
}

func (Category) CollectionName() string { return CollectionCategories }

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return invalid(CollectionCategories, "name", "required")
	}
	return nil
}

// Rank returns the sort rank, defaulting to 0. Ranks may be fractional.
func (c Category) Rank() float64 {
	if c.SortOrder == nil {
		return 0
	}
	return *c.SortOrder
}

type UOM struct {
	ID           string `json:"-"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
}

func (UOM) CollectionName() string { return CollectionUOMs }

func (u UOM) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return invalid(CollectionUOMs, "name", "required")
	}
	return nil
}

// UOMConversion says 1 FromUOM = Multiplier ToUOM.
type UOMConversion struct {
	ID         string          `json:"-"`
	FromUOM    string          `json:"from_uom"`
	ToUOM      string          `json:"to_uom"`
	Multiplier decimal.Decimal `json:"multiplier"`
}

func (UOMConversion) CollectionName() string { return CollectionUOMConversions }

func (c UOMConversion) Validate() error {
	switch {
	case c.FromUOM == "":
		return invalid(CollectionUOMConversions, "from_uom", "required")
	case c.ToUOM == "":
		return invalid(CollectionUOMConversions, "to_uom", "required")
	case c.FromUOM == c.ToUOM:
		return invalid(CollectionUOMConversions, "to_uom", "must differ from from_uom")
	case !c.Multiplier.IsPositive():
		return invalid(CollectionUOMConversions, "multiplier", "must be positive")
	}
	return nil
}

type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
)

type User struct {
	ID               string    `json:"-"`
	FullName         string    `json:"full_name"`
	Email            string    `json:"email"`
	Role             UserRole  `json:"role"`
	AssignedLocation string    `json:"assigned_location,omitempty"`
	Phone            string    `json:"phone,omitempty"`
	Status           Status    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
}

func (User) CollectionName() string { return CollectionUsers }

func (u User) Validate() error {
	if !strings.Contains(u.Email, "@") {
		return invalid(CollectionUsers, "email", "must be an email address")
	}
	if u.Role != RoleAdmin && u.Role != RoleUser {
		return invalid(CollectionUsers, "role", "must be admin or user")
	}
	return nil
}

// =============================================================================
// CATALOG
// =============================================================================

type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type Variant struct {
	VariantID      string          `json:"variant_id"`
	SKU            string          `json:"sku"`
	Size           string          `json:"size,omitempty"`
	Color          string          `json:"color,omitempty"`
	Type           string          `json:"type,omitempty"`
	Brand          string          `json:"brand,omitempty"`
	AverageCost    decimal.Decimal `json:"average_cost"`
	ReorderLevel   int64           `json:"reorder_level"`
	SerialRequired bool            `json:"serial_required"`
	Attributes     []Attribute     `json:"attributes,omitempty"`
	ApplicableUOMs []string        `json:"applicable_uoms,omitempty"`
}

type Item struct {
	ID          string    `json:"-"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Subcategory string    `json:"subcategory,omitempty"`
	Description string    `json:"description,omitempty"`
	BaseUOM     string    `json:"base_uom"`
	HasVariants bool      `json:"has_variants"`
	Variants    []Variant `json:"variants"`
	Status      Status    `json:"status,omitempty"`
}

func (Item) CollectionName() string { return CollectionItems }

func (i Item) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return invalid(CollectionItems, "name", "required")
	}
	seen := make(map[string]bool, len(i.Variants))
	for _, v := range i.Variants {
		if v.VariantID == "" {
			return invalid(CollectionItems, "variants.variant_id", "required")
		}
		if seen[v.VariantID] {
			return invalid(CollectionItems, "variants.variant_id", "duplicate "+v.VariantID)
		}
		seen[v.VariantID] = true
		if v.ReorderLevel < 0 {
			return invalid(CollectionItems, "variants.reorder_level", "must not be negative")
		}
	}
	return nil
}

// Variant finds a variant by id.
func (i Item) Variant(id string) (Variant, bool) {
	for _, v := range i.Variants {
		if v.VariantID == id {
			return v, true
		}
	}
	return Variant{}, false
}

// =============================================================================
// STOCK
// =============================================================================

// InventoryRecord is the current quantity for one (location, variant) pair.
// Its document id is InventoryID(LocationID, VariantID).
type InventoryRecord struct {
	ID         string `json:"-"`
	LocationID string `json:"location_id"`
	ItemID     string `json:"item_id"`
	VariantID  string `json:"variant_id"`
	Quantity   int64  `json:"quantity"`
}

func (InventoryRecord) CollectionName() string { return CollectionInventory }

func (r InventoryRecord) Validate() error {
	if r.LocationID == "" {
		return invalid(CollectionInventory, "location_id", "required")
	}
	if r.VariantID == "" {
		return invalid(CollectionInventory, "variant_id", "required")
	}
	return nil
}

type MovementType string

const (
	MovementAdjustment     MovementType = "adjustment"
	MovementTransferIn     MovementType = "transfer_in"
	MovementTransferOut    MovementType = "transfer_out"
	MovementOpeningBalance MovementType = "opening_balance"
	MovementCorrection     MovementType = "correction"
)

// Movement is one immutable stock change. Movements are never edited or
// deleted; replaying QuantityChange per composite key rebuilds the
// InventoryRecord quantities.
type Movement struct {
	ID             string       `json:"-"`
	ItemID         string       `json:"item_id"`
	VariantID      string       `json:"variant_id"`
	LocationID     string       `json:"location_id"`
	QuantityChange int64        `json:"quantity_change"`
	NewQuantity    int64        `json:"new_quantity"`
	Reference      string       `json:"reference"`
	Timestamp      time.Time    `json:"timestamp"`
	UserID         string       `json:"user_id"`
	Type           MovementType `json:"type"`
}

func (Movement) CollectionName() string { return CollectionMovements }

func (m Movement) Validate() error {
	if m.LocationID == "" || m.VariantID == "" {
		return invalid(CollectionMovements, "location_id", "location and variant are required")
	}
	return nil
}

// InventoryKey returns the composite id this movement applies to.
func (m Movement) InventoryKey() string {
	return InventoryID(m.LocationID, m.VariantID)
}

// InventoryID is the deterministic document id of the InventoryRecord for a
// (location, variant) pair.
func InventoryID(locationID, variantID string) string {
	return docstore.CompositeID(locationID, variantID)
}

// InventoryRef addresses the InventoryRecord for a (location, variant) pair.
func InventoryRef(locationID, variantID string) docstore.Ref {
	return docstore.NewRef(CollectionInventory, InventoryID(locationID, variantID))
}
