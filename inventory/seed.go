package inventory

import "github.com/warp/stockledger/docstore"

// SeedCreatedAt is the fixed creation time of the seeded admin user. It is
// constant so that repeated loads of an empty store return equal snapshots.
const SeedCreatedAt = "2024-01-01T00:00:00Z"

// SeedAdminID is the id of the seeded administrator.
const SeedAdminID = "mock-admin-123"

// SeedSnapshot returns the database used when storage has never been written:
// one admin user, two locations, two units and one category. Items,
// inventory and movements start empty.
func SeedSnapshot() docstore.Snapshot {
	return docstore.Snapshot{
		CollectionUsers: {
			SeedAdminID: {
				"full_name":  "System Admin",
				"email":      "admin@example.com",
				"role":       string(RoleAdmin),
				"status":     string(StatusActive),
				"created_at": SeedCreatedAt,
			},
		},
		CollectionLocations: {
			"loc-1": {
				"name":    "Main Warehouse",
				"address": "123 Logistics Way",
				"type":    string(LocationWarehouse),
				"status":  string(StatusActive),
			},
			"loc-2": {
				"name":    "Downtown Office",
				"address": "456 Business Ave",
				"type":    string(LocationOffice),
				"status":  string(StatusActive),
			},
		},
		CollectionUOMs: {
			"uom-1": {"name": "Piece", "abbreviation": "pc"},
			"uom-2": {"name": "Box", "abbreviation": "bx"},
		},
		CollectionCategories: {
			"cat-1": {
				"name":          "Electronics",
				"subcategories": []any{"Laptops", "Phones"},
				"sort_order":    1,
			},
		},
		CollectionItems:          {},
		CollectionInventory:      {},
		CollectionMovements:      {},
		CollectionUOMConversions: {},
	}
}
