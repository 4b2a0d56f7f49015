package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/warp/stockledger/docstore"
	"github.com/warp/stockledger/metrics"
	"go.uber.org/zap"
)

// DriftKind classifies a disagreement between a snapshot record and the
// replay of its movements.
type DriftKind string

const (
	// DriftMissingSnapshot: movements exist but no inventory record.
	DriftMissingSnapshot DriftKind = "missing_snapshot"
	// DriftQuantityMismatch: record quantity differs from the replay sum.
	DriftQuantityMismatch DriftKind = "quantity_mismatch"
	// DriftUnloggedSnapshot: non-zero record with no movements at all.
	DriftUnloggedSnapshot DriftKind = "unlogged_snapshot"
	// DriftMalformedSnapshot: the record does not decode, e.g. a fractional
	// quantity. Repair rewrites it from the replay.
	DriftMalformedSnapshot DriftKind = "malformed_snapshot"
)

// Drift is one inconsistent composite key.
type Drift struct {
	InventoryID      string    `json:"inventory_id"`
	LocationID       string    `json:"location_id"`
	ItemID           string    `json:"item_id"`
	VariantID        string    `json:"variant_id"`
	Kind             DriftKind `json:"kind"`
	SnapshotQuantity int64     `json:"snapshot_quantity"`
	ReplayQuantity   int64     `json:"replay_quantity"`
	Movements        int       `json:"movements"`
	Detail           string    `json:"detail,omitempty"`
}

// Report is the outcome of a Check or Repair.
type Report struct {
	CheckedAt time.Time `json:"checked_at"`
	Records   int       `json:"records"`
	Movements int       `json:"movements"`
	Drifts    []Drift   `json:"drifts"`
	Repaired  int       `json:"repaired"`

	// SkippedMovements lists movement ids that could not be decoded and
	// were left out of the replay. Repair does not touch the log.
	SkippedMovements []string `json:"skipped_movements,omitempty"`
}

// Clean reports whether no drift was found and every movement replayed.
func (r *Report) Clean() bool {
	return len(r.Drifts) == 0 && len(r.SkippedMovements) == 0
}

// Reconciler verifies that every inventory record equals the sum of its
// movements.
type Reconciler struct {
	store *docstore.Store
	now   func() time.Time
	log   *zap.Logger
}

// NewReconciler creates a Reconciler.
func NewReconciler(store *docstore.Store, log *zap.Logger) *Reconciler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reconciler{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		log:   log,
	}
}

// Check compares records with the movement replay without writing.
func (r *Reconciler) Check(ctx context.Context) (*Report, error) {
	snap, err := r.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	report := r.compare(snap.Entries(CollectionInventory), snap.Entries(CollectionMovements))
	r.publish(report)
	return report, nil
}

// Repair rewrites drifted records in one batch. Mismatched, missing and
// malformed records take the replay sum; unlogged records keep their
// quantity and get an opening_balance movement so the log explains them.
func (r *Reconciler) Repair(ctx context.Context) (*Report, error) {
	var report *Report
	err := r.store.Update(ctx, func(tx *docstore.Tx) error {
		report = r.compare(tx.List(CollectionInventory), tx.List(CollectionMovements))

		for _, d := range report.Drifts {
			if err := r.fix(tx, d); err != nil {
				return err
			}
			report.Repaired++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	r.publish(report)
	if report.Repaired > 0 {
		r.log.Info("inventory drift repaired", zap.Int("records", report.Repaired))
	}
	return report, nil
}

func (r *Reconciler) fix(tx *docstore.Tx, d Drift) error {
	switch d.Kind {
	case DriftUnloggedSnapshot:
		mv, err := toDocument(Movement{
			ItemID:         d.ItemID,
			VariantID:      d.VariantID,
			LocationID:     d.LocationID,
			QuantityChange: d.SnapshotQuantity,
			NewQuantity:    d.SnapshotQuantity,
			Reference:      "reconciliation",
			Timestamp:      r.now(),
			Type:           MovementOpeningBalance,
		})
		if err != nil {
			return err
		}
		_, err = tx.Create(CollectionMovements, mv)
		return err
	default:
		rec, err := toDocument(InventoryRecord{
			LocationID: d.LocationID,
			ItemID:     d.ItemID,
			VariantID:  d.VariantID,
			Quantity:   d.ReplayQuantity,
		})
		if err != nil {
			return err
		}
		return tx.Replace(CollectionInventory, d.InventoryID, rec)
	}
}

type replay struct {
	sum    int64
	count  int
	latest Movement
}

func (r *Reconciler) compare(records, movements []docstore.Entry) *Report {
	report := &Report{
		CheckedAt: r.now(),
		Records:   len(records),
		Movements: len(movements),
		Drifts:    []Drift{},
	}

	sums := make(map[string]*replay)
	for _, e := range movements {
		m, err := decodeRecord[Movement](e.ID, e.Data)
		if err != nil {
			report.SkippedMovements = append(report.SkippedMovements, e.ID)
			continue
		}
		key := m.InventoryKey()
		acc, ok := sums[key]
		if !ok {
			acc = &replay{}
			sums[key] = acc
		}
		acc.sum += m.QuantityChange
		acc.count++
		if acc.count == 1 || m.Timestamp.After(acc.latest.Timestamp) {
			acc.latest = m
		}
	}

	seen := make(map[string]bool, len(records))
	for _, e := range records {
		seen[e.ID] = true
		acc := sums[e.ID]
		rec, err := decodeRecord[InventoryRecord](e.ID, e.Data)
		if err != nil {
			report.Drifts = append(report.Drifts, malformedDrift(e, acc, err))
			continue
		}
		d := Drift{
			InventoryID:      rec.ID,
			LocationID:       rec.LocationID,
			ItemID:           rec.ItemID,
			VariantID:        rec.VariantID,
			SnapshotQuantity: rec.Quantity,
		}
		switch {
		case acc == nil && rec.Quantity == 0:
			continue
		case acc == nil:
			d.Kind = DriftUnloggedSnapshot
		case acc.sum != rec.Quantity:
			d.Kind = DriftQuantityMismatch
			d.ReplayQuantity = acc.sum
			d.Movements = acc.count
		default:
			continue
		}
		report.Drifts = append(report.Drifts, d)
	}

	for key, acc := range sums {
		if seen[key] {
			continue
		}
		report.Drifts = append(report.Drifts, Drift{
			InventoryID:    key,
			LocationID:     acc.latest.LocationID,
			ItemID:         acc.latest.ItemID,
			VariantID:      acc.latest.VariantID,
			Kind:           DriftMissingSnapshot,
			ReplayQuantity: acc.sum,
			Movements:      acc.count,
		})
	}

	sort.Slice(report.Drifts, func(i, j int) bool {
		return report.Drifts[i].InventoryID < report.Drifts[j].InventoryID
	})
	return report
}

// malformedDrift recovers what it can about an undecodable record. The
// composite id names the location and variant; the latest movement, then the
// document itself, names the item.
func malformedDrift(e docstore.Entry, acc *replay, cause error) Drift {
	d := Drift{
		InventoryID: e.ID,
		Kind:        DriftMalformedSnapshot,
		Detail:      cause.Error(),
	}
	if parts := docstore.SplitCompositeID(e.ID); len(parts) == 2 {
		d.LocationID, d.VariantID = parts[0], parts[1]
	}
	if acc != nil {
		d.ReplayQuantity = acc.sum
		d.Movements = acc.count
		d.ItemID = acc.latest.ItemID
		if d.LocationID == "" {
			d.LocationID, d.VariantID = acc.latest.LocationID, acc.latest.VariantID
		}
	}
	if d.ItemID == "" {
		d.ItemID, _ = e.Data["item_id"].(string)
	}
	if d.LocationID == "" {
		d.LocationID, _ = e.Data["location_id"].(string)
		d.VariantID, _ = e.Data["variant_id"].(string)
	}
	return d
}

func (r *Reconciler) publish(report *Report) {
	metrics.DriftRecords.Set(float64(len(report.Drifts) - report.Repaired))
	for _, d := range report.Drifts {
		r.log.Warn("inventory drift",
			zap.String("inventory_id", d.InventoryID),
			zap.String("kind", string(d.Kind)),
			zap.Int64("snapshot_quantity", d.SnapshotQuantity),
			zap.Int64("replay_quantity", d.ReplayQuantity),
			zap.String("detail", d.Detail),
		)
	}
	if n := len(report.SkippedMovements); n > 0 {
		r.log.Warn("undecodable movements left out of replay",
			zap.Int("count", n),
			zap.Strings("ids", report.SkippedMovements),
		)
	}
}
