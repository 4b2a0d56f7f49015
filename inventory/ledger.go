/*
ledger.go - Stock adjustments and the movement log

PURPOSE:
  AdjustStock is the only way stock quantities change. Each call does two
  writes in one docstore batch:

    1. Replace inventory/<location>_<variant> with the new quantity
    2. Append one document to inventory_movements

  Both land in the same snapshot save, so the movement log and the snapshot
  records cannot diverge through this path.

NEGATIVE STOCK:
  Allowed by default. WithAllowNegative(false) enables a floor at zero and
  rejects withdrawals that would cross it with ErrInsufficientStock.

IDEMPOTENCY:
  None. Two identical calls are two events and produce two movements.

SEE ALSO:
  - reconcile.go: verifies snapshot == replay(movements)
  - docstore/store.go: Update batches
*/
package inventory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/warp/stockledger/docstore"
	"github.com/warp/stockledger/metrics"
	"go.uber.org/zap"
)

// AdjustInput describes one stock change.
type AdjustInput struct {
	LocationID string
	ItemID     string
	VariantID  string
	Delta      int64
	Reference  string
	UserID     string
	Type       MovementType // defaults to MovementAdjustment
}

// TransferInput moves Quantity units of a variant between two locations.
type TransferInput struct {
	FromLocationID string
	ToLocationID   string
	ItemID         string
	VariantID      string
	Quantity       int64
	Reference      string
	UserID         string
}

// TransferResult reports the quantities after a transfer.
type TransferResult struct {
	FromQuantity int64 `json:"from_quantity"`
	ToQuantity   int64 `json:"to_quantity"`
}

// MovementFilter selects movements. Zero fields match everything.
type MovementFilter struct {
	LocationID string
	ItemID     string
	VariantID  string
	Type       MovementType
	Limit      int
}

// Ledger applies stock changes.
type Ledger struct {
	store         *docstore.Store
	allowNegative bool
	now           func() time.Time
	log           *zap.Logger
}

// LedgerOption configures a Ledger.
type LedgerOption func(*Ledger)

// WithAllowNegative toggles whether quantities may drop below zero.
func WithAllowNegative(allow bool) LedgerOption {
	return func(l *Ledger) { l.allowNegative = allow }
}

// WithClock overrides the movement timestamp source.
func WithClock(now func() time.Time) LedgerOption {
	return func(l *Ledger) { l.now = now }
}

// WithLogger sets the ledger logger.
func WithLogger(log *zap.Logger) LedgerOption {
	return func(l *Ledger) { l.log = log }
}

// NewLedger creates a Ledger over store.
func NewLedger(store *docstore.Store, opts ...LedgerOption) *Ledger {
	l := &Ledger{
		store:         store,
		allowNegative: true,
		now:           func() time.Time { return time.Now().UTC() },
		log:           zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// AllowNegative reports whether the zero floor is disabled.
func (l *Ledger) AllowNegative() bool {
	return l.allowNegative
}

// =============================================================================
// WRITES
// =============================================================================

// AdjustStock adds in.Delta to the quantity at (location, variant), records
// the movement and returns the new quantity.
func (l *Ledger) AdjustStock(ctx context.Context, in AdjustInput) (int64, error) {
	if in.Type == "" {
		in.Type = MovementAdjustment
	}
	if err := validateAdjust(in); err != nil {
		l.fail(err)
		return 0, err
	}

	var newQty int64
	err := l.store.Update(ctx, func(tx *docstore.Tx) error {
		var err error
		newQty, err = l.apply(tx, in, l.now())
		return err
	})
	if err != nil {
		l.fail(err)
		return 0, err
	}

	metrics.StockAdjustments.WithLabelValues(string(in.Type)).Inc()
	l.log.Debug("stock adjusted",
		zap.Stringer("record", InventoryRef(in.LocationID, in.VariantID)),
		zap.String("item_id", in.ItemID),
		zap.Int64("delta", in.Delta),
		zap.Int64("new_quantity", newQty),
		zap.String("type", string(in.Type)),
	)
	return newQty, nil
}

// Transfer withdraws from one location and receives at another in a single
// unit of work: two snapshot writes and two movements.
func (l *Ledger) Transfer(ctx context.Context, in TransferInput) (TransferResult, error) {
	var res TransferResult
	if in.Quantity <= 0 {
		err := fmt.Errorf("%w: transfer quantity must be positive", ErrInvalidAdjustment)
		l.fail(err)
		return res, err
	}
	if in.FromLocationID == in.ToLocationID {
		err := fmt.Errorf("%w: source and destination are the same location", ErrInvalidAdjustment)
		l.fail(err)
		return res, err
	}

	out := AdjustInput{
		LocationID: in.FromLocationID,
		ItemID:     in.ItemID,
		VariantID:  in.VariantID,
		Delta:      -in.Quantity,
		Reference:  in.Reference,
		UserID:     in.UserID,
		Type:       MovementTransferOut,
	}
	recv := out
	recv.LocationID = in.ToLocationID
	recv.Delta = in.Quantity
	recv.Type = MovementTransferIn

	for _, step := range []AdjustInput{out, recv} {
		if err := validateAdjust(step); err != nil {
			l.fail(err)
			return res, err
		}
	}

	err := l.store.Update(ctx, func(tx *docstore.Tx) error {
		now := l.now()
		var err error
		if res.FromQuantity, err = l.apply(tx, out, now); err != nil {
			return err
		}
		res.ToQuantity, err = l.apply(tx, recv, now)
		return err
	})
	if err != nil {
		l.fail(err)
		return TransferResult{}, err
	}

	metrics.StockAdjustments.WithLabelValues(string(MovementTransferOut)).Inc()
	metrics.StockAdjustments.WithLabelValues(string(MovementTransferIn)).Inc()
	l.log.Debug("stock transferred",
		zap.Stringer("from", InventoryRef(in.FromLocationID, in.VariantID)),
		zap.Stringer("to", InventoryRef(in.ToLocationID, in.VariantID)),
		zap.Int64("quantity", in.Quantity),
	)
	return res, nil
}

// apply stages one adjustment inside tx.
func (l *Ledger) apply(tx *docstore.Tx, in AdjustInput, at time.Time) (int64, error) {
	id := InventoryID(in.LocationID, in.VariantID)

	prior, err := stagedQuantity(tx, id)
	if err != nil {
		return 0, err
	}
	if (in.Delta > 0 && prior > math.MaxInt64-in.Delta) ||
		(in.Delta < 0 && prior < math.MinInt64-in.Delta) {
		return 0, fmt.Errorf("%w: quantity overflow for %s", ErrInvalidAdjustment, id)
	}
	newQty := prior + in.Delta
	if !l.allowNegative && newQty < 0 {
		return 0, &InsufficientStockError{InventoryID: id, Available: prior, Requested: in.Delta}
	}

	rec, err := toDocument(InventoryRecord{
		LocationID: in.LocationID,
		ItemID:     in.ItemID,
		VariantID:  in.VariantID,
		Quantity:   newQty,
	})
	if err != nil {
		return 0, err
	}
	if err := tx.Replace(CollectionInventory, id, rec); err != nil {
		return 0, err
	}

	mv, err := toDocument(Movement{
		ItemID:         in.ItemID,
		VariantID:      in.VariantID,
		LocationID:     in.LocationID,
		QuantityChange: in.Delta,
		NewQuantity:    newQty,
		Reference:      in.Reference,
		Timestamp:      at,
		UserID:         in.UserID,
		Type:           in.Type,
	})
	if err != nil {
		return 0, err
	}
	if _, err := tx.Create(CollectionMovements, mv); err != nil {
		return 0, err
	}
	return newQty, nil
}

func stagedQuantity(tx *docstore.Tx, id string) (int64, error) {
	doc, err := tx.Get(CollectionInventory, id)
	if docstore.IsNotFound(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return quantityOf(id, doc)
}

func validateAdjust(in AdjustInput) error {
	switch {
	case in.LocationID == "":
		return fmt.Errorf("%w: location_id is required", ErrInvalidAdjustment)
	case in.ItemID == "":
		return fmt.Errorf("%w: item_id is required", ErrInvalidAdjustment)
	case in.VariantID == "":
		return fmt.Errorf("%w: variant_id is required", ErrInvalidAdjustment)
	case in.Delta == 0:
		return fmt.Errorf("%w: quantity change must be non-zero", ErrInvalidAdjustment)
	}
	return nil
}

func (l *Ledger) fail(err error) {
	reason := "other"
	var se *docstore.StorageError
	switch {
	case errors.As(err, &se):
		reason = "storage"
		metrics.StorageFaults.WithLabelValues(se.Op).Inc()
		l.log.Error("stock adjustment storage fault", zap.Error(err))
	case errors.Is(err, ErrInsufficientStock):
		reason = "insufficient_stock"
	case errors.Is(err, ErrInvalidAdjustment):
		reason = "invalid"
	case errors.Is(err, ErrMalformedRecord):
		reason = "malformed_record"
		l.log.Warn("stock adjustment hit a malformed record; run reconcile --repair", zap.Error(err))
	}
	metrics.StockAdjustmentFailures.WithLabelValues(reason).Inc()
}

// =============================================================================
// READS
// =============================================================================

// Quantity returns the current quantity at (location, variant); 0 if no
// record exists.
func (l *Ledger) Quantity(ctx context.Context, locationID, variantID string) (int64, error) {
	id := InventoryID(locationID, variantID)
	doc, err := l.store.Get(ctx, CollectionInventory, id)
	if docstore.IsNotFound(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return quantityOf(id, doc)
}

// Movements returns matching movements, newest first.
func (l *Ledger) Movements(ctx context.Context, f MovementFilter) ([]Movement, error) {
	all, err := NewRepo[Movement](l.store).List(ctx)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, m := range all {
		if f.LocationID != "" && m.LocationID != f.LocationID {
			continue
		}
		if f.ItemID != "" && m.ItemID != f.ItemID {
			continue
		}
		if f.VariantID != "" && m.VariantID != f.VariantID {
			continue
		}
		if f.Type != "" && m.Type != f.Type {
			continue
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].ID > out[j].ID
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}
