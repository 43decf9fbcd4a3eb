package engine

import (
	"context"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DASHBOARD AGGREGATION
// =============================================================================

// Aggregate is the acknowledgement progress of one document: how many active
// entries exist and how many of them are acknowledged. Retired entries are
// excluded from both counts.
type Aggregate struct {
	DocumentID   DocumentID
	Total        int
	Acknowledged int
}

// Completion returns the acknowledged fraction as an exact decimal, rounded
// to four places. A document with no active entries is 0, not an error.
func (a Aggregate) Completion() decimal.Decimal {
	if a.Total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(a.Acknowledged)).
		Div(decimal.NewFromInt(int64(a.Total))).
		Round(4)
}

// Complete reports whether every active entry is acknowledged. A document
// with no active entries is complete.
func (a Aggregate) Complete() bool {
	return a.Acknowledged == a.Total
}

// Aggregate computes the progress of one document.
func (e *Engine) Aggregate(ctx context.Context, tx Tx, id DocumentID) (Aggregate, error) {
	total, err := tx.Ledger().CountActive(ctx, e.kind, id)
	if err != nil {
		return Aggregate{}, storagef("count entries", err)
	}
	acked, err := tx.Ledger().CountActiveAcknowledged(ctx, e.kind, id)
	if err != nil {
		return Aggregate{}, storagef("count acknowledged entries", err)
	}
	return Aggregate{DocumentID: id, Total: total, Acknowledged: acked}, nil
}

// Aggregates computes progress for a list of documents, preserving order.
func (e *Engine) Aggregates(ctx context.Context, tx Tx, ids []DocumentID) ([]Aggregate, error) {
	out := make([]Aggregate, 0, len(ids))
	for _, id := range ids {
		agg, err := e.Aggregate(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, agg)
	}
	return out, nil
}
