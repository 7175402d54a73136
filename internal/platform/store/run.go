package store

import "context"

// RunInTx runs fn inside a transaction obtained from tx, tagging ctx with reqID
// for query tracing when non-empty
func RunInTx(ctx context.Context, tx TxRunner, reqID string, fn func(ctx context.Context, q RowQuerier) error) error {
	if reqID != "" {
		ctx = WithRequestID(ctx, reqID)
	}
	return tx.Tx(ctx, func(q RowQuerier) error {
		return fn(ctx, q)
	})
}
