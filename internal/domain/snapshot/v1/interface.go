package snapshotv1

import "context"

// Sink receives emitted snapshot rows in replay order.
type Sink interface {
	Write(ctx context.Context, row *Row) error
	Close() error
}
