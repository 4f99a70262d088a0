package orderbook

import (
	"github.com/google/btree"

	feedv1 "github.com/quantfeed/bookreplay/internal/domain/feed/v1"
	orderbookv1 "github.com/quantfeed/bookreplay/internal/domain/orderbook/v1"
)

const levelTreeDegree = 32

// Book holds the resting state of one side-keyed order book: per-side maps
// from application sequence number to resting order, plus per-side B-trees of
// aggregated price levels maintained incrementally on every mutation.
type Book struct {
	bids map[int64]*orderbookv1.RestingOrder
	asks map[int64]*orderbookv1.RestingOrder

	bidLevels *btree.BTreeG[orderbookv1.Level]
	askLevels *btree.BTreeG[orderbookv1.Level]
}

func levelLess(a, b orderbookv1.Level) bool {
	return a.Price < b.Price
}

// NewBook creates an empty book.
func NewBook() *Book {
	return &Book{
		bids:      make(map[int64]*orderbookv1.RestingOrder),
		asks:      make(map[int64]*orderbookv1.RestingOrder),
		bidLevels: btree.NewG(levelTreeDegree, levelLess),
		askLevels: btree.NewG(levelTreeDegree, levelLess),
	}
}

// Add deposits an order into the resting book, resolving market and best
// order types against the current best prices. It reports whether the order
// ended up resident: zero-quantity orders, market/best orders with an empty
// reference side, and unknown order types all leave the book untouched.
func (b *Book) Add(o *feedv1.OrderRecord) bool {
	if o.Qty <= 0 || !o.Side.IsValid() {
		return false
	}

	price := o.Price
	switch o.Type {
	case feedv1.OrderTypeLimit:
	case feedv1.OrderTypeMarket:
		// Market orders take the opposite side's best price.
		var ok bool
		if o.Side == feedv1.SideBuy {
			price, ok = b.BestAsk()
		} else {
			price, ok = b.BestBid()
		}
		if !ok || price <= 0 {
			return false
		}
	case feedv1.OrderTypeBest:
		// Best orders peg to their own side's best price.
		var ok bool
		if o.Side == feedv1.SideBuy {
			price, ok = b.BestBid()
		} else {
			price, ok = b.BestAsk()
		}
		if !ok || price <= 0 {
			return false
		}
	default:
		return false
	}

	resting := &orderbookv1.RestingOrder{
		ApplSeqNum: o.ApplSeqNum,
		Price:      price,
		Qty:        o.Qty,
		OrderTime:  o.TransactTime,
	}

	if o.Side == feedv1.SideBuy {
		b.bids[o.ApplSeqNum] = resting
		addToLevel(b.bidLevels, price, o.Qty)
	} else {
		b.asks[o.ApplSeqNum] = resting
		addToLevel(b.askLevels, price, o.Qty)
	}
	return true
}

// Reduce subtracts qty from the resting order identified by seq on the given
// side, evicting it once exhausted. A residual below zero is clamped to
// removal. Unknown references are tolerated and reported as false.
func (b *Book) Reduce(side feedv1.Side, seq, qty int64) bool {
	orders, levels := b.sideOf(side)
	o, ok := orders[seq]
	if !ok {
		return false
	}

	delta := qty
	if delta > o.Qty {
		delta = o.Qty
	}
	reduceLevel(levels, o.Price, delta)

	o.Qty -= qty
	if o.Qty <= 0 {
		delete(orders, seq)
	}
	return true
}

// Remove evicts the resting order identified by seq on the given side.
// Unknown references are tolerated and reported as false.
func (b *Book) Remove(side feedv1.Side, seq int64) bool {
	orders, levels := b.sideOf(side)
	o, ok := orders[seq]
	if !ok {
		return false
	}
	reduceLevel(levels, o.Price, o.Qty)
	delete(orders, seq)
	return true
}

// BestBid returns the highest resting bid price.
func (b *Book) BestBid() (int64, bool) {
	lvl, ok := b.bidLevels.Max()
	return lvl.Price, ok
}

// BestAsk returns the lowest resting ask price.
func (b *Book) BestAsk() (int64, bool) {
	lvl, ok := b.askLevels.Min()
	return lvl.Price, ok
}

// TopBids returns up to n aggregated bid levels, price descending.
func (b *Book) TopBids(n int) orderbookv1.Levels {
	out := make(orderbookv1.Levels, 0, n)
	b.bidLevels.Descend(func(lvl orderbookv1.Level) bool {
		out = append(out, lvl)
		return len(out) < n
	})
	return out
}

// TopAsks returns up to n aggregated ask levels, price ascending.
func (b *Book) TopAsks(n int) orderbookv1.Levels {
	out := make(orderbookv1.Levels, 0, n)
	b.askLevels.Ascend(func(lvl orderbookv1.Level) bool {
		out = append(out, lvl)
		return len(out) < n
	})
	return out
}

// BottomBids returns up to n aggregated bid levels from the bottom of the
// book, price ascending.
func (b *Book) BottomBids(n int) orderbookv1.Levels {
	out := make(orderbookv1.Levels, 0, n)
	b.bidLevels.Ascend(func(lvl orderbookv1.Level) bool {
		out = append(out, lvl)
		return len(out) < n
	})
	return out
}

// BottomAsks returns up to n aggregated ask levels from the top end of the
// price range, price descending.
func (b *Book) BottomAsks(n int) orderbookv1.Levels {
	out := make(orderbookv1.Levels, 0, n)
	b.askLevels.Descend(func(lvl orderbookv1.Level) bool {
		out = append(out, lvl)
		return len(out) < n
	})
	return out
}

// Resting returns the resting order identified by seq on the given side.
func (b *Book) Resting(side feedv1.Side, seq int64) (*orderbookv1.RestingOrder, bool) {
	orders, _ := b.sideOf(side)
	o, ok := orders[seq]
	return o, ok
}

// BidCount returns the number of resting bid orders.
func (b *Book) BidCount() int {
	return len(b.bids)
}

// AskCount returns the number of resting ask orders.
func (b *Book) AskCount() int {
	return len(b.asks)
}

func (b *Book) sideOf(side feedv1.Side) (map[int64]*orderbookv1.RestingOrder, *btree.BTreeG[orderbookv1.Level]) {
	if side == feedv1.SideBuy {
		return b.bids, b.bidLevels
	}
	return b.asks, b.askLevels
}

func addToLevel(levels *btree.BTreeG[orderbookv1.Level], price, qty int64) {
	lvl, ok := levels.Get(orderbookv1.Level{Price: price})
	if !ok {
		lvl = orderbookv1.Level{Price: price}
	}
	lvl.Qty += qty
	levels.ReplaceOrInsert(lvl)
}

func reduceLevel(levels *btree.BTreeG[orderbookv1.Level], price, qty int64) {
	lvl, ok := levels.Get(orderbookv1.Level{Price: price})
	if !ok {
		return
	}
	lvl.Qty -= qty
	if lvl.Qty <= 0 {
		levels.Delete(lvl)
		return
	}
	levels.ReplaceOrInsert(lvl)
}
