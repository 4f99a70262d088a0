package orderbookv1

// Level is an aggregated price level: the summed remaining quantity of all
// resting orders sharing one effective price on one side.
type Level struct {
	Price int64
	Qty   int64
}

// Levels is a slice of aggregated price levels.
type Levels []Level
