package replay

// Options represents the session parameters of the reconstruction engine.
type Options struct {
	// OpeningTime is the continuous-session cutoff in HHMMSSmmm session time.
	// Orders before it build the call-auction book without emitting snapshots.
	OpeningTime int64
	// ImmediateWindow is the maximum transact-time distance between an order
	// and a fill referencing it for the order to count as executed on arrival.
	ImmediateWindow int64
	// Depth is the number of aggregated price levels captured per side and end.
	Depth int
}

// DefaultOptions returns the default session options.
func DefaultOptions() *Options {
	return &Options{
		OpeningTime:     93000000,
		ImmediateWindow: 1000,
		Depth:           5,
	}
}
