package candle

import "errors"

// ErrUnknownTimeframe indicates a timeframe the store was not configured with.
var ErrUnknownTimeframe = errors.New("unknown timeframe")
