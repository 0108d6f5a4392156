package basket

import "errors"

var (
	// ErrUnknownStrategy indicates an unsupported composition strategy.
	ErrUnknownStrategy = errors.New("unknown composition strategy")
	// ErrUnknownInstrument indicates an instrument without a window store.
	ErrUnknownInstrument = errors.New("unknown instrument")
)
