package feed

import "errors"

var (
	// ErrUnexpectedStatus indicates an unexpected HTTP status code.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status code")
	// ErrRateLimitExceeded indicates that a rate limit has been exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	// ErrInvalidResponse indicates an invalid response from the source.
	ErrInvalidResponse = errors.New("invalid response")
	// ErrNoRatesInResponse indicates that the response carried no rates.
	ErrNoRatesInResponse = errors.New("no rates in response")
	// ErrSourceStopped indicates that the source has been stopped.
	ErrSourceStopped = errors.New("source stopped")
	// ErrNoCurrenciesConfigured indicates that the FX source has no currencies.
	ErrNoCurrenciesConfigured = errors.New("no currencies configured")
)
