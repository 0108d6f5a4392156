package basket

import (
	"time"

	"github.com/shopspring/decimal"
)

// Mean reduces the window to the arithmetic mean of the observations still
// inside it at now. Every in-window sample contributes equally regardless of
// how long it was current, so this is a windowed simple moving average, not a
// true time-weighted average, despite the TWAP name used around the domain.
// The distinction is intentional and changing it would change the published
// numbers.
//
// Expired observations are skipped, not removed; eviction happens on Push.
// An empty window returns the caller-supplied fallback (typically the raw
// spot value just fetched) so the service always answers with a number.
func (s *WindowStore) Mean(now time.Time, fallback decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	n := 0
	for _, o := range s.obs {
		if now.Sub(o.Timestamp) <= s.window {
			sum = sum.Add(o.Value)
			n++
		}
	}

	if n == 0 {
		return fallback
	}
	return sum.Div(decimal.NewFromInt(int64(n)))
}
