package feed

import (
	"sync"
	"time"

	"tc.com/unit-oracle/pkg/logging"
)

// BaseSource provides the common state all feed sources share: name, health,
// last-update tracking, logger and stop signalling.
type BaseSource struct {
	name       string
	healthy    bool
	healthMu   sync.RWMutex
	lastUpdate time.Time
	updateMu   sync.RWMutex
	stopChan   chan struct{}
	logger     *logging.Logger
}

// NewBaseSource creates a new base source.
func NewBaseSource(name string, logger *logging.Logger) *BaseSource {
	return &BaseSource{
		name:     name,
		stopChan: make(chan struct{}),
		logger:   logger,
	}
}

// Name returns the source name.
func (b *BaseSource) Name() string {
	return b.name
}

// IsHealthy returns the health status.
func (b *BaseSource) IsHealthy() bool {
	b.healthMu.RLock()
	defer b.healthMu.RUnlock()
	return b.healthy
}

// SetHealthy sets the health status.
func (b *BaseSource) SetHealthy(healthy bool) {
	b.healthMu.Lock()
	defer b.healthMu.Unlock()
	b.healthy = healthy
}

// LastUpdate returns the time of the last successful update.
func (b *BaseSource) LastUpdate() time.Time {
	b.updateMu.RLock()
	defer b.updateMu.RUnlock()
	return b.lastUpdate
}

// SetLastUpdate sets the last update time.
func (b *BaseSource) SetLastUpdate(t time.Time) {
	b.updateMu.Lock()
	defer b.updateMu.Unlock()
	b.lastUpdate = t
}

// StopChan returns the stop channel.
func (b *BaseSource) StopChan() <-chan struct{} {
	return b.stopChan
}

// Close closes the stop channel.
func (b *BaseSource) Close() {
	select {
	case <-b.stopChan:
		// Already closed
	default:
		close(b.stopChan)
	}
}

// Logger returns the logger.
func (b *BaseSource) Logger() *logging.Logger {
	return b.logger
}
