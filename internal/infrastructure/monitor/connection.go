package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/digiplanner/backend/internal/outbox"
	"github.com/digiplanner/backend/internal/infrastructure/remote"
)

// Monitor periodically probes the upstream backend and the outbox and caches
// the result, so callers on the request path get an answer without paying for
// a network round trip.
type Monitor struct {
	remote *remote.Client
	queue  *outbox.Store

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	logger   *zap.Logger
}

// New builds a monitor; remote and queue may be nil when the deployment has
// no upstream configured.
func New(remoteClient *remote.Client, queue *outbox.Store, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		remote:   remoteClient,
		queue:    queue,
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   logger,
	}
}

func (m *Monitor) Start() {
	go m.loop()
}

func (m *Monitor) Stop() {
	close(m.stopCh)
}

// RemoteOnline reports the cached result of the last upstream probe. Always
// false when no upstream is configured.
func (m *Monitor) RemoteOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Remote
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.refresh()
	for {
		select {
		case <-ticker.C:
			m.refresh()
		case <-m.stopCh:
			return
		}
	}
}

func (m *Monitor) refresh() {
	outboxOK, outboxSize := m.checkOutbox()
	status := Status{
		RemoteConfigured: m.remote != nil,
		Remote:           m.checkRemote(),
		Outbox:           outboxOK,
		OutboxSize:       outboxSize,
		LastCheck:        time.Now(),
	}

	m.mu.Lock()
	m.status = status
	m.mu.Unlock()
}

func (m *Monitor) checkRemote() bool {
	if m.remote == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return m.remote.Health(ctx)
}

func (m *Monitor) checkOutbox() (bool, int) {
	if m.queue == nil {
		return false, 0
	}
	size, err := m.queue.Size()
	if err != nil {
		m.logger.Warn("outbox size check failed", zap.Error(err))
		return false, size
	}
	return true, size
}
