package render

import (
	"context"
	"time"
)

// SweepEvery runs Sweep(ttl) every interval until ctx ends.
func (m *Manager) SweepEvery(ctx context.Context, ttl, interval time.Duration) {
	if ttl <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.log.Info("job sweeper started", "ttl", ttl.String(), "interval", interval.String())
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := m.Sweep(ttl)
			if err != nil {
				m.log.Warn("job sweep incomplete", "removed", n, "error", err.Error())
				continue
			}
			if n > 0 {
				m.log.Info("expired job directories removed", "count", n)
			}
		}
	}
}
