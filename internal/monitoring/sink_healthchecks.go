package monitoring

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

const HEALTHCHECK_INTERVAL = 15 * time.Second

type HealthChecker interface {
	IsHealthy(ctx context.Context) bool
}

type SinkStatus struct {
	Name    string
	Healthy bool
}

// CheckSinks probes every sink concurrently and returns the results sorted
// by name.
func CheckSinks(ctx context.Context, sinks map[string]HealthChecker) []SinkStatus {
	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		statuses = make([]SinkStatus, 0, len(sinks))
	)

	for name, checker := range sinks {
		wg.Add(1)
		go func(name string, checker HealthChecker) {
			defer wg.Done()
			healthy := checker.IsHealthy(ctx)
			if !healthy {
				slog.Warn("[HealthCheck] Sink is unhealthy", slog.String("sink", name))
			}
			mu.Lock()
			statuses = append(statuses, SinkStatus{Name: name, Healthy: healthy})
			mu.Unlock()
		}(name, checker)
	}
	wg.Wait()

	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Name < statuses[j].Name })
	return statuses
}

func AllHealthy(statuses []SinkStatus) bool {
	for _, s := range statuses {
		if !s.Healthy {
			return false
		}
	}
	return true
}

// MonitorSinkHealth re-probes the sinks every interval and stores the
// combined result in healthy until ctx is done.
func MonitorSinkHealth(ctx context.Context, sinks map[string]HealthChecker, interval time.Duration, healthy *atomic.Bool, report func([]SinkStatus)) {
	if interval <= 0 {
		interval = HEALTHCHECK_INTERVAL
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			statuses := CheckSinks(ctx, sinks)
			healthy.Store(AllHealthy(statuses))
			if report != nil {
				report(statuses)
			}
		}
	}
}
