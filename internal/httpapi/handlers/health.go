package handlers

import (
	"context"
	"net/http"
	"time"

	"reel/internal/httpkit"
)

// Health reports liveness; ?deep=true also checks the dependencies.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := h.log.FromContext(ctx)

	health := map[string]any{
		"status":  "ok",
		"service": "reel-api",
		"version": h.version,
	}

	if r.URL.Query().Get("deep") == "true" {
		checks := h.deepHealthCheck(ctx)
		health["checks"] = checks

		for name, check := range checks {
			if check["status"] == "error" {
				health["status"] = "degraded"
				log.Warn("health check degraded", "check", name, "result", check)
				break
			}
		}
	}

	httpkit.WriteJSON(w, http.StatusOK, health)
}

func (h *Handler) deepHealthCheck(ctx context.Context) map[string]map[string]any {
	checks := map[string]map[string]any{
		"renderer": h.checkRenderer(),
		"storage":  h.checkStorage(),
	}
	if h.pool != nil {
		checks["postgres"] = h.checkPostgres(ctx)
	}
	if h.rdb != nil {
		checks["redis"] = h.checkRedis(ctx)
	}
	return checks
}

func (h *Handler) checkPostgres(ctx context.Context) map[string]any {
	start := time.Now()
	result := map[string]any{"status": "ok"}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := h.pool.Ping(checkCtx); err != nil {
		result["status"] = "error"
		result["error"] = err.Error()
	} else {
		stats := h.pool.Stat()
		result["total_conns"] = stats.TotalConns()
		result["idle_conns"] = stats.IdleConns()
		result["acquired_conns"] = stats.AcquiredConns()
	}

	result["latency_ms"] = time.Since(start).Milliseconds()
	return result
}

func (h *Handler) checkRedis(ctx context.Context) map[string]any {
	start := time.Now()
	result := map[string]any{"status": "ok"}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := h.rdb.Ping(checkCtx).Err(); err != nil {
		result["status"] = "error"
		result["error"] = err.Error()
	}

	result["latency_ms"] = time.Since(start).Milliseconds()
	return result
}

// checkRenderer reports whether the output directory is readable.
func (h *Handler) checkRenderer() map[string]any {
	if h.renders == nil {
		return map[string]any{"status": "disabled"}
	}
	info, err := h.renders.DirectoryInfo()
	if err != nil {
		return map[string]any{"status": "error", "error": err.Error()}
	}
	result := map[string]any{
		"status":       "ok",
		"output_dir":   info.Path,
		"tracked_jobs": len(h.renders.Jobs()),
	}
	if !info.Exists {
		result["status"] = "error"
		result["error"] = "output directory missing"
	}
	return result
}

func (h *Handler) checkStorage() map[string]any {
	if h.store == nil {
		return map[string]any{"status": "disabled"}
	}
	return map[string]any{
		"status":   "ok",
		"provider": h.store.Provider(),
	}
}
