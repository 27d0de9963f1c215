package handler

import (
	"database/sql"
	"net/http"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/cleberrangel/estimate-histogram-api/internal/database"
	"github.com/cleberrangel/estimate-histogram-api/internal/metrics"
	"github.com/cleberrangel/estimate-histogram-api/internal/websocket"
	"github.com/gin-gonic/gin"
)

// HealthHandler handles health check, metrics and debug endpoints
type HealthHandler struct {
	db        *sql.DB
	wsHub     *websocket.Hub
	version   string
	startTime time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *sql.DB, wsHub *websocket.Hub, version string) *HealthHandler {
	return &HealthHandler{
		db:        db,
		wsHub:     wsHub,
		version:   version,
		startTime: time.Now(),
	}
}

// LivenessCheck returns basic liveness status
// @Summary Liveness check
// @Description Returns basic liveness status for Kubernetes probes
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health/live [get]
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// ReadinessCheck returns readiness status including dependencies
// @Summary Readiness check
// @Description Returns readiness status including database connectivity
// @Tags health
// @Produce json
// @Success 200 {object} metrics.HealthCheck
// @Failure 503 {object} metrics.HealthCheck
// @Router /health/ready [get]
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	components := make(map[string]metrics.HealthStatus)

	// Check database (reports healthy when running in-memory)
	components["database"] = metrics.CheckDatabaseHealth(h.db)

	// Check memory (512MB limit)
	components["memory"] = metrics.CheckMemoryHealth(512)

	// Determine overall status
	overallStatus := metrics.DetermineOverallStatus(components)

	healthCheck := metrics.HealthCheck{
		Status:     overallStatus,
		Version:    h.version,
		Uptime:     time.Since(h.startTime).String(),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Components: components,
	}

	statusCode := http.StatusOK
	if overallStatus == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, healthCheck)
}

// GetMetrics returns a snapshot of application metrics
// @Summary Application metrics
// @Tags health
// @Produce json
// @Security BasicAuth
// @Success 200 {object} metrics.MetricsSnapshot
// @Router /metrics [get]
func (h *HealthHandler) GetMetrics(c *gin.Context) {
	snapshot := metrics.Get().Snapshot()

	response := gin.H{
		"metrics": snapshot,
	}

	if h.db != nil {
		response["db_pool"] = database.GetPoolStats(h.db)
	}

	if h.wsHub != nil {
		response["ws_clients"] = h.wsHub.ClientCount()
	}

	c.JSON(http.StatusOK, response)
}

// MemoryStats returns runtime memory statistics
// @Summary Runtime memory statistics
// @Tags health
// @Produce json
// @Security BasicAuth
// @Success 200 {object} map[string]interface{}
// @Router /debug/memory [get]
func (h *HealthHandler) MemoryStats(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	c.JSON(http.StatusOK, gin.H{
		"alloc_mb":       m.Alloc / 1024 / 1024,
		"total_alloc_mb": m.TotalAlloc / 1024 / 1024,
		"sys_mb":         m.Sys / 1024 / 1024,
		"heap_alloc_mb":  m.HeapAlloc / 1024 / 1024,
		"heap_inuse_mb":  m.HeapInuse / 1024 / 1024,
		"heap_objects":   m.HeapObjects,
		"goroutines":     runtime.NumGoroutine(),
		"gc_runs":        m.NumGC,
		"gc_pause_total": m.PauseTotalNs / 1000000, // ms
	})
}

// ForceGC triggers a garbage collection cycle
// @Summary Force garbage collection
// @Tags health
// @Produce json
// @Security BasicAuth
// @Success 200 {object} map[string]string
// @Router /debug/gc [post]
func (h *HealthHandler) ForceGC(c *gin.Context) {
	runtime.GC()
	debug.FreeOSMemory()
	c.JSON(http.StatusOK, gin.H{"status": "gc_completed"})
}
