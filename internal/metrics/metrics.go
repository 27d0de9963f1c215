package metrics

import (
	"database/sql"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// EndpointMetrics tracks metrics for a specific endpoint
type EndpointMetrics struct {
	Requests     int64
	Errors       int64
	TotalLatency int64
}

// Metrics holds all application metrics
type Metrics struct {
	mu sync.RWMutex

	// Request metrics
	TotalRequests      int64
	SuccessfulRequests int64
	FailedRequests     int64

	// Request latency (in milliseconds)
	TotalLatency int64
	RequestCount int64

	// Estimate store metrics
	EstimatesCreated int64
	EstimatesUpdated int64
	EstimatesRemoved int64

	// Sampling metrics
	SampleRuns       int64
	SamplesGenerated int64
	SampleLatency    int64

	// Histogram metrics
	HistogramsBuilt  int64
	HistogramsCached int64

	// Export metrics
	ExportsGenerated int64
	ExportErrors     int64

	// WebSocket metrics
	WSConnections int64
	WSMessagesIn  int64
	WSMessagesOut int64

	// Endpoint-specific metrics
	EndpointMetrics map[string]*EndpointMetrics

	// Start time for uptime calculation
	StartTime time.Time
}

// global metrics instance
var globalMetrics *Metrics
var once sync.Once

// Init initializes the global metrics instance
func Init() {
	once.Do(func() {
		globalMetrics = &Metrics{
			StartTime:       time.Now(),
			EndpointMetrics: make(map[string]*EndpointMetrics),
		}
	})
}

// Get returns the global metrics instance
func Get() *Metrics {
	if globalMetrics == nil {
		Init()
	}
	return globalMetrics
}

// IncrementRequests increments request counters
func (m *Metrics) IncrementRequests(success bool, latencyMs int64) {
	atomic.AddInt64(&m.TotalRequests, 1)
	atomic.AddInt64(&m.TotalLatency, latencyMs)
	atomic.AddInt64(&m.RequestCount, 1)

	if success {
		atomic.AddInt64(&m.SuccessfulRequests, 1)
	} else {
		atomic.AddInt64(&m.FailedRequests, 1)
	}
}

// IncrementEstimateCreated increments the estimate creation counter
func (m *Metrics) IncrementEstimateCreated() {
	atomic.AddInt64(&m.EstimatesCreated, 1)
}

// IncrementEstimateUpdated increments the estimate update counter
func (m *Metrics) IncrementEstimateUpdated() {
	atomic.AddInt64(&m.EstimatesUpdated, 1)
}

// IncrementEstimateRemoved increments the estimate removal counter
func (m *Metrics) IncrementEstimateRemoved() {
	atomic.AddInt64(&m.EstimatesRemoved, 1)
}

// IncrementSampleRun records a completed sampling run
func (m *Metrics) IncrementSampleRun(samples int, latencyMs int64) {
	atomic.AddInt64(&m.SampleRuns, 1)
	atomic.AddInt64(&m.SamplesGenerated, int64(samples))
	atomic.AddInt64(&m.SampleLatency, latencyMs)
}

// IncrementHistogramBuilt records a histogram computation
func (m *Metrics) IncrementHistogramBuilt(fromCache bool) {
	atomic.AddInt64(&m.HistogramsBuilt, 1)
	if fromCache {
		atomic.AddInt64(&m.HistogramsCached, 1)
	}
}

// IncrementExport records an Excel export attempt
func (m *Metrics) IncrementExport(success bool) {
	if success {
		atomic.AddInt64(&m.ExportsGenerated, 1)
	} else {
		atomic.AddInt64(&m.ExportErrors, 1)
	}
}

// IncrementWSConnection increments active WebSocket connections
func (m *Metrics) IncrementWSConnection() {
	atomic.AddInt64(&m.WSConnections, 1)
}

// DecrementWSConnection decrements active WebSocket connections
func (m *Metrics) DecrementWSConnection() {
	atomic.AddInt64(&m.WSConnections, -1)
}

// IncrementWSMessageIn increments incoming WebSocket message counter
func (m *Metrics) IncrementWSMessageIn() {
	atomic.AddInt64(&m.WSMessagesIn, 1)
}

// IncrementWSMessageOut increments outgoing WebSocket message counter
func (m *Metrics) IncrementWSMessageOut() {
	atomic.AddInt64(&m.WSMessagesOut, 1)
}

// TrackEndpoint records metrics for a specific endpoint
func (m *Metrics) TrackEndpoint(path, method string, statusCode int, latencyMs int64) {
	key := method + " " + path

	m.mu.Lock()
	em, exists := m.EndpointMetrics[key]
	if !exists {
		em = &EndpointMetrics{}
		m.EndpointMetrics[key] = em
	}
	m.mu.Unlock()

	atomic.AddInt64(&em.Requests, 1)
	atomic.AddInt64(&em.TotalLatency, latencyMs)
	if statusCode >= 400 {
		atomic.AddInt64(&em.Errors, 1)
	}
}

// GetAverageLatency returns the average request latency in milliseconds
func (m *Metrics) GetAverageLatency() float64 {
	count := atomic.LoadInt64(&m.RequestCount)
	if count == 0 {
		return 0
	}
	total := atomic.LoadInt64(&m.TotalLatency)
	return float64(total) / float64(count)
}

// GetUptime returns the time elapsed since startup
func (m *Metrics) GetUptime() time.Duration {
	return time.Since(m.StartTime)
}

// EndpointMetricsSnapshot represents endpoint metrics in a snapshot
type EndpointMetricsSnapshot struct {
	Requests     int64   `json:"requests"`
	Errors       int64   `json:"errors"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
}

// MetricsSnapshot represents a point-in-time snapshot of all metrics
type MetricsSnapshot struct {
	UptimeSeconds      float64 `json:"uptime_seconds"`
	TotalRequests      int64   `json:"total_requests"`
	SuccessfulRequests int64   `json:"successful_requests"`
	FailedRequests     int64   `json:"failed_requests"`
	AvgLatencyMs       float64 `json:"avg_latency_ms"`

	EstimatesCreated int64 `json:"estimates_created"`
	EstimatesUpdated int64 `json:"estimates_updated"`
	EstimatesRemoved int64 `json:"estimates_removed"`

	SampleRuns       int64 `json:"sample_runs"`
	SamplesGenerated int64 `json:"samples_generated"`

	HistogramsBuilt  int64 `json:"histograms_built"`
	HistogramsCached int64 `json:"histograms_cached"`

	ExportsGenerated int64 `json:"exports_generated"`
	ExportErrors     int64 `json:"export_errors"`

	WSConnections int64 `json:"ws_connections"`
	WSMessagesIn  int64 `json:"ws_messages_in"`
	WSMessagesOut int64 `json:"ws_messages_out"`

	Endpoints map[string]EndpointMetricsSnapshot `json:"endpoints,omitempty"`
}

// Snapshot returns a point-in-time snapshot of all metrics
func (m *Metrics) Snapshot() MetricsSnapshot {
	snapshot := MetricsSnapshot{
		UptimeSeconds:      m.GetUptime().Seconds(),
		TotalRequests:      atomic.LoadInt64(&m.TotalRequests),
		SuccessfulRequests: atomic.LoadInt64(&m.SuccessfulRequests),
		FailedRequests:     atomic.LoadInt64(&m.FailedRequests),
		AvgLatencyMs:       m.GetAverageLatency(),

		EstimatesCreated: atomic.LoadInt64(&m.EstimatesCreated),
		EstimatesUpdated: atomic.LoadInt64(&m.EstimatesUpdated),
		EstimatesRemoved: atomic.LoadInt64(&m.EstimatesRemoved),

		SampleRuns:       atomic.LoadInt64(&m.SampleRuns),
		SamplesGenerated: atomic.LoadInt64(&m.SamplesGenerated),

		HistogramsBuilt:  atomic.LoadInt64(&m.HistogramsBuilt),
		HistogramsCached: atomic.LoadInt64(&m.HistogramsCached),

		ExportsGenerated: atomic.LoadInt64(&m.ExportsGenerated),
		ExportErrors:     atomic.LoadInt64(&m.ExportErrors),

		WSConnections: atomic.LoadInt64(&m.WSConnections),
		WSMessagesIn:  atomic.LoadInt64(&m.WSMessagesIn),
		WSMessagesOut: atomic.LoadInt64(&m.WSMessagesOut),
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.EndpointMetrics) > 0 {
		snapshot.Endpoints = make(map[string]EndpointMetricsSnapshot)
		for key, em := range m.EndpointMetrics {
			requests := atomic.LoadInt64(&em.Requests)
			avg := float64(0)
			if requests > 0 {
				avg = float64(atomic.LoadInt64(&em.TotalLatency)) / float64(requests)
			}
			snapshot.Endpoints[key] = EndpointMetricsSnapshot{
				Requests:     requests,
				Errors:       atomic.LoadInt64(&em.Errors),
				AvgLatencyMs: avg,
			}
		}
	}

	return snapshot
}

// HealthStatus represents the health status of a component
type HealthStatus struct {
	Status  string `json:"status"` // "healthy", "degraded", "unhealthy"
	Message string `json:"message,omitempty"`
	Latency int64  `json:"latency_ms,omitempty"`
}

// HealthCheck represents the overall health check response
type HealthCheck struct {
	Status     string                  `json:"status"` // "healthy", "degraded", "unhealthy"
	Version    string                  `json:"version"`
	Uptime     string                  `json:"uptime"`
	Timestamp  string                  `json:"timestamp"`
	Components map[string]HealthStatus `json:"components"`
}

// CheckDatabaseHealth checks database connectivity
func CheckDatabaseHealth(db *sql.DB) HealthStatus {
	start := time.Now()

	if db == nil {
		return HealthStatus{
			Status:  "healthy",
			Message: "database disabled, in-memory store",
		}
	}

	err := db.Ping()
	latency := time.Since(start).Milliseconds()

	if err != nil {
		return HealthStatus{
			Status:  "unhealthy",
			Message: err.Error(),
			Latency: latency,
		}
	}

	// Check if latency is acceptable (< 100ms)
	if latency > 100 {
		return HealthStatus{
			Status:  "degraded",
			Message: "high latency",
			Latency: latency,
		}
	}

	return HealthStatus{
		Status:  "healthy",
		Latency: latency,
	}
}

// CheckMemoryHealth checks memory usage
func CheckMemoryHealth(maxHeapMB uint64) HealthStatus {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	heapMB := memStats.HeapAlloc / 1024 / 1024

	if heapMB > maxHeapMB {
		return HealthStatus{
			Status:  "unhealthy",
			Message: "heap memory exceeds limit",
		}
	}

	// Warn if using more than 80% of limit
	if heapMB > (maxHeapMB * 80 / 100) {
		return HealthStatus{
			Status:  "degraded",
			Message: "heap memory usage high",
		}
	}

	return HealthStatus{
		Status: "healthy",
	}
}

// DetermineOverallStatus determines overall health from component statuses
func DetermineOverallStatus(components map[string]HealthStatus) string {
	hasUnhealthy := false
	hasDegraded := false

	for _, status := range components {
		switch status.Status {
		case "unhealthy":
			hasUnhealthy = true
		case "degraded":
			hasDegraded = true
		}
	}

	if hasUnhealthy {
		return "unhealthy"
	}
	if hasDegraded {
		return "degraded"
	}
	return "healthy"
}
