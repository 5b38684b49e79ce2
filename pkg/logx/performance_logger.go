package logx

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// PerformanceLogger tracks timing and error-rate statistics for named
// operations (a single ROC dwell, a full survey pass, an MQTT publish),
// rolling min/max/avg and success rate per operation name.
type PerformanceLogger struct {
	logger       *Logger
	metrics      map[string]*PerformanceMetric
	metricsMutex sync.RWMutex
}

// PerformanceMetric tracks performance data for a specific operation.
type PerformanceMetric struct {
	Name          string        `json:"name"`
	Count         int64         `json:"count"`
	TotalDuration time.Duration `json:"total_duration"`
	MinDuration   time.Duration `json:"min_duration"`
	MaxDuration   time.Duration `json:"max_duration"`
	AvgDuration   time.Duration `json:"avg_duration"`
	LastExecuted  time.Time     `json:"last_executed"`
	ErrorCount    int64         `json:"error_count"`
	SuccessRate   float64       `json:"success_rate"`
}

// PerformanceContext is returned by StartOperation and completed once the
// timed operation finishes.
type PerformanceContext struct {
	metricName string
	startTime  time.Time
	logger     *PerformanceLogger
	ctx        context.Context
}

// NewPerformanceLogger creates a new performance logger.
func NewPerformanceLogger(logger *Logger) *PerformanceLogger {
	return &PerformanceLogger{
		logger:  logger,
		metrics: make(map[string]*PerformanceMetric),
	}
}

// StartOperation begins timing metricName.
func (pl *PerformanceLogger) StartOperation(ctx context.Context, metricName string) *PerformanceContext {
	pl.metricsMutex.Lock()
	defer pl.metricsMutex.Unlock()

	if _, exists := pl.metrics[metricName]; !exists {
		pl.metrics[metricName] = &PerformanceMetric{
			Name:        metricName,
			MinDuration: time.Hour,
		}
	}

	return &PerformanceContext{
		metricName: metricName,
		startTime:  time.Now(),
		logger:     pl,
		ctx:        ctx,
	}
}

// Complete marks the operation as finished and rolls its statistics.
func (pc *PerformanceContext) Complete(err error) {
	duration := time.Since(pc.startTime)

	pc.logger.metricsMutex.Lock()
	defer pc.logger.metricsMutex.Unlock()

	metric := pc.logger.metrics[pc.metricName]
	metric.Count++
	metric.TotalDuration += duration
	metric.LastExecuted = time.Now()

	if duration < metric.MinDuration {
		metric.MinDuration = duration
	}
	if duration > metric.MaxDuration {
		metric.MaxDuration = duration
	}
	metric.AvgDuration = metric.TotalDuration / time.Duration(metric.Count)

	if err != nil {
		metric.ErrorCount++
	}
	metric.SuccessRate = float64(metric.Count-metric.ErrorCount) / float64(metric.Count) * 100

	if err != nil {
		pc.logger.logger.Error("operation failed",
			"metric", pc.metricName,
			"duration", duration.String(),
			"error", err.Error(),
			"success_rate", fmt.Sprintf("%.2f%%", metric.SuccessRate))
		return
	}

	if duration > 100*time.Millisecond || metric.Count%50 == 0 {
		pc.logger.logger.Debug("operation completed",
			"metric", pc.metricName,
			"duration", duration.String(),
			"avg_duration", metric.AvgDuration.String(),
			"total_operations", metric.Count)
	}
}

// GetMetric returns a copy of the current statistics for name, or nil.
func (pl *PerformanceLogger) GetMetric(name string) *PerformanceMetric {
	pl.metricsMutex.RLock()
	defer pl.metricsMutex.RUnlock()

	metric, exists := pl.metrics[name]
	if !exists {
		return nil
	}
	cp := *metric
	return &cp
}

// LogMetrics logs a summary line for every tracked operation.
func (pl *PerformanceLogger) LogMetrics() {
	pl.metricsMutex.RLock()
	defer pl.metricsMutex.RUnlock()

	for name, metric := range pl.metrics {
		pl.logger.Info("performance summary",
			"metric", name,
			"total_operations", metric.Count,
			"avg_duration", metric.AvgDuration.String(),
			"min_duration", metric.MinDuration.String(),
			"max_duration", metric.MaxDuration.String(),
			"success_rate", fmt.Sprintf("%.2f%%", metric.SuccessRate),
			"error_count", metric.ErrorCount)
	}
}

// LogSlowOperations warns about operations whose average exceeds threshold.
func (pl *PerformanceLogger) LogSlowOperations(threshold time.Duration) {
	pl.metricsMutex.RLock()
	defer pl.metricsMutex.RUnlock()

	for name, metric := range pl.metrics {
		if metric.AvgDuration > threshold {
			pl.logger.Warn("slow operation",
				"metric", name,
				"avg_duration", metric.AvgDuration.String(),
				"threshold", threshold.String(),
				"total_operations", metric.Count)
		}
	}
}
