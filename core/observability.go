package core

import (
	"context"
	"sort"
	"strings"
	"time"
)

func (m *Manager) observe(
	ctx context.Context,
	startedAt time.Time,
	operation string,
	err error,
	fields map[string]any,
) {
	if m == nil {
		return
	}
	operation = strings.TrimSpace(strings.ToLower(operation))
	if operation == "" {
		operation = "unknown"
	}
	status := "success"
	if err != nil {
		status = "failure"
	}

	contextFields := cloneFields(fields)
	contextFields["event_type"] = operation
	contextFields["status"] = status
	contextFields["duration_ms"] = time.Since(startedAt).Milliseconds()
	if err != nil {
		contextFields["error"] = err.Error()
	}

	tags := map[string]string{
		"operation": operation,
		"status":    status,
	}

	m.recordCounter(ctx, "blogsession."+operation+".total", 1, tags)
	m.recordHistogram(ctx, "blogsession."+operation+".duration_ms", float64(time.Since(startedAt).Milliseconds()), tags)

	if err != nil {
		m.logError(ctx, operation+" failed", contextFields)
		return
	}
	m.logInfo(ctx, operation+" completed", contextFields)
}

func (m *Manager) logInfo(ctx context.Context, message string, fields map[string]any) {
	m.logWithLevel(ctx, "info", message, fields)
}

func (m *Manager) logError(ctx context.Context, message string, fields map[string]any) {
	m.logWithLevel(ctx, "error", message, fields)
}

func (m *Manager) logWithLevel(ctx context.Context, level string, message string, fields map[string]any) {
	if m == nil || m.logger == nil {
		return
	}
	logger := m.logger
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	if fieldsLogger, ok := logger.(FieldsLogger); ok {
		logger = fieldsLogger.WithFields(cloneFields(fields))
	}
	args := flattenFields(fields)
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "error":
		logger.Error(message, args...)
	default:
		logger.Info(message, args...)
	}
}

func (m *Manager) recordCounter(ctx context.Context, name string, value int64, tags map[string]string) {
	if m == nil || m.metricsRecorder == nil {
		return
	}
	m.metricsRecorder.IncCounter(ctx, strings.TrimSpace(name), value, cloneTags(tags))
}

func (m *Manager) recordHistogram(ctx context.Context, name string, value float64, tags map[string]string) {
	if m == nil || m.metricsRecorder == nil {
		return
	}
	m.metricsRecorder.ObserveHistogram(ctx, strings.TrimSpace(name), value, cloneTags(tags))
}

func cloneFields(fields map[string]any) map[string]any {
	if len(fields) == 0 {
		return map[string]any{}
	}
	copied := make(map[string]any, len(fields))
	for key, value := range fields {
		copied[key] = value
	}
	return copied
}

func cloneTags(tags map[string]string) map[string]string {
	if len(tags) == 0 {
		return map[string]string{}
	}
	copied := make(map[string]string, len(tags))
	for key, value := range tags {
		copied[key] = value
	}
	return copied
}

func flattenFields(fields map[string]any) []any {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	args := make([]any, 0, len(keys)*2)
	for _, key := range keys {
		args = append(args, key, fields[key])
	}
	return args
}
