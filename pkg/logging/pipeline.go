package logging

import (
	"fmt"
)

// PipelineLogger wraps a base logger with pipeline-specific context
type PipelineLogger struct {
	base     Logger
	pipeline string
	context  map[string]interface{}
}

// NewPipelineLogger creates a new pipeline-specific logger
func NewPipelineLogger(base Logger, pipeline string) *PipelineLogger {
	return &PipelineLogger{
		base:     base,
		pipeline: pipeline,
		context:  make(map[string]interface{}),
	}
}

// Info logs informational messages with pipeline context
func (p *PipelineLogger) Info(msg string, fields map[string]interface{}) {
	p.base.Info(p.prefix(msg), p.enrichFields(fields))
}

// Error logs error messages with pipeline context
func (p *PipelineLogger) Error(msg string, err error, fields map[string]interface{}) {
	p.base.Error(p.prefix(msg), err, p.enrichFields(fields))
}

// Warn logs warning messages with pipeline context
func (p *PipelineLogger) Warn(msg string, fields map[string]interface{}) {
	p.base.Warn(p.prefix(msg), p.enrichFields(fields))
}

// Debug logs debug messages with pipeline context
func (p *PipelineLogger) Debug(msg string, fields map[string]interface{}) {
	p.base.Debug(p.prefix(msg), p.enrichFields(fields))
}

// WithPipeline creates a new logger with updated pipeline context
func (p *PipelineLogger) WithPipeline(pipeline string) Logger {
	return &PipelineLogger{
		base:     p.base,
		pipeline: pipeline,
		context:  p.copyContext(),
	}
}

// WithContext creates a new logger with additional context fields
func (p *PipelineLogger) WithContext(ctx map[string]interface{}) Logger {
	return p.with(ctx)
}

func (p *PipelineLogger) with(ctx map[string]interface{}) *PipelineLogger {
	newContext := p.copyContext()
	for k, v := range ctx {
		newContext[k] = v
	}

	return &PipelineLogger{
		base:     p.base,
		pipeline: p.pipeline,
		context:  newContext,
	}
}

func (p *PipelineLogger) prefix(msg string) string {
	return fmt.Sprintf("[%s] %s", p.pipeline, msg)
}

// enrichFields combines pipeline context with provided fields
func (p *PipelineLogger) enrichFields(fields map[string]interface{}) map[string]interface{} {
	enriched := make(map[string]interface{}, len(p.context)+len(fields)+1)

	for k, v := range p.context {
		enriched[k] = v
	}

	// Provided fields can override context
	for k, v := range fields {
		enriched[k] = v
	}

	enriched["pipeline"] = p.pipeline

	return enriched
}

// copyContext creates a copy of the current context
func (p *PipelineLogger) copyContext() map[string]interface{} {
	newContext := make(map[string]interface{}, len(p.context))
	for k, v := range p.context {
		newContext[k] = v
	}
	return newContext
}

// SyncLogger logs the stages of resolving one kind of catalog entity
type SyncLogger struct {
	*PipelineLogger
	kind string
}

// NewSyncLogger creates a logger for the sync pipeline of kind
func NewSyncLogger(base Logger, kind string) *SyncLogger {
	return &SyncLogger{
		PipelineLogger: NewPipelineLogger(base, "sync").with(map[string]interface{}{
			"kind": kind,
		}),
		kind: kind,
	}
}

// WithIdentifier adds the identifier being resolved
func (s *SyncLogger) WithIdentifier(identifier string) Logger {
	return s.WithContext(map[string]interface{}{
		"identifier": identifier,
	})
}

// WithStage adds the current pipeline stage
func (s *SyncLogger) WithStage(stage string) Logger {
	return s.WithContext(map[string]interface{}{
		"stage": stage,
	})
}

// RequestLogger logs a single HTTP request
type RequestLogger struct {
	*PipelineLogger
}

// NewRequestLogger creates a logger carrying method and path
func NewRequestLogger(base Logger, method, path string) *RequestLogger {
	return &RequestLogger{
		PipelineLogger: NewPipelineLogger(base, "api").with(map[string]interface{}{
			"method": method,
			"path":   path,
		}),
	}
}

// WithUser adds the authenticated viewer
func (r *RequestLogger) WithUser(userID string) Logger {
	return r.WithContext(map[string]interface{}{
		"user_id": userID,
	})
}
