package logging_test

import (
	"sync"

	"github.com/latoulicious/pokedex/pkg/logging"
)

// MockLogger implements the Logger interface for testing
type MockLogger struct {
	InfoCalls  []LogCall
	ErrorCalls []ErrorCall
	WarnCalls  []LogCall
	DebugCalls []LogCall
}

type LogCall struct {
	Message string
	Fields  map[string]interface{}
}

type ErrorCall struct {
	Message string
	Error   error
	Fields  map[string]interface{}
}

func NewMockLogger() *MockLogger {
	return &MockLogger{}
}

func (m *MockLogger) Info(msg string, fields map[string]interface{}) {
	m.InfoCalls = append(m.InfoCalls, LogCall{Message: msg, Fields: fields})
}

func (m *MockLogger) Error(msg string, err error, fields map[string]interface{}) {
	m.ErrorCalls = append(m.ErrorCalls, ErrorCall{Message: msg, Error: err, Fields: fields})
}

func (m *MockLogger) Warn(msg string, fields map[string]interface{}) {
	m.WarnCalls = append(m.WarnCalls, LogCall{Message: msg, Fields: fields})
}

func (m *MockLogger) Debug(msg string, fields map[string]interface{}) {
	m.DebugCalls = append(m.DebugCalls, LogCall{Message: msg, Fields: fields})
}

func (m *MockLogger) WithPipeline(pipeline string) logging.Logger {
	return m
}

func (m *MockLogger) WithContext(ctx map[string]interface{}) logging.Logger {
	return m
}

// memoryLogRepository collects persisted entries
type memoryLogRepository struct {
	mu      sync.Mutex
	entries []logging.LogEntry
	err     error
}

func (r *memoryLogRepository) SaveLog(entry logging.LogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.entries = append(r.entries, entry)
	return nil
}

func (r *memoryLogRepository) Entries() []logging.LogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]logging.LogEntry(nil), r.entries...)
}
