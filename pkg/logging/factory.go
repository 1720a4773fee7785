package logging

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// DefaultLoggerFactory implements LoggerFactory using zap loggers
type DefaultLoggerFactory struct {
	loggers map[string]Logger
	options Options
	mu      sync.Mutex
}

// NewLoggerFactory creates a new logger factory with default options
func NewLoggerFactory() LoggerFactory {
	return NewLoggerFactoryWithOptions(DefaultOptions())
}

// NewLoggerFactoryWithOptions creates a logger factory for the given level and format
func NewLoggerFactoryWithOptions(opts Options) *DefaultLoggerFactory {
	return &DefaultLoggerFactory{
		loggers: make(map[string]Logger),
		options: opts,
	}
}

// CreateLogger creates a basic logger for the specified component
func (f *DefaultLoggerFactory) CreateLogger(component string) Logger {
	f.mu.Lock()
	defer f.mu.Unlock()

	if logger, exists := f.loggers[component]; exists {
		return logger
	}

	logger := f.newZapLogger(component)
	f.loggers[component] = logger
	return logger
}

// CreateSyncLogger creates a logger for the sync pipeline of one entity kind
func (f *DefaultLoggerFactory) CreateSyncLogger(kind string) Logger {
	return NewSyncLogger(f.CreateLogger("sync"), kind)
}

// CreateRequestLogger creates a logger for a single HTTP request
func (f *DefaultLoggerFactory) CreateRequestLogger(method, path string) Logger {
	return NewRequestLogger(f.CreateLogger("api"), method, path)
}

func (f *DefaultLoggerFactory) newZapLogger(component string) Logger {
	zapLogger, err := NewZapLoggerWithOptions(component, f.options)
	if err != nil {
		panic(fmt.Sprintf("Failed to create logger for component %s: %v", component, err))
	}
	return zapLogger
}

// DatabaseLoggerFactory extends the default factory with database persistence
type DatabaseLoggerFactory struct {
	*DefaultLoggerFactory
	repository LogRepository
	persistAll bool
	wg         sync.WaitGroup
}

// NewDatabaseLoggerFactory creates a logger factory that persists WARN and
// ERROR entries, or every entry when persistAll is set
func NewDatabaseLoggerFactory(repository LogRepository, opts Options, persistAll bool) *DatabaseLoggerFactory {
	return &DatabaseLoggerFactory{
		DefaultLoggerFactory: NewLoggerFactoryWithOptions(opts),
		repository:           repository,
		persistAll:           persistAll,
	}
}

// CreateLogger creates a database-backed logger for the specified component
func (f *DatabaseLoggerFactory) CreateLogger(component string) Logger {
	f.mu.Lock()
	defer f.mu.Unlock()

	if logger, exists := f.loggers[component]; exists {
		return logger
	}

	dbLogger := &DatabaseLogger{
		base:      f.newZapLogger(component),
		component: component,
		context:   make(map[string]interface{}),
		factory:   f,
	}
	f.loggers[component] = dbLogger
	return dbLogger
}

// CreateSyncLogger creates a database-backed logger for the sync pipeline
func (f *DatabaseLoggerFactory) CreateSyncLogger(kind string) Logger {
	return NewSyncLogger(f.CreateLogger("sync"), kind)
}

// CreateRequestLogger creates a database-backed logger for an HTTP request
func (f *DatabaseLoggerFactory) CreateRequestLogger(method, path string) Logger {
	return NewRequestLogger(f.CreateLogger("api"), method, path)
}

// Flush waits for pending log writes
func (f *DatabaseLoggerFactory) Flush() {
	f.wg.Wait()
}

// DatabaseLogger wraps a base logger with database persistence
type DatabaseLogger struct {
	base      Logger
	component string
	context   map[string]interface{}
	factory   *DatabaseLoggerFactory
}

// Info logs informational messages and persists them when enabled
func (d *DatabaseLogger) Info(msg string, fields map[string]interface{}) {
	d.base.Info(msg, fields)
	if d.factory.persistAll {
		d.persistLog("INFO", msg, nil, fields)
	}
}

// Error logs error messages and persists to database
func (d *DatabaseLogger) Error(msg string, err error, fields map[string]interface{}) {
	d.base.Error(msg, err, fields)
	d.persistLog("ERROR", msg, err, fields)
}

// Warn logs warning messages and persists to database
func (d *DatabaseLogger) Warn(msg string, fields map[string]interface{}) {
	d.base.Warn(msg, fields)
	d.persistLog("WARN", msg, nil, fields)
}

// Debug logs debug messages and persists them when enabled
func (d *DatabaseLogger) Debug(msg string, fields map[string]interface{}) {
	d.base.Debug(msg, fields)
	if d.factory.persistAll {
		d.persistLog("DEBUG", msg, nil, fields)
	}
}

// WithPipeline creates a new logger with pipeline context
func (d *DatabaseLogger) WithPipeline(pipeline string) Logger {
	return d.WithContext(map[string]interface{}{"pipeline": pipeline})
}

// WithContext creates a new logger with additional context fields
func (d *DatabaseLogger) WithContext(ctx map[string]interface{}) Logger {
	newContext := make(map[string]interface{}, len(d.context)+len(ctx))
	for k, v := range d.context {
		newContext[k] = v
	}
	for k, v := range ctx {
		newContext[k] = v
	}

	return &DatabaseLogger{
		base:      d.base.WithContext(ctx),
		component: d.component,
		context:   newContext,
		factory:   d.factory,
	}
}

// persistLog saves the log entry to the database without blocking the caller
func (d *DatabaseLogger) persistLog(level, message string, err error, fields map[string]interface{}) {
	all := make(map[string]interface{}, len(d.context)+len(fields))
	for k, v := range d.context {
		all[k] = v
	}
	for k, v := range fields {
		all[k] = v
	}

	entry := LogEntry{
		Component: d.component,
		Level:     level,
		Message:   message,
		Fields:    all,
		Timestamp: time.Now().UTC(),
	}
	if err != nil {
		entry.Error = err.Error()
	}

	entry.Kind = stringField(all, "kind")
	entry.Identifier = stringField(all, "identifier")
	entry.UserID = stringField(all, "user_id")

	d.factory.wg.Add(1)
	go func() {
		defer d.factory.wg.Done()
		if saveErr := d.factory.repository.SaveLog(entry); saveErr != nil {
			// Base logger only, persisting this would recurse
			d.base.Error("Failed to persist log to database", saveErr, map[string]interface{}{
				"original_message": message,
				"original_level":   level,
			})
		}
	}()
}

func stringField(fields map[string]interface{}, key string) string {
	switch v := fields[key].(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// GlobalLoggerFactory provides a singleton logger factory instance
var (
	globalFactory LoggerFactory
	globalMu      sync.RWMutex
)

// GetGlobalLoggerFactory returns the global logger factory instance
func GetGlobalLoggerFactory() LoggerFactory {
	globalMu.RLock()
	factory := globalFactory
	globalMu.RUnlock()
	if factory != nil {
		return factory
	}

	globalMu.Lock()
	defer globalMu.Unlock()
	if globalFactory == nil {
		globalFactory = NewLoggerFactory()
	}
	return globalFactory
}

// SetGlobalLoggerFactory sets the global logger factory (useful for dependency injection)
func SetGlobalLoggerFactory(factory LoggerFactory) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalFactory = factory
}
