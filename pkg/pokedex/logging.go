package pokedex

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/latoulicious/pokedex/pkg/database/models"
	"github.com/latoulicious/pokedex/pkg/database/repository"
	"github.com/latoulicious/pokedex/pkg/logging"
	"gorm.io/datatypes"
)

// LogRepositoryAdapter adapts SyncLogRepository to implement logging.LogRepository
type LogRepositoryAdapter struct {
	logRepo *repository.SyncLogRepository
}

// NewLogRepositoryAdapter creates a new LogRepositoryAdapter
func NewLogRepositoryAdapter(logRepo *repository.SyncLogRepository) logging.LogRepository {
	return &LogRepositoryAdapter{
		logRepo: logRepo,
	}
}

// SaveLog implements logging.LogRepository interface
func (l *LogRepositoryAdapter) SaveLog(entry logging.LogEntry) error {
	var fields datatypes.JSON
	if len(entry.Fields) > 0 {
		data, err := json.Marshal(entry.Fields)
		if err != nil {
			// unencodable values are dropped rather than losing the entry
			data, _ = json.Marshal(map[string]string{"marshal_error": err.Error()})
		}
		fields = datatypes.JSON(data)
	}

	timestamp := entry.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}

	return l.logRepo.SaveLog(&models.SyncLog{
		ID:         uuid.New(),
		Component:  entry.Component,
		Level:      entry.Level,
		Message:    entry.Message,
		Error:      entry.Error,
		Fields:     fields,
		Kind:       entry.Kind,
		Identifier: entry.Identifier,
		UserID:     entry.UserID,
		Timestamp:  timestamp,
	})
}
