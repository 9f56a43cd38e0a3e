package logger

import (
	"context"
	"fmt"
	"sync"
	"time"

	common_models "go-gamifier/internal/common/models"
	"go-gamifier/internal/config"
	"go-gamifier/internal/database"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap/zapcore"
)

// LogEntry holds the data passed from Zap to the worker
type LogEntry struct {
	Level          zapcore.Level
	Message        string
	IpAddress      string
	OrganizationID string
	UserID         string
	Caller         string
}

// DBLogWriter drains log entries into the "logs" collection on a single goroutine.
type DBLogWriter struct {
	collection *mongo.Collection
	logChan    chan LogEntry
	appId      string
	done       chan struct{}
	closeOnce  sync.Once
}

func NewDBLogWriter(mongodb *database.MongodbDB, cfg *config.Config) *DBLogWriter {
	writer := &DBLogWriter{
		collection: mongodb.DB.Collection("logs"),
		logChan:    make(chan LogEntry, 1000),
		appId:      cfg.AppId,
		done:       make(chan struct{}),
	}

	go writer.processLogs()

	return writer
}

// AddLog never blocks the caller; entries are dropped when the buffer is full.
func (w *DBLogWriter) AddLog(entry LogEntry) {
	defer func() {
		// Sending after Close panics; logging during shutdown is best effort.
		_ = recover()
	}()
	select {
	case w.logChan <- entry:
	default:
		fmt.Println("DB Log Channel Full! Dropping log:", entry.Message)
	}
}

// Close stops accepting entries and waits for the buffer to drain.
func (w *DBLogWriter) Close() {
	w.closeOnce.Do(func() {
		close(w.logChan)
		<-w.done
	})
}

func (w *DBLogWriter) processLogs() {
	defer close(w.done)
	for entry := range w.logChan {
		logRecord := common_models.Log{
			Message:        entry.Message,
			Caller:         entry.Caller,
			IpAddress:      entry.IpAddress,
			OrganizationID: entry.OrganizationID,
			UserID:         entry.UserID,
			LogLevelId:     mapLevelToInt(entry.Level),
			AppId:          w.appId,
			CreatedOnUtc:   time.Now().UTC(),
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_, _ = w.collection.InsertOne(ctx, logRecord)
		cancel()
	}
}

func mapLevelToInt(l zapcore.Level) int {
	switch l {
	case zapcore.DebugLevel:
		return 10
	case zapcore.InfoLevel:
		return 20
	case zapcore.WarnLevel:
		return 30
	case zapcore.ErrorLevel:
		return 40
	case zapcore.FatalLevel:
		return 50
	default:
		return 20
	}
}
