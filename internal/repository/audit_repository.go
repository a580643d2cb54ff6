package repository

import (
	"time"

	"go.uber.org/zap"

	"github.com/acadsys/registrar-api/internal/models"
)

// AuditLog is the bounded append-only log of engine operations. When the
// capacity is reached the oldest entry is evicted; a single warning is
// logged the first time that happens.
type AuditLog struct {
	capacity int
	entries  []models.AuditEntry
	nextID   int
	logger   *zap.Logger
	warned   bool
}

// NewAuditLog constructs an audit log with the given capacity.
func NewAuditLog(capacity int, logger *zap.Logger) *AuditLog {
	if capacity <= 0 {
		capacity = 10000
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditLog{
		capacity: capacity,
		entries:  make([]models.AuditEntry, 0, capacity),
		nextID:   1,
		logger:   logger,
	}
}

// Append records one entry. The engine writes here after every mutating
// operation and every validation failure; nothing ever reads entries back
// for decisions.
func (l *AuditLog) Append(level models.AuditLevel, operation, details string) {
	if len(l.entries) >= l.capacity {
		l.entries = l.entries[1:]
		if !l.warned {
			l.logger.Warn("audit log full, dropping oldest entries", zap.Int("capacity", l.capacity))
			l.warned = true
		}
	}
	l.entries = append(l.entries, models.AuditEntry{
		ID:        l.nextID,
		Level:     level,
		Timestamp: time.Now().UTC(),
		Operation: operation,
		Details:   details,
	})
	l.nextID++
}

// List returns a copy of all retained entries, oldest first.
func (l *AuditLog) List() []models.AuditEntry {
	out := make([]models.AuditEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Count returns the number of retained entries.
func (l *AuditLog) Count() int {
	return len(l.entries)
}
