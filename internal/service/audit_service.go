package service

import (
	"context"
	"sync"

	"github.com/acadsys/registrar-api/internal/models"
	"github.com/acadsys/registrar-api/internal/repository"
)

// AuditService exposes the audit log read-only. Entries are written by the
// other services as part of their operations.
type AuditService struct {
	audit *repository.AuditLog
	mu    *sync.RWMutex
}

// NewAuditService constructs the audit service.
func NewAuditService(audit *repository.AuditLog, mu *sync.RWMutex) *AuditService {
	return &AuditService{audit: audit, mu: mu}
}

// List returns retained entries oldest first, optionally filtered by level.
func (s *AuditService) List(ctx context.Context, level models.AuditLevel) ([]models.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.audit.List()
	if level == "" {
		return entries, nil
	}
	filtered := make([]models.AuditEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.Level == level {
			filtered = append(filtered, entry)
		}
	}
	return filtered, nil
}

// Count returns the number of retained entries.
func (s *AuditService) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.audit.Count()
}
