package handlers

import (
	"context"

	"github.com/ersonp/lineage/internal/domain/entities"
	"github.com/ersonp/lineage/internal/domain/services"
)

// AuditHandler reads the audit trail.
type AuditHandler struct {
	directory *services.DirectoryService
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(directory *services.DirectoryService) *AuditHandler {
	return &AuditHandler{directory: directory}
}

// Handle returns the most recent audit entries, newest first. An empty
// action lists every action.
func (h *AuditHandler) Handle(ctx context.Context, action string, limit int) ([]entities.AuditEntry, error) {
	return h.directory.AuditLog(ctx, action, limit)
}
