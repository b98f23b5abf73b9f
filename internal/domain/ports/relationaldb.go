package ports

import (
	"context"

	"github.com/ersonp/lineage/internal/domain/entities"
)

// RelationalDB is the full storage collaborator: the graph and media read
// sides used by the query engine, the directory used for record keeping,
// and the audit log.
type RelationalDB interface {
	FamilyGraph
	PartnerLedger
	MediaCatalog
	Directory

	// EnsureSchema creates the database schema if it doesn't exist.
	EnsureSchema(ctx context.Context) error

	// Close closes the database connection.
	Close() error

	// LogAction logs an action to the audit log.
	LogAction(ctx context.Context, action string, subject string, details map[string]any) error

	// FindAuditLogByAction finds audit log entries by action type. An empty
	// action matches every entry.
	FindAuditLogByAction(ctx context.Context, action string, limit int) ([]entities.AuditEntry, error)
}
