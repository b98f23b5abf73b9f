// Package ports defines interfaces for external service communication.
package ports

import (
	"context"

	"github.com/ersonp/lineage/internal/domain/entities"
)

// FamilyGraph is the read side of the parent-child graph.
type FamilyGraph interface {
	// ResolveParents returns the ids of a person's parents (0-2 entries).
	ResolveParents(ctx context.Context, personID int64) ([]int64, error)

	// ResolveChildren returns the ids of a person's children.
	ResolveChildren(ctx context.Context, personID int64) ([]int64, error)

	// FindPersonByID finds a person by id. Returns nil if absent.
	FindPersonByID(ctx context.Context, personID int64) (*entities.Person, error)
}

// PartnerLedger exposes the partnering history of a pair.
type PartnerLedger interface {
	// LatestPartnerEventType returns the type of the most recent event for
	// the unordered pair, or nil if the pair has no events.
	LatestPartnerEventType(ctx context.Context, a, b int64) (*entities.PartnerEventType, error)
}

// MediaCatalog is the read side of the media archive.
type MediaCatalog interface {
	// MediaByTag returns ids of media carrying the tag. Unknown tags yield none.
	MediaByTag(ctx context.Context, tag string) ([]int64, error)

	// MediaByLocationSubstring returns ids of media whose location attribute
	// contains text.
	MediaByLocationSubstring(ctx context.Context, text string) ([]int64, error)

	// MediaForPerson returns ids of media the person appears in.
	MediaForPerson(ctx context.Context, personID int64) ([]int64, error)

	// MediaDateAttribute returns the parsed date attribute, or nil if the
	// file is dateless.
	MediaDateAttribute(ctx context.Context, mediaID int64) (*entities.PartialDate, error)

	// MediaLocation returns the file location string of a media file.
	MediaLocation(ctx context.Context, mediaID int64) (string, error)
}
