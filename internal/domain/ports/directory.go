package ports

import (
	"context"

	"github.com/ersonp/lineage/internal/domain/entities"
)

// Directory holds the record-keeping operations for people and media.
type Directory interface {
	// Person operations

	// SavePerson inserts a person and assigns its id.
	SavePerson(ctx context.Context, person *entities.Person) error

	// FindPersonsByName returns every person with exactly this name.
	FindPersonsByName(ctx context.Context, name string) ([]entities.Person, error)

	// SavePersonAttributes upserts attributes by key.
	SavePersonAttributes(ctx context.Context, personID int64, attrs []entities.Attribute) error

	// FindPersonAttributes lists a person's attributes ordered by key.
	FindPersonAttributes(ctx context.Context, personID int64) ([]entities.Attribute, error)

	// SaveAnnotation appends a note or reference.
	SaveAnnotation(ctx context.Context, a *entities.Annotation) error

	// FindAnnotations lists a person's notes and references in insertion order.
	FindAnnotations(ctx context.Context, personID int64) ([]entities.Annotation, error)

	// AddParentChildEdge atomically checks and inserts an edge. It returns
	// false if the edge already existed, ErrTooManyParents if the child
	// already has two other parents, and ErrCycle if the child is an
	// ancestor of the parent.
	AddParentChildEdge(ctx context.Context, edge entities.ParentChildEdge) (bool, error)

	// SavePartnerEvent appends a partner event and assigns its sequence.
	SavePartnerEvent(ctx context.Context, event *entities.PartnerEvent) error

	// Media operations

	// SaveMediaFile inserts a media file. Returns ErrDuplicate if the
	// location is already archived.
	SaveMediaFile(ctx context.Context, file *entities.MediaFile) error

	// FindMediaFileByLocation finds a media file by exact location. Returns nil if absent.
	FindMediaFileByLocation(ctx context.Context, location string) (*entities.MediaFile, error)

	// FindMediaFileByID finds a media file by id. Returns nil if absent.
	FindMediaFileByID(ctx context.Context, mediaID int64) (*entities.MediaFile, error)

	// SaveMediaAttributes upserts media attributes by key.
	SaveMediaAttributes(ctx context.Context, mediaID int64, attrs []entities.Attribute) error

	// FindMediaAttributes lists a media file's attributes ordered by key.
	FindMediaAttributes(ctx context.Context, mediaID int64) ([]entities.Attribute, error)

	// TagMedia links a tag to a media file, creating the tag if needed.
	TagMedia(ctx context.Context, mediaID int64, tag string) error

	// LinkPeopleToMedia records that people appear in a media file.
	LinkPeopleToMedia(ctx context.Context, mediaID int64, personIDs []int64) error

	// ListTags lists the tag vocabulary ordered by name.
	ListTags(ctx context.Context) ([]string, error)
}
