package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ersonp/lineage/internal/domain/entities"
	"github.com/ersonp/lineage/internal/domain/ports"
)

// Audit actions written by DirectoryService.
const (
	ActionAddPerson        = "person.add"
	ActionPersonAttributes = "person.attributes"
	ActionNote             = "person.note"
	ActionReference        = "person.reference"
	ActionChild            = "family.child"
	ActionMarriage         = "family.marriage"
	ActionDivorce          = "family.divorce"
	ActionAddMedia         = "media.add"
	ActionMediaAttributes  = "media.attributes"
	ActionTag              = "media.tag"
	ActionPeopleInMedia    = "media.people"
)

type batchKey struct{}

// WithBatchID tags every audit entry written under ctx with an import batch id.
func WithBatchID(ctx context.Context, batchID string) context.Context {
	return context.WithValue(ctx, batchKey{}, batchID)
}

// DirectoryService records people, media and the links between them.
type DirectoryService struct {
	relationalDB ports.RelationalDB
}

// NewDirectoryService creates a new DirectoryService.
func NewDirectoryService(relationalDB ports.RelationalDB) *DirectoryService {
	return &DirectoryService{
		relationalDB: relationalDB,
	}
}

// AddPerson adds a person. Names need not be unique.
func (s *DirectoryService) AddPerson(ctx context.Context, name string) (*entities.Person, error) {
	if err := requireText(name, "name"); err != nil {
		return nil, err
	}

	person := &entities.Person{
		Name:      strings.TrimSpace(name),
		CreatedAt: time.Now(),
	}
	if err := s.relationalDB.SavePerson(ctx, person); err != nil {
		return nil, fmt.Errorf("saving person: %w", err)
	}

	if err := s.audit(ctx, ActionAddPerson, personSubject(person.ID), map[string]any{"name": person.Name}); err != nil {
		return nil, err
	}
	return person, nil
}

// FindPerson finds the single person with exactly this name.
func (s *DirectoryService) FindPerson(ctx context.Context, name string) (*entities.Person, error) {
	if err := requireText(name, "name"); err != nil {
		return nil, err
	}

	matches, err := s.relationalDB.FindPersonsByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, fmt.Errorf("finding person: %w", err)
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: no person named %q", ports.ErrNotFound, name)
	case 1:
		return &matches[0], nil
	default:
		ids := make([]string, len(matches))
		for i, m := range matches {
			ids[i] = fmt.Sprintf("#%d", m.ID)
		}
		return nil, fmt.Errorf("%w: %d people named %q (%s)",
			ports.ErrAmbiguousMatch, len(matches), name, strings.Join(ids, ", "))
	}
}

// FindPersonByID finds a person by id.
func (s *DirectoryService) FindPersonByID(ctx context.Context, id int64) (*entities.Person, error) {
	if id <= 0 {
		return nil, invalidArgf("person id must be positive (got %d)", id)
	}
	person, err := s.relationalDB.FindPersonByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding person: %w", err)
	}
	if person == nil {
		return nil, fmt.Errorf("%w: person #%d", ports.ErrNotFound, id)
	}
	return person, nil
}

// FindName returns the recorded name of a person.
func (s *DirectoryService) FindName(ctx context.Context, person entities.Person) (string, error) {
	p, err := s.FindPersonByID(ctx, person.ID)
	if err != nil {
		return "", err
	}
	return p.Name, nil
}

// RecordAttributes upserts attributes of a person. Either every attribute is
// valid and stored, or none is.
func (s *DirectoryService) RecordAttributes(ctx context.Context, person entities.Person, values map[string]string) error {
	if err := s.requirePerson(ctx, person, "person"); err != nil {
		return err
	}
	attrs, err := buildAttributes(values)
	if err != nil {
		return err
	}

	if err := s.relationalDB.SavePersonAttributes(ctx, person.ID, attrs); err != nil {
		return fmt.Errorf("saving attributes: %w", err)
	}
	return s.audit(ctx, ActionPersonAttributes, personSubject(person.ID), attributeDetails(attrs))
}

// PersonAttributes lists the attributes recorded for a person.
func (s *DirectoryService) PersonAttributes(ctx context.Context, person entities.Person) ([]entities.Attribute, error) {
	if err := s.requirePerson(ctx, person, "person"); err != nil {
		return nil, err
	}
	attrs, err := s.relationalDB.FindPersonAttributes(ctx, person.ID)
	if err != nil {
		return nil, fmt.Errorf("finding attributes: %w", err)
	}
	return attrs, nil
}

// RecordNote appends a free-text note to a person.
func (s *DirectoryService) RecordNote(ctx context.Context, person entities.Person, text string) error {
	return s.annotate(ctx, person, entities.AnnotationNote, text, ActionNote)
}

// RecordReference appends a source reference to a person.
func (s *DirectoryService) RecordReference(ctx context.Context, person entities.Person, text string) error {
	return s.annotate(ctx, person, entities.AnnotationReference, text, ActionReference)
}

func (s *DirectoryService) annotate(ctx context.Context, person entities.Person, kind entities.AnnotationKind, text, action string) error {
	if err := s.requirePerson(ctx, person, "person"); err != nil {
		return err
	}
	if err := requireText(text, string(kind)); err != nil {
		return err
	}

	a := &entities.Annotation{
		PersonID:  person.ID,
		Kind:      kind,
		Text:      strings.TrimSpace(text),
		CreatedAt: time.Now(),
	}
	if err := s.relationalDB.SaveAnnotation(ctx, a); err != nil {
		return fmt.Errorf("saving %s: %w", kind, err)
	}
	return s.audit(ctx, action, personSubject(person.ID), map[string]any{"annotation_id": a.ID})
}

// NotesAndReferences lists a person's notes and references in the order
// they were recorded.
func (s *DirectoryService) NotesAndReferences(ctx context.Context, person entities.Person) ([]entities.Annotation, error) {
	if err := s.requirePerson(ctx, person, "person"); err != nil {
		return nil, err
	}
	notes, err := s.relationalDB.FindAnnotations(ctx, person.ID)
	if err != nil {
		return nil, fmt.Errorf("finding annotations: %w", err)
	}
	return notes, nil
}

// RecordChild links parent to child. It reports false when the link was
// already recorded.
func (s *DirectoryService) RecordChild(ctx context.Context, parent, child entities.Person) (bool, error) {
	if err := s.requirePerson(ctx, parent, "parent"); err != nil {
		return false, err
	}
	if err := s.requirePerson(ctx, child, "child"); err != nil {
		return false, err
	}
	if parent.ID == child.ID {
		return false, invalidArgf("person %d cannot be their own parent", parent.ID)
	}

	added, err := s.relationalDB.AddParentChildEdge(ctx, entities.ParentChildEdge{
		ParentID: parent.ID,
		ChildID:  child.ID,
	})
	if err != nil {
		return false, fmt.Errorf("recording child %d of %d: %w", child.ID, parent.ID, err)
	}
	if !added {
		return false, nil
	}

	details := map[string]any{"parent_id": parent.ID, "child_id": child.ID}
	if err := s.audit(ctx, ActionChild, personSubject(child.ID), details); err != nil {
		return false, err
	}
	return true, nil
}

// RecordPartnering records a marriage or partnering between a and b.
func (s *DirectoryService) RecordPartnering(ctx context.Context, a, b entities.Person) error {
	return s.partnerEvent(ctx, a, b, entities.PartnerMarriage, ActionMarriage)
}

// RecordDissolution records the end of a partnering between a and b.
func (s *DirectoryService) RecordDissolution(ctx context.Context, a, b entities.Person) error {
	return s.partnerEvent(ctx, a, b, entities.PartnerDivorce, ActionDivorce)
}

func (s *DirectoryService) partnerEvent(ctx context.Context, a, b entities.Person, typ entities.PartnerEventType, action string) error {
	if err := s.requirePair(ctx, a, b); err != nil {
		return err
	}

	low, high := entities.NormalizePair(a.ID, b.ID)
	event := &entities.PartnerEvent{
		PersonA:   low,
		PersonB:   high,
		Type:      typ,
		CreatedAt: time.Now(),
	}
	if err := s.relationalDB.SavePartnerEvent(ctx, event); err != nil {
		return fmt.Errorf("saving %s: %w", typ, err)
	}

	details := map[string]any{"person_a": low, "person_b": high, "sequence": event.Sequence}
	return s.audit(ctx, action, personSubject(low), details)
}

// PartnerStatus returns the latest partner event between a and b, or nil if
// none was recorded.
func (s *DirectoryService) PartnerStatus(ctx context.Context, a, b entities.Person) (*entities.PartnerEventType, error) {
	if err := s.requirePair(ctx, a, b); err != nil {
		return nil, err
	}
	status, err := s.relationalDB.LatestPartnerEventType(ctx, a.ID, b.ID)
	if err != nil {
		return nil, fmt.Errorf("finding partner status: %w", err)
	}
	return status, nil
}

// AddMediaFile archives a media file at a unique location.
func (s *DirectoryService) AddMediaFile(ctx context.Context, location string) (*entities.MediaFile, error) {
	if err := requireText(location, "file location"); err != nil {
		return nil, err
	}

	file := &entities.MediaFile{
		Location:  strings.TrimSpace(location),
		CreatedAt: time.Now(),
	}
	if err := s.relationalDB.SaveMediaFile(ctx, file); err != nil {
		return nil, fmt.Errorf("saving media file %q: %w", file.Location, err)
	}

	if err := s.audit(ctx, ActionAddMedia, mediaSubject(file.ID), map[string]any{"location": file.Location}); err != nil {
		return nil, err
	}
	return file, nil
}

// FindMediaFile finds a media file by its exact location.
func (s *DirectoryService) FindMediaFile(ctx context.Context, location string) (*entities.MediaFile, error) {
	if err := requireText(location, "file location"); err != nil {
		return nil, err
	}
	file, err := s.relationalDB.FindMediaFileByLocation(ctx, strings.TrimSpace(location))
	if err != nil {
		return nil, fmt.Errorf("finding media file: %w", err)
	}
	if file == nil {
		return nil, fmt.Errorf("%w: no media file at %q", ports.ErrNotFound, location)
	}
	return file, nil
}

// FindFileLocation returns the location of a media file.
func (s *DirectoryService) FindFileLocation(ctx context.Context, file entities.MediaFile) (string, error) {
	found, err := s.findMedia(ctx, file)
	if err != nil {
		return "", err
	}
	if found == nil {
		return "", fmt.Errorf("%w: media file #%d", ports.ErrNotFound, file.ID)
	}
	return found.Location, nil
}

// RecordMediaAttributes upserts attributes of a media file.
func (s *DirectoryService) RecordMediaAttributes(ctx context.Context, file entities.MediaFile, values map[string]string) error {
	if err := s.requireMedia(ctx, file); err != nil {
		return err
	}
	attrs, err := buildAttributes(values)
	if err != nil {
		return err
	}

	if err := s.relationalDB.SaveMediaAttributes(ctx, file.ID, attrs); err != nil {
		return fmt.Errorf("saving media attributes: %w", err)
	}
	return s.audit(ctx, ActionMediaAttributes, mediaSubject(file.ID), attributeDetails(attrs))
}

// MediaAttributes lists the attributes recorded for a media file.
func (s *DirectoryService) MediaAttributes(ctx context.Context, file entities.MediaFile) ([]entities.Attribute, error) {
	if err := s.requireMedia(ctx, file); err != nil {
		return nil, err
	}
	attrs, err := s.relationalDB.FindMediaAttributes(ctx, file.ID)
	if err != nil {
		return nil, fmt.Errorf("finding media attributes: %w", err)
	}
	return attrs, nil
}

// PeopleInMedia records that people appear in a media file. An empty list
// is a no-op and recording the same person twice is harmless.
func (s *DirectoryService) PeopleInMedia(ctx context.Context, file entities.MediaFile, people []entities.Person) error {
	if err := s.requireMedia(ctx, file); err != nil {
		return err
	}
	if len(people) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(people))
	for _, p := range people {
		if err := s.requirePerson(ctx, p, "person"); err != nil {
			return err
		}
		ids = append(ids, p.ID)
	}
	ids = dedupeIDs(ids)

	if err := s.relationalDB.LinkPeopleToMedia(ctx, file.ID, ids); err != nil {
		return fmt.Errorf("linking people to media: %w", err)
	}
	return s.audit(ctx, ActionPeopleInMedia, mediaSubject(file.ID), map[string]any{"person_ids": ids})
}

// TagMedia attaches a tag to a media file, creating the tag on first use.
func (s *DirectoryService) TagMedia(ctx context.Context, file entities.MediaFile, tag string) error {
	if err := s.requireMedia(ctx, file); err != nil {
		return err
	}
	if err := requireText(tag, "tag"); err != nil {
		return err
	}

	tag = strings.TrimSpace(tag)
	if err := s.relationalDB.TagMedia(ctx, file.ID, tag); err != nil {
		return fmt.Errorf("tagging media: %w", err)
	}
	return s.audit(ctx, ActionTag, mediaSubject(file.ID), map[string]any{"tag": tag})
}

// ListTags lists the tag vocabulary.
func (s *DirectoryService) ListTags(ctx context.Context) ([]string, error) {
	tags, err := s.relationalDB.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	return tags, nil
}

// AuditLog lists recorded mutations, newest first. An empty action lists all.
func (s *DirectoryService) AuditLog(ctx context.Context, action string, limit int) ([]entities.AuditEntry, error) {
	if limit <= 0 {
		return nil, invalidArgf("limit must be positive (got %d)", limit)
	}
	entries, err := s.relationalDB.FindAuditLogByAction(ctx, action, limit)
	if err != nil {
		return nil, fmt.Errorf("reading audit log: %w", err)
	}
	return entries, nil
}

func (s *DirectoryService) requirePerson(ctx context.Context, p entities.Person, role string) error {
	if err := validatePerson(p, role); err != nil {
		return err
	}
	found, err := s.relationalDB.FindPersonByID(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("finding %s: %w", role, err)
	}
	if found == nil {
		return invalidArgf("%s %d does not exist", role, p.ID)
	}
	return nil
}

func (s *DirectoryService) requirePair(ctx context.Context, a, b entities.Person) error {
	if err := s.requirePerson(ctx, a, "first partner"); err != nil {
		return err
	}
	if err := s.requirePerson(ctx, b, "second partner"); err != nil {
		return err
	}
	if a.ID == b.ID {
		return invalidArgf("person %d cannot partner with themselves", a.ID)
	}
	return nil
}

func (s *DirectoryService) findMedia(ctx context.Context, file entities.MediaFile) (*entities.MediaFile, error) {
	if err := validateMediaFile(file); err != nil {
		return nil, err
	}
	found, err := s.relationalDB.FindMediaFileByID(ctx, file.ID)
	if err != nil {
		return nil, fmt.Errorf("finding media file: %w", err)
	}
	return found, nil
}

func (s *DirectoryService) requireMedia(ctx context.Context, file entities.MediaFile) error {
	found, err := s.findMedia(ctx, file)
	if err != nil {
		return err
	}
	if found == nil {
		return invalidArgf("media file %d does not exist", file.ID)
	}
	return nil
}

func (s *DirectoryService) audit(ctx context.Context, action, subject string, details map[string]any) error {
	if batch, ok := ctx.Value(batchKey{}).(string); ok {
		if details == nil {
			details = map[string]any{}
		}
		details["batch"] = batch
	}
	if err := s.relationalDB.LogAction(ctx, action, subject, details); err != nil {
		return fmt.Errorf("writing audit entry: %w", err)
	}
	return nil
}

// buildAttributes validates a key/value map into typed attributes ordered by
// key. Keys that collide after normalisation are rejected.
func buildAttributes(values map[string]string) ([]entities.Attribute, error) {
	if len(values) == 0 {
		return nil, invalidArgf("at least one attribute is required")
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	seen := make(map[string]string, len(keys))
	attrs := make([]entities.Attribute, 0, len(keys))
	for _, k := range keys {
		if err := requireText(k, "attribute key"); err != nil {
			return nil, err
		}
		if err := requireText(values[k], fmt.Sprintf("attribute %q", k)); err != nil {
			return nil, err
		}
		attr, err := entities.NewAttribute(k, values[k])
		if err != nil {
			return nil, invalidArgf("attribute %q: %v", k, err)
		}
		if prev, dup := seen[attr.Key]; dup {
			return nil, invalidArgf("attribute keys %q and %q collide", prev, k)
		}
		seen[attr.Key] = k
		attrs = append(attrs, attr)
	}
	entities.SortAttributes(attrs)
	return attrs, nil
}

func attributeDetails(attrs []entities.Attribute) map[string]any {
	keys := make([]string, len(attrs))
	for i, a := range attrs {
		keys[i] = a.Key
	}
	return map[string]any{"keys": keys}
}

func personSubject(id int64) string {
	return fmt.Sprintf("person:%d", id)
}

func mediaSubject(id int64) string {
	return fmt.Sprintf("media:%d", id)
}
