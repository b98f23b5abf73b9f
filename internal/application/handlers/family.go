package handlers

import (
	"context"
	"fmt"

	"github.com/ersonp/lineage/internal/domain/entities"
	"github.com/ersonp/lineage/internal/domain/services"
)

// FamilyHandler handles person and family record keeping.
type FamilyHandler struct {
	directory *services.DirectoryService
	people    personResolver
}

// NewFamilyHandler creates a new family handler.
func NewFamilyHandler(directory *services.DirectoryService) *FamilyHandler {
	return &FamilyHandler{
		directory: directory,
		people:    personResolver{directory: directory},
	}
}

// PersonInfo is a person with everything recorded about them.
type PersonInfo struct {
	Person      entities.Person       `json:"person"`
	Attributes  []entities.Attribute  `json:"attributes"`
	Annotations []entities.Annotation `json:"annotations"`
}

// PartnerStatusResult is the current partnering state of a pair.
type PartnerStatusResult struct {
	A      entities.Person `json:"a"`
	B      entities.Person `json:"b"`
	Status string          `json:"status"`
}

// ChildResult reports the outcome of recording a parent-child link.
type ChildResult struct {
	Parent entities.Person `json:"parent"`
	Child  entities.Person `json:"child"`
	Added  bool            `json:"added"`
}

// HandleAddPerson records a new person.
func (h *FamilyHandler) HandleAddPerson(ctx context.Context, name string) (*entities.Person, error) {
	return h.directory.AddPerson(ctx, name)
}

// HandleFind resolves a person and loads their attributes and annotations.
func (h *FamilyHandler) HandleFind(ctx context.Context, ref string) (*PersonInfo, error) {
	person, err := h.people.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	attrs, err := h.directory.PersonAttributes(ctx, person)
	if err != nil {
		return nil, err
	}
	notes, err := h.directory.NotesAndReferences(ctx, person)
	if err != nil {
		return nil, err
	}

	return &PersonInfo{
		Person:      person,
		Attributes:  attrs,
		Annotations: notes,
	}, nil
}

// HandleAttributes records attributes for a person.
func (h *FamilyHandler) HandleAttributes(ctx context.Context, ref string, values map[string]string) error {
	person, err := h.people.resolve(ctx, ref)
	if err != nil {
		return err
	}
	return h.directory.RecordAttributes(ctx, person, values)
}

// HandleNote appends a note to a person.
func (h *FamilyHandler) HandleNote(ctx context.Context, ref, text string) error {
	person, err := h.people.resolve(ctx, ref)
	if err != nil {
		return err
	}
	return h.directory.RecordNote(ctx, person, text)
}

// HandleReference appends a source reference to a person.
func (h *FamilyHandler) HandleReference(ctx context.Context, ref, text string) error {
	person, err := h.people.resolve(ctx, ref)
	if err != nil {
		return err
	}
	return h.directory.RecordReference(ctx, person, text)
}

// HandleNotes lists a person's notes and references.
func (h *FamilyHandler) HandleNotes(ctx context.Context, ref string) ([]entities.Annotation, error) {
	person, err := h.people.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	return h.directory.NotesAndReferences(ctx, person)
}

// HandleChild records that child is a child of parent.
func (h *FamilyHandler) HandleChild(ctx context.Context, parentRef, childRef string) (*ChildResult, error) {
	parent, child, err := h.people.resolvePair(ctx, parentRef, childRef)
	if err != nil {
		return nil, err
	}

	added, err := h.directory.RecordChild(ctx, parent, child)
	if err != nil {
		return nil, err
	}
	return &ChildResult{Parent: parent, Child: child, Added: added}, nil
}

// HandleMarry records a marriage between two people.
func (h *FamilyHandler) HandleMarry(ctx context.Context, a, b string) error {
	first, second, err := h.people.resolvePair(ctx, a, b)
	if err != nil {
		return err
	}
	return h.directory.RecordPartnering(ctx, first, second)
}

// HandleDivorce records a divorce between two people.
func (h *FamilyHandler) HandleDivorce(ctx context.Context, a, b string) error {
	first, second, err := h.people.resolvePair(ctx, a, b)
	if err != nil {
		return err
	}
	return h.directory.RecordDissolution(ctx, first, second)
}

// HandleStatus reports the latest partnering event between two people.
// Status is "none" when the pair has never partnered.
func (h *FamilyHandler) HandleStatus(ctx context.Context, a, b string) (*PartnerStatusResult, error) {
	first, second, err := h.people.resolvePair(ctx, a, b)
	if err != nil {
		return nil, err
	}

	status, err := h.directory.PartnerStatus(ctx, first, second)
	if err != nil {
		return nil, fmt.Errorf("reading partner status: %w", err)
	}

	result := &PartnerStatusResult{A: first, B: second, Status: "none"}
	if status != nil {
		result.Status = string(*status)
	}
	return result, nil
}
