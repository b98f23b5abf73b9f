package services

import (
	"context"

	"github.com/ersonp/lineage/internal/domain/entities"
	"github.com/ersonp/lineage/internal/domain/ports"
)

// LineageService answers generation-bounded ancestor and descendant queries.
type LineageService struct {
	graph ports.FamilyGraph
}

// NewLineageService creates a new LineageService.
func NewLineageService(graph ports.FamilyGraph) *LineageService {
	return &LineageService{graph: graph}
}

// Descendants returns everyone reachable from person along child edges in at
// most generations hops. The person is never part of the result, which is
// sorted by id.
func (s *LineageService) Descendants(ctx context.Context, person entities.Person, generations int) ([]entities.Person, error) {
	return s.traverse(ctx, person, generations, towardChildren)
}

// Ancestors returns everyone reachable from person along parent edges in at
// most generations hops, sorted by id.
func (s *LineageService) Ancestors(ctx context.Context, person entities.Person, generations int) ([]entities.Person, error) {
	return s.traverse(ctx, person, generations, towardParents)
}

// AncestorDepths returns the minimum number of parent hops from the person to
// each of their ancestors, with the person at depth 0.
func (s *LineageService) AncestorDepths(ctx context.Context, person entities.Person) (map[int64]int, error) {
	view := newFamilyView(s.graph)
	root, err := view.root(ctx, person, "person")
	if err != nil {
		return nil, err
	}
	return view.walk(ctx, root, towardParents, unbounded)
}

func (s *LineageService) traverse(ctx context.Context, person entities.Person, generations int, dir direction) ([]entities.Person, error) {
	if err := validatePerson(person, "person"); err != nil {
		return nil, err
	}
	if generations < 0 {
		return nil, invalidArgf("generations must not be negative (got %d)", generations)
	}

	view := newFamilyView(s.graph)
	root, err := view.root(ctx, person, "person")
	if err != nil {
		return nil, err
	}
	if generations == 0 {
		return []entities.Person{}, nil
	}

	depths, err := view.walk(ctx, root, dir, generations)
	if err != nil {
		return nil, err
	}
	return view.people(depths, root.person.ID), nil
}
