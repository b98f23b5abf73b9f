package services

import (
	"context"

	"github.com/ersonp/lineage/internal/domain/entities"
	"github.com/ersonp/lineage/internal/domain/ports"
)

// RelationService classifies the biological relation between two people.
type RelationService struct {
	graph ports.FamilyGraph
}

// NewRelationService creates a new RelationService.
func NewRelationService(graph ports.FamilyGraph) *RelationService {
	return &RelationService{graph: graph}
}

// FindRelation locates the lowest common ancestor of a and b and derives the
// cousinship degree and removal from the two depths. It returns nil when the
// two people share no ancestor.
func (s *RelationService) FindRelation(ctx context.Context, a, b entities.Person) (*entities.BiologicalRelation, error) {
	if err := validatePerson(a, "first person"); err != nil {
		return nil, err
	}
	if err := validatePerson(b, "second person"); err != nil {
		return nil, err
	}
	if a.ID == b.ID {
		return nil, invalidArgf("cannot relate person %d to themselves", a.ID)
	}

	// One view serves both walks so shared ancestors are loaded once.
	view := newFamilyView(s.graph)
	rootA, err := view.root(ctx, a, "first person")
	if err != nil {
		return nil, err
	}
	rootB, err := view.root(ctx, b, "second person")
	if err != nil {
		return nil, err
	}

	depthsA, err := view.walk(ctx, rootA, towardParents, unbounded)
	if err != nil {
		return nil, err
	}
	depthsB, err := view.walk(ctx, rootB, towardParents, unbounded)
	if err != nil {
		return nil, err
	}

	lca, dA, dB, ok := lowestCommonAncestor(depthsA, depthsB)
	if !ok {
		return nil, nil
	}

	removal := dA - dB
	if removal < 0 {
		removal = -removal
	}
	return &entities.BiologicalRelation{
		Cousinship:       min(dA, dB) - 1,
		Removal:          removal,
		CommonAncestorID: lca,
	}, nil
}

// lowestCommonAncestor picks the shared ancestor with the smallest combined
// depth, breaking ties by the smaller id.
func lowestCommonAncestor(depthsA, depthsB map[int64]int) (id int64, dA, dB int, ok bool) {
	best := -1
	for candidate, da := range depthsA {
		db, shared := depthsB[candidate]
		if !shared {
			continue
		}
		total := da + db
		if !ok || total < best || (total == best && candidate < id) {
			id, dA, dB, best, ok = candidate, da, db, total, true
		}
	}
	return id, dA, dB, ok
}
