package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/ersonp/lineage/internal/domain/entities"
	"github.com/ersonp/lineage/internal/domain/ports"
)

// direction selects which edges a traversal follows.
type direction int

const (
	towardParents direction = iota
	towardChildren
)

// unbounded disables the generation cap of a traversal.
const unbounded = -1

// familyNode is one person in the arena with lazily loaded adjacency lists.
type familyNode struct {
	person   entities.Person
	parents  []int64
	children []int64
	loaded   [2]bool
}

// familyView is a query-scoped arena of the parent-child graph. Nodes are
// fetched from the collaborator on first use and kept for the rest of the
// query, so a person reached through several paths is loaded once.
type familyView struct {
	graph ports.FamilyGraph
	nodes map[int64]*familyNode
}

func newFamilyView(graph ports.FamilyGraph) *familyView {
	return &familyView{
		graph: graph,
		nodes: make(map[int64]*familyNode),
	}
}

// node returns the arena entry for id, or nil if the person does not exist.
func (v *familyView) node(ctx context.Context, id int64) (*familyNode, error) {
	if n, ok := v.nodes[id]; ok {
		return n, nil
	}
	p, err := v.graph.FindPersonByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("resolving person %d: %w", id, err)
	}
	if p == nil {
		return nil, nil
	}
	n := &familyNode{person: *p}
	v.nodes[id] = n
	return n, nil
}

// neighbors returns the adjacent ids of n in the given direction.
func (v *familyView) neighbors(ctx context.Context, n *familyNode, dir direction) ([]int64, error) {
	if n.loaded[dir] {
		if dir == towardParents {
			return n.parents, nil
		}
		return n.children, nil
	}

	var (
		ids []int64
		err error
	)
	if dir == towardParents {
		ids, err = v.graph.ResolveParents(ctx, n.person.ID)
		n.parents = ids
	} else {
		ids, err = v.graph.ResolveChildren(ctx, n.person.ID)
		n.children = ids
	}
	if err != nil {
		return nil, fmt.Errorf("resolving neighbours of %d: %w", n.person.ID, err)
	}
	n.loaded[dir] = true
	return ids, nil
}

// root resolves the starting person of a query. An unknown id is an invalid
// argument rather than an integrity problem.
func (v *familyView) root(ctx context.Context, p entities.Person, role string) (*familyNode, error) {
	if err := validatePerson(p, role); err != nil {
		return nil, err
	}
	n, err := v.node(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, invalidArgf("%s %d does not exist", role, p.ID)
	}
	return n, nil
}

// walk runs a breadth-first traversal from root, following edges in dir for
// at most maxDepth hops (unbounded for no cap). It returns the minimum depth
// of every reached person, root included at depth 0. A reached id that does
// not resolve to a person is a data integrity error.
func (v *familyView) walk(ctx context.Context, root *familyNode, dir direction, maxDepth int) (map[int64]int, error) {
	type queueItem struct {
		node  *familyNode
		depth int
	}

	depths := map[int64]int{root.person.ID: 0}
	queue := []queueItem{{root, 0}}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		item := queue[0]
		queue = queue[1:]

		if maxDepth != unbounded && item.depth >= maxDepth {
			continue
		}

		next, err := v.neighbors(ctx, item.node, dir)
		if err != nil {
			return nil, err
		}
		for _, id := range next {
			if _, seen := depths[id]; seen {
				continue
			}
			n, err := v.node(ctx, id)
			if err != nil {
				return nil, err
			}
			if n == nil {
				return nil, fmt.Errorf("%w: person %d linked from %d does not exist",
					ports.ErrDataIntegrity, id, item.node.person.ID)
			}
			depths[id] = item.depth + 1
			queue = append(queue, queueItem{n, item.depth + 1})
		}
	}

	return depths, nil
}

// people converts the reached ids, minus the root, into persons sorted by id.
func (v *familyView) people(depths map[int64]int, rootID int64) []entities.Person {
	result := make([]entities.Person, 0, len(depths))
	for id := range depths {
		if id == rootID {
			continue
		}
		result = append(result, v.nodes[id].person)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result
}
