package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/lineage/internal/domain/entities"
	"github.com/ersonp/lineage/internal/domain/ports"
)

// cousinTree:
//
//	        g
//	      /   \
//	     a     b
//	    / \     \
//	   c   d     e
//	   |         |
//	   f         h
func cousinTree(t *testing.T, f *fixture) map[string]entities.Person {
	t.Helper()
	p := map[string]entities.Person{}
	for _, name := range []string{"g", "a", "b", "c", "d", "e", "f", "h"} {
		p[name] = f.person(t, name)
	}
	f.child(t, p["g"], p["a"])
	f.child(t, p["g"], p["b"])
	f.child(t, p["a"], p["c"])
	f.child(t, p["a"], p["d"])
	f.child(t, p["b"], p["e"])
	f.child(t, p["c"], p["f"])
	f.child(t, p["e"], p["h"])
	return p
}

func TestRelationService_FindRelation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := cousinTree(t, f)

	tests := []struct {
		name       string
		a, b       string
		cousinship int
		removal    int
		ancestor   string
		label      string
	}{
		{"parent and child", "a", "c", -1, 1, "a", "parent and child"},
		{"grandparent", "g", "c", -1, 2, "g", "direct line, 2 generations apart"},
		{"siblings", "c", "d", 0, 0, "a", "siblings"},
		{"aunt", "b", "c", 0, 1, "g", "sibling line, once removed"},
		{"first cousins", "c", "e", 1, 0, "g", "1st cousins"},
		{"first cousins once removed", "f", "e", 1, 1, "g", "1st cousins once removed"},
		{"second cousins", "f", "h", 2, 0, "g", "2nd cousins"},
		{"great aunt", "b", "f", 0, 2, "g", "sibling line, twice removed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rel, err := f.relations.FindRelation(ctx, p[tt.a], p[tt.b])
			require.NoError(t, err)
			require.NotNil(t, rel)
			assert.Equal(t, tt.cousinship, rel.Cousinship)
			assert.Equal(t, tt.removal, rel.Removal)
			assert.Equal(t, p[tt.ancestor].ID, rel.CommonAncestorID)
			assert.Equal(t, tt.label, rel.Describe())

			reverse, err := f.relations.FindRelation(ctx, p[tt.b], p[tt.a])
			require.NoError(t, err)
			require.NotNil(t, reverse)
			assert.Equal(t, rel.Cousinship, reverse.Cousinship)
			assert.Equal(t, rel.Removal, reverse.Removal)
		})
	}
}

func TestRelationService_HalfSiblings(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	shared := f.person(t, "shared parent")
	x := f.person(t, "x")
	y := f.person(t, "y")
	f.child(t, shared, x)
	f.child(t, shared, y)

	rel, err := f.relations.FindRelation(ctx, x, y)
	require.NoError(t, err)
	require.NotNil(t, rel)
	assert.Equal(t, entities.BiologicalRelation{Cousinship: 0, Removal: 0, CommonAncestorID: shared.ID}, *rel)
}

func TestRelationService_PedigreeCollapse(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	g := f.person(t, "g")
	a := f.person(t, "a")
	c := f.person(t, "c")
	s := f.person(t, "s")
	f.child(t, g, a)
	f.child(t, a, c)
	f.child(t, g, c)
	f.child(t, a, s)

	want := entities.BiologicalRelation{Cousinship: 0, Removal: 0, CommonAncestorID: a.ID}
	for _, pair := range [][2]entities.Person{{c, s}, {s, c}} {
		rel, err := f.relations.FindRelation(ctx, pair[0], pair[1])
		require.NoError(t, err)
		require.NotNil(t, rel)
		assert.Equal(t, want, *rel)
	}

	// g is a parent of c and a grandparent through a: the shallower path wins.
	rel, err := f.relations.FindRelation(ctx, c, g)
	require.NoError(t, err)
	require.NotNil(t, rel)
	assert.Equal(t, entities.BiologicalRelation{Cousinship: -1, Removal: 1, CommonAncestorID: g.ID}, *rel)
}

func TestRelationService_TieBreakSmallestID(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	mother := f.person(t, "mother")
	father := f.person(t, "father")
	x := f.person(t, "x")
	y := f.person(t, "y")
	for _, c := range []entities.Person{x, y} {
		f.child(t, father, c)
		f.child(t, mother, c)
	}

	rel, err := f.relations.FindRelation(ctx, y, x)
	require.NoError(t, err)
	require.NotNil(t, rel)
	assert.Equal(t, mother.ID, rel.CommonAncestorID)
}

func TestRelationService_Unrelated(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	x := f.person(t, "x")
	y := f.person(t, "y")

	rel, err := f.relations.FindRelation(ctx, x, y)
	require.NoError(t, err)
	assert.Nil(t, rel)
}

func TestRelationService_Validation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	x := f.person(t, "x")

	tests := []struct {
		name string
		a, b entities.Person
	}{
		{"self", x, x},
		{"zero id", entities.Person{}, x},
		{"negative id", x, entities.Person{ID: -1}},
		{"unknown", x, entities.Person{ID: 77}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.relations.FindRelation(ctx, tt.a, tt.b)
			require.Error(t, err)
			assert.Equal(t, ports.KindInvalidArgument, ports.KindOf(err))
		})
	}
}
