package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBiologicalRelation_Describe(t *testing.T) {
	tests := []struct {
		cousinship, removal int
		want                string
	}{
		{-1, 1, "parent and child"},
		{-1, 3, "direct line, 3 generations apart"},
		{0, 0, "siblings"},
		{0, 1, "sibling line, once removed"},
		{0, 2, "sibling line, twice removed"},
		{1, 0, "1st cousins"},
		{1, 1, "1st cousins once removed"},
		{2, 0, "2nd cousins"},
		{3, 4, "3rd cousins 4 times removed"},
		{11, 0, "11th cousins"},
		{22, 0, "22nd cousins"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			r := BiologicalRelation{Cousinship: tt.cousinship, Removal: tt.removal}
			assert.Equal(t, tt.want, r.Describe())
			assert.Equal(t, tt.cousinship < 0, r.DirectLine())
		})
	}
}

func TestNormalizePair(t *testing.T) {
	a, b := NormalizePair(9, 4)
	assert.Equal(t, int64(4), a)
	assert.Equal(t, int64(9), b)

	a, b = NormalizePair(4, 9)
	assert.Equal(t, int64(4), a)
	assert.Equal(t, int64(9), b)
}

func TestPerson_Valid(t *testing.T) {
	assert.True(t, Person{ID: 1}.Valid())
	assert.False(t, Person{}.Valid())
	assert.True(t, IsBlank(" \t"))
	assert.False(t, IsBlank(" a "))
}
