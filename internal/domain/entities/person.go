// Package entities contains core domain data structures.
package entities

import (
	"strings"
	"time"
)

// Person is an individual in the family tree. Names are not unique; ID is
// the only stable identity.
type Person struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Valid reports whether the person carries an assigned identity.
func (p Person) Valid() bool {
	return p.ID > 0
}

// ParentChildEdge is a directed parent -> child link.
type ParentChildEdge struct {
	ParentID int64 `json:"parent_id"`
	ChildID  int64 `json:"child_id"`
}

// MaxParents is the number of parents a child may have.
const MaxParents = 2

// IsBlank reports whether s is empty after trimming whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
