package entities

import "fmt"

// BiologicalRelation describes how two people are related through their
// lowest common ancestor. Cousinship -1 means one is a direct ancestor of
// the other.
type BiologicalRelation struct {
	Cousinship       int   `json:"cousinship"`
	Removal          int   `json:"removal"`
	CommonAncestorID int64 `json:"common_ancestor_id"`
}

// DirectLine reports whether the relation is ancestor/descendant.
func (r BiologicalRelation) DirectLine() bool {
	return r.Cousinship < 0
}

// Describe renders the relation as a short English label.
func (r BiologicalRelation) Describe() string {
	if r.DirectLine() {
		if r.Removal == 1 {
			return "parent and child"
		}
		return fmt.Sprintf("direct line, %d generations apart", r.Removal)
	}
	if r.Cousinship == 0 {
		if r.Removal == 0 {
			return "siblings"
		}
		// aunt/uncle and niece/nephew at increasing distance
		return fmt.Sprintf("sibling line, %s", removalLabel(r.Removal))
	}
	label := fmt.Sprintf("%s cousins", ordinal(r.Cousinship))
	if r.Removal > 0 {
		label += " " + removalLabel(r.Removal)
	}
	return label
}

func removalLabel(n int) string {
	switch n {
	case 1:
		return "once removed"
	case 2:
		return "twice removed"
	default:
		return fmt.Sprintf("%d times removed", n)
	}
}

func ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
