package entities

import "time"

// AnnotationKind distinguishes free-form notes from source references.
type AnnotationKind string

const (
	AnnotationNote      AnnotationKind = "note"
	AnnotationReference AnnotationKind = "reference"
)

// Annotation is a note or reference attached to a person.
type Annotation struct {
	ID        int64          `json:"id"`
	PersonID  int64          `json:"person_id"`
	Kind      AnnotationKind `json:"kind"`
	Text      string         `json:"text"`
	CreatedAt time.Time      `json:"created_at"`
}
