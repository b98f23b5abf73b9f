package entities

import "time"

// PartnerEventType is the kind of a partnering event.
type PartnerEventType string

const (
	PartnerMarriage PartnerEventType = "marriage"
	PartnerDivorce  PartnerEventType = "divorce"
)

// PartnerEvent records a marriage or divorce between two people.
// PersonA is always the smaller id of the pair.
type PartnerEvent struct {
	PersonA   int64            `json:"person_a"`
	PersonB   int64            `json:"person_b"`
	Type      PartnerEventType `json:"type"`
	Sequence  int64            `json:"sequence"`
	CreatedAt time.Time        `json:"created_at"`
}

// NormalizePair orders a pair so (a, b) and (b, a) map to the same key.
func NormalizePair(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}
