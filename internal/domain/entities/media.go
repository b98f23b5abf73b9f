package entities

import "time"

// MediaFile is an archived file identified by its unique location.
type MediaFile struct {
	ID        int64     `json:"id"`
	Location  string    `json:"location"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Valid reports whether the file carries an assigned identity.
func (m MediaFile) Valid() bool {
	return m.ID > 0
}
